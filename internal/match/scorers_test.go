package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nestscout/match-cli/internal/model"
)

func enrichedFixture() model.EnrichedNeighborhood {
	return model.EnrichedNeighborhood{
		ListingRecord: model.ListingRecord{
			ID:          "n-001",
			Name:        "Indiranagar",
			City:        "Bengaluru",
			Coordinates: model.Coordinates{Lat: 12.9716, Lng: 77.6411},
			PriceRange:  model.PriceRange{Min: 25000, Max: 45000},
			Ratings:     model.Ratings{Overall: 4.2, Nightlife: 4.5},
		},
		External: model.ExternalAttributes{
			ID: "n-001",
			RealEstate: model.RealEstateMetrics{
				AverageRent:  32000,
				PricePerSqFt: 9500,
				MarketTrend:  model.TrendStable,
				Availability: 70,
			},
			Crime: model.CrimeMetrics{
				CrimeRate:       1.8,
				SafetyScore:     4.0,
				RecentIncidents: 8,
			},
			Transit: model.TransitMetrics{
				WalkScore:    85,
				TransitScore: 75,
				BikeScore:    60,
			},
			Schools: model.SchoolMetrics{AverageRating: 4.1},
			Demographics: model.Demographics{
				Population: 85000,
				MedianAge:  29,
			},
			Amenities: model.AmenityCounts{
				Restaurants: 40,
				Shopping:    25,
				Healthcare:  12,
			},
			LastUpdated: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		DataQuality: model.DataQuality{Overall: 0.9},
		Stage:       model.StageMerged,
	}
}

func TestScoreAffordabilityBuckets(t *testing.T) {
	rec := enrichedFixture()

	tests := []struct {
		name   string
		rent   float64
		budget float64
		want   float64
	}{
		{"deep discount", 15000, 30000, 1.0},
		{"well under budget", 20000, 30000, 0.9},
		{"comfortable", 26000, 30000, 0.8},
		{"at budget", 30000, 30000, 0.6},
		{"slightly over", 33000, 30000, 0.3},
		{"way over", 40000, 30000, 0.1},
		{"no budget", 32000, 0, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec.External.RealEstate.AverageRent = tt.rent
			got := scoreAffordability(rec, model.UserPreferences{Budget: tt.budget})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreSafetyClampsAtOne(t *testing.T) {
	rec := enrichedFixture()
	rec.External.Crime = model.CrimeMetrics{
		SafetyScore:     4.5,
		CrimeRate:       1.0,
		RecentIncidents: 2,
	}

	// 4.5/5 + 0.1 low crime + 0.05 few incidents = 1.05, clamped.
	got := scoreSafety(rec, model.UserPreferences{})
	assert.Equal(t, 1.0, got)
}

func TestScoreSafetyDeductions(t *testing.T) {
	rec := enrichedFixture()
	rec.External.Crime = model.CrimeMetrics{
		SafetyScore:     3.0,
		CrimeRate:       3.5,
		RecentIncidents: 20,
	}

	// 0.6 - 0.15 high crime - 0.1 many incidents.
	got := scoreSafety(rec, model.UserPreferences{})
	assert.InDelta(t, 0.35, got, 1e-9)
}

func TestScoreSafetyFamilyPremium(t *testing.T) {
	rec := enrichedFixture()
	rec.External.Crime = model.CrimeMetrics{
		SafetyScore:     4.5,
		CrimeRate:       2.0,
		RecentIncidents: 2,
	}

	base := scoreSafety(rec, model.UserPreferences{})
	family := scoreSafety(rec, model.UserPreferences{AgeGroup: model.AgeFamily})

	// 0.9 + 0.05 incidents = 0.95, family adds 0.05 on top.
	assert.InDelta(t, 0.95, base, 1e-9)
	assert.Equal(t, 1.0, family)
}

func TestScoreConvenienceWalkableBonus(t *testing.T) {
	rec := enrichedFixture()

	plain := scoreConvenience(rec, model.UserPreferences{})
	walkable := scoreConvenience(rec, model.UserPreferences{
		Lifestyle: []string{model.LifestyleWalkable},
	})

	assert.InDelta(t, plain+rec.External.Transit.WalkScore/100*0.1, walkable, 1e-9)
}

func TestScoreLifestyleYoungProfessional(t *testing.T) {
	rec := enrichedFixture()

	got := scoreLifestyle(rec, model.UserPreferences{
		AgeGroup: model.AgeYoungProfessional,
	})

	// 0.5 base + 0.2 age fit + 0.15 restaurant density.
	assert.InDelta(t, 0.85, got, 1e-9)
}

func TestScoreLifestyleTags(t *testing.T) {
	rec := enrichedFixture()

	got := scoreLifestyle(rec, model.UserPreferences{
		Budget:    45000,
		Lifestyle: []string{model.LifestyleModern, model.LifestyleAffordable, model.LifestyleNightlife},
	})

	// 0.5 + 0.1 modern + 0.15 affordable + 0.1 nightlife.
	assert.InDelta(t, 0.85, got, 1e-9)
}

func TestScoreCommuteBuckets(t *testing.T) {
	rec := enrichedFixture()
	rec.External.Transit.TransitScore = 50 // no transit bonus

	// Roughly 1 degree of latitude is 111 km.
	tests := []struct {
		name string
		dLat float64
		want float64
	}{
		{"walking distance", 0.02, 1.0},
		{"short ride", 0.07, 0.85},
		{"moderate", 0.12, 0.7},
		{"long", 0.2, 0.5},
		{"very long", 0.3, 0.3},
		{"cross city", 0.5, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			work := model.Coordinates{
				Lat: rec.Coordinates.Lat + tt.dLat,
				Lng: rec.Coordinates.Lng,
			}
			got := scoreCommute(rec, model.UserPreferences{WorkLocation: &work})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreCommuteNoWorkLocation(t *testing.T) {
	got := scoreCommute(enrichedFixture(), model.UserPreferences{})
	assert.Equal(t, 0.7, got)
}

func TestScoreCommuteTransitBonus(t *testing.T) {
	rec := enrichedFixture()
	work := model.Coordinates{Lat: rec.Coordinates.Lat + 0.12, Lng: rec.Coordinates.Lng}

	// 0.7 distance bucket + 0.1 transit score above 70.
	got := scoreCommute(rec, model.UserPreferences{WorkLocation: &work})
	assert.InDelta(t, 0.8, got, 1e-9)
}

func TestHaversineKnownDistance(t *testing.T) {
	// Bengaluru to Chennai, roughly 290 km.
	d := haversineKM(12.9716, 77.5946, 13.0827, 80.2707)
	assert.InDelta(t, 290, d, 10)
}
