package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestscout/match-cli/internal/model"
	"github.com/nestscout/match-cli/internal/source"
)

func testListing() model.ListingRecord {
	return model.ListingRecord{
		ID:    "n-001",
		Name:  "Indiranagar",
		City:  "Bengaluru",
		State: "Karnataka",
		Coordinates: model.Coordinates{
			Lat: 12.9716,
			Lng: 77.6411,
		},
		PriceRange: model.PriceRange{Min: 30000, Max: 50000},
		Ratings: model.Ratings{
			Overall:   4.2,
			Safety:    4.0,
			Schools:   4.1,
			Transit:   3.8,
			Nightlife: 4.5,
			Cost:      3.2,
		},
		Demographics: model.Demographics{
			Population:   85000,
			MedianAge:    29,
			MedianIncome: 1200000,
		},
		Features: []string{"walkable", "nightlife"},
	}
}

func TestNormalizeCleanRecordUntouched(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	attrs := source.Synthesize(testListing(), now)

	clean, corrections := Normalize(&attrs, testListing(), now)

	assert.Empty(t, corrections)
	assert.Equal(t, attrs, clean)
}

func TestNormalizeIdempotent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	attrs := model.ExternalAttributes{
		ID: "n-001",
		RealEstate: model.RealEstateMetrics{
			AverageRent:  -500,
			Availability: 140,
			MarketTrend:  "sideways",
		},
		Crime:   model.CrimeMetrics{SafetyScore: 9, CrimeRate: -1},
		Transit: model.TransitMetrics{WalkScore: 120, TransitScore: -3},
	}

	first, corrections := Normalize(&attrs, testListing(), now)
	require.NotEmpty(t, corrections)

	second, corrections := Normalize(&first, testListing(), now)
	assert.Empty(t, corrections)
	assert.Equal(t, first, second)
}

func TestNormalizeCorrections(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	attrs := model.ExternalAttributes{
		ID: "n-001",
		RealEstate: model.RealEstateMetrics{
			AverageRent:  0,
			PricePerSqFt: -10,
			MarketTrend:  "boom",
			Availability: 50,
		},
		Crime: model.CrimeMetrics{
			SafetyScore: 7.5,
			CrimeRate:   -0.5,
		},
		Transit: model.TransitMetrics{
			WalkScore:    150,
			TransitScore: 60,
			BikeScore:    -20,
		},
		Schools:      model.SchoolMetrics{AverageRating: 6},
		Demographics: model.Demographics{Population: 0, MedianAge: 250},
	}

	clean, corrections := Normalize(&attrs, testListing(), now)

	assert.Equal(t, defaultRent, clean.RealEstate.AverageRent)
	assert.Equal(t, defaultPricePerSqFt, clean.RealEstate.PricePerSqFt)
	assert.Equal(t, model.TrendStable, clean.RealEstate.MarketTrend)
	assert.Equal(t, 5.0, clean.Crime.SafetyScore)
	assert.Equal(t, defaultCrimeRate, clean.Crime.CrimeRate)
	assert.Equal(t, 100.0, clean.Transit.WalkScore)
	assert.Equal(t, 0.0, clean.Transit.BikeScore)
	assert.Equal(t, 5.0, clean.Schools.AverageRating)
	assert.Equal(t, defaultPopulation, clean.Demographics.Population)
	assert.Equal(t, defaultMedianAge, clean.Demographics.MedianAge)
	assert.Equal(t, now, clean.LastUpdated)
	assert.Len(t, corrections, 11)
}

func TestNormalizeNilFallsBackToSynthesis(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	listing := testListing()

	clean, corrections := Normalize(nil, listing, now)

	require.Len(t, corrections, 1)
	assert.Contains(t, corrections[0], "synthesized")
	assert.Equal(t, source.Synthesize(listing, now), clean)
}
