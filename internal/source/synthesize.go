package source

import (
	"time"

	"github.com/nestscout/match-cli/internal/model"
)

// Defaults used when neither the source nor the listing supplies a value.
const (
	defaultSafetyScore  = 3.5
	defaultTransitScore = 3.5
	defaultSchoolRating = 3.8
	defaultPricePerSqFt = 8000
	defaultCrimeRate    = 2.0
	defaultIncidents    = 10
	defaultBikeScore    = 60
	defaultAvailability = 75
)

// Synthesize builds a complete ExternalAttributes record from the listing's
// own fields. Used whenever the data source is unavailable, so the result
// must satisfy every range invariant without a normalization pass.
func Synthesize(listing model.ListingRecord, now time.Time) model.ExternalAttributes {
	safety := listing.Ratings.Safety
	if safety <= 0 {
		safety = defaultSafetyScore
	}
	transit := listing.Ratings.Transit
	if transit <= 0 {
		transit = defaultTransitScore
	}
	schools := listing.Ratings.Schools
	if schools <= 0 {
		schools = defaultSchoolRating
	}

	return model.ExternalAttributes{
		ID:          listing.ID,
		Name:        listing.Name,
		City:        listing.City,
		State:       listing.State,
		Coordinates: listing.Coordinates,
		RealEstate: model.RealEstateMetrics{
			AverageRent:  listing.PriceRange.Midpoint(),
			PricePerSqFt: defaultPricePerSqFt,
			MarketTrend:  model.TrendStable,
			Availability: defaultAvailability,
		},
		Crime: model.CrimeMetrics{
			CrimeRate:       defaultCrimeRate,
			SafetyScore:     safety,
			RecentIncidents: defaultIncidents,
		},
		Transit: model.TransitMetrics{
			WalkScore:      transit * 20, // 0-5 rating to 0-100 score
			TransitScore:   transit * 20,
			BikeScore:      defaultBikeScore,
			NearbyStations: []string{"Metro Station", "Bus Stop"},
		},
		Schools: model.SchoolMetrics{
			AverageRating:       schools,
			TopSchools:          []string{"Local School"},
			StudentTeacherRatio: 20,
		},
		Demographics: listing.Demographics,
		Amenities: model.AmenityCounts{
			Restaurants: 20,
			Shopping:    15,
			Healthcare:  10,
			Recreation:  12,
		},
		LastUpdated: now,
	}
}
