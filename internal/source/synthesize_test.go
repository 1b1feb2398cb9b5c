package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nestscout/match-cli/internal/model"
)

func TestSynthesizeFromListing(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	listing := model.ListingRecord{
		ID:         "n-001",
		Name:       "Indiranagar",
		City:       "Bengaluru",
		PriceRange: model.PriceRange{Min: 30000, Max: 50000},
		Ratings: model.Ratings{
			Safety:  4.0,
			Schools: 4.2,
			Transit: 3.5,
		},
		Demographics: model.Demographics{Population: 85000, MedianAge: 29},
	}

	attrs := Synthesize(listing, now)

	assert.Equal(t, "n-001", attrs.ID)
	assert.Equal(t, 40000.0, attrs.RealEstate.AverageRent)
	assert.Equal(t, model.TrendStable, attrs.RealEstate.MarketTrend)
	assert.Equal(t, 4.0, attrs.Crime.SafetyScore)
	assert.Equal(t, 4.2, attrs.Schools.AverageRating)
	assert.Equal(t, 70.0, attrs.Transit.WalkScore)
	assert.Equal(t, listing.Demographics, attrs.Demographics)
	assert.Equal(t, now, attrs.LastUpdated)
}

func TestSynthesizeDefaultsForMissingRatings(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	listing := model.ListingRecord{ID: "n-002", Name: "Nowhere"}

	attrs := Synthesize(listing, now)

	assert.Equal(t, defaultSafetyScore, attrs.Crime.SafetyScore)
	assert.Equal(t, defaultSchoolRating, attrs.Schools.AverageRating)
	assert.Equal(t, defaultTransitScore*20, attrs.Transit.WalkScore)
	// Range invariants hold without a normalization pass.
	assert.GreaterOrEqual(t, attrs.Crime.SafetyScore, 0.0)
	assert.LessOrEqual(t, attrs.Crime.SafetyScore, 5.0)
	assert.LessOrEqual(t, attrs.Transit.WalkScore, 100.0)
}
