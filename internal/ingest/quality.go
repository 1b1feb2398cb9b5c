package ingest

import (
	"math"
	"time"

	"github.com/nestscout/match-cli/internal/model"
)

// AssessQuality scores a normalized record on four axes and averages them
// into an overall score. All values land in [0,1] rounded to 2 decimals.
func AssessQuality(attrs model.ExternalAttributes, listing model.ListingRecord, now time.Time) model.DataQuality {
	q := model.DataQuality{
		Completeness: round2(completeness(attrs)),
		Accuracy:     round2(accuracy(attrs, listing)),
		Freshness:    round2(freshness(attrs.LastUpdated, now)),
		Consistency:  round2(consistency(attrs)),
	}
	q.Overall = round2((q.Completeness + q.Accuracy + q.Freshness + q.Consistency) / 4)
	return q
}

// completeness is the fraction of key fields carrying a usable value.
func completeness(attrs model.ExternalAttributes) float64 {
	present := 0
	if attrs.RealEstate.AverageRent > 0 {
		present++
	}
	if attrs.Crime.SafetyScore > 0 {
		present++
	}
	if attrs.Transit.WalkScore > 0 {
		present++
	}
	if attrs.Schools.AverageRating > 0 {
		present++
	}
	if attrs.Demographics.Population > 0 {
		present++
	}
	return float64(present) / 5
}

// accuracy starts at a source baseline and rewards agreement with the
// listing's own overall rating.
func accuracy(attrs model.ExternalAttributes, listing model.ListingRecord) float64 {
	score := 0.8
	if listing.Ratings.Overall != 0 {
		derived := (attrs.Crime.SafetyScore + attrs.Schools.AverageRating) / 2
		if math.Abs(listing.Ratings.Overall-derived) < 0.5 {
			score += 0.1
		}
	}
	if score > 1 {
		score = 1
	}
	return score
}

func freshness(lastUpdated, now time.Time) float64 {
	age := now.Sub(lastUpdated)
	switch {
	case age <= 24*time.Hour:
		return 1.0
	case age <= 7*24*time.Hour:
		return 0.8
	case age <= 30*24*time.Hour:
		return 0.6
	default:
		return 0.4
	}
}

// consistency deducts for field combinations that rarely occur together in
// real data.
func consistency(attrs model.ExternalAttributes) float64 {
	score := 0.9
	if attrs.RealEstate.AverageRent > 50000 && attrs.Amenities.Restaurants < 10 {
		score -= 0.1
	}
	if attrs.Schools.AverageRating > 4.0 && attrs.Demographics.MedianAge < 25 {
		score -= 0.1
	}
	if score < 0 {
		score = 0
	}
	return score
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
