package ingest

import (
	"math"
	"time"

	"github.com/nestscout/match-cli/internal/model"
)

// Merge folds normalized external attributes back into the listing, producing
// the enriched record the matching engine consumes. External figures win over
// listing ratings wherever both exist.
func Merge(listing model.ListingRecord, attrs model.ExternalAttributes, quality model.DataQuality, now time.Time) model.EnrichedNeighborhood {
	out := model.EnrichedNeighborhood{
		ListingRecord: listing,
		External:      attrs,
		DataQuality:   quality,
		Stage:         model.StageMerged,
		LastProcessed: now,
	}

	out.Ratings.Safety = attrs.Crime.SafetyScore
	out.Ratings.Schools = attrs.Schools.AverageRating
	out.Ratings.Transit = attrs.Transit.TransitScore / 20 // 0-100 score to 0-5 rating
	out.Ratings.Cost = costRating(attrs.RealEstate.AverageRent, listing.PriceRange)
	out.Ratings.Overall = round2((out.Ratings.Safety +
		out.Ratings.Schools +
		out.Ratings.Transit +
		out.Ratings.Cost +
		out.Ratings.Nightlife) / 5)

	out.PriceRange = model.PriceRange{
		Min: int(math.Floor(attrs.RealEstate.AverageRent * 0.8)),
		Max: int(math.Floor(attrs.RealEstate.AverageRent * 1.2)),
	}

	out.Demographics = mergeDemographics(attrs.Demographics, listing.Demographics)

	return out
}

// costRating grades how the external rent compares to the listing's own band.
// Cheaper than advertised rates higher.
func costRating(rent float64, band model.PriceRange) float64 {
	mid := band.Midpoint()
	if mid <= 0 {
		return 4.0
	}
	diff := (rent - mid) / mid
	switch {
	case diff < -0.2:
		return 5.0
	case diff < -0.1:
		return 4.5
	case diff < 0.1:
		return 4.0
	case diff < 0.2:
		return 3.5
	case diff < 0.3:
		return 3.0
	default:
		return 2.5
	}
}

// mergeDemographics prefers external figures, filling zero-valued fields from
// the listing.
func mergeDemographics(external, listing model.Demographics) model.Demographics {
	out := external
	if out.Population == 0 {
		out.Population = listing.Population
	}
	if out.MedianAge == 0 {
		out.MedianAge = listing.MedianAge
	}
	if out.MedianIncome == 0 {
		out.MedianIncome = listing.MedianIncome
	}
	if out.DiversityIndex == 0 {
		out.DiversityIndex = listing.DiversityIndex
	}
	return out
}
