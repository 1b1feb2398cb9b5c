// Package ingest implements the enrichment pipeline: fetch-with-fallback,
// validation, quality assessment, and merge of external neighborhood
// attributes into listing records.
package ingest

import (
	"fmt"
	"time"

	"github.com/nestscout/match-cli/internal/model"
	"github.com/nestscout/match-cli/internal/source"
)

// Global defaults substituted for missing or invalid fields.
const (
	defaultRent         = 30000.0
	defaultPricePerSqFt = 8000.0
	defaultCrimeRate    = 2.0
	defaultPopulation   = 50000
	defaultMedianAge    = 35.0
)

// Normalize clamps out-of-range values and substitutes defaults for missing
// or invalid fields, returning the cleaned record and a description of every
// correction applied. A nil input yields a fully synthetic record derived
// from the listing. Never panics outward; any internal fault falls back to
// synthesis.
func Normalize(attrs *model.ExternalAttributes, listing model.ListingRecord, now time.Time) (clean model.ExternalAttributes, corrections []string) {
	defer func() {
		if r := recover(); r != nil {
			clean = source.Synthesize(listing, now)
			corrections = []string{fmt.Sprintf("validation fault, record synthesized from listing: %v", r)}
		}
	}()

	if attrs == nil {
		return source.Synthesize(listing, now), []string{"missing source record, synthesized from listing"}
	}

	clean = *attrs

	if clean.RealEstate.AverageRent <= 0 {
		clean.RealEstate.AverageRent = defaultRent
		corrections = append(corrections, "invalid rent corrected")
	}
	if clean.RealEstate.PricePerSqFt <= 0 {
		clean.RealEstate.PricePerSqFt = defaultPricePerSqFt
		corrections = append(corrections, "invalid price per sqft corrected")
	}
	switch clean.RealEstate.MarketTrend {
	case model.TrendRising, model.TrendStable, model.TrendFalling:
	default:
		clean.RealEstate.MarketTrend = model.TrendStable
		corrections = append(corrections, "unknown market trend defaulted to stable")
	}
	if clean.RealEstate.Availability < 0 || clean.RealEstate.Availability > 100 {
		clean.RealEstate.Availability = clampFloat(clean.RealEstate.Availability, 0, 100)
		corrections = append(corrections, "availability clamped")
	}

	if clean.Crime.SafetyScore < 0 || clean.Crime.SafetyScore > 5 {
		clean.Crime.SafetyScore = clampFloat(clean.Crime.SafetyScore, 0, 5)
		corrections = append(corrections, "safety score normalized")
	}
	if clean.Crime.CrimeRate < 0 {
		clean.Crime.CrimeRate = defaultCrimeRate
		corrections = append(corrections, "invalid crime rate corrected")
	}
	if clean.Crime.RecentIncidents < 0 {
		clean.Crime.RecentIncidents = 0
		corrections = append(corrections, "negative incident count zeroed")
	}

	if clean.Transit.WalkScore < 0 || clean.Transit.WalkScore > 100 {
		clean.Transit.WalkScore = clampFloat(clean.Transit.WalkScore, 0, 100)
		corrections = append(corrections, "walk score clamped")
	}
	if clean.Transit.TransitScore < 0 || clean.Transit.TransitScore > 100 {
		clean.Transit.TransitScore = clampFloat(clean.Transit.TransitScore, 0, 100)
		corrections = append(corrections, "transit score clamped")
	}
	if clean.Transit.BikeScore < 0 || clean.Transit.BikeScore > 100 {
		clean.Transit.BikeScore = clampFloat(clean.Transit.BikeScore, 0, 100)
		corrections = append(corrections, "bike score clamped")
	}

	if clean.Schools.AverageRating < 0 || clean.Schools.AverageRating > 5 {
		clean.Schools.AverageRating = clampFloat(clean.Schools.AverageRating, 0, 5)
		corrections = append(corrections, "school rating normalized")
	}

	if clean.Demographics.Population <= 0 {
		clean.Demographics.Population = defaultPopulation
		corrections = append(corrections, "invalid population corrected")
	}
	if clean.Demographics.MedianAge <= 0 || clean.Demographics.MedianAge > 100 {
		clean.Demographics.MedianAge = defaultMedianAge
		corrections = append(corrections, "invalid median age corrected")
	}

	if clean.LastUpdated.IsZero() {
		clean.LastUpdated = now
		corrections = append(corrections, "missing update timestamp defaulted")
	}

	return clean, corrections
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
