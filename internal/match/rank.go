package match

import (
	"math"
	"sort"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nestscout/match-cli/internal/model"
)

const maxReasons = 4

var reasonPrinter = message.NewPrinter(language.English)

// Score computes the weighted match for one enriched neighborhood. weights
// must come from DeriveWeights for the same preferences.
func Score(rec model.EnrichedNeighborhood, prefs model.UserPreferences, weights map[model.Category]float64, now time.Time) model.MatchScore {
	categories := make(map[model.Category]model.CategoryScore, len(model.Categories))
	total := 0.0
	for _, cat := range model.Categories {
		raw := categoryScorers[cat](rec, prefs)
		weight := weights[cat]
		weighted := raw * weight
		total += weighted
		categories[cat] = model.CategoryScore{
			Score:    round2(raw),
			Weight:   round2(weight),
			Weighted: round2(weighted),
		}
	}

	return model.MatchScore{
		NeighborhoodID: rec.ID,
		TotalScore:     round2(total),
		Categories:     categories,
		Reasoning:      buildReasoning(rec, prefs, categories),
		Confidence:     confidence(categories, rec.External.LastUpdated, now),
		DataQuality:    rec.DataQuality.Overall,
	}
}

// Rank scores every neighborhood and returns the top matches in descending
// score order. Records without an ID are skipped. Ties break on ID so the
// ordering is independent of input order.
func Rank(records []model.EnrichedNeighborhood, prefs model.UserPreferences, topN int, now time.Time) []model.MatchScore {
	weights := DeriveWeights(prefs)

	scores := make([]model.MatchScore, 0, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		scores = append(scores, Score(rec, prefs, weights, now))
	}

	sortScores(scores)

	if topN > 0 && len(scores) > topN {
		scores = scores[:topN]
	}
	return scores
}

// sortScores orders by descending total score, breaking ties on ID so the
// result is independent of input order.
func sortScores(scores []model.MatchScore) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].TotalScore != scores[j].TotalScore {
			return scores[i].TotalScore > scores[j].TotalScore
		}
		return scores[i].NeighborhoodID < scores[j].NeighborhoodID
	})
}

// buildReasoning emits up to four human-readable highlights, strongest
// category signals first.
func buildReasoning(rec model.EnrichedNeighborhood, prefs model.UserPreferences, categories map[model.Category]model.CategoryScore) []string {
	var reasons []string
	add := func(r string) {
		if len(reasons) < maxReasons {
			reasons = append(reasons, r)
		}
	}

	rent := rec.External.RealEstate.AverageRent
	if categories[model.CategoryAffordability].Score > 0.8 && prefs.Budget > 0 {
		savings := math.Round((1 - rent/prefs.Budget) * 100)
		add(reasonPrinter.Sprintf("Average rent ₹%.0f sits about %.0f%% under your budget", rent, savings))
	}
	if categories[model.CategorySafety].Score > 0.8 {
		add(reasonPrinter.Sprintf("Strong safety record with a crime rate of %.1f per 1,000 residents", rec.External.Crime.CrimeRate))
	}
	if categories[model.CategoryConvenience].Score > 0.8 {
		add(reasonPrinter.Sprintf("Very walkable with a walk score of %.0f", rec.External.Transit.WalkScore))
	}
	if categories[model.CategoryCommute].Score > 0.8 && prefs.WorkLocation != nil {
		dist := haversineKM(
			rec.Coordinates.Lat, rec.Coordinates.Lng,
			prefs.WorkLocation.Lat, prefs.WorkLocation.Lng,
		)
		add(reasonPrinter.Sprintf("Short commute, about %.1f km from work", dist))
	}
	if categories[model.CategoryLifestyle].Score > 0.8 {
		add("Lifestyle fit matches your stated preferences")
	}
	if rec.External.Schools.AverageRating > 4.2 {
		add(reasonPrinter.Sprintf("Highly rated schools averaging %.1f out of 5", rec.External.Schools.AverageRating))
	}
	if rec.External.RealEstate.MarketTrend == model.TrendFalling {
		add("Rents are trending down, a good time to negotiate")
	}

	return reasons
}

// confidence reflects how much the category scores agree, discounted for
// stale source data. Bounded to [0.3, 1.0].
func confidence(categories map[model.Category]model.CategoryScore, lastUpdated time.Time, now time.Time) float64 {
	mean := 0.0
	for _, cat := range model.Categories {
		mean += categories[cat].Score
	}
	mean /= float64(len(model.Categories))

	variance := 0.0
	for _, cat := range model.Categories {
		d := categories[cat].Score - mean
		variance += d * d
	}
	variance /= float64(len(model.Categories))

	conf := 1 - variance
	if now.Sub(lastUpdated) > 7*24*time.Hour {
		conf -= 0.1
	}
	return round2(clamp(conf, 0.3, 1))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
