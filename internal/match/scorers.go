package match

import (
	"github.com/nestscout/match-cli/internal/model"
)

// scoreAffordability grades rent against budget by their ratio. Deep
// discounts saturate at 1.0; anything more than 15 percent over budget is
// close to disqualifying.
func scoreAffordability(rec model.EnrichedNeighborhood, prefs model.UserPreferences) float64 {
	if prefs.Budget <= 0 {
		return 0.5
	}
	ratio := rec.External.RealEstate.AverageRent / prefs.Budget
	switch {
	case ratio <= 0.6:
		return 1.0
	case ratio <= 0.75:
		return 0.9
	case ratio <= 0.9:
		return 0.8
	case ratio <= 1.0:
		return 0.6
	case ratio <= 1.15:
		return 0.3
	default:
		return 0.1
	}
}

// scoreSafety starts from the normalized safety rating and adjusts for crime
// figures. Families get a small premium on already-safe areas.
func scoreSafety(rec model.EnrichedNeighborhood, prefs model.UserPreferences) float64 {
	score := clamp01(clamp(rec.External.Crime.SafetyScore, 0, 5) / 5)

	crime := rec.External.Crime.CrimeRate
	if crime < 1.5 {
		score += 0.1
	} else if crime > 3.0 {
		score -= 0.15
	}

	incidents := rec.External.Crime.RecentIncidents
	if incidents > 15 {
		score -= 0.1
	} else if incidents < 5 {
		score += 0.05
	}

	if prefs.AgeGroup == model.AgeFamily && score > 0.8 {
		score += 0.05
	}

	return clamp01(score)
}

// scoreConvenience blends walkability, amenity density, and school quality.
func scoreConvenience(rec model.EnrichedNeighborhood, prefs model.UserPreferences) float64 {
	walk := rec.External.Transit.WalkScore
	transit := rec.External.Transit.TransitScore
	amenities := float64(rec.External.Amenities.Restaurants +
		rec.External.Amenities.Shopping +
		rec.External.Amenities.Healthcare)
	school := clamp(rec.External.Schools.AverageRating, 0, 5)

	score := (walk+transit)/200*0.4 +
		clamp01(amenities/150)*0.4 +
		school/5*0.2

	if prefs.HasLifestyle(model.LifestyleWalkable) {
		score += walk / 100 * 0.1
	}

	return clamp01(score)
}

// scoreLifestyle starts neutral and rewards matches between the area's
// character and the user's life stage and stated tags.
func scoreLifestyle(rec model.EnrichedNeighborhood, prefs model.UserPreferences) float64 {
	score := 0.5

	medianAge := rec.External.Demographics.MedianAge
	restaurants := rec.External.Amenities.Restaurants
	school := rec.External.Schools.AverageRating

	switch prefs.AgeGroup {
	case model.AgeYoungProfessional:
		if medianAge >= 25 && medianAge <= 35 {
			score += 0.2
		}
		if restaurants > 25 {
			score += 0.15
		}
	case model.AgeFamily:
		if medianAge >= 30 && medianAge <= 45 {
			score += 0.2
		}
		if school > 4.0 {
			score += 0.15
		}
	}

	if prefs.HasLifestyle(model.LifestyleModern) && rec.External.RealEstate.PricePerSqFt > 8000 {
		score += 0.1
	}
	if prefs.HasLifestyle(model.LifestyleAffordable) && prefs.Budget > 0 &&
		rec.External.RealEstate.AverageRent < prefs.Budget*0.8 {
		score += 0.15
	}
	if prefs.HasLifestyle(model.LifestyleNightlife) && restaurants > 20 {
		score += 0.1
	}
	if prefs.HasLifestyle(model.LifestyleFamilyFriendly) && school > 3.8 {
		score += 0.15
	}

	return clamp01(score)
}

// scoreCommute grades straight-line distance to the work location, with a
// transit bonus. Without a work location commute is assumed tolerable.
func scoreCommute(rec model.EnrichedNeighborhood, prefs model.UserPreferences) float64 {
	if prefs.WorkLocation == nil {
		return 0.7
	}

	dist := haversineKM(
		rec.Coordinates.Lat, rec.Coordinates.Lng,
		prefs.WorkLocation.Lat, prefs.WorkLocation.Lng,
	)

	var score float64
	switch {
	case dist <= 5:
		score = 1.0
	case dist <= 10:
		score = 0.85
	case dist <= 15:
		score = 0.7
	case dist <= 25:
		score = 0.5
	case dist <= 35:
		score = 0.3
	default:
		score = 0.1
	}

	if rec.External.Transit.TransitScore > 70 {
		score += 0.1
	}

	return clamp01(score)
}

// categoryScorers maps each dimension to its scorer.
var categoryScorers = map[model.Category]func(model.EnrichedNeighborhood, model.UserPreferences) float64{
	model.CategoryAffordability: scoreAffordability,
	model.CategorySafety:        scoreSafety,
	model.CategoryConvenience:   scoreConvenience,
	model.CategoryLifestyle:     scoreLifestyle,
	model.CategoryCommute:       scoreCommute,
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}
