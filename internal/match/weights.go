// Package match implements the preference-weighted neighborhood scoring
// engine: category scorers, weight derivation, ranking with explanations,
// and interaction-driven adjustments.
package match

import (
	"github.com/nestscout/match-cli/internal/model"
)

// Baseline category weights before preference adjustments. They sum to 1.0.
var baseWeights = map[model.Category]float64{
	model.CategoryAffordability: 0.25,
	model.CategorySafety:        0.20,
	model.CategoryConvenience:   0.20,
	model.CategoryLifestyle:     0.20,
	model.CategoryCommute:       0.15,
}

// priorityBoosts shifts weight toward the categories a stated priority
// implies.
var priorityBoosts = map[string]map[model.Category]float64{
	model.PriorityCost: {
		model.CategoryAffordability: 0.15,
	},
	model.PrioritySafety: {
		model.CategorySafety: 0.15,
	},
	model.PrioritySchools: {
		model.CategoryConvenience: 0.10,
		model.CategorySafety:      0.05,
	},
	model.PriorityTransit: {
		model.CategoryCommute:     0.10,
		model.CategoryConvenience: 0.05,
	},
	model.PriorityNightlife: {
		model.CategoryLifestyle: 0.10,
	},
	model.PriorityCommute: {
		model.CategoryCommute: 0.15,
	},
}

// ageAdjustments captures how life stage reshapes the weight profile.
// Seniors keep the baseline.
var ageAdjustments = map[model.AgeGroup]map[model.Category]float64{
	model.AgeFamily: {
		model.CategorySafety:      0.05,
		model.CategoryConvenience: 0.05,
		model.CategoryLifestyle:   -0.05,
		model.CategoryCommute:     -0.05,
	},
	model.AgeYoungProfessional: {
		model.CategoryLifestyle:   0.08,
		model.CategoryCommute:     0.07,
		model.CategorySafety:      -0.08,
		model.CategoryConvenience: -0.07,
	},
}

// DeriveWeights produces the per-category weight profile for a user. The
// result is non-negative and normalized to sum to 1.0 regardless of how the
// adjustments stack.
func DeriveWeights(prefs model.UserPreferences) map[model.Category]float64 {
	weights := make(map[model.Category]float64, len(baseWeights))
	for cat, w := range baseWeights {
		weights[cat] = w
	}

	for _, priority := range prefs.Priorities {
		for cat, boost := range priorityBoosts[priority] {
			weights[cat] += boost
		}
	}

	for cat, adj := range ageAdjustments[prefs.AgeGroup] {
		weights[cat] += adj
	}

	total := 0.0
	for cat, w := range weights {
		if w < 0 {
			w = 0
			weights[cat] = 0
		}
		total += w
	}
	if total <= 0 {
		return map[model.Category]float64{
			model.CategoryAffordability: 0.25,
			model.CategorySafety:        0.20,
			model.CategoryConvenience:   0.20,
			model.CategoryLifestyle:     0.20,
			model.CategoryCommute:       0.15,
		}
	}
	for cat := range weights {
		weights[cat] /= total
	}
	return weights
}
