package model

// Category identifies one of the five scoring dimensions.
type Category string

const (
	CategoryAffordability Category = "affordability"
	CategorySafety        Category = "safety"
	CategoryConvenience   Category = "convenience"
	CategoryLifestyle     Category = "lifestyle"
	CategoryCommute       Category = "commute"
)

// Categories lists all scoring dimensions in presentation order.
var Categories = []Category{
	CategoryAffordability,
	CategorySafety,
	CategoryConvenience,
	CategoryLifestyle,
	CategoryCommute,
}

// CategoryScore is one dimension's contribution to a match.
type CategoryScore struct {
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// MatchScore is the weighted combination of category scores for one
// neighborhood against one user's preferences. Transient: recomputed per
// request, never stored.
type MatchScore struct {
	NeighborhoodID string                     `json:"neighborhood_id"`
	TotalScore     float64                    `json:"total_score"`
	Categories     map[Category]CategoryScore `json:"categories"`
	Reasoning      []string                   `json:"reasoning"`
	Confidence     float64                    `json:"confidence"`
	DataQuality    float64                    `json:"data_quality"`
}

// InteractionType is a recorded user action against a neighborhood.
type InteractionType string

const (
	InteractionView    InteractionType = "view"
	InteractionSave    InteractionType = "save"
	InteractionContact InteractionType = "contact"
	InteractionReject  InteractionType = "reject"
)

// Valid reports whether t is a known interaction type.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionView, InteractionSave, InteractionContact, InteractionReject:
		return true
	}
	return false
}
