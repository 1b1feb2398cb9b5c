package model

// AgeGroup buckets users for lifestyle and weight adjustments.
type AgeGroup string

const (
	AgeYoungProfessional AgeGroup = "young-professional"
	AgeFamily            AgeGroup = "family"
	AgeSenior            AgeGroup = "senior"
)

// Priority tags a user can emphasize. Unknown tags are ignored by the
// weight calculator.
const (
	PriorityCost      = "cost"
	PrioritySafety    = "safety"
	PrioritySchools   = "schools"
	PriorityTransit   = "transit"
	PriorityNightlife = "nightlife"
	PriorityCommute   = "commute"
)

// Lifestyle tags recognized by the scorers.
const (
	LifestyleWalkable       = "walkable"
	LifestyleModern         = "modern"
	LifestyleAffordable     = "affordable"
	LifestyleNightlife      = "nightlife"
	LifestyleFamilyFriendly = "family-friendly"
)

// UserPreferences are the stated preferences for one recommendation request.
// Supplied fresh per request; never persisted by the engine.
type UserPreferences struct {
	Budget       float64      `json:"budget"` // monthly, currency units, > 0
	Commute      string       `json:"commute,omitempty"`
	WorkLocation *Coordinates `json:"work_location,omitempty"`
	Lifestyle    []string     `json:"lifestyle,omitempty"`
	Priorities   []string     `json:"priorities,omitempty"`
	FamilySize   int          `json:"family_size,omitempty"`
	AgeGroup     AgeGroup     `json:"age_group,omitempty"`
}

// HasLifestyle reports whether the given lifestyle tag is present.
func (p UserPreferences) HasLifestyle(tag string) bool {
	for _, t := range p.Lifestyle {
		if t == tag {
			return true
		}
	}
	return false
}

// HasPriority reports whether the given priority tag is present.
func (p UserPreferences) HasPriority(tag string) bool {
	for _, t := range p.Priorities {
		if t == tag {
			return true
		}
	}
	return false
}
