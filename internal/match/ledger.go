package match

import (
	"sync"

	"github.com/nestscout/match-cli/internal/model"
)

// interactionDeltas converts a user action into a preference signal. Saves
// and contacts weigh more than passive views; rejects count against.
var interactionDeltas = map[model.InteractionType]int{
	model.InteractionView:    1,
	model.InteractionSave:    3,
	model.InteractionContact: 5,
	model.InteractionReject:  -2,
}

// Ledger accumulates interaction signals per neighborhood for the lifetime
// of the process. Safe for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	signals map[string]int
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{signals: make(map[string]int)}
}

// Record applies one interaction. Unknown types are ignored.
func (l *Ledger) Record(neighborhoodID string, kind model.InteractionType) {
	delta, ok := interactionDeltas[kind]
	if !ok {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.signals[neighborhoodID] += delta
}

// Signal returns the accumulated signal for a neighborhood.
func (l *Ledger) Signal(neighborhoodID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.signals[neighborhoodID]
}

// Adjust nudges each total score by the neighborhood's accumulated signal,
// bounded to ±0.2, then re-sorts. The nudge never pushes a score outside
// [0,1].
func (l *Ledger) Adjust(scores []model.MatchScore) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range scores {
		signal := l.signals[scores[i].NeighborhoodID]
		if signal == 0 {
			continue
		}
		nudge := clamp(float64(signal)*0.02, -0.2, 0.2)
		scores[i].TotalScore = round2(clamp01(scores[i].TotalScore + nudge))
	}

	sortScores(scores)
}
