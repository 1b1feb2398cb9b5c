package match

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nestscout/match-cli/internal/model"
)

// Engine ties ranking to the interaction ledger. One engine serves all
// requests for the life of the process.
type Engine struct {
	ledger *Ledger
	topN   int
	nowFn  func() time.Time
}

// NewEngine creates an engine returning at most topN matches per request.
func NewEngine(ledger *Ledger, topN int) *Engine {
	if ledger == nil {
		ledger = NewLedger()
	}
	if topN <= 0 {
		topN = 10
	}
	return &Engine{
		ledger: ledger,
		topN:   topN,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// Recommend ranks the neighborhoods for the given preferences, applies
// accumulated interaction signals, and returns the top matches.
func (e *Engine) Recommend(records []model.EnrichedNeighborhood, prefs model.UserPreferences) []model.MatchScore {
	scores := Rank(records, prefs, 0, e.nowFn())
	e.ledger.Adjust(scores)
	if len(scores) > e.topN {
		scores = scores[:e.topN]
	}

	zap.L().Debug("match: recommendations computed",
		zap.Int("candidates", len(records)),
		zap.Int("returned", len(scores)),
	)
	return scores
}

// RecordInteraction feeds one user action into the ledger.
func (e *Engine) RecordInteraction(neighborhoodID string, kind model.InteractionType) error {
	if neighborhoodID == "" {
		return eris.New("match: neighborhood id required")
	}
	if !kind.Valid() {
		return eris.Errorf("match: unknown interaction type %q", kind)
	}
	e.ledger.Record(neighborhoodID, kind)
	return nil
}
