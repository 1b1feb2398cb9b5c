// Package store persists ingestion runs, enriched neighborhoods, and user
// interactions. Two drivers are provided: SQLite for local use and Postgres
// for shared deployments.
package store

import (
	"context"
	"time"

	"github.com/nestscout/match-cli/internal/model"
)

// Interaction is one recorded user action against a neighborhood.
type Interaction struct {
	ID             string                `json:"id"`
	NeighborhoodID string                `json:"neighborhood_id"`
	Kind           model.InteractionType `json:"kind"`
	CreatedAt      time.Time             `json:"created_at"`
}

// RunFilter specifies criteria for listing ingestion runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the enrichment pipeline and
// the matching engine.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, listings int) (*model.IngestRun, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, enriched, degraded int) error
	GetRun(ctx context.Context, runID string) (*model.IngestRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.IngestRun, error)

	// Neighborhoods
	UpsertNeighborhoods(ctx context.Context, records []model.EnrichedNeighborhood) (int, error)
	GetNeighborhood(ctx context.Context, id string) (*model.EnrichedNeighborhood, error)
	ListNeighborhoods(ctx context.Context) ([]model.EnrichedNeighborhood, error)

	// Interactions
	SaveInteraction(ctx context.Context, neighborhoodID string, kind model.InteractionType) (*Interaction, error)
	ListInteractions(ctx context.Context, neighborhoodID string) ([]Interaction, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
