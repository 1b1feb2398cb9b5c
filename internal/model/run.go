package model

import "time"

// RunStatus represents the current state of an ingestion run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusFetching RunStatus = "fetching"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// IngestRun records one refresh cycle over a set of listings.
type IngestRun struct {
	ID        string    `json:"id"`
	Status    RunStatus `json:"status"`
	Listings  int       `json:"listings"`
	Enriched  int       `json:"enriched"`
	Degraded  int       `json:"degraded"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
