package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/nestscout/match-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS ingest_runs (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL DEFAULT 'queued',
	listings   INTEGER NOT NULL DEFAULT 0,
	enriched   INTEGER NOT NULL DEFAULT 0,
	degraded   INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS neighborhoods (
	id         TEXT PRIMARY KEY,
	record     TEXT NOT NULL,
	quality    REAL NOT NULL DEFAULT 0,
	degraded   INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS interactions (
	id              TEXT PRIMARY KEY,
	neighborhood_id TEXT NOT NULL,
	kind            TEXT NOT NULL,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_ingest_runs_status ON ingest_runs(status);
CREATE INDEX IF NOT EXISTS idx_neighborhoods_degraded ON neighborhoods(degraded);
CREATE INDEX IF NOT EXISTS idx_interactions_neighborhood ON interactions(neighborhood_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, listings int) (*model.IngestRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingest_runs (id, status, listings, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(model.RunStatusQueued), listings, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.IngestRun{
		ID:        id,
		Status:    model.RunStatusQueued,
		Listings:  listings,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ingest_runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, enriched, degraded int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ingest_runs SET status = ?, enriched = ?, degraded = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusComplete), enriched, degraded, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.IngestRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, listings, enriched, degraded, created_at, updated_at FROM ingest_runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.IngestRun, error) {
	query := `SELECT id, status, listings, enriched, degraded, created_at, updated_at FROM ingest_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.IngestRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) UpsertNeighborhoods(ctx context.Context, records []model.EnrichedNeighborhood) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO neighborhoods (id, record, quality, degraded, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET record = excluded.record, quality = excluded.quality,
		 degraded = excluded.degraded, updated_at = excluded.updated_at`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	count := 0
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		recordJSON, err := json.Marshal(rec)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: marshal neighborhood %s", rec.ID)
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, string(recordJSON), rec.DataQuality.Overall, rec.Degraded(), now); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert neighborhood %s", rec.ID)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert")
	}
	return count, nil
}

func (s *SQLiteStore) GetNeighborhood(ctx context.Context, id string) (*model.EnrichedNeighborhood, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT record FROM neighborhoods WHERE id = ?`,
		id,
	)

	var recordJSON string
	err := row.Scan(&recordJSON)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("neighborhood not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get neighborhood %s", id)
	}

	var rec model.EnrichedNeighborhood
	if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal neighborhood %s", id)
	}
	return &rec, nil
}

func (s *SQLiteStore) ListNeighborhoods(ctx context.Context) ([]model.EnrichedNeighborhood, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM neighborhoods ORDER BY id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list neighborhoods")
	}
	defer rows.Close()

	var records []model.EnrichedNeighborhood
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan neighborhood")
		}
		var rec model.EnrichedNeighborhood
		if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal neighborhood")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list neighborhoods iterate")
}

func (s *SQLiteStore) SaveInteraction(ctx context.Context, neighborhoodID string, kind model.InteractionType) (*Interaction, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interactions (id, neighborhood_id, kind, created_at) VALUES (?, ?, ?, ?)`,
		id, neighborhoodID, string(kind), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert interaction for %s", neighborhoodID)
	}

	return &Interaction{
		ID:             id,
		NeighborhoodID: neighborhoodID,
		Kind:           kind,
		CreatedAt:      now,
	}, nil
}

func (s *SQLiteStore) ListInteractions(ctx context.Context, neighborhoodID string) ([]Interaction, error) {
	query := `SELECT id, neighborhood_id, kind, created_at FROM interactions`
	var args []any
	if neighborhoodID != "" {
		query += ` WHERE neighborhood_id = ?`
		args = append(args, neighborhoodID)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list interactions")
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		var it Interaction
		if err := rows.Scan(&it.ID, &it.NeighborhoodID, &it.Kind, &it.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan interaction")
		}
		out = append(out, it)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list interactions iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.IngestRun, error) {
	var r model.IngestRun

	err := row.Scan(&r.ID, &r.Status, &r.Listings, &r.Enriched, &r.Degraded, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan run")
	}
	return &r, nil
}
