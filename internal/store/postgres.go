package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/nestscout/match-cli/internal/db"
	"github.com/nestscout/match-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run":         `INSERT INTO ingest_runs (id, status, listings, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
	"update_run_status":  `UPDATE ingest_runs SET status = $1, updated_at = $2 WHERE id = $3`,
	"complete_run":       `UPDATE ingest_runs SET status = $1, enriched = $2, degraded = $3, updated_at = $4 WHERE id = $5`,
	"get_run":            `SELECT id, status, listings, enriched, degraded, created_at, updated_at FROM ingest_runs WHERE id = $1`,
	"get_neighborhood":   `SELECT record FROM neighborhoods WHERE id = $1`,
	"insert_interaction": `INSERT INTO interactions (id, neighborhood_id, kind, created_at) VALUES ($1, $2, $3, $4)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need direct
// query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS ingest_runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	status     TEXT NOT NULL DEFAULT 'queued',
	listings   INTEGER NOT NULL DEFAULT 0,
	enriched   INTEGER NOT NULL DEFAULT 0,
	degraded   INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS neighborhoods (
	id         TEXT PRIMARY KEY,
	record     JSONB NOT NULL,
	quality    DOUBLE PRECISION NOT NULL DEFAULT 0,
	degraded   BOOLEAN NOT NULL DEFAULT false,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS interactions (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	neighborhood_id TEXT NOT NULL,
	kind            TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_ingest_runs_status ON ingest_runs(status);
CREATE INDEX IF NOT EXISTS idx_neighborhoods_degraded ON neighborhoods(degraded);
CREATE INDEX IF NOT EXISTS idx_interactions_neighborhood ON interactions(neighborhood_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, listings int) (*model.IngestRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO ingest_runs (id, status, listings, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, string(model.RunStatusQueued), listings, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.IngestRun{
		ID:        id,
		Status:    model.RunStatusQueued,
		Listings:  listings,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE ingest_runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, enriched, degraded int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE ingest_runs SET status = $1, enriched = $2, degraded = $3, updated_at = $4 WHERE id = $5`,
		string(model.RunStatusComplete), enriched, degraded, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.IngestRun, error) {
	var r model.IngestRun

	err := s.pool.QueryRow(ctx,
		`SELECT id, status, listings, enriched, degraded, created_at, updated_at FROM ingest_runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.Status, &r.Listings, &r.Enriched, &r.Degraded, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.IngestRun, error) {
	query := `SELECT id, status, listings, enriched, degraded, created_at, updated_at FROM ingest_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $1`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.IngestRun
	for rows.Next() {
		var r model.IngestRun
		if err := rows.Scan(&r.ID, &r.Status, &r.Listings, &r.Enriched, &r.Degraded, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

// neighborhoodColumns is the column order used by the bulk upsert path.
var neighborhoodColumns = []string{"id", "record", "quality", "degraded", "updated_at"}

func (s *PostgresStore) UpsertNeighborhoods(ctx context.Context, records []model.EnrichedNeighborhood) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		recordJSON, err := json.Marshal(rec)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal neighborhood %s", rec.ID)
		}
		rows = append(rows, []any{rec.ID, recordJSON, rec.DataQuality.Overall, rec.Degraded(), now})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "neighborhoods",
		Columns:      neighborhoodColumns,
		ConflictKeys: []string{"id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert neighborhoods")
	}
	return int(n), nil
}

func (s *PostgresStore) GetNeighborhood(ctx context.Context, id string) (*model.EnrichedNeighborhood, error) {
	var recordJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT record FROM neighborhoods WHERE id = $1`,
		id,
	).Scan(&recordJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("neighborhood not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get neighborhood %s", id)
	}

	var rec model.EnrichedNeighborhood
	if err := json.Unmarshal(recordJSON, &rec); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal neighborhood %s", id)
	}
	return &rec, nil
}

func (s *PostgresStore) ListNeighborhoods(ctx context.Context) ([]model.EnrichedNeighborhood, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT record FROM neighborhoods ORDER BY id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list neighborhoods")
	}
	defer rows.Close()

	var records []model.EnrichedNeighborhood
	for rows.Next() {
		var recordJSON []byte
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan neighborhood")
		}
		var rec model.EnrichedNeighborhood
		if err := json.Unmarshal(recordJSON, &rec); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal neighborhood")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list neighborhoods iterate")
}

func (s *PostgresStore) SaveInteraction(ctx context.Context, neighborhoodID string, kind model.InteractionType) (*Interaction, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO interactions (id, neighborhood_id, kind, created_at) VALUES ($1, $2, $3, $4)`,
		id, neighborhoodID, string(kind), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert interaction for %s", neighborhoodID)
	}

	return &Interaction{
		ID:             id,
		NeighborhoodID: neighborhoodID,
		Kind:           kind,
		CreatedAt:      now,
	}, nil
}

func (s *PostgresStore) ListInteractions(ctx context.Context, neighborhoodID string) ([]Interaction, error) {
	query := `SELECT id, neighborhood_id, kind, created_at FROM interactions`
	var args []any
	if neighborhoodID != "" {
		query += ` WHERE neighborhood_id = $1`
		args = append(args, neighborhoodID)
	}
	query += ` ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list interactions")
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		var it Interaction
		if err := rows.Scan(&it.ID, &it.NeighborhoodID, &it.Kind, &it.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan interaction")
		}
		out = append(out, it)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list interactions iterate")
}
