package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nestscout/match-cli/internal/config"
	"github.com/nestscout/match-cli/internal/match"
	"github.com/nestscout/match-cli/internal/source"
	"github.com/nestscout/match-cli/internal/store"
)

// appEnv bundles the shared dependencies built by initEnv.
type appEnv struct {
	store  store.Store
	client source.Client
	geo    source.Geocoder
}

// initEnv opens the store and builds the external-service clients.
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}

	env := &appEnv{
		store:  st,
		client: source.NewHTTPClient(cfg.Source),
	}
	// Geocoding is optional; it only runs with a configured account.
	if cfg.Geo.Username != "" {
		env.geo = source.NewGeoNamesClient(cfg.Geo)
	}
	return env, nil
}

func (e *appEnv) Close() {
	if err := e.store.Close(); err != nil {
		zap.L().Warn("closing store", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return store.NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// buildEngine creates a matching engine with its ledger replayed from the
// persisted interaction history.
func buildEngine(ctx context.Context, st store.Store, topN int) (*match.Engine, error) {
	ledger := match.NewLedger()
	interactions, err := st.ListInteractions(ctx, "")
	if err != nil {
		return nil, eris.Wrap(err, "replay interactions")
	}
	for _, it := range interactions {
		ledger.Record(it.NeighborhoodID, it.Kind)
	}
	return match.NewEngine(ledger, topN), nil
}
