package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nestscout/match-cli/internal/config"
	"github.com/nestscout/match-cli/internal/ingest"
	"github.com/nestscout/match-cli/internal/match"
	"github.com/nestscout/match-cli/internal/model"
	"github.com/nestscout/match-cli/internal/seed"
	"github.com/nestscout/match-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the recommendation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		engine, err := buildEngine(ctx, env.store, cfg.Match.TopN)
		if err != nil {
			return err
		}

		api := &apiServer{
			store:    env.store,
			engine:   engine,
			pipeline: ingest.NewPipeline(env.client, env.geo, cfg.Ingest),
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.routes(cfg.Server),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// apiServer holds the handler dependencies for the HTTP API.
type apiServer struct {
	store    store.Store
	engine   *match.Engine
	pipeline *ingest.Pipeline

	ingestMu sync.Mutex // one ingest at a time
}

func (s *apiServer) routes(serverCfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: serverCfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/api/neighborhoods", s.handleListNeighborhoods)
	r.Post("/api/ingest", s.handleIngest)
	r.Post("/api/recommend", s.handleRecommend)
	r.Post("/api/interactions", s.handleInteraction)

	return r
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) handleListNeighborhoods(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListNeighborhoods(r.Context())
	if err != nil {
		zap.L().Error("list neighborhoods", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list neighborhoods failed")
		return
	}
	if records == nil {
		records = []model.EnrichedNeighborhood{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *apiServer) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Listings []model.ListingRecord `json:"listings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	listings := req.Listings
	if len(listings) == 0 {
		var err error
		listings, err = seed.Default()
		if err != nil {
			zap.L().Error("load default listings", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "load listings failed")
			return
		}
	}

	run, err := s.store.CreateRun(r.Context(), len(listings))
	if err != nil {
		zap.L().Error("create run", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "create run failed")
		return
	}

	// Enrichment runs in the background; poll the run for completion.
	go s.runIngest(run.ID, listings)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"run_id":   run.ID,
		"listings": len(listings),
	})
}

// runIngest executes one enrichment cycle detached from the request context.
func (s *apiServer) runIngest(runID string, listings []model.ListingRecord) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	ctx := context.Background()
	if err := s.store.UpdateRunStatus(ctx, runID, model.RunStatusFetching); err != nil {
		zap.L().Error("update run status", zap.String("run", runID), zap.Error(err))
		return
	}

	records, err := s.pipeline.Run(ctx, listings)
	if err != nil {
		zap.L().Error("ingest failed", zap.String("run", runID), zap.Error(err))
		if stErr := s.store.UpdateRunStatus(ctx, runID, model.RunStatusFailed); stErr != nil {
			zap.L().Warn("marking run failed", zap.Error(stErr))
		}
		return
	}

	degraded := 0
	for i := range records {
		if records[i].Degraded() {
			degraded++
		}
	}

	stored, err := s.store.UpsertNeighborhoods(ctx, records)
	if err != nil {
		zap.L().Error("store neighborhoods", zap.String("run", runID), zap.Error(err))
		return
	}
	if err := s.store.CompleteRun(ctx, runID, stored, degraded); err != nil {
		zap.L().Error("complete run", zap.String("run", runID), zap.Error(err))
		return
	}

	zap.L().Info("ingest complete",
		zap.String("run", runID),
		zap.Int("stored", stored),
		zap.Int("degraded", degraded),
	)
}

func (s *apiServer) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var prefs model.UserPreferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if prefs.Budget <= 0 {
		writeError(w, http.StatusBadRequest, "budget must be positive")
		return
	}

	records, err := s.store.ListNeighborhoods(r.Context())
	if err != nil {
		zap.L().Error("list neighborhoods", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list neighborhoods failed")
		return
	}

	scores := s.engine.Recommend(records, prefs)
	if scores == nil {
		scores = []model.MatchScore{}
	}
	writeJSON(w, http.StatusOK, scores)
}

func (s *apiServer) handleInteraction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NeighborhoodID string `json:"neighborhood_id"`
		Kind           string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	kind := model.InteractionType(req.Kind)
	if err := s.engine.RecordInteraction(req.NeighborhoodID, kind); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	it, err := s.store.SaveInteraction(r.Context(), req.NeighborhoodID, kind)
	if err != nil {
		zap.L().Error("save interaction", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "save interaction failed")
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encoding response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
