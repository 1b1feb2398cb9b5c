package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestscout/match-cli/internal/config"
	"github.com/nestscout/match-cli/internal/ingest"
	"github.com/nestscout/match-cli/internal/match"
	"github.com/nestscout/match-cli/internal/model"
	"github.com/nestscout/match-cli/internal/source"
	"github.com/nestscout/match-cli/internal/store"
)

type fakeSource struct{}

func (fakeSource) FetchAttributes(_ context.Context, listing model.ListingRecord) (*model.ExternalAttributes, error) {
	attrs := source.Synthesize(listing, time.Now().UTC())
	return &attrs, nil
}

func newTestAPI(t *testing.T) (*apiServer, *httptest.Server) {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	api := &apiServer{
		store:  st,
		engine: match.NewEngine(match.NewLedger(), 10),
		pipeline: ingest.NewPipeline(fakeSource{}, nil, config.IngestConfig{
			BatchSize:    5,
			BatchDelayMS: 0,
			MaxAttempts:  1,
		}),
	}

	srv := httptest.NewServer(api.routes(config.ServerConfig{AllowedOrigins: []string{"*"}}))
	t.Cleanup(srv.Close)
	return api, srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, body any, out any) int {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestServeHealth(t *testing.T) {
	_, srv := newTestAPI(t)

	var body map[string]string
	status := getJSON(t, srv.URL+"/health", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestServeNeighborhoodsEmpty(t *testing.T) {
	_, srv := newTestAPI(t)

	var records []model.EnrichedNeighborhood
	status := getJSON(t, srv.URL+"/api/neighborhoods", &records)

	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, records)
}

func TestServeIngestAndRecommend(t *testing.T) {
	api, srv := newTestAPI(t)

	listings := []model.ListingRecord{
		{
			ID:         "n-test",
			Name:       "Testville",
			City:       "Bengaluru",
			PriceRange: model.PriceRange{Min: 20000, Max: 30000},
			Ratings:    model.Ratings{Overall: 4.0, Safety: 4.0, Schools: 4.0, Transit: 4.0},
		},
	}

	var accepted map[string]any
	status := postJSON(t, srv.URL+"/api/ingest", map[string]any{"listings": listings}, &accepted)
	require.Equal(t, http.StatusAccepted, status)
	runID := accepted["run_id"].(string)

	// The ingest goroutine holds ingestMu; a completed run means it finished.
	require.Eventually(t, func() bool {
		run, err := api.store.GetRun(context.Background(), runID)
		return err == nil && run.Status == model.RunStatusComplete
	}, 5*time.Second, 20*time.Millisecond)

	var scores []model.MatchScore
	status = postJSON(t, srv.URL+"/api/recommend", model.UserPreferences{Budget: 30000}, &scores)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, scores, 1)
	assert.Equal(t, "n-test", scores[0].NeighborhoodID)
	assert.Greater(t, scores[0].TotalScore, 0.0)
}

func TestServeRecommendRequiresBudget(t *testing.T) {
	_, srv := newTestAPI(t)

	var body map[string]string
	status := postJSON(t, srv.URL+"/api/recommend", model.UserPreferences{}, &body)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "budget")
}

func TestServeInteractionValidation(t *testing.T) {
	_, srv := newTestAPI(t)

	status := postJSON(t, srv.URL+"/api/interactions", map[string]string{
		"neighborhood_id": "n-test",
		"kind":            "poke",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = postJSON(t, srv.URL+"/api/interactions", map[string]string{
		"neighborhood_id": "n-test",
		"kind":            "save",
	}, nil)
	assert.Equal(t, http.StatusCreated, status)
}

func TestServeInteractionShiftsRanking(t *testing.T) {
	api, srv := newTestAPI(t)

	now := time.Now().UTC()
	records := []model.EnrichedNeighborhood{}
	for _, id := range []string{"n-a", "n-b"} {
		listing := model.ListingRecord{
			ID:         id,
			Name:       id,
			PriceRange: model.PriceRange{Min: 20000, Max: 30000},
		}
		records = append(records, model.EnrichedNeighborhood{
			ListingRecord: listing,
			External:      source.Synthesize(listing, now),
			DataQuality:   model.DataQuality{Overall: 0.9},
			Stage:         model.StageMerged,
			LastProcessed: now,
		})
	}
	_, err := api.store.UpsertNeighborhoods(context.Background(), records)
	require.NoError(t, err)

	var before []model.MatchScore
	status := postJSON(t, srv.URL+"/api/recommend", model.UserPreferences{Budget: 30000}, &before)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, before, 2)
	require.Equal(t, "n-a", before[0].NeighborhoodID)

	status = postJSON(t, srv.URL+"/api/interactions", map[string]string{
		"neighborhood_id": "n-b",
		"kind":            "contact",
	}, nil)
	require.Equal(t, http.StatusCreated, status)

	var after []model.MatchScore
	status = postJSON(t, srv.URL+"/api/recommend", model.UserPreferences{Budget: 30000}, &after)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, after, 2)
	assert.Equal(t, "n-b", after[0].NeighborhoodID)
}

func TestServeIngestRejectsMalformedBody(t *testing.T) {
	_, srv := newTestAPI(t)

	resp, err := http.Post(srv.URL+"/api/ingest", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
