// Package source holds the clients for the collaborating data services:
// the neighborhood attributes API and the geocoding lookup. Both are
// external contracts; every failure here must be absorbable by the caller.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nestscout/match-cli/internal/config"
	"github.com/nestscout/match-cli/internal/model"
	"github.com/nestscout/match-cli/internal/resilience"
)

// Client fetches third-party attributes for a neighborhood listing.
type Client interface {
	FetchAttributes(ctx context.Context, listing model.ListingRecord) (*model.ExternalAttributes, error)
}

// HTTPClient implements Client against the neighborhood-data HTTP API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewHTTPClient creates a rate-limited client from config.
func NewHTTPClient(cfg config.SourceConfig) *HTTPClient {
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 5
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// FetchAttributes requests the attribute bundle for one neighborhood.
// Transient upstream failures are wrapped as SourceError so callers can
// distinguish source-unavailable from malformed responses.
func (c *HTTPClient) FetchAttributes(ctx context.Context, listing model.ListingRecord) (*model.ExternalAttributes, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "source: rate limit wait")
	}

	url := fmt.Sprintf("%s/neighborhoods/%s", c.baseURL, listing.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "source: create request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, resilience.NewSourceError(eris.Wrap(err, "source: fetch attributes"), 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		err := eris.Errorf("source: attributes request for %s returned %d", listing.ID, resp.StatusCode)
		return nil, resilience.NewSourceError(err, resp.StatusCode)
	}

	var attrs model.ExternalAttributes
	if err := json.NewDecoder(resp.Body).Decode(&attrs); err != nil {
		return nil, eris.Wrapf(err, "source: decode attributes for %s", listing.ID)
	}

	// The API keys records by its own IDs; pin identity to the listing.
	attrs.ID = listing.ID
	if attrs.Name == "" {
		attrs.Name = listing.Name
	}

	zap.L().Debug("source: fetched attributes",
		zap.String("neighborhood", listing.ID),
		zap.Time("last_updated", attrs.LastUpdated),
	)
	return &attrs, nil
}
