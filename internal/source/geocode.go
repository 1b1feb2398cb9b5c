package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nestscout/match-cli/internal/config"
)

// GeoResult is a geocoding lookup hit.
type GeoResult struct {
	Lat        float64
	Lng        float64
	Population int
}

// Geocoder resolves a place name to coordinates and population. Optional
// enrichment only; ingestion must absorb any failure here.
type Geocoder interface {
	Locate(ctx context.Context, name string) (*GeoResult, error)
}

// GeoNamesClient implements Geocoder against the GeoNames search API.
type GeoNamesClient struct {
	baseURL    string
	username   string
	httpClient *http.Client
}

// NewGeoNamesClient creates a Geocoder from config.
func NewGeoNamesClient(cfg config.GeoConfig) *GeoNamesClient {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GeoNamesClient{
		baseURL:    cfg.BaseURL,
		username:   cfg.Username,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// geoNamesEntry mirrors the GeoNames JSON shape; lat/lng arrive as strings.
type geoNamesEntry struct {
	Lat        string `json:"lat"`
	Lng        string `json:"lng"`
	Population int    `json:"population"`
}

type geoNamesResponse struct {
	GeoNames []geoNamesEntry `json:"geonames"`
}

// Locate searches for the place name and returns the best hit.
func (c *GeoNamesClient) Locate(ctx context.Context, name string) (*GeoResult, error) {
	q := url.Values{}
	q.Set("q", name)
	q.Set("maxRows", "1")
	q.Set("username", c.username)

	reqURL := fmt.Sprintf("%s/searchJSON?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: lookup %q", name)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("geocode: lookup %q returned %d", name, resp.StatusCode)
	}

	var body geoNamesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, eris.Wrapf(err, "geocode: decode response for %q", name)
	}
	if len(body.GeoNames) == 0 {
		return nil, eris.Errorf("geocode: no results for %q", name)
	}

	hit := body.GeoNames[0]
	lat, err := strconv.ParseFloat(hit.Lat, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: parse lat %q", hit.Lat)
	}
	lng, err := strconv.ParseFloat(hit.Lng, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: parse lng %q", hit.Lng)
	}

	zap.L().Debug("geocode: resolved place",
		zap.String("name", name),
		zap.Float64("lat", lat),
		zap.Float64("lng", lng),
	)
	return &GeoResult{Lat: lat, Lng: lng, Population: hit.Population}, nil
}
