package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestscout/match-cli/internal/config"
)

func TestGeocodeLocate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/searchJSON", r.URL.Path)
		assert.Equal(t, "Indiranagar, Bengaluru", r.URL.Query().Get("q"))
		assert.Equal(t, "demo", r.URL.Query().Get("username"))

		fmt.Fprint(w, `{"geonames":[{"lat":"12.9716","lng":"77.6411","population":85000}]}`)
	}))
	defer srv.Close()

	c := NewGeoNamesClient(config.GeoConfig{BaseURL: srv.URL, Username: "demo"})

	hit, err := c.Locate(context.Background(), "Indiranagar, Bengaluru")
	require.NoError(t, err)
	assert.InDelta(t, 12.9716, hit.Lat, 1e-9)
	assert.InDelta(t, 77.6411, hit.Lng, 1e-9)
	assert.Equal(t, 85000, hit.Population)
}

func TestGeocodeLocateNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"geonames":[]}`)
	}))
	defer srv.Close()

	c := NewGeoNamesClient(config.GeoConfig{BaseURL: srv.URL, Username: "demo"})

	_, err := c.Locate(context.Background(), "Atlantis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no results")
}

func TestGeocodeLocateBadCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"geonames":[{"lat":"not-a-number","lng":"77.6411"}]}`)
	}))
	defer srv.Close()

	c := NewGeoNamesClient(config.GeoConfig{BaseURL: srv.URL, Username: "demo"})

	_, err := c.Locate(context.Background(), "Indiranagar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse lat")
}
