// Package seed loads neighborhood listing files. Listings are the baseline
// records the ingestion pipeline enriches; they can come from a user-supplied
// YAML or JSON file or from the embedded sample set.
package seed

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/nestscout/match-cli/internal/model"
)

//go:embed listings.yaml
var embeddedListings []byte

// Load reads listings from a YAML or JSON file, keyed on extension.
func Load(path string) ([]model.ListingRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "seed: read %s", path)
	}

	var listings []model.ListingRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &listings); err != nil {
			return nil, eris.Wrapf(err, "seed: parse yaml %s", path)
		}
	case ".json":
		if err := json.Unmarshal(data, &listings); err != nil {
			return nil, eris.Wrapf(err, "seed: parse json %s", path)
		}
	default:
		return nil, eris.Errorf("seed: unsupported file type %s", filepath.Ext(path))
	}

	return listings, validate(listings)
}

// Default returns the embedded sample listing set.
func Default() ([]model.ListingRecord, error) {
	var listings []model.ListingRecord
	if err := yaml.Unmarshal(embeddedListings, &listings); err != nil {
		return nil, eris.Wrap(err, "seed: parse embedded listings")
	}
	return listings, validate(listings)
}

func validate(listings []model.ListingRecord) error {
	seen := make(map[string]bool, len(listings))
	for i, l := range listings {
		if l.ID == "" {
			return eris.Errorf("seed: listing %d has no id", i)
		}
		if l.Name == "" {
			return eris.Errorf("seed: listing %s has no name", l.ID)
		}
		if seen[l.ID] {
			return eris.Errorf("seed: duplicate listing id %s", l.ID)
		}
		seen[l.ID] = true
	}
	return nil
}
