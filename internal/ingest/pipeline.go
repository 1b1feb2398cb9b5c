package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nestscout/match-cli/internal/config"
	"github.com/nestscout/match-cli/internal/model"
	"github.com/nestscout/match-cli/internal/resilience"
	"github.com/nestscout/match-cli/internal/source"
)

// Quality attached to records that exhausted processing retries. The
// synthetic data is fresh by construction but carries low accuracy.
var degradedQuality = model.DataQuality{
	Completeness: 0.6,
	Accuracy:     0.5,
	Freshness:    1.0,
	Consistency:  0.7,
	Overall:      0.7,
}

// Pipeline enriches neighborhood listings with external attributes. Every
// listing in produces exactly one enriched record out; failures degrade the
// record instead of dropping it.
type Pipeline struct {
	client source.Client
	geo    source.Geocoder // optional
	cfg    config.IngestConfig
	nowFn  func() time.Time
}

// NewPipeline assembles a pipeline. geo may be nil to skip coordinate
// backfill.
func NewPipeline(client source.Client, geo source.Geocoder, cfg config.IngestConfig) *Pipeline {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Pipeline{
		client: client,
		geo:    geo,
		cfg:    cfg,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// Run processes listings in fixed-size batches, records within a batch in
// parallel, with a pacing pause between batches. The result always has one
// record per input listing, in input order.
func (p *Pipeline) Run(ctx context.Context, listings []model.ListingRecord) ([]model.EnrichedNeighborhood, error) {
	results := make([]model.EnrichedNeighborhood, len(listings))
	if len(listings) == 0 {
		return results, nil
	}

	limiter := rate.NewLimiter(rate.Every(p.cfg.BatchDelay()), 1)

	for start := 0; start < len(listings); start += p.cfg.BatchSize {
		if err := limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "ingest: batch pacing")
		}

		end := start + p.cfg.BatchSize
		if end > len(listings) {
			end = len(listings)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				results[i] = p.processOne(gctx, listings[i])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, eris.Wrap(err, "ingest: batch")
		}

		zap.L().Info("ingest: batch complete",
			zap.Int("from", start),
			zap.Int("to", end),
			zap.Int("total", len(listings)),
		)
	}

	return results, nil
}

// processOne runs the full enrich cycle for one listing with retries. If
// every attempt fails the listing is emitted as a degraded record built
// entirely from its own fields.
func (p *Pipeline) processOne(ctx context.Context, listing model.ListingRecord) model.EnrichedNeighborhood {
	retry := resilience.RetryConfig{
		MaxAttempts: p.cfg.MaxAttempts,
		Delay:       p.cfg.RetryDelay(),
		OnRetry:     resilience.RetryLogger("ingest", "enrich "+listing.ID),
	}

	enriched, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (rec model.EnrichedNeighborhood, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = eris.Errorf("ingest: panic enriching %s: %v", listing.ID, r)
			}
		}()
		return p.enrich(ctx, listing)
	})
	if err == nil {
		return enriched
	}

	zap.L().Warn("ingest: listing degraded after retries",
		zap.String("neighborhood", listing.ID),
		zap.Error(err),
	)

	now := p.nowFn()
	degraded := model.EnrichedNeighborhood{
		ListingRecord: listing,
		External:      source.Synthesize(listing, now),
		DataQuality:   degradedQuality,
		Stage:         model.StageDegradedMerged,
		LastProcessed: now,
		ProcessingErrors: []string{
			fmt.Sprintf("processing failed after %d attempts: %v", p.cfg.MaxAttempts, err),
		},
	}
	return degraded
}

// enrich is one attempt: backfill coordinates, fetch external attributes
// with synthesis on failure, validate, assess, merge. Only context
// cancellation surfaces as an error.
func (p *Pipeline) enrich(ctx context.Context, listing model.ListingRecord) (model.EnrichedNeighborhood, error) {
	if err := ctx.Err(); err != nil {
		return model.EnrichedNeighborhood{}, eris.Wrap(err, "ingest: enrich")
	}
	now := p.nowFn()

	if p.geo != nil && listing.Coordinates.Lat == 0 && listing.Coordinates.Lng == 0 {
		place := fmt.Sprintf("%s, %s", listing.Name, listing.City)
		if hit, err := p.geo.Locate(ctx, place); err != nil {
			zap.L().Debug("ingest: geocode skipped",
				zap.String("neighborhood", listing.ID),
				zap.Error(err),
			)
		} else {
			listing.Coordinates = model.Coordinates{Lat: hit.Lat, Lng: hit.Lng}
			if listing.Demographics.Population == 0 && hit.Population > 0 {
				listing.Demographics.Population = hit.Population
			}
		}
	}

	var notes []string
	attrs, err := p.client.FetchAttributes(ctx, listing)
	if err != nil {
		zap.L().Warn("ingest: source fetch failed, synthesizing",
			zap.String("neighborhood", listing.ID),
			zap.Bool("source_unavailable", resilience.IsSourceUnavailable(err)),
			zap.Error(err),
		)
		synth := source.Synthesize(listing, now)
		attrs = &synth
		notes = append(notes, fmt.Sprintf("source fetch failed, attributes synthesized: %v", err))
	}

	clean, corrections := Normalize(attrs, listing, now)
	notes = append(notes, corrections...)

	quality := AssessQuality(clean, listing, now)

	enriched := Merge(listing, clean, quality, now)
	enriched.ProcessingErrors = notes
	return enriched, nil
}
