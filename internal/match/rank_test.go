package match

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestscout/match-cli/internal/model"
)

func rankNow() time.Time {
	return time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
}

func TestScoreCategoriesComplete(t *testing.T) {
	rec := enrichedFixture()
	prefs := model.UserPreferences{Budget: 40000}

	got := Score(rec, prefs, DeriveWeights(prefs), rankNow())

	require.Len(t, got.Categories, 5)
	total := 0.0
	for _, cat := range model.Categories {
		cs := got.Categories[cat]
		assert.GreaterOrEqual(t, cs.Score, 0.0)
		assert.LessOrEqual(t, cs.Score, 1.0)
		total += cs.Score * cs.Weight
	}
	assert.InDelta(t, got.TotalScore, total, 0.02)
	assert.Equal(t, 0.9, got.DataQuality)
	assert.Equal(t, "n-001", got.NeighborhoodID)
}

func TestScoreConfidenceAgreement(t *testing.T) {
	// Uniform category scores mean zero variance, so only freshness can
	// reduce confidence.
	rec := enrichedFixture()
	rec.External.LastUpdated = rankNow().Add(-24 * time.Hour)
	prefs := model.UserPreferences{Budget: 40000}

	got := Score(rec, prefs, DeriveWeights(prefs), rankNow())

	assert.GreaterOrEqual(t, got.Confidence, 0.3)
	assert.LessOrEqual(t, got.Confidence, 1.0)
	assert.Greater(t, got.Confidence, 0.85)
}

func TestScoreConfidenceStaleDiscount(t *testing.T) {
	rec := enrichedFixture()
	prefs := model.UserPreferences{Budget: 40000}

	rec.External.LastUpdated = rankNow().Add(-24 * time.Hour)
	fresh := Score(rec, prefs, DeriveWeights(prefs), rankNow())

	rec.External.LastUpdated = rankNow().Add(-10 * 24 * time.Hour)
	stale := Score(rec, prefs, DeriveWeights(prefs), rankNow())

	assert.InDelta(t, 0.1, fresh.Confidence-stale.Confidence, 1e-9)
}

func TestScoreReasoningHighlights(t *testing.T) {
	rec := enrichedFixture()
	rec.External.RealEstate.AverageRent = 24000
	rec.External.Crime = model.CrimeMetrics{SafetyScore: 4.8, CrimeRate: 0.9, RecentIncidents: 2}
	rec.External.Schools.AverageRating = 4.5
	rec.External.RealEstate.MarketTrend = model.TrendFalling
	prefs := model.UserPreferences{Budget: 40000}

	got := Score(rec, prefs, DeriveWeights(prefs), rankNow())

	require.NotEmpty(t, got.Reasoning)
	assert.LessOrEqual(t, len(got.Reasoning), 4)
	assert.Contains(t, got.Reasoning[0], "₹")
	assert.Contains(t, got.Reasoning[0], "24,000")
}

func TestRankOrdersByScoreDescending(t *testing.T) {
	cheap := enrichedFixture()
	cheap.ID = "n-cheap"
	cheap.External.RealEstate.AverageRent = 20000

	pricey := enrichedFixture()
	pricey.ID = "n-pricey"
	pricey.External.RealEstate.AverageRent = 45000

	prefs := model.UserPreferences{Budget: 30000}

	got := Rank([]model.EnrichedNeighborhood{pricey, cheap}, prefs, 10, rankNow())

	require.Len(t, got, 2)
	assert.Equal(t, "n-cheap", got[0].NeighborhoodID)
	assert.Greater(t, got[0].TotalScore, got[1].TotalScore)
}

func TestRankOrderIndependentOfInput(t *testing.T) {
	var records []model.EnrichedNeighborhood
	for i := 0; i < 6; i++ {
		rec := enrichedFixture()
		rec.ID = fmt.Sprintf("n-%03d", i)
		rec.External.RealEstate.AverageRent = 20000 + float64(i%3)*8000
		records = append(records, rec)
	}
	prefs := model.UserPreferences{Budget: 30000}

	forward := Rank(records, prefs, 10, rankNow())

	reversed := make([]model.EnrichedNeighborhood, len(records))
	for i, rec := range records {
		reversed[len(records)-1-i] = rec
	}
	backward := Rank(reversed, prefs, 10, rankNow())

	assert.Equal(t, forward, backward)
}

func TestRankSkipsRecordsWithoutID(t *testing.T) {
	anon := enrichedFixture()
	anon.ID = ""

	got := Rank([]model.EnrichedNeighborhood{anon, enrichedFixture()}, model.UserPreferences{Budget: 40000}, 10, rankNow())

	require.Len(t, got, 1)
	assert.Equal(t, "n-001", got[0].NeighborhoodID)
}

func TestRankTruncatesToTopN(t *testing.T) {
	var records []model.EnrichedNeighborhood
	for i := 0; i < 15; i++ {
		rec := enrichedFixture()
		rec.ID = fmt.Sprintf("n-%03d", i)
		records = append(records, rec)
	}

	got := Rank(records, model.UserPreferences{Budget: 40000}, 10, rankNow())

	assert.Len(t, got, 10)
}

func TestRankEmptyInput(t *testing.T) {
	got := Rank(nil, model.UserPreferences{Budget: 40000}, 10, rankNow())
	assert.Empty(t, got)
}
