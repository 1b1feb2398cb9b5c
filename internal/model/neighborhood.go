package model

import "time"

// MarketTrend describes the direction of rental prices in a neighborhood.
type MarketTrend string

const (
	TrendRising  MarketTrend = "rising"
	TrendStable  MarketTrend = "stable"
	TrendFalling MarketTrend = "falling"
)

// Coordinates is a WGS84 lat/lng pair.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// PriceRange is the expected monthly rent band for a neighborhood.
type PriceRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Midpoint returns the center of the price band.
func (p PriceRange) Midpoint() float64 {
	return float64(p.Min+p.Max) / 2
}

// Ratings bundles the 0-5 listing ratings.
type Ratings struct {
	Overall   float64 `json:"overall" yaml:"overall"`
	Safety    float64 `json:"safety" yaml:"safety"`
	Schools   float64 `json:"schools" yaml:"schools"`
	Transit   float64 `json:"transit" yaml:"transit"`
	Nightlife float64 `json:"nightlife" yaml:"nightlife"`
	Cost      float64 `json:"cost" yaml:"cost"`
}

// Demographics holds population statistics for a neighborhood.
type Demographics struct {
	Population     int     `json:"population" yaml:"population"`
	MedianAge      float64 `json:"median_age" yaml:"median_age"`
	MedianIncome   float64 `json:"median_income" yaml:"median_income"`
	DiversityIndex float64 `json:"diversity_index,omitempty" yaml:"diversity_index,omitempty"`
}

// Review is a single user review attached to a listing.
type Review struct {
	ID      string    `json:"id" yaml:"id"`
	Author  string    `json:"author" yaml:"author"`
	Rating  float64   `json:"rating" yaml:"rating"`
	Comment string    `json:"comment" yaml:"comment"`
	Date    time.Time `json:"date" yaml:"date"`
}

// ListingRecord is the baseline neighborhood entry before external enrichment.
// Immutable from the engine's point of view.
type ListingRecord struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	City         string       `json:"city" yaml:"city"`
	State        string       `json:"state" yaml:"state"`
	Coordinates  Coordinates  `json:"coordinates" yaml:"coordinates"`
	PriceRange   PriceRange   `json:"price_range" yaml:"price_range"`
	Ratings      Ratings      `json:"ratings" yaml:"ratings"`
	Demographics Demographics `json:"demographics" yaml:"demographics"`
	Features     []string     `json:"features,omitempty" yaml:"features,omitempty"`
	Reviews      []Review     `json:"reviews,omitempty" yaml:"reviews,omitempty"`
}

// RealEstateMetrics are third-party real estate figures for a neighborhood.
type RealEstateMetrics struct {
	AverageRent  float64     `json:"average_rent"`
	PricePerSqFt float64     `json:"price_per_sqft"`
	MarketTrend  MarketTrend `json:"market_trend"`
	Availability float64     `json:"availability"` // 0-100
}

// CrimeMetrics are third-party crime figures for a neighborhood.
type CrimeMetrics struct {
	CrimeRate       float64 `json:"crime_rate"`      // incidents per 1000, >= 0
	SafetyScore     float64 `json:"safety_score"`    // 0-5
	RecentIncidents int     `json:"recent_incidents"`
}

// TransitMetrics are third-party walkability and transit figures.
type TransitMetrics struct {
	WalkScore      float64  `json:"walk_score"`    // 0-100
	TransitScore   float64  `json:"transit_score"` // 0-100
	BikeScore      float64  `json:"bike_score"`    // 0-100
	NearbyStations []string `json:"nearby_stations,omitempty"`
}

// SchoolMetrics are third-party school quality figures.
type SchoolMetrics struct {
	AverageRating       float64  `json:"average_rating"` // 0-5
	TopSchools          []string `json:"top_schools,omitempty"`
	StudentTeacherRatio float64  `json:"student_teacher_ratio"`
}

// AmenityCounts are counts of nearby amenities by type.
type AmenityCounts struct {
	Restaurants int `json:"restaurants"`
	Shopping    int `json:"shopping"`
	Healthcare  int `json:"healthcare"`
	Recreation  int `json:"recreation"`
}

// ExternalAttributes is the full third-party-sourced record for one
// neighborhood. After normalization every bounded field lies within its
// documented range.
type ExternalAttributes struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	City         string            `json:"city"`
	State        string            `json:"state"`
	Coordinates  Coordinates       `json:"coordinates"`
	RealEstate   RealEstateMetrics `json:"real_estate"`
	Crime        CrimeMetrics      `json:"crime"`
	Transit      TransitMetrics    `json:"transit"`
	Schools      SchoolMetrics     `json:"schools"`
	Demographics Demographics      `json:"demographics"`
	Amenities    AmenityCounts     `json:"amenities"`
	LastUpdated  time.Time         `json:"last_updated"`
}

// DataQuality is the per-record confidence breakdown. Each sub-score and the
// overall average are in [0,1], rounded to 2 decimals.
type DataQuality struct {
	Completeness float64 `json:"completeness"`
	Accuracy     float64 `json:"accuracy"`
	Freshness    float64 `json:"freshness"`
	Consistency  float64 `json:"consistency"`
	Overall      float64 `json:"overall"`
}

// ProcessingStage marks how far a record progressed through the ingestion
// pipeline before it was emitted.
type ProcessingStage string

const (
	StagePending             ProcessingStage = "pending"
	StageFetched             ProcessingStage = "fetched"
	StageFallbackSynthesized ProcessingStage = "fallback_synthesized"
	StageValidated           ProcessingStage = "validated"
	StageQualityAssessed     ProcessingStage = "quality_assessed"
	StageMerged              ProcessingStage = "merged"
	StageDegradedMerged      ProcessingStage = "degraded_merged"
)

// EnrichedNeighborhood is a listing merged with normalized external
// attributes and a quality assessment. Superseded, never mutated, on the
// next refresh cycle.
type EnrichedNeighborhood struct {
	ListingRecord

	External         ExternalAttributes `json:"external"`
	DataQuality      DataQuality        `json:"data_quality"`
	Stage            ProcessingStage    `json:"stage"`
	LastProcessed    time.Time          `json:"last_processed"`
	ProcessingErrors []string           `json:"processing_errors,omitempty"`
}

// Degraded reports whether the record was emitted from the fallback path
// after processing retries were exhausted.
func (e *EnrichedNeighborhood) Degraded() bool {
	return e.Stage == StageDegradedMerged
}
