package models

import "time"

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geocoding accuracy tags, from best to worst.
const (
	AccuracyRooftop    = "rooftop"
	AccuracyRange      = "range"
	AccuracyGeometric  = "geometric"
	AccuracyApprox     = "approximate"
	AccuracyCity       = "city"
	AccuracyPostalCode = "postal_code"
	AccuracyCountry    = "country"
)

// Resolution methods recorded on a GeocodeResult.
const (
	MethodProvider    = "provider"
	MethodIntelligent = "intelligent"
	MethodPostal      = "postal"
	MethodFallback    = "fallback"
	MethodMemoryCache = "memory_cache"
	MethodDBCache     = "db_cache"
)

// Confidence levels for a geocoding result.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// GeocodeResult is the outcome of resolving a free-form address.
// Resolution is total: every address yields a result, in the worst
// case the country centroid.
type GeocodeResult struct {
	Point            GeoPoint `json:"point"`
	FormattedAddress string   `json:"formatted_address"`
	Accuracy         string   `json:"accuracy"`
	Method           string   `json:"method"`
	Confidence       string   `json:"confidence"`
}

// Origins recorded on a Leg.
const (
	LegOriginProvider     = "provider"
	LegOriginDBCache      = "db_cache"
	LegOriginMemoryCache  = "memory_cache"
	LegOriginSimilarRoute = "similar_route"
	LegOriginHaversine    = "haversine_fallback"
)

// Leg is a pairwise driving measurement. DurationHours includes the
// fixed setup/parking padding.
type Leg struct {
	From          GeoPoint `json:"from"`
	To            GeoPoint `json:"to"`
	DistanceKm    float64  `json:"distance_km"`
	DurationHours float64  `json:"duration_hours"`
	Origin        string   `json:"origin"`
}

// GeocodeCacheRow is a persisted geocoding result.
type GeocodeCacheRow struct {
	Address          string    `json:"address" db:"address"`
	Lat              float64   `json:"lat" db:"lat"`
	Lng              float64   `json:"lng" db:"lng"`
	FormattedAddress string    `json:"formatted_address" db:"formatted_address"`
	Accuracy         string    `json:"accuracy" db:"accuracy"`
	Method           string    `json:"method" db:"method"`
	CachedAt         time.Time `json:"cached_at" db:"cached_at"`
}

// DistanceCacheRow is a persisted pairwise driving measurement.
type DistanceCacheRow struct {
	OriginLat     float64   `json:"origin_lat" db:"origin_lat"`
	OriginLng     float64   `json:"origin_lng" db:"origin_lng"`
	DestLat       float64   `json:"dest_lat" db:"dest_lat"`
	DestLng       float64   `json:"dest_lng" db:"dest_lng"`
	DistanceKm    float64   `json:"distance_km" db:"distance_km"`
	DurationHours float64   `json:"duration_hours" db:"duration_hours"`
	CachedAt      time.Time `json:"cached_at" db:"cached_at"`
}
