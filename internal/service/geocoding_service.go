package service

import (
	"context"
	"fmt"

	"github.com/fieldcast/tourplan-backend-go/internal/geo"
	"github.com/fieldcast/tourplan-backend-go/internal/models"
	"github.com/fieldcast/tourplan-backend-go/internal/repository"
)

// GeocodingService exposes address resolution and cache introspection.
type GeocodingService struct {
	geocoder      *geo.Geocoder
	geocodeCache  *repository.GeocodingCacheRepository
	distanceCache *repository.DistanceCacheRepository
}

// NewGeocodingService creates a new geocoding service.
func NewGeocodingService(geocoder *geo.Geocoder, geocodeCache *repository.GeocodingCacheRepository, distanceCache *repository.DistanceCacheRepository) *GeocodingService {
	return &GeocodingService{
		geocoder:      geocoder,
		geocodeCache:  geocodeCache,
		distanceCache: distanceCache,
	}
}

// Resolve geocodes a single address. Resolution never fails; the
// result's accuracy and method tell the caller how good it is.
func (s *GeocodingService) Resolve(ctx context.Context, address string) (models.GeocodeResult, error) {
	if address == "" {
		return models.GeocodeResult{}, fmt.Errorf("address must not be empty")
	}
	return s.geocoder.Resolve(ctx, address), nil
}

// CacheStats summarizes the persistent cache tables.
type CacheStats struct {
	GeocodingEntries int  `json:"geocoding_entries"`
	DistanceEntries  int  `json:"distance_entries"`
	ProviderEnabled  bool `json:"provider_enabled"`
}

// Stats reports row counts and provider availability.
func (s *GeocodingService) Stats(ctx context.Context) (*CacheStats, error) {
	geocodes, err := s.geocodeCache.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count geocoding cache: %w", err)
	}
	distances, err := s.distanceCache.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count distance cache: %w", err)
	}
	return &CacheStats{
		GeocodingEntries: geocodes,
		DistanceEntries:  distances,
		ProviderEnabled:  geo.ProviderAvailable(),
	}, nil
}
