package geo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/maypok86/otter/v2"

	"github.com/fieldcast/tourplan-backend-go/internal/models"
	"github.com/fieldcast/tourplan-backend-go/internal/repository"
	"github.com/fieldcast/tourplan-backend-go/internal/spatial"
)

// TravelPadHours is added to every driving duration to reflect setup
// and parking time.
const TravelPadHours = 0.25

// fallbackPadHours pads the Haversine estimate used when a provider
// call was attempted and failed; slightly above the normal pad.
const fallbackPadHours = 0.3

// Closed-form estimate constants for short hops.
const (
	tinyHopKm       = 5.0  // below this, city traffic dominates
	shortHopKm      = 50.0 // below this, regional roads dominate
	tinyHopFactor   = 1.4
	shortHopFactor  = 1.25
	tinyHopSpeedKmh = 30.0
	shortHopSpeed   = 60.0
	fallbackFactor  = 1.3
	fallbackSpeed   = 80.0
)

// matrixBatchPause separates batched provider matrix calls. Provider
// requirement, not an optimization.
const matrixBatchPause = 250 * time.Millisecond

// distanceMemorySize bounds the in-process leg cache.
const distanceMemorySize = 100_000

// DistanceOracle produces pairwise driving legs through a fixed
// resolution order: memory cache, persistent exact match, persistent
// similar route, closed-form short-hop estimate, provider matrix,
// Haversine fallback. Leg is total: it always returns a value.
type DistanceOracle struct {
	provider Provider                             // may be nil
	cache    *repository.DistanceCacheRepository  // may be nil
	memory   *otter.Cache[string, models.Leg]
}

// NewDistanceOracle creates a distance oracle. Provider and persistent
// cache are optional.
func NewDistanceOracle(provider Provider, cache *repository.DistanceCacheRepository) *DistanceOracle {
	memory := otter.Must(&otter.Options[string, models.Leg]{
		MaximumSize: distanceMemorySize,
	})
	return &DistanceOracle{
		provider: provider,
		cache:    cache,
		memory:   memory,
	}
}

func legKey(from, to models.GeoPoint) string {
	return fmt.Sprintf("%v,%v-%v,%v", from.Lat, from.Lng, to.Lat, to.Lng)
}

// Leg resolves the driving distance and duration between two points.
func (o *DistanceOracle) Leg(ctx context.Context, from, to models.GeoPoint) models.Leg {
	if spatial.SamePoint(from, to) {
		return models.Leg{From: from, To: to}
	}

	key := legKey(from, to)
	if cached, ok := o.memory.GetIfPresent(key); ok {
		cached.Origin = models.LegOriginMemoryCache
		return cached
	}

	if o.cache != nil {
		if row, err := o.cache.Get(ctx, from, to); err != nil {
			log.Printf("DistanceOracle: cache read failed: %v", err)
		} else if row != nil {
			leg := models.Leg{
				From:          from,
				To:            to,
				DistanceKm:    row.DistanceKm,
				DurationHours: row.DurationHours,
				Origin:        models.LegOriginDBCache,
			}
			o.memory.Set(key, leg)
			return leg
		}

		if row, err := o.cache.GetSimilar(ctx, from, to); err != nil {
			log.Printf("DistanceOracle: similar-route read failed: %v", err)
		} else if row != nil {
			leg := models.Leg{
				From:          from,
				To:            to,
				DistanceKm:    row.DistanceKm,
				DurationHours: row.DurationHours,
				Origin:        models.LegOriginSimilarRoute,
			}
			o.memory.Set(key, leg)
			return leg
		}
	}

	greatCircle := spatial.HaversineKm(from, to)

	// Short hops are estimated closed-form; a provider round-trip would
	// cost more than the accuracy it buys.
	if greatCircle < tinyHopKm {
		km := greatCircle * tinyHopFactor
		leg := models.Leg{
			From:          from,
			To:            to,
			DistanceKm:    km,
			DurationHours: km/tinyHopSpeedKmh + TravelPadHours,
			Origin:        models.LegOriginHaversine,
		}
		o.store(ctx, key, leg)
		return leg
	}
	if greatCircle < shortHopKm {
		km := greatCircle * shortHopFactor
		leg := models.Leg{
			From:          from,
			To:            to,
			DistanceKm:    km,
			DurationHours: km/shortHopSpeed + TravelPadHours,
			Origin:        models.LegOriginHaversine,
		}
		o.store(ctx, key, leg)
		return leg
	}

	providerTried := false
	if o.provider != nil && ProviderAvailable() {
		providerTried = true
		if leg, ok := o.legViaProvider(ctx, from, to); ok {
			o.store(ctx, key, leg)
			return leg
		}
	}

	pad := TravelPadHours
	if providerTried {
		pad = fallbackPadHours
	}
	leg := models.Leg{
		From:          from,
		To:            to,
		DistanceKm:    greatCircle * fallbackFactor,
		DurationHours: greatCircle/fallbackSpeed + pad,
		Origin:        models.LegOriginHaversine,
	}
	o.store(ctx, key, leg)
	return leg
}

// legViaProvider fetches a 1x1 distance matrix.
func (o *DistanceOracle) legViaProvider(ctx context.Context, from, to models.GeoPoint) (models.Leg, bool) {
	matrix, err := o.provider.DistanceMatrix(ctx, []models.GeoPoint{from}, []models.GeoPoint{to}, TrafficBestGuess)
	if err != nil {
		if errors.Is(err, ErrProviderDenied) {
			log.Printf("DistanceOracle: provider denied, disabling for process: %v", err)
			DisableProvider()
		} else {
			log.Printf("DistanceOracle: provider matrix error: %v", err)
		}
		return models.Leg{}, false
	}
	if len(matrix) == 0 || len(matrix[0]) == 0 || !matrix[0][0].OK {
		return models.Leg{}, false
	}

	return legFromElement(from, to, matrix[0][0]), true
}

func legFromElement(from, to models.GeoPoint, el MatrixElement) models.Leg {
	seconds := el.Seconds
	if el.SecondsInTraffic > 0 {
		seconds = el.SecondsInTraffic
	}
	return models.Leg{
		From:          from,
		To:            to,
		DistanceKm:    el.Meters / 1000.0,
		DurationHours: seconds/3600.0 + TravelPadHours,
		Origin:        models.LegOriginProvider,
	}
}

// store writes a produced leg to both caches. Persistence errors are
// logged, never surfaced.
func (o *DistanceOracle) store(ctx context.Context, key string, leg models.Leg) {
	o.memory.Set(key, leg)
	if o.cache == nil {
		return
	}
	if err := o.cache.Put(ctx, leg.From, leg.To, leg.DistanceKm, leg.DurationHours); err != nil {
		log.Printf("DistanceOracle: cache write failed: %v", err)
	}
}

// Warm prefetches legs from one origin to many destinations with
// batched provider matrix calls. Batches keep origins x destinations
// within the provider cap and pause between requests. Failures are
// logged and ignored; missing legs resolve lazily later.
func (o *DistanceOracle) Warm(ctx context.Context, origin models.GeoPoint, destinations []models.GeoPoint) {
	if o.provider == nil || !ProviderAvailable() {
		return
	}

	var pending []models.GeoPoint
	for _, dest := range destinations {
		if spatial.SamePoint(origin, dest) {
			continue
		}
		if _, ok := o.memory.GetIfPresent(legKey(origin, dest)); ok {
			continue
		}
		pending = append(pending, dest)
	}

	for start := 0; start < len(pending); start += MaxMatrixElements {
		end := start + MaxMatrixElements
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		if start > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(matrixBatchPause):
			}
		}

		matrix, err := o.provider.DistanceMatrix(ctx, []models.GeoPoint{origin}, batch, TrafficBestGuess)
		if err != nil {
			if errors.Is(err, ErrProviderDenied) {
				DisableProvider()
			}
			log.Printf("DistanceOracle: warm batch failed: %v", err)
			return
		}
		if len(matrix) == 0 {
			return
		}
		for i, el := range matrix[0] {
			if i >= len(batch) || !el.OK {
				continue
			}
			leg := legFromElement(origin, batch[i], el)
			o.store(ctx, legKey(origin, batch[i]), leg)
		}
	}
}
