package geo

import (
	"context"
	"errors"
	"hash/fnv"
	"log"
	"strings"
	"sync/atomic"

	"github.com/agnivade/levenshtein"
	"github.com/maypok86/otter/v2"

	"github.com/fieldcast/tourplan-backend-go/internal/models"
	"github.com/fieldcast/tourplan-backend-go/internal/repository"
)

// providerDisabled is process-wide and write-once-true: a denied
// provider stays disabled for the remainder of the process.
var providerDisabled atomic.Bool

// DisableProvider marks the external provider as unusable for the rest
// of the process.
func DisableProvider() {
	providerDisabled.Store(true)
}

// ProviderAvailable reports whether provider tiers may be attempted.
func ProviderAvailable() bool {
	return !providerDisabled.Load()
}

// resetProviderState re-enables the provider. Test helper only.
func resetProviderState() {
	providerDisabled.Store(false)
}

// cityMatchThreshold is the minimum Levenshtein similarity for the
// fuzzy city tier to accept a match.
const cityMatchThreshold = 0.6

// geocoderMemorySize bounds the in-process memory cache. Entries never
// expire within the process lifetime; the cap only guards memory.
const geocoderMemorySize = 50_000

// Geocoder resolves free-form German addresses to coordinates through
// a fixed tier order: memory cache, persistent cache, external
// provider, city table analysis, fuzzy city match, postal-code anchor,
// country centroid. Resolution is total and deterministic.
type Geocoder struct {
	provider Provider                               // may be nil
	cache    *repository.GeocodingCacheRepository   // may be nil
	memory   *otter.Cache[string, models.GeocodeResult]
}

// NewGeocoder creates a geocoder. Both the provider and the persistent
// cache are optional; the static tiers alone are sufficient.
func NewGeocoder(provider Provider, cache *repository.GeocodingCacheRepository) *Geocoder {
	memory := otter.Must(&otter.Options[string, models.GeocodeResult]{
		MaximumSize: geocoderMemorySize,
	})
	return &Geocoder{
		provider: provider,
		cache:    cache,
		memory:   memory,
	}
}

// Resolve maps an address to a GeocodeResult. It never fails: internal
// tier errors are logged and drive fallthrough to the next tier, ending
// at the country centroid.
func (g *Geocoder) Resolve(ctx context.Context, address string) models.GeocodeResult {
	key := strings.ToLower(strings.TrimSpace(address))
	if key == "" {
		log.Printf("Geocoder: empty address, using country centroid")
		return models.GeocodeResult{
			Point:            GermanyCentroid,
			FormattedAddress: "Deutschland",
			Accuracy:         models.AccuracyCountry,
			Method:           models.MethodFallback,
			Confidence:       models.ConfidenceLow,
		}
	}

	// Tier 1: memory cache. Hits return the memoized result verbatim so
	// repeated calls are byte-identical within a process run.
	if cached, ok := g.memory.GetIfPresent(key); ok {
		log.Printf("Geocoder: memory_cache hit for %q", key)
		return cached
	}

	// Tier 2: persistent cache with 90-day read-time expiry.
	if g.cache != nil {
		row, err := g.cache.Get(ctx, key)
		if err != nil {
			log.Printf("Geocoder: persistent cache read failed for %q: %v", key, err)
		} else if row != nil {
			result := models.GeocodeResult{
				Point:            models.GeoPoint{Lat: row.Lat, Lng: row.Lng},
				FormattedAddress: row.FormattedAddress,
				Accuracy:         row.Accuracy,
				Method:           models.MethodDBCache,
				Confidence:       confidenceForAccuracy(row.Accuracy),
			}
			g.memory.Set(key, result)
			return result
		}
	}

	// Tier 3: external provider.
	if result, ok := g.resolveViaProvider(ctx, address); ok {
		g.store(ctx, key, result)
		return result
	}

	normalized := NormalizeAddress(address)

	// Tier 4: exact city table hit with a deterministic jitter so two
	// addresses in the same city do not collapse onto one point.
	if normalized.City != "" {
		if entry, ok := LookupCity(normalized.City); ok {
			result := models.GeocodeResult{
				Point:            jitterPoint(entry.Point, key),
				FormattedAddress: entry.CanonicalName + ", Deutschland",
				Accuracy:         models.AccuracyCity,
				Method:           models.MethodIntelligent,
				Confidence:       models.ConfidenceHigh,
			}
			log.Printf("Geocoder: intelligent city match %q -> %s", key, entry.CanonicalName)
			g.store(ctx, key, result)
			return result
		}

		// Tier 5: fuzzy city match against the table keys.
		if entry, sim, ok := bestCityMatch(normalized.City); ok {
			result := models.GeocodeResult{
				Point:            jitterPoint(entry.Point, key),
				FormattedAddress: entry.CanonicalName + ", Deutschland",
				Accuracy:         models.AccuracyApprox,
				Method:           models.MethodIntelligent,
				Confidence:       models.ConfidenceMedium,
			}
			log.Printf("Geocoder: fuzzy city match %q -> %s (similarity %.2f)", key, entry.CanonicalName, sim)
			g.store(ctx, key, result)
			return result
		}
	}

	// Tier 6: postal-code anchor with a deterministic per-digit-pair offset.
	if normalized.PostalCode != "" {
		if anchor, ok := LookupPostalAnchor(normalized.PostalCode); ok {
			result := models.GeocodeResult{
				Point:            postalOffset(anchor.Point, normalized.PostalCode),
				FormattedAddress: normalized.PostalCode + " " + anchor.RegionName,
				Accuracy:         models.AccuracyPostalCode,
				Method:           models.MethodPostal,
				Confidence:       models.ConfidenceMedium,
			}
			log.Printf("Geocoder: postal anchor for %q -> %s", key, anchor.RegionName)
			g.store(ctx, key, result)
			return result
		}
	}

	// Tier 7: country centroid. Always succeeds.
	log.Printf("Geocoder: all tiers missed for %q, using country centroid", key)
	result := models.GeocodeResult{
		Point:            GermanyCentroid,
		FormattedAddress: "Deutschland",
		Accuracy:         models.AccuracyCountry,
		Method:           models.MethodFallback,
		Confidence:       models.ConfidenceLow,
	}
	g.store(ctx, key, result)
	return result
}

// resolveViaProvider runs the external tier. A denied provider is
// disabled process-wide; all other errors simply fail the tier.
func (g *Geocoder) resolveViaProvider(ctx context.Context, address string) (models.GeocodeResult, bool) {
	if g.provider == nil || !ProviderAvailable() {
		return models.GeocodeResult{}, false
	}

	answer, err := g.provider.Geocode(ctx, address, "DE", "de")
	if err != nil {
		switch {
		case errors.Is(err, ErrProviderDenied):
			log.Printf("Geocoder: provider denied, disabling for process: %v", err)
			DisableProvider()
		case errors.Is(err, ErrProviderRateLimited):
			log.Printf("Geocoder: provider rate-limited: %v", err)
		default:
			log.Printf("Geocoder: provider error: %v", err)
		}
		return models.GeocodeResult{}, false
	}

	if !InGermany(answer.Point) {
		log.Printf("Geocoder: provider result for %q outside Germany, rejecting tier", address)
		return models.GeocodeResult{}, false
	}

	return models.GeocodeResult{
		Point:            answer.Point,
		FormattedAddress: answer.FormattedAddress,
		Accuracy:         answer.Accuracy,
		Method:           models.MethodProvider,
		Confidence:       models.ConfidenceHigh,
	}, true
}

// store memoizes a result and writes it through to the persistent
// cache. Persistence errors are logged, never surfaced.
func (g *Geocoder) store(ctx context.Context, key string, result models.GeocodeResult) {
	g.memory.Set(key, result)
	if g.cache == nil {
		return
	}
	if err := g.cache.Put(ctx, key, result.Point, result.FormattedAddress, result.Accuracy, result.Method); err != nil {
		log.Printf("Geocoder: persistent cache write failed for %q: %v", key, err)
	}
}

// bestCityMatch finds the table key with the highest Levenshtein
// similarity to the given city, if it clears the threshold.
func bestCityMatch(city string) (CityEntry, float64, bool) {
	normalized := NormalizeCityKey(city)
	var (
		best    CityEntry
		bestSim float64
		found   bool
	)
	for _, key := range CityKeys() {
		maxLen := len([]rune(key))
		if l := len([]rune(normalized)); l > maxLen {
			maxLen = l
		}
		if maxLen == 0 {
			continue
		}
		dist := levenshtein.ComputeDistance(normalized, key)
		sim := float64(maxLen-dist) / float64(maxLen)
		if sim > bestSim {
			bestSim = sim
			best, _ = LookupCity(key)
			found = true
		}
	}
	if !found || bestSim < cityMatchThreshold {
		return CityEntry{}, 0, false
	}
	return best, bestSim, true
}

// jitterPoint shifts a city centroid by up to ±0.01° in each axis,
// derived from a hash of the address so the offset is reproducible.
func jitterPoint(p models.GeoPoint, key string) models.GeoPoint {
	h := fnv.New32a()
	h.Write([]byte(key))
	sum := h.Sum32()

	latOff := (float64(sum&0xFFFF)/65535.0 - 0.5) * 0.02
	lngOff := (float64(sum>>16)/65535.0 - 0.5) * 0.02
	return models.GeoPoint{Lat: p.Lat + latOff, Lng: p.Lng + lngOff}
}

// postalOffset applies the deterministic digit-pair offset to a
// postal-code anchor: (d2d3-50)*0.01 on latitude, (d4d5-50)*0.01 on
// longitude.
func postalOffset(anchor models.GeoPoint, postalCode string) models.GeoPoint {
	d23 := int(postalCode[1]-'0')*10 + int(postalCode[2]-'0')
	d45 := int(postalCode[3]-'0')*10 + int(postalCode[4]-'0')
	return models.GeoPoint{
		Lat: anchor.Lat + float64(d23-50)*0.01,
		Lng: anchor.Lng + float64(d45-50)*0.01,
	}
}

func confidenceForAccuracy(accuracy string) string {
	switch accuracy {
	case models.AccuracyRooftop, models.AccuracyRange, models.AccuracyGeometric, models.AccuracyCity:
		return models.ConfidenceHigh
	case models.AccuracyApprox, models.AccuracyPostalCode:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
