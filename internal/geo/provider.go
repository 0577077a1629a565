package geo

import (
	"context"
	"errors"

	"github.com/fieldcast/tourplan-backend-go/internal/models"
)

// Provider error kinds. Callers branch with errors.Is; everything else
// is treated as transient.
var (
	ErrProviderTimeout        = errors.New("provider: timeout")
	ErrProviderRateLimited    = errors.New("provider: rate limited")
	ErrProviderDenied         = errors.New("provider: request denied")
	ErrProviderInvalidRequest = errors.New("provider: invalid request")
	ErrProviderTransient      = errors.New("provider: transient failure")
)

// GeocodeAnswer is a raw forward-geocoding result from the provider.
type GeocodeAnswer struct {
	Point            models.GeoPoint
	FormattedAddress string
	Accuracy         string // rooftop, range, geometric, approximate
}

// MatrixElement is one origin/destination cell of a distance matrix.
type MatrixElement struct {
	Meters           float64
	Seconds          float64
	SecondsInTraffic float64 // 0 when the provider returns no traffic estimate
	OK               bool
}

// Traffic hints for distance matrix requests.
const (
	TrafficBestGuess   = "best_guess"
	TrafficPessimistic = "pessimistic"
)

// Provider is the external geocoding and routing service. Both calls
// must respect context cancellation and carry bounded timeouts.
type Provider interface {
	Geocode(ctx context.Context, address, regionHint, languageHint string) (*GeocodeAnswer, error)
	DistanceMatrix(ctx context.Context, origins, destinations []models.GeoPoint, trafficHint string) ([][]MatrixElement, error)
}

// MaxMatrixElements caps origins x destinations per provider matrix
// request. This is a provider constraint, not an optimization.
const MaxMatrixElements = 625
