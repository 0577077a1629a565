package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/fieldcast/tourplan-backend-go/internal/models"
)

// Request timeouts mandated for the two provider operations.
const (
	geocodeTimeout = 8 * time.Second
	matrixTimeout  = 15 * time.Second
)

// GoogleProvider implements Provider against the Google Maps web APIs.
type GoogleProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGoogleProvider creates a provider adapter. The API key must be non-empty.
func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	if apiKey == "" {
		return nil, errors.New("google provider: api key is empty")
	}
	return &GoogleProvider{
		apiKey:  apiKey,
		baseURL: "https://maps.googleapis.com/maps/api",
		client:  &http.Client{Timeout: matrixTimeout},
	}, nil
}

type googleGeocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location     models.GeoPoint `json:"location"`
			LocationType string          `json:"location_type"`
		} `json:"geometry"`
	} `json:"results"`
}

type googleMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value float64 `json:"value"` // meters
			} `json:"distance"`
			Duration struct {
				Value float64 `json:"value"` // seconds
			} `json:"duration"`
			DurationInTraffic struct {
				Value float64 `json:"value"`
			} `json:"duration_in_traffic"`
		} `json:"elements"`
	} `json:"rows"`
}

// Geocode resolves a free-form address via the Geocoding API.
func (g *GoogleProvider) Geocode(ctx context.Context, address, regionHint, languageHint string) (*GeocodeAnswer, error) {
	ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.apiKey)
	if regionHint != "" {
		q.Set("region", strings.ToLower(regionHint))
		q.Set("components", "country:"+strings.ToUpper(regionHint))
	}
	if languageHint != "" {
		q.Set("language", languageHint)
	}

	body, err := g.doWithRetry(ctx, g.baseURL+"/geocode/json?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var decoded googleGeocodeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", errors.Join(ErrProviderTransient, err))
	}

	if err := classifyStatus(decoded.Status); err != nil {
		return nil, err
	}
	if len(decoded.Results) == 0 {
		return nil, fmt.Errorf("geocode %q: %w", address, ErrProviderTransient)
	}

	best := decoded.Results[0]
	return &GeocodeAnswer{
		Point:            best.Geometry.Location,
		FormattedAddress: best.FormattedAddress,
		Accuracy:         accuracyFromLocationType(best.Geometry.LocationType),
	}, nil
}

// DistanceMatrix fetches driving distances for origins x destinations.
// The element cap of MaxMatrixElements is enforced here; batching
// across the cap is the caller's job.
func (g *GoogleProvider) DistanceMatrix(ctx context.Context, origins, destinations []models.GeoPoint, trafficHint string) ([][]MatrixElement, error) {
	if len(origins)*len(destinations) > MaxMatrixElements {
		return nil, fmt.Errorf("matrix request of %dx%d exceeds %d elements: %w",
			len(origins), len(destinations), MaxMatrixElements, ErrProviderInvalidRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, matrixTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("origins", joinPoints(origins))
	q.Set("destinations", joinPoints(destinations))
	q.Set("mode", "driving")
	q.Set("departure_time", "now")
	if trafficHint == "" {
		trafficHint = TrafficBestGuess
	}
	q.Set("traffic_model", trafficHint)
	q.Set("key", g.apiKey)

	body, err := g.doWithRetry(ctx, g.baseURL+"/distancematrix/json?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var decoded googleMatrixResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", errors.Join(ErrProviderTransient, err))
	}

	if err := classifyStatus(decoded.Status); err != nil {
		return nil, err
	}

	matrix := make([][]MatrixElement, len(decoded.Rows))
	for i, row := range decoded.Rows {
		matrix[i] = make([]MatrixElement, len(row.Elements))
		for j, el := range row.Elements {
			matrix[i][j] = MatrixElement{
				Meters:           el.Distance.Value,
				Seconds:          el.Duration.Value,
				SecondsInTraffic: el.DurationInTraffic.Value,
				OK:               el.Status == "OK",
			}
		}
	}
	return matrix, nil
}

// doWithRetry fetches a URL with backoff on transient failures. Denied
// and rate-limited responses abort immediately.
func (g *GoogleProvider) doWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			resp, err := g.client.Do(req)
			if err != nil {
				if ctx.Err() != nil {
					return retry.Unrecoverable(fmt.Errorf("%w: %v", ErrProviderTimeout, err))
				}
				return fmt.Errorf("%w: %v", ErrProviderTransient, err)
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusForbidden:
				return retry.Unrecoverable(ErrProviderDenied)
			case resp.StatusCode == http.StatusTooManyRequests:
				return retry.Unrecoverable(ErrProviderRateLimited)
			case resp.StatusCode >= 500:
				return fmt.Errorf("%w: status %d", ErrProviderTransient, resp.StatusCode)
			case resp.StatusCode != http.StatusOK:
				return retry.Unrecoverable(fmt.Errorf("%w: status %d", ErrProviderInvalidRequest, resp.StatusCode))
			}

			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrProviderTransient, err)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.MaxDelay(2*time.Second),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("Provider request retry %d: %v", n+1, err)
		}),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %v", ErrProviderTimeout, err)
		}
		return nil, err
	}
	return body, nil
}

// classifyStatus maps a Google API status token to a provider error kind.
func classifyStatus(status string) error {
	switch status {
	case "OK", "ZERO_RESULTS":
		return nil
	case "REQUEST_DENIED":
		return ErrProviderDenied
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return ErrProviderRateLimited
	case "INVALID_REQUEST":
		return ErrProviderInvalidRequest
	default:
		return fmt.Errorf("%w: status %s", ErrProviderTransient, status)
	}
}

func accuracyFromLocationType(locationType string) string {
	switch locationType {
	case "ROOFTOP":
		return models.AccuracyRooftop
	case "RANGE_INTERPOLATED":
		return models.AccuracyRange
	case "GEOMETRIC_CENTER":
		return models.AccuracyGeometric
	default:
		return models.AccuracyApprox
	}
}

func joinPoints(points []models.GeoPoint) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = fmt.Sprintf("%f,%f", p.Lat, p.Lng)
	}
	return strings.Join(parts, "|")
}
