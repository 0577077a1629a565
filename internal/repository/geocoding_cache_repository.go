package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fieldcast/tourplan-backend-go/internal/models"
)

// GeocodingCacheTTL is how long a persisted geocoding row stays valid.
// Expiry is a read-time filter; rows are never deleted on read.
const GeocodingCacheTTL = 90 * 24 * time.Hour

// GeocodingCacheRepository handles database operations for the
// geocoding cache table.
type GeocodingCacheRepository struct {
	db *sql.DB
}

// NewGeocodingCacheRepository creates a new geocoding cache repository.
func NewGeocodingCacheRepository(db *sql.DB) *GeocodingCacheRepository {
	return &GeocodingCacheRepository{db: db}
}

// Get retrieves a non-expired cache row for a lowercased address.
// Returns (nil, nil) on a miss.
func (r *GeocodingCacheRepository) Get(ctx context.Context, addressLower string) (*models.GeocodeCacheRow, error) {
	query := `
		SELECT address, lat, lng, formatted_address, accuracy, method, cached_at
		FROM geocoding_cache
		WHERE address = ? AND cached_at > ?
	`

	cutoff := time.Now().Add(-GeocodingCacheTTL)
	row := &models.GeocodeCacheRow{}
	err := r.db.QueryRowContext(ctx, query, addressLower, cutoff).Scan(
		&row.Address,
		&row.Lat,
		&row.Lng,
		&row.FormattedAddress,
		&row.Accuracy,
		&row.Method,
		&row.CachedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get geocoding cache row: %w", err)
	}

	return row, nil
}

// Put stores a geocoding result, replacing any previous row for the
// same address. The timestamp is set to now.
func (r *GeocodingCacheRepository) Put(ctx context.Context, addressLower string, point models.GeoPoint, formattedAddress, accuracy, method string) error {
	addressLower = strings.ToLower(strings.TrimSpace(addressLower))
	if addressLower == "" {
		return fmt.Errorf("geocoding cache: empty address key")
	}

	query := `
		INSERT OR REPLACE INTO geocoding_cache
			(address, lat, lng, formatted_address, accuracy, method, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		addressLower, point.Lat, point.Lng, formattedAddress, accuracy, method, time.Now())
	if err != nil {
		return fmt.Errorf("failed to put geocoding cache row: %w", err)
	}

	return nil
}

// Count returns the number of rows in the geocoding cache.
func (r *GeocodingCacheRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM geocoding_cache`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count geocoding cache rows: %w", err)
	}
	return count, nil
}
