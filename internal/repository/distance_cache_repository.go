package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fieldcast/tourplan-backend-go/internal/models"
)

// DistanceCacheTTL is how long a persisted distance row stays valid.
const DistanceCacheTTL = 30 * 24 * time.Hour

// SimilarRouteTolerance is the coordinate window (degrees) within which
// a cached route is reused for a nearby origin/destination pair.
const SimilarRouteTolerance = 0.02

// DistanceCacheRepository handles database operations for the distance
// cache table. Rows are keyed by the full-precision coordinate quadruple.
type DistanceCacheRepository struct {
	db *sql.DB
}

// NewDistanceCacheRepository creates a new distance cache repository.
func NewDistanceCacheRepository(db *sql.DB) *DistanceCacheRepository {
	return &DistanceCacheRepository{db: db}
}

// Get retrieves a non-expired exact-match row. Returns (nil, nil) on a miss.
func (r *DistanceCacheRepository) Get(ctx context.Context, from, to models.GeoPoint) (*models.DistanceCacheRow, error) {
	query := `
		SELECT origin_lat, origin_lng, dest_lat, dest_lng,
		       distance_km, duration_hours, cached_at
		FROM distance_cache
		WHERE origin_lat = ? AND origin_lng = ? AND dest_lat = ? AND dest_lng = ?
		  AND cached_at > ?
	`

	cutoff := time.Now().Add(-DistanceCacheTTL)
	row := &models.DistanceCacheRow{}
	err := r.db.QueryRowContext(ctx, query, from.Lat, from.Lng, to.Lat, to.Lng, cutoff).Scan(
		&row.OriginLat,
		&row.OriginLng,
		&row.DestLat,
		&row.DestLng,
		&row.DistanceKm,
		&row.DurationHours,
		&row.CachedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get distance cache row: %w", err)
	}

	return row, nil
}

// GetSimilar retrieves a non-expired row whose endpoints both lie
// within SimilarRouteTolerance degrees of the query pair.
func (r *DistanceCacheRepository) GetSimilar(ctx context.Context, from, to models.GeoPoint) (*models.DistanceCacheRow, error) {
	query := `
		SELECT origin_lat, origin_lng, dest_lat, dest_lng,
		       distance_km, duration_hours, cached_at
		FROM distance_cache
		WHERE origin_lat BETWEEN ? AND ?
		  AND origin_lng BETWEEN ? AND ?
		  AND dest_lat BETWEEN ? AND ?
		  AND dest_lng BETWEEN ? AND ?
		  AND cached_at > ?
		ORDER BY cached_at DESC
		LIMIT 1
	`

	t := SimilarRouteTolerance
	cutoff := time.Now().Add(-DistanceCacheTTL)
	row := &models.DistanceCacheRow{}
	err := r.db.QueryRowContext(ctx, query,
		from.Lat-t, from.Lat+t,
		from.Lng-t, from.Lng+t,
		to.Lat-t, to.Lat+t,
		to.Lng-t, to.Lng+t,
		cutoff,
	).Scan(
		&row.OriginLat,
		&row.OriginLng,
		&row.DestLat,
		&row.DestLng,
		&row.DistanceKm,
		&row.DurationHours,
		&row.CachedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get similar distance cache row: %w", err)
	}

	return row, nil
}

// Put stores a pairwise measurement, replacing any previous row for the
// same coordinate quadruple.
func (r *DistanceCacheRepository) Put(ctx context.Context, from, to models.GeoPoint, distanceKm, durationHours float64) error {
	query := `
		INSERT OR REPLACE INTO distance_cache
			(origin_lat, origin_lng, dest_lat, dest_lng, distance_km, duration_hours, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		from.Lat, from.Lng, to.Lat, to.Lng, distanceKm, durationHours, time.Now())
	if err != nil {
		return fmt.Errorf("failed to put distance cache row: %w", err)
	}

	return nil
}

// Count returns the number of rows in the distance cache.
func (r *DistanceCacheRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM distance_cache`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count distance cache rows: %w", err)
	}
	return count, nil
}
