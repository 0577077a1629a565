package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fieldcast/tourplan-backend-go/internal/database"
	"github.com/fieldcast/tourplan-backend-go/internal/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func TestGeocodingCachePutGet(t *testing.T) {
	repo := NewGeocodingCacheRepository(openTestDB(t))
	ctx := context.Background()

	point := models.GeoPoint{Lat: 52.52, Lng: 13.405}
	if err := repo.Put(ctx, "Hauptstraße 5, Berlin", point, "Berlin, Deutschland", models.AccuracyCity, models.MethodIntelligent); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	row, err := repo.Get(ctx, "hauptstraße 5, berlin")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if row == nil {
		t.Fatal("Get missed a row that was just written")
	}
	if row.Lat != point.Lat || row.Lng != point.Lng {
		t.Errorf("coordinates = (%v, %v), want (%v, %v)", row.Lat, row.Lng, point.Lat, point.Lng)
	}
	if row.Method != models.MethodIntelligent {
		t.Errorf("Method = %q, want %q", row.Method, models.MethodIntelligent)
	}
}

func TestGeocodingCacheMiss(t *testing.T) {
	repo := NewGeocodingCacheRepository(openTestDB(t))

	row, err := repo.Get(context.Background(), "nie gesehen")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if row != nil {
		t.Errorf("expected miss, got %+v", row)
	}
}

func TestGeocodingCacheExpiry(t *testing.T) {
	db := openTestDB(t)
	repo := NewGeocodingCacheRepository(db)
	ctx := context.Background()

	// Backdate a row beyond the TTL; reads must treat it as a miss.
	stale := time.Now().Add(-GeocodingCacheTTL - time.Hour)
	_, err := db.Exec(
		`INSERT INTO geocoding_cache (address, lat, lng, formatted_address, accuracy, method, cached_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"alte adresse", 52.0, 9.0, "", models.AccuracyCity, models.MethodIntelligent, stale)
	if err != nil {
		t.Fatalf("failed to seed stale row: %v", err)
	}

	row, err := repo.Get(ctx, "alte adresse")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if row != nil {
		t.Errorf("expired row must read as a miss, got %+v", row)
	}

	// The row still counts until replaced.
	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %d, want 1", count)
	}
}

func TestGeocodingCacheReplace(t *testing.T) {
	repo := NewGeocodingCacheRepository(openTestDB(t))
	ctx := context.Background()

	first := models.GeoPoint{Lat: 52.0, Lng: 9.0}
	second := models.GeoPoint{Lat: 53.0, Lng: 10.0}
	if err := repo.Put(ctx, "adresse", first, "", models.AccuracyCity, models.MethodIntelligent); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := repo.Put(ctx, "adresse", second, "", models.AccuracyRooftop, models.MethodProvider); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	row, err := repo.Get(ctx, "adresse")
	if err != nil || row == nil {
		t.Fatalf("Get failed: %v, row=%v", err, row)
	}
	if row.Lat != second.Lat || row.Accuracy != models.AccuracyRooftop {
		t.Errorf("row not replaced: %+v", row)
	}

	count, _ := repo.Count(ctx)
	if count != 1 {
		t.Errorf("Count = %d, want 1 after replace", count)
	}
}

func TestDistanceCachePutGet(t *testing.T) {
	repo := NewDistanceCacheRepository(openTestDB(t))
	ctx := context.Background()

	from := models.GeoPoint{Lat: 52.3759, Lng: 9.7320}
	to := models.GeoPoint{Lat: 52.5200, Lng: 13.4050}
	if err := repo.Put(ctx, from, to, 286.0, 3.25); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	row, err := repo.Get(ctx, from, to)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if row == nil {
		t.Fatal("Get missed a row that was just written")
	}
	if row.DistanceKm != 286.0 || row.DurationHours != 3.25 {
		t.Errorf("row = %+v, want 286 km / 3.25 h", row)
	}

	// The reverse direction is a different key.
	reverse, err := repo.Get(ctx, to, from)
	if err != nil {
		t.Fatalf("reverse Get failed: %v", err)
	}
	if reverse != nil {
		t.Errorf("reverse direction must miss, got %+v", reverse)
	}
}

func TestDistanceCacheGetSimilar(t *testing.T) {
	repo := NewDistanceCacheRepository(openTestDB(t))
	ctx := context.Background()

	from := models.GeoPoint{Lat: 52.3759, Lng: 9.7320}
	to := models.GeoPoint{Lat: 52.5200, Lng: 13.4050}
	if err := repo.Put(ctx, from, to, 286.0, 3.25); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Nearby endpoints inside the tolerance window reuse the row.
	nearFrom := models.GeoPoint{Lat: from.Lat + 0.01, Lng: from.Lng - 0.01}
	nearTo := models.GeoPoint{Lat: to.Lat - 0.015, Lng: to.Lng + 0.015}
	row, err := repo.GetSimilar(ctx, nearFrom, nearTo)
	if err != nil {
		t.Fatalf("GetSimilar failed: %v", err)
	}
	if row == nil {
		t.Fatal("GetSimilar missed a route within tolerance")
	}
	if row.DistanceKm != 286.0 {
		t.Errorf("DistanceKm = %v, want 286", row.DistanceKm)
	}

	// Outside the window there is no match.
	farFrom := models.GeoPoint{Lat: from.Lat + 0.05, Lng: from.Lng}
	row, err = repo.GetSimilar(ctx, farFrom, to)
	if err != nil {
		t.Fatalf("GetSimilar failed: %v", err)
	}
	if row != nil {
		t.Errorf("GetSimilar must miss outside tolerance, got %+v", row)
	}
}

func TestDistanceCacheCount(t *testing.T) {
	repo := NewDistanceCacheRepository(openTestDB(t))
	ctx := context.Background()

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Count = %d, want 0", count)
	}

	from := models.GeoPoint{Lat: 52.0, Lng: 9.0}
	for i := 0; i < 3; i++ {
		to := models.GeoPoint{Lat: 52.0 + float64(i), Lng: 9.0}
		if err := repo.Put(ctx, from, to, float64(i*100), float64(i)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	count, err = repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Count = %d, want 3", count)
	}
}
