package spatial

import (
	"github.com/golang/geo/s2"

	"github.com/fieldcast/tourplan-backend-go/internal/models"
)

// EarthRadiusKm is the mean earth radius used by the great-circle helper.
const EarthRadiusKm = 6371.0

// HaversineKm calculates the great-circle distance between two points
// in kilometers.
func HaversineKm(a, b models.GeoPoint) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lng)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// SamePoint reports whether two points are identical at full precision.
func SamePoint(a, b models.GeoPoint) bool {
	return a.Lat == b.Lat && a.Lng == b.Lng
}
