package planner

import (
	"sort"

	"github.com/fieldcast/tourplan-backend-go/internal/models"
	"github.com/fieldcast/tourplan-backend-go/internal/spatial"
)

// Region is one of the five fixed clusters used to bias day-to-day
// geographic locality.
type Region struct {
	Name     string
	Centroid models.GeoPoint
}

// Regions in declaration order; ties in clustering break toward the
// earlier entry.
var Regions = []Region{
	{"Nord", models.GeoPoint{Lat: 53.8, Lng: 9.9}},
	{"Ost", models.GeoPoint{Lat: 52.4, Lng: 13.3}},
	{"West", models.GeoPoint{Lat: 51.2, Lng: 7.5}},
	{"Süd", models.GeoPoint{Lat: 48.6, Lng: 11.5}},
	{"Mitte", models.GeoPoint{Lat: 50.5, Lng: 9.0}},
}

// Candidate is an appointment with resolved coordinates, ready for
// placement.
type Candidate struct {
	Appointment   models.Appointment
	Point         models.GeoPoint
	Label         string // city or customer label for travel segments
	LowConfidence bool   // resolution bottomed out at country accuracy
}

// ClusterByRegion assigns every flexible candidate to the region with
// the nearest centroid. Fixed appointments are returned separately;
// their day is already determined.
func ClusterByRegion(candidates []Candidate) (byRegion [][]Candidate, fixed []Candidate) {
	byRegion = make([][]Candidate, len(Regions))
	for _, c := range candidates {
		if c.Appointment.IsFixed {
			fixed = append(fixed, c)
			continue
		}
		best := 0
		bestDist := spatial.HaversineKm(c.Point, Regions[0].Centroid)
		for i := 1; i < len(Regions); i++ {
			if d := spatial.HaversineKm(c.Point, Regions[i].Centroid); d < bestDist {
				best = i
				bestDist = d
			}
		}
		byRegion[best] = append(byRegion[best], c)
	}
	return byRegion, fixed
}

// RegionOrder returns region indices sorted by ascending great-circle
// distance of their centroid from the given base.
func RegionOrder(base models.GeoPoint) []int {
	order := make([]int, len(Regions))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return spatial.HaversineKm(base, Regions[order[a]].Centroid) <
			spatial.HaversineKm(base, Regions[order[b]].Centroid)
	})
	return order
}
