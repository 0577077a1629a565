package planner

import (
	"testing"

	"github.com/fieldcast/tourplan-backend-go/internal/models"
)

func candidateAt(id string, lat, lng float64, fixed bool) Candidate {
	return Candidate{
		Appointment: models.Appointment{ID: id, Customer: id, IsFixed: fixed},
		Point:       models.GeoPoint{Lat: lat, Lng: lng},
		Label:       id,
	}
}

func regionIndex(t *testing.T, name string) int {
	t.Helper()
	for i, r := range Regions {
		if r.Name == name {
			return i
		}
	}
	t.Fatalf("unknown region %q", name)
	return -1
}

func TestClusterByRegion(t *testing.T) {
	candidates := []Candidate{
		candidateAt("hamburg", 53.5511, 9.9937, false),
		candidateAt("berlin", 52.5200, 13.4050, false),
		candidateAt("koeln", 50.9375, 6.9603, false),
		candidateAt("muenchen", 48.1351, 11.5820, false),
		candidateAt("frankfurt", 50.1109, 8.6821, false),
		candidateAt("fixed-kassel", 51.3127, 9.4797, true),
	}

	byRegion, fixed := ClusterByRegion(candidates)

	if len(fixed) != 1 || fixed[0].Appointment.ID != "fixed-kassel" {
		t.Fatalf("fixed = %+v, want the Kassel appointment alone", fixed)
	}

	expect := map[string]string{
		"hamburg":   "Nord",
		"berlin":    "Ost",
		"koeln":     "West",
		"muenchen":  "Süd",
		"frankfurt": "Mitte",
	}
	for id, region := range expect {
		idx := regionIndex(t, region)
		found := false
		for _, c := range byRegion[idx] {
			if c.Appointment.ID == id {
				found = true
			}
		}
		if !found {
			t.Errorf("%s not clustered into %s: %v", id, region, byRegion[idx])
		}
	}
}

func TestRegionOrderFromHannover(t *testing.T) {
	order := RegionOrder(HomeBase)
	if len(order) != len(Regions) {
		t.Fatalf("order has %d entries, want %d", len(order), len(Regions))
	}

	if Regions[order[0]].Name != "Nord" {
		t.Errorf("nearest region from Hannover = %s, want Nord", Regions[order[0]].Name)
	}
	if Regions[order[len(order)-1]].Name != "Süd" {
		t.Errorf("farthest region from Hannover = %s, want Süd", Regions[order[len(order)-1]].Name)
	}

	seen := make(map[int]bool)
	for _, idx := range order {
		if seen[idx] {
			t.Fatalf("region %d listed twice", idx)
		}
		seen[idx] = true
	}
}
