package service

import (
	"context"
	"fmt"
	"log"

	"github.com/fieldcast/tourplan-backend-go/internal/geo"
	"github.com/fieldcast/tourplan-backend-go/internal/models"
	"github.com/fieldcast/tourplan-backend-go/internal/planner"
)

// PlanService builds weekly driving plans from appointment lists.
type PlanService struct {
	geocoder *geo.Geocoder
	oracle   *geo.DistanceOracle
	preset   planner.Config
}

// NewPlanService creates a new plan service with a default preset.
func NewPlanService(geocoder *geo.Geocoder, oracle *geo.DistanceOracle, preset planner.Config) *PlanService {
	return &PlanService{
		geocoder: geocoder,
		oracle:   oracle,
		preset:   preset,
	}
}

// PlanWeek plans Monday through Friday. weekStart is "YYYY-MM-DD" and
// must fall on a Monday. An empty presetName uses the service default.
func (s *PlanService) PlanWeek(ctx context.Context, weekStart string, appointments []models.Appointment, presetName string) (*models.WeekPlan, error) {
	start, err := models.ParseDate(weekStart)
	if err != nil {
		return nil, fmt.Errorf("invalid weekStart %q: %w", weekStart, err)
	}

	cfg := s.preset
	if presetName != "" {
		cfg = planner.PresetByName(presetName)
	}

	s.prewarm(ctx, cfg, appointments)

	week, notes, err := planner.NewWeekPlanner(cfg, s.geocoder, s.oracle).Plan(ctx, appointments, start)
	if err != nil {
		return nil, err
	}

	return planner.BuildWeekPlan(week, notes), nil
}

// prewarm batches home-to-appointment distances into the cache so the
// planner's leg lookups mostly hit memory.
func (s *PlanService) prewarm(ctx context.Context, cfg planner.Config, appointments []models.Appointment) {
	var points []models.GeoPoint
	for _, a := range appointments {
		if a.HasCoordinates() {
			points = append(points, a.Point())
		}
	}
	if len(points) == 0 {
		return
	}
	log.Printf("PlanService: prewarming %d distances from %s", len(points), cfg.HomeCity)
	s.oracle.Warm(ctx, cfg.HomeBase, points)
}
