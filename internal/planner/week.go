package planner

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/fieldcast/tourplan-backend-go/internal/geo"
	"github.com/fieldcast/tourplan-backend-go/internal/models"
)

// defaultFixedTime is used when a fixed appointment carries no time.
const defaultFixedTime = models.Minutes(8*60 + 30)

// WeekPlanner orchestrates a full Monday-Friday plan: geocoding,
// fixed-first placement, then region-clustered flexible placement under
// the weekly budget.
type WeekPlanner struct {
	cfg      Config
	geocoder *geo.Geocoder
	oracle   *geo.DistanceOracle
	day      *DayPlanner
}

// NewWeekPlanner creates a week planner for one config.
func NewWeekPlanner(cfg Config, geocoder *geo.Geocoder, oracle *geo.DistanceOracle) *WeekPlanner {
	return &WeekPlanner{
		cfg:      cfg,
		geocoder: geocoder,
		oracle:   oracle,
		day:      NewDayPlanner(cfg, oracle),
	}
}

// Plan builds the week. weekStart must be a Monday. The returned notes
// feed the report's optimizations list.
func (w *WeekPlanner) Plan(ctx context.Context, appointments []models.Appointment, weekStart time.Time) (*models.Week, []string, error) {
	if weekStart.Weekday() != time.Monday {
		return nil, nil, fmt.Errorf("week start %s is not a Monday", models.FormatDate(weekStart))
	}

	var notes []string
	candidates := w.resolveAll(ctx, appointments, &notes)

	week := &models.Week{WeekStart: weekStart}
	for i := 0; i < 5; i++ {
		week.Days[i] = &models.Day{
			DayName: models.GermanDayNames[i],
			Date:    weekStart.AddDate(0, 0, i),
		}
	}

	byRegion, fixed := ClusterByRegion(candidates)
	w.placeFixed(week, fixed, weekStart, &notes)

	// Flexible placement: one region per day, nearest region first,
	// topping up from later regions when a bucket runs dry.
	queues := make([][]Candidate, len(byRegion))
	for i := range byRegion {
		sortCandidates(byRegion[i])
		queues[i] = byRegion[i]
	}
	order := RegionOrder(w.cfg.HomeBase)

	var prevOvernight *models.Overnight
	budgetNoted := false
	for dayIdx := 0; dayIdx < 5; dayIdx++ {
		used := week.TotalHours()
		if used >= w.cfg.MaxWeekHours {
			if !budgetNoted {
				notes = append(notes, fmt.Sprintf("Wochenlimit von %.0f h erreicht, Planung gestoppt", w.cfg.MaxWeekHours))
				budgetNoted = true
			}
			// An open overnight still needs the drive home.
			if prevOvernight != nil {
				w.planDay(ctx, week.Days[dayIdx], nil, prevOvernight, dayIdx == 4, used)
				prevOvernight = week.Days[dayIdx].Overnight
			}
			continue
		}

		picked, rest := takeCandidates(queues, order, dayIdx, w.cfg.MaxCandidatesPerDay)
		queues = rest

		day := week.Days[dayIdx]
		isFriday := dayIdx == 4
		result := w.planDay(ctx, day, picked, prevOvernight, isFriday, used)
		notes = append(notes, result.Notes...)

		// Requeue what did not fit, ahead of untried candidates.
		if len(result.Remaining) > 0 {
			region := order[dayIdx%len(order)]
			queues[region] = append(append([]Candidate{}, result.Remaining...), queues[region]...)
		}

		prevOvernight = day.Overnight
	}

	return week, notes, nil
}

// planDay runs the day planner with the correct start location.
func (w *WeekPlanner) planDay(ctx context.Context, day *models.Day, candidates []Candidate, prevOvernight *models.Overnight, isFriday bool, weekUsed float64) DayResult {
	req := DayRequest{
		Day:           day,
		Candidates:    candidates,
		StartPoint:    w.cfg.HomeBase,
		StartLabel:    w.cfg.HomeCity,
		IsFriday:      isFriday,
		WeekHoursUsed: weekUsed,
	}
	if prevOvernight != nil {
		req.StartPoint = prevOvernight.Point
		req.StartLabel = prevOvernight.City
		req.FromHotel = true
	}
	return w.day.Plan(ctx, req)
}

// resolveAll geocodes every appointment that lacks coordinates and
// wraps them as candidates. Country-level resolutions are planned but
// flagged low-confidence.
func (w *WeekPlanner) resolveAll(ctx context.Context, appointments []models.Appointment, notes *[]string) []Candidate {
	candidates := make([]Candidate, 0, len(appointments))
	for _, a := range appointments {
		var point models.GeoPoint
		lowConfidence := false
		if a.HasCoordinates() {
			point = a.Point()
		} else {
			result := w.geocoder.Resolve(ctx, a.Address)
			point = result.Point
			if result.Accuracy == models.AccuracyCountry {
				lowConfidence = true
				*notes = append(*notes, fmt.Sprintf("Adresse %q nur landesweit auflösbar, Planung unsicher", a.Address))
			}
		}
		candidates = append(candidates, Candidate{
			Appointment:   a,
			Point:         point,
			Label:         candidateLabel(a),
			LowConfidence: lowConfidence,
		})
	}
	return candidates
}

// placeFixed pins fixed appointments onto their days. Appointments
// outside the week or colliding with an earlier fixed one are reported,
// not silently moved.
func (w *WeekPlanner) placeFixed(week *models.Week, fixed []Candidate, weekStart time.Time, notes *[]string) {
	for _, c := range fixed {
		date, err := models.ParseDate(c.Appointment.FixedDate)
		if err != nil {
			*notes = append(*notes, fmt.Sprintf("Fixer Termin %s hat ungültiges Datum %q", c.Appointment.ID, c.Appointment.FixedDate))
			continue
		}
		offset := int(date.Sub(weekStart).Hours() / 24)
		if offset < 0 || offset > 4 {
			*notes = append(*notes, fmt.Sprintf("Fixer Termin %s liegt außerhalb der Woche (%s)", c.Appointment.ID, c.Appointment.FixedDate))
			continue
		}

		start := defaultFixedTime
		if c.Appointment.FixedTime != "" {
			parsed, err := models.ParseClock(c.Appointment.FixedTime)
			if err != nil {
				log.Printf("WeekPlanner: invalid fixed time %q, using default: %v", c.Appointment.FixedTime, err)
			} else {
				start = models.SnapUp(parsed.Hours())
			}
		}

		seg := appointmentSegment(c, start, start.AddHours(w.cfg.AppointmentHours))
		if err := insertSegment(week.Days[offset], seg); err != nil {
			*notes = append(*notes, fmt.Sprintf("Fixer Termin %s kollidiert am %s um %s", c.Appointment.ID, c.Appointment.FixedDate, start))
		}
	}
}

// sortCandidates orders a region bucket: confirmed before proposals,
// then older pipeline entries first.
func sortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(a, b int) bool {
		ca, cb := candidates[a].Appointment, candidates[b].Appointment
		if (ca.Status == models.StatusConfirmed) != (cb.Status == models.StatusConfirmed) {
			return ca.Status == models.StatusConfirmed
		}
		return ca.PipelineDays > cb.PipelineDays
	})
}

// takeCandidates pulls up to max candidates for a day: primarily from
// the day's own region, then from later regions in traversal order.
func takeCandidates(queues [][]Candidate, order []int, dayIdx, max int) ([]Candidate, [][]Candidate) {
	out := make([][]Candidate, len(queues))
	copy(out, queues)

	var picked []Candidate
	for i := 0; i < len(order) && len(picked) < max; i++ {
		region := order[(dayIdx+i)%len(order)]
		for len(out[region]) > 0 && len(picked) < max {
			picked = append(picked, out[region][0])
			out[region] = out[region][1:]
		}
	}
	return picked, out
}

func candidateLabel(a models.Appointment) string {
	if city := geo.NormalizeAddress(a.Address).City; city != "" {
		if entry, ok := geo.LookupCity(city); ok {
			return entry.CanonicalName
		}
		return city
	}
	return a.Customer
}
