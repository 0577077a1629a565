package planner

import (
	"context"
	"strings"
	"testing"

	"github.com/fieldcast/tourplan-backend-go/internal/geo"
	"github.com/fieldcast/tourplan-backend-go/internal/models"
)

func newTestDay(name string) *models.Day {
	return &models.Day{DayName: name}
}

func offlineDayPlanner() *DayPlanner {
	return NewDayPlanner(Strict40h10h, geo.NewDistanceOracle(nil, nil))
}

func segmentTypes(day *models.Day) []string {
	types := make([]string, 0, len(day.Segments))
	for i := range day.Segments {
		types = append(types, day.Segments[i].Type)
	}
	return types
}

func TestPlanSequenceDistantStopEndsInOvernight(t *testing.T) {
	p := offlineDayPlanner()
	day := newTestDay("Montag")

	result := p.Plan(context.Background(), DayRequest{
		Day:        day,
		Candidates: []Candidate{candidateAt("berlin", 52.5200, 13.4050, false)},
		StartPoint: HomeBase,
		StartLabel: HomeCity,
	})

	if len(result.Remaining) != 0 {
		t.Fatalf("Remaining = %v, want empty", result.Remaining)
	}
	if day.Overnight == nil {
		t.Fatal("distant stop on a Monday must end in an overnight")
	}
	if day.Overnight.City != "berlin" {
		t.Errorf("Overnight.City = %q, want berlin", day.Overnight.City)
	}
	if !strings.Contains(day.Overnight.Reason, "km bis Hannover") {
		t.Errorf("Overnight.Reason = %q, want distance-based reason", day.Overnight.Reason)
	}

	types := segmentTypes(day)
	if len(types) == 0 || types[0] != models.SegmentDeparture {
		t.Errorf("first segment = %v, want departure", types)
	}
	if !hasAppointments(day) {
		t.Error("appointment segment missing")
	}
	for i := range day.Segments {
		s := &day.Segments[i]
		if !s.Start.OnGrid() || !s.End.OnGrid() {
			t.Errorf("segment %s %s off the half-hour grid", s.Type, s.TimeRange())
		}
	}
}

func TestPlanSequenceNearStopReturnsHome(t *testing.T) {
	p := offlineDayPlanner()
	day := newTestDay("Freitag")

	p.Plan(context.Background(), DayRequest{
		Day:        day,
		Candidates: []Candidate{candidateAt("hildesheim", 52.1508, 9.9513, false)},
		StartPoint: HomeBase,
		StartLabel: HomeCity,
		IsFriday:   true,
	})

	if day.Overnight != nil {
		t.Fatalf("near Friday stop must not need an overnight: %+v", day.Overnight)
	}
	last := day.LastSegment()
	if last == nil || last.Type != models.SegmentReturn {
		t.Fatalf("last segment = %+v, want return", last)
	}
	if last.End > Strict40h10h.FridayReturnBy {
		t.Errorf("Friday return at %s, must be by %s", last.End, Strict40h10h.FridayReturnBy)
	}
	if last.ToLabel != HomeCity {
		t.Errorf("return ToLabel = %q, want %s", last.ToLabel, HomeCity)
	}
}

func TestPlanSequenceFridayPopsDistantFlexible(t *testing.T) {
	p := offlineDayPlanner()
	day := newTestDay("Freitag")

	result := p.Plan(context.Background(), DayRequest{
		Day:        day,
		Candidates: []Candidate{candidateAt("muenchen", 48.1351, 11.5820, false)},
		StartPoint: HomeBase,
		StartLabel: HomeCity,
		IsFriday:   true,
	})

	if hasAppointments(day) {
		t.Error("a stop that breaks the Friday deadline must be popped")
	}
	if len(result.Remaining) != 1 || result.Remaining[0].Appointment.ID != "muenchen" {
		t.Errorf("Remaining = %v, want the popped München appointment", result.Remaining)
	}
	if day.Overnight != nil {
		t.Errorf("Friday never ends in an overnight: %+v", day.Overnight)
	}
}

func TestPlanSequenceInsertsLegalBreak(t *testing.T) {
	p := offlineDayPlanner()
	day := newTestDay("Montag")

	// One distant stop pushes the load past six hours.
	p.Plan(context.Background(), DayRequest{
		Day:        day,
		Candidates: []Candidate{candidateAt("berlin", 52.5200, 13.4050, false)},
		StartPoint: HomeBase,
		StartLabel: HomeCity,
	})

	if day.BreakHours() < 0.5 {
		t.Errorf("BreakHours = %.1f, want at least 0.5 for a >6h day", day.BreakHours())
	}
}

func TestPlanGapFillAroundFixedAppointment(t *testing.T) {
	p := offlineDayPlanner()
	day := newTestDay("Dienstag")

	fixed := candidateAt("braunschweig", 52.2689, 10.5268, true)
	fixedSeg := appointmentSegment(fixed, 11*60, 14*60)
	if err := insertSegment(day, fixedSeg); err != nil {
		t.Fatalf("failed to seed fixed segment: %v", err)
	}

	result := p.Plan(context.Background(), DayRequest{
		Day:        day,
		Candidates: []Candidate{candidateAt("wolfenbuettel", 52.1625, 10.5372, false)},
		StartPoint: HomeBase,
		StartLabel: HomeCity,
	})

	if len(result.Remaining) != 0 {
		t.Fatalf("Remaining = %v, want the flexible stop placed", result.Remaining)
	}

	// Fixed appointment keeps its slot.
	var fixedFound bool
	for i := range day.Segments {
		s := &day.Segments[i]
		if s.Type == models.SegmentAppointment && s.AppointmentID == "braunschweig" {
			fixedFound = true
			if s.Start != 11*60 || s.End != 14*60 {
				t.Errorf("fixed appointment moved to %s", s.TimeRange())
			}
		}
	}
	if !fixedFound {
		t.Fatal("fixed appointment segment missing")
	}

	// An inbound leg precedes the first fixed appointment.
	if types := segmentTypes(day); types[0] != models.SegmentDeparture {
		t.Errorf("first segment = %v, want departure leg", types)
	}

	// No overlaps anywhere.
	for i := range day.Segments {
		for j := i + 1; j < len(day.Segments); j++ {
			if day.Segments[i].Overlaps(&day.Segments[j]) {
				t.Errorf("segments overlap: %s vs %s", day.Segments[i].TimeRange(), day.Segments[j].TimeRange())
			}
		}
	}
}

func TestPlanSequenceReturnLegStaysWithinWeekBudget(t *testing.T) {
	p := offlineDayPlanner()
	laatzen := candidateAt("laatzen", 52.3667, 9.7333, false)

	// 3.5 h left in the week: travel out, the appointment, and the
	// return leg home add up to 4 h, so the stop must not be placed.
	day := newTestDay("Donnerstag")
	result := p.Plan(context.Background(), DayRequest{
		Day:           day,
		Candidates:    []Candidate{laatzen},
		StartPoint:    HomeBase,
		StartLabel:    HomeCity,
		WeekHoursUsed: 36.5,
	})
	if len(result.Remaining) != 1 {
		t.Fatalf("Remaining = %v, want the stop deferred", result.Remaining)
	}
	if len(day.Segments) != 0 {
		t.Fatalf("segments = %v, want an empty day", segmentTypes(day))
	}
	if 36.5+day.TotalHours() > Strict40h10h.MaxWeekHours {
		t.Errorf("week total %.2f exceeds %.0f h", 36.5+day.TotalHours(), Strict40h10h.MaxWeekHours)
	}

	// With 4 h left the same stop fits exactly, return leg included.
	day = newTestDay("Donnerstag")
	result = p.Plan(context.Background(), DayRequest{
		Day:           day,
		Candidates:    []Candidate{laatzen},
		StartPoint:    HomeBase,
		StartLabel:    HomeCity,
		WeekHoursUsed: 36,
	})
	if len(result.Remaining) != 0 {
		t.Fatalf("Remaining = %v, want the stop placed", result.Remaining)
	}
	last := day.LastSegment()
	if last == nil || last.Type != models.SegmentReturn {
		t.Fatalf("last segment = %+v, want return", last)
	}
	if 36+day.TotalHours() > Strict40h10h.MaxWeekHours {
		t.Errorf("week total %.2f exceeds %.0f h", 36+day.TotalHours(), Strict40h10h.MaxWeekHours)
	}
}

func TestPlanGapFillFixedOnlyDayGetsBreak(t *testing.T) {
	p := offlineDayPlanner()
	day := newTestDay("Mittwoch")

	morning := candidateAt("braunschweig", 52.2689, 10.5268, true)
	afternoon := candidateAt("braunschweig-2", 52.2689, 10.5268, true)
	if err := insertSegment(day, appointmentSegment(morning, 9*60, 12*60)); err != nil {
		t.Fatalf("failed to seed fixed segment: %v", err)
	}
	if err := insertSegment(day, appointmentSegment(afternoon, 12*60+30, 15*60+30)); err != nil {
		t.Fatalf("failed to seed fixed segment: %v", err)
	}

	// No flexible candidates at all: the break must still appear on a
	// day loaded past six hours by fixed appointments alone.
	p.Plan(context.Background(), DayRequest{
		Day:        day,
		StartPoint: HomeBase,
		StartLabel: HomeCity,
	})

	if day.BreakHours() < 0.5 {
		t.Errorf("BreakHours = %.1f, want at least 0.5 for a >6h day", day.BreakHours())
	}
	var breakSeg *models.Segment
	for i := range day.Segments {
		if day.Segments[i].Type == models.SegmentBreak {
			breakSeg = &day.Segments[i]
		}
	}
	if breakSeg == nil {
		t.Fatal("break segment missing")
	}
	if breakSeg.Start < 15*60+30 {
		t.Errorf("break at %s, want it after the last fixed appointment", breakSeg.TimeRange())
	}
	if day.TotalHours() > Strict40h10h.MaxDayHours {
		t.Errorf("day total %.2f exceeds %.0f h", day.TotalHours(), Strict40h10h.MaxDayHours)
	}
}

func TestPlanEmptyDayFromHotelDrivesHome(t *testing.T) {
	p := offlineDayPlanner()
	day := newTestDay("Donnerstag")

	p.Plan(context.Background(), DayRequest{
		Day:        day,
		StartPoint: models.GeoPoint{Lat: 48.1351, Lng: 11.5820},
		StartLabel: "München",
		FromHotel:  true,
	})

	if len(day.Segments) != 1 {
		t.Fatalf("segments = %v, want a single return leg", segmentTypes(day))
	}
	if day.Segments[0].Type != models.SegmentReturn {
		t.Errorf("segment type = %q, want return", day.Segments[0].Type)
	}
}

func TestDayBudgetRespectsWeekRemainder(t *testing.T) {
	p := offlineDayPlanner()
	if got := p.dayBudget(DayRequest{WeekHoursUsed: 36}); got != 4 {
		t.Errorf("dayBudget with 36h used = %.1f, want 4", got)
	}
	if got := p.dayBudget(DayRequest{WeekHoursUsed: 45}); got != 0 {
		t.Errorf("dayBudget past the week cap = %.1f, want 0", got)
	}
	if got := p.dayBudget(DayRequest{}); got != Strict40h10h.MaxDayHours {
		t.Errorf("fresh dayBudget = %.1f, want %.1f", got, Strict40h10h.MaxDayHours)
	}
}

func TestInsertSegmentRefusesOverlap(t *testing.T) {
	day := newTestDay("Montag")
	a := models.Segment{Type: models.SegmentAppointment, Start: 9 * 60, End: 12 * 60}
	b := models.Segment{Type: models.SegmentAppointment, Start: 11 * 60, End: 13 * 60}

	if err := insertSegment(day, a); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if err := insertSegment(day, b); err == nil {
		t.Fatal("overlapping insert must fail")
	}

	// Adjacent segments are fine.
	c := models.Segment{Type: models.SegmentBreak, Start: 12 * 60, End: 12*60 + 30}
	if err := insertSegment(day, c); err != nil {
		t.Errorf("adjacent insert failed: %v", err)
	}
}
