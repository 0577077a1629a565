package planner

import (
	"strings"
	"testing"
	"time"

	"github.com/fieldcast/tourplan-backend-go/internal/models"
)

func TestBuildWeekPlan(t *testing.T) {
	week := &models.Week{WeekStart: monday2026}
	for i := 0; i < 5; i++ {
		week.Days[i] = &models.Day{
			DayName: models.GermanDayNames[i],
			Date:    monday2026.AddDate(0, 0, i),
		}
	}

	day := week.Days[0]
	day.Segments = []models.Segment{
		{Type: models.SegmentDeparture, Start: 8*60 + 30, End: 10 * 60, FromLabel: "Hannover", ToLabel: "Kassel", DistanceKm: 164},
		{Type: models.SegmentAppointment, Start: 10 * 60, End: 13 * 60, Customer: "Kunde A", Address: "Kassel", Status: models.StatusConfirmed},
		{Type: models.SegmentBreak, Start: 13 * 60, End: 13*60 + 30},
		{Type: models.SegmentAppointment, Start: 13*60 + 30, End: 16*60 + 30, Customer: "Kunde B", Address: "Kassel", Status: models.StatusProposal},
	}
	day.Overnight = &models.Overnight{City: "Kassel", Reason: "164 km bis Hannover"}

	plan := BuildWeekPlan(week, []string{"Hinweis"})

	if plan.WeekStart != "2026-08-24" {
		t.Errorf("WeekStart = %q, want 2026-08-24", plan.WeekStart)
	}
	if len(plan.Days) != 5 {
		t.Fatalf("Days = %d, want 5", len(plan.Days))
	}
	if plan.Days[0].DayName != "Montag" {
		t.Errorf("DayName = %q, want Montag", plan.Days[0].DayName)
	}

	if plan.Stats.TotalAppointments != 2 {
		t.Errorf("TotalAppointments = %d, want 2", plan.Stats.TotalAppointments)
	}
	if plan.Stats.ConfirmedAppointments != 1 || plan.Stats.ProposalAppointments != 1 {
		t.Errorf("confirmed/proposal = %d/%d, want 1/1",
			plan.Stats.ConfirmedAppointments, plan.Stats.ProposalAppointments)
	}
	if plan.Stats.WorkDays != 1 {
		t.Errorf("WorkDays = %d, want 1", plan.Stats.WorkDays)
	}
	if plan.Stats.OvernightStays != 1 {
		t.Errorf("OvernightStays = %d, want 1", plan.Stats.OvernightStays)
	}

	if len(plan.Optimizations) != 1 || plan.Optimizations[0] != "Hinweis" {
		t.Errorf("Optimizations = %v", plan.Optimizations)
	}
	if _, err := time.Parse(time.RFC3339, plan.GeneratedAt); err != nil {
		t.Errorf("GeneratedAt %q is not RFC3339: %v", plan.GeneratedAt, err)
	}

	labels := make([]string, 0, len(plan.Days[0].Segments))
	for _, s := range plan.Days[0].Segments {
		labels = append(labels, s.Label)
	}
	if !strings.Contains(labels[0], "Abfahrt Hannover nach Kassel") {
		t.Errorf("departure label = %q", labels[0])
	}
	if !strings.Contains(labels[1], "Termin: Kunde A") {
		t.Errorf("appointment label = %q", labels[1])
	}
	if !strings.Contains(labels[2], "Pause (30 min)") {
		t.Errorf("break label = %q", labels[2])
	}
}

func TestBuildWeekPlanEmptyOptimizations(t *testing.T) {
	week := &models.Week{WeekStart: monday2026}
	for i := 0; i < 5; i++ {
		week.Days[i] = &models.Day{DayName: models.GermanDayNames[i]}
	}

	plan := BuildWeekPlan(week, nil)
	if plan.Optimizations == nil {
		t.Error("Optimizations must be an empty slice, not nil")
	}
	if plan.Stats.WorkDays != 0 {
		t.Errorf("WorkDays = %d, want 0", plan.Stats.WorkDays)
	}
}
