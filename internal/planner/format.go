package planner

import (
	"fmt"
	"time"

	"github.com/fieldcast/tourplan-backend-go/internal/models"
)

// BuildWeekPlan renders the internal week into the caller-facing
// report: HH:MM-prefixed segment entries, totals, diagnostics, stats.
func BuildWeekPlan(week *models.Week, optimizations []string) *models.WeekPlan {
	plan := &models.WeekPlan{
		WeekStart:     models.FormatDate(week.WeekStart),
		Optimizations: optimizations,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if plan.Optimizations == nil {
		plan.Optimizations = []string{}
	}

	var stats models.WeekStats
	for _, day := range week.Days {
		view := models.DayView{
			DayName:     day.DayName,
			Date:        models.FormatDate(day.Date),
			Segments:    make([]models.SegmentView, 0, len(day.Segments)),
			WorkHours:   day.WorkHours(),
			TravelHours: day.TravelHours(),
			TotalHours:  day.TotalHours(),
			Overnight:   day.Overnight,
		}

		for i := range day.Segments {
			s := &day.Segments[i]
			view.Segments = append(view.Segments, models.SegmentView{
				Start:      s.Start.String(),
				End:        s.End.String(),
				Type:       s.Type,
				Label:      segmentText(s),
				DistanceKm: s.DistanceKm,
			})

			if s.Type == models.SegmentAppointment {
				stats.TotalAppointments++
				switch s.Status {
				case models.StatusConfirmed:
					stats.ConfirmedAppointments++
				case models.StatusProposal:
					stats.ProposalAppointments++
				}
			}
		}

		if len(day.Segments) > 0 {
			stats.WorkDays++
		}
		if day.Overnight != nil {
			stats.OvernightStays++
		}
		stats.TotalTravelTime += day.TravelHours()

		plan.Days = append(plan.Days, view)
		plan.TotalHours += day.TotalHours()
	}

	plan.Stats = stats
	return plan
}

// segmentText renders one segment as a HH:MM-prefixed report line.
func segmentText(s *models.Segment) string {
	switch s.Type {
	case models.SegmentAppointment:
		return fmt.Sprintf("%s Termin: %s (%s)", s.Start, s.Customer, s.Address)
	case models.SegmentDeparture:
		return fmt.Sprintf("%s Abfahrt %s nach %s (%.0f km)", s.Start, s.FromLabel, s.ToLabel, s.DistanceKm)
	case models.SegmentDepartureFromHotel:
		return fmt.Sprintf("%s Abfahrt vom Hotel %s nach %s (%.0f km)", s.Start, s.FromLabel, s.ToLabel, s.DistanceKm)
	case models.SegmentTravel:
		return fmt.Sprintf("%s Fahrt %s nach %s (%.0f km)", s.Start, s.FromLabel, s.ToLabel, s.DistanceKm)
	case models.SegmentReturn:
		return fmt.Sprintf("%s Rückfahrt nach %s (%.0f km)", s.Start, s.ToLabel, s.DistanceKm)
	case models.SegmentBreak:
		return fmt.Sprintf("%s Pause (%.0f min)", s.Start, s.DurationHours()*60)
	default:
		return fmt.Sprintf("%s %s", s.Start, s.Type)
	}
}
