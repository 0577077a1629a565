package models

import (
	"fmt"
	"time"
)

// Segment types. A day is an ordered list of non-overlapping segments
// on the half-hour grid; code switches on Type instead of probing fields.
const (
	SegmentAppointment        = "appointment"
	SegmentDeparture          = "departure"
	SegmentDepartureFromHotel = "departure_from_hotel"
	SegmentTravel             = "travel"
	SegmentReturn             = "return"
	SegmentBreak              = "break"
)

// Segment is one scheduled block of a day.
type Segment struct {
	Type  string  `json:"type"`
	Start Minutes `json:"start"`
	End   Minutes `json:"end"`

	// Appointment fields
	AppointmentID string   `json:"appointment_id,omitempty"`
	Customer      string   `json:"customer,omitempty"`
	Address       string   `json:"address,omitempty"`
	Status        string   `json:"status,omitempty"`
	Fixed         bool     `json:"fixed,omitempty"`
	Location      GeoPoint `json:"location,omitempty"`

	// Travel fields
	FromLabel  string   `json:"from_label,omitempty"`
	ToLabel    string   `json:"to_label,omitempty"`
	From       GeoPoint `json:"from,omitempty"`
	To         GeoPoint `json:"to,omitempty"`
	DistanceKm float64  `json:"distance_km,omitempty"`
}

// IsTravel reports whether the segment is any kind of driving block.
func (s *Segment) IsTravel() bool {
	switch s.Type {
	case SegmentDeparture, SegmentDepartureFromHotel, SegmentTravel, SegmentReturn:
		return true
	}
	return false
}

// DurationHours is the segment length in fractional hours.
func (s *Segment) DurationHours() float64 {
	return (s.End - s.Start).Hours()
}

// Overlaps reports whether two segments intersect open-endedly.
func (s *Segment) Overlaps(other *Segment) bool {
	return s.Start < other.End && other.Start < s.End
}

// Overnight is a hotel stay closing a Mon-Thu day. A set overnight means
// the following day starts from Point instead of the home base.
type Overnight struct {
	City       string   `json:"city"`
	Point      GeoPoint `json:"point"`
	Reason     string   `json:"reason"`
	CheckIn    Minutes  `json:"check_in"`
	HotelLabel string   `json:"hotel_label"`
}

// Day is one workday of the plan.
type Day struct {
	DayName   string     `json:"day_name"`
	Date      time.Time  `json:"date"`
	Segments  []Segment  `json:"segments"`
	Overnight *Overnight `json:"overnight,omitempty"`
}

// WorkHours is the sum of appointment durations.
func (d *Day) WorkHours() float64 {
	var h float64
	for i := range d.Segments {
		if d.Segments[i].Type == SegmentAppointment {
			h += d.Segments[i].DurationHours()
		}
	}
	return h
}

// TravelHours is the sum of travel and break durations.
func (d *Day) TravelHours() float64 {
	var h float64
	for i := range d.Segments {
		s := &d.Segments[i]
		if s.IsTravel() || s.Type == SegmentBreak {
			h += s.DurationHours()
		}
	}
	return h
}

// TotalHours is the full day load: work + travel + breaks.
func (d *Day) TotalHours() float64 {
	return d.WorkHours() + d.TravelHours()
}

// BreakHours is the sum of already inserted break durations.
func (d *Day) BreakHours() float64 {
	var h float64
	for i := range d.Segments {
		if d.Segments[i].Type == SegmentBreak {
			h += d.Segments[i].DurationHours()
		}
	}
	return h
}

// LastSegment returns the latest-ending segment, or nil for an empty day.
func (d *Day) LastSegment() *Segment {
	if len(d.Segments) == 0 {
		return nil
	}
	return &d.Segments[len(d.Segments)-1]
}

// Week is the internal planning result: five days anchored at a Monday.
type Week struct {
	WeekStart time.Time `json:"week_start"`
	Days      [5]*Day   `json:"days"`
}

// TotalHours sums the day loads across the week.
func (w *Week) TotalHours() float64 {
	var h float64
	for _, d := range w.Days {
		h += d.TotalHours()
	}
	return h
}

// WeekStats summarizes a rendered plan.
type WeekStats struct {
	TotalAppointments    int     `json:"totalAppointments"`
	ConfirmedAppointments int    `json:"confirmedAppointments"`
	ProposalAppointments int     `json:"proposalAppointments"`
	TotalTravelTime      float64 `json:"totalTravelTime"`
	WorkDays             int     `json:"workDays"`
	OvernightStays       int     `json:"overnightStays"`
}

// SegmentView is a rendered segment with HH:MM-prefixed label.
type SegmentView struct {
	Start      string  `json:"start"`
	End        string  `json:"end"`
	Type       string  `json:"type"`
	Label      string  `json:"label"`
	DistanceKm float64 `json:"distance_km,omitempty"`
}

// DayView is a rendered day of the plan.
type DayView struct {
	DayName     string        `json:"dayName"`
	Date        string        `json:"date"`
	Segments    []SegmentView `json:"segments"`
	WorkHours   float64       `json:"workHours"`
	TravelHours float64       `json:"travelHours"`
	TotalHours  float64       `json:"totalHours"`
	Overnight   *Overnight    `json:"overnight,omitempty"`
}

// WeekPlan is the structure handed back to callers.
type WeekPlan struct {
	WeekStart     string    `json:"weekStart"`
	Days          []DayView `json:"days"`
	TotalHours    float64   `json:"totalHours"`
	Optimizations []string  `json:"optimizations"`
	Stats         WeekStats `json:"stats"`
	GeneratedAt   string    `json:"generatedAt"`
}

// GermanDayNames maps weekday offsets from Monday to German day names.
var GermanDayNames = [5]string{"Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag"}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// TimeRange renders a segment interval as "HH:MM-HH:MM".
func (s *Segment) TimeRange() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}
