package models

import (
	"fmt"
	"time"
)

// Appointment status tokens (localized, used verbatim on the wire).
const (
	StatusConfirmed = "bestätigt"
	StatusProposal  = "vorschlag"
)

// Appointment priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Appointment is an on-site customer visit to be scheduled. Appointments
// are read-only inputs to the planner; fixed ones are bound to an
// explicit date (and optionally a half-hour time), flexible ones may be
// placed anywhere in the week.
type Appointment struct {
	ID           string   `json:"id"`
	Customer     string   `json:"customer"`
	Address      string   `json:"address"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	Status       string   `json:"status"`
	Priority     string   `json:"priority"`
	PipelineDays int      `json:"pipeline_days"`
	IsFixed      bool     `json:"is_fixed"`
	FixedDate    string   `json:"fixed_date,omitempty"` // YYYY-MM-DD
	FixedTime    string   `json:"fixed_time,omitempty"` // HH:MM, half-hour grid
	Notes        string   `json:"notes,omitempty"`
}

// HasCoordinates reports whether the appointment carries precomputed coordinates.
func (a *Appointment) HasCoordinates() bool {
	return a.Lat != nil && a.Lng != nil
}

// Point returns the precomputed coordinates. Only valid if HasCoordinates.
func (a *Appointment) Point() GeoPoint {
	return GeoPoint{Lat: *a.Lat, Lng: *a.Lng}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
