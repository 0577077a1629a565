package models

import (
	"fmt"
	"math"
)

// Minutes is a time of day expressed as minutes since midnight.
// All scheduled times in a plan are multiples of the half-hour grid.
type Minutes int

// GridStep is the scheduling grid in minutes.
const GridStep = 30

// String formats the time as HH:MM.
func (m Minutes) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// Hours converts the time of day to fractional hours.
func (m Minutes) Hours() float64 {
	return float64(m) / 60.0
}

// AddHours adds a fractional-hour duration and snaps the result up to the grid.
func (m Minutes) AddHours(h float64) Minutes {
	return SnapUp(m.Hours() + h)
}

// SnapUp rounds a fractional-hour clock value up to the next half-hour gridpoint.
func SnapUp(hours float64) Minutes {
	mins := hours * 60.0
	snapped := math.Ceil(mins/GridStep) * GridStep
	return Minutes(int(snapped))
}

// SnapNearest rounds a fractional-hour clock value to the closest gridpoint.
func SnapNearest(hours float64) Minutes {
	mins := hours * 60.0
	snapped := math.Round(mins/GridStep) * GridStep
	return Minutes(int(snapped))
}

// ParseClock parses a HH:MM string into minutes since midnight.
func ParseClock(s string) (Minutes, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value out of range: %q", s)
	}
	return Minutes(h*60 + m), nil
}

// OnGrid reports whether the time is an exact multiple of the half-hour grid.
func (m Minutes) OnGrid() bool {
	return int(m)%GridStep == 0
}
