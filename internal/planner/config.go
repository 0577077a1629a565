package planner

import (
	"github.com/fieldcast/tourplan-backend-go/internal/models"
)

// Home base: the driver starts and ends the week in Hannover.
var (
	HomeBase = models.GeoPoint{Lat: 52.3759, Lng: 9.7320}
)

// HomeCity is the label used for home-base travel segments.
const HomeCity = "Hannover"

// Config carries every planning knob. It is immutable during a
// planning call; presets are the only supported variants.
type Config struct {
	WorkStart            models.Minutes // earliest departure
	MaxDayHours          float64        // work + travel + breaks per day
	MaxWeekHours         float64        // work + travel + breaks per week
	AppointmentHours     float64        // fixed on-site duration
	OvernightThresholdKm float64        // farther from home than this ends in a hotel
	FridayReturnBy       models.Minutes // hard deadline for the Friday return
	MaxCandidatesPerDay  int            // flexible appointments offered to one day
	HomeBase             models.GeoPoint
	HomeCity             string
}

// Strict40h10h is the default preset: legal 40 h week, 10 h days,
// 08:30 starts.
var Strict40h10h = Config{
	WorkStart:            8*60 + 30,
	MaxDayHours:          10,
	MaxWeekHours:         40,
	AppointmentHours:     3,
	OvernightThresholdKm: 120,
	FridayReturnBy:       17 * 60,
	MaxCandidatesPerDay:  6,
	HomeBase:             HomeBase,
	HomeCity:             HomeCity,
}

// Flex50h14h trades legality for throughput: early starts, 14 h days,
// 50 h weeks. Operational override, not the default.
var Flex50h14h = Config{
	WorkStart:            7 * 60,
	MaxDayHours:          14,
	MaxWeekHours:         50,
	AppointmentHours:     3,
	OvernightThresholdKm: 120,
	FridayReturnBy:       17 * 60,
	MaxCandidatesPerDay:  6,
	HomeBase:             HomeBase,
	HomeCity:             HomeCity,
}

// PresetByName maps a preset token to its config. Unknown names fall
// back to the strict preset.
func PresetByName(name string) Config {
	switch name {
	case "flex50h14h":
		return Flex50h14h
	default:
		return Strict40h10h
	}
}

// RequiredBreakHours returns the legally required cumulative break time
// for a given elapsed work+travel load.
func RequiredBreakHours(elapsed float64) float64 {
	switch {
	case elapsed > 9:
		return 1.0
	case elapsed > 6:
		return 0.5
	default:
		return 0
	}
}
