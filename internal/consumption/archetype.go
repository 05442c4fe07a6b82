package consumption

import (
	"math/rand"

	"pv-simulator/internal/model"
)

// DaySegments are relative load weights for the four parts of a day.
type DaySegments struct {
	Night   [6]float64 `json:"night" yaml:"night"`     // 00-05
	Morning [3]float64 `json:"morning" yaml:"morning"` // 06-08
	Day     [9]float64 `json:"day" yaml:"day"`         // 09-17
	Evening [6]float64 `json:"evening" yaml:"evening"` // 18-23
}

// Hours flattens the segments into a 24-hour pattern.
func (s DaySegments) Hours() [24]float64 {
	var out [24]float64
	i := 0
	for _, seg := range [][]float64{s.Night[:], s.Morning[:], s.Day[:], s.Evening[:]} {
		i += copy(out[i:], seg)
	}
	return out
}

// ArchetypeProfile is one occupancy pattern with separate weekday and weekend shapes.
type ArchetypeProfile struct {
	Description string      `json:"description" yaml:"description"`
	Weekday     DaySegments `json:"weekday" yaml:"weekday"`
	Weekend     DaySegments `json:"weekend" yaml:"weekend"`
}

var sharedNight = [6]float64{0.3, 0.3, 0.3, 0.3, 0.3, 0.4}

var defaultArchetypes = map[model.Archetype]ArchetypeProfile{
	model.ArchetypeAway: {
		Description: "Working away from home during the day",
		Weekday: DaySegments{
			Night:   sharedNight,
			Morning: [3]float64{0.7, 1.2, 1.0},
			Day:     [9]float64{0.6, 0.5, 0.4, 0.4, 0.4, 0.5, 0.6, 0.7, 0.8},
			Evening: [6]float64{0.9, 1.5, 1.3, 1.1, 0.9, 0.6},
		},
		Weekend: DaySegments{
			Night:   sharedNight,
			Morning: [3]float64{0.6, 0.8, 0.9},
			Day:     [9]float64{0.7, 0.8, 0.7, 0.8, 0.7, 0.6, 0.6, 0.7, 0.8},
			Evening: [6]float64{0.9, 1.2, 1.0, 0.8, 0.6, 0.5},
		},
	},
	model.ArchetypeHomeOffice: {
		Description: "Working from home",
		Weekday: DaySegments{
			Night:   sharedNight,
			Morning: [3]float64{0.7, 1.0, 0.9},
			Day:     [9]float64{0.6, 0.6, 0.5, 0.6, 0.6, 0.7, 0.7, 0.8, 0.8},
			Evening: [6]float64{0.9, 1.3, 1.1, 0.9, 0.7, 0.5},
		},
		Weekend: DaySegments{
			Night:   sharedNight,
			Morning: [3]float64{0.6, 0.8, 0.9},
			Day:     [9]float64{0.7, 0.8, 0.7, 0.8, 0.7, 0.6, 0.6, 0.7, 0.8},
			Evening: [6]float64{0.9, 1.2, 1.0, 0.8, 0.6, 0.5},
		},
	},
	model.ArchetypeRetired: {
		Description: "Retired, at home all day",
		Weekday: DaySegments{
			Night:   sharedNight,
			Morning: [3]float64{0.6, 0.8, 0.7},
			Day:     [9]float64{0.7, 0.7, 0.6, 0.7, 0.7, 0.7, 0.6, 0.7, 0.8},
			Evening: [6]float64{0.9, 1.1, 0.9, 0.7, 0.6, 0.5},
		},
		Weekend: DaySegments{
			Night:   sharedNight,
			Morning: [3]float64{0.6, 0.8, 0.7},
			Day:     [9]float64{0.7, 0.7, 0.6, 0.7, 0.7, 0.7, 0.6, 0.7, 0.8},
			Evening: [6]float64{0.9, 1.1, 0.9, 0.7, 0.6, 0.5},
		},
	},
	model.ArchetypeFamily: {
		Description: "Family with children, morning and evening peaks",
		Weekday: DaySegments{
			Night:   [6]float64{0.3, 0.3, 0.3, 0.3, 0.3, 0.5},
			Morning: [3]float64{0.9, 1.3, 1.2},
			Day:     [9]float64{0.6, 0.5, 0.4, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9},
			Evening: [6]float64{1.0, 1.6, 1.4, 1.2, 1.0, 0.7},
		},
		Weekend: DaySegments{
			Night:   sharedNight,
			Morning: [3]float64{0.7, 0.9, 1.0},
			Day:     [9]float64{0.8, 0.9, 0.8, 0.9, 0.8, 0.7, 0.7, 0.8, 0.9},
			Evening: [6]float64{1.0, 1.3, 1.1, 0.9, 0.7, 0.6},
		},
	},
}

// DefaultArchetypes returns a copy of the built-in occupancy table.
func DefaultArchetypes() map[model.Archetype]ArchetypeProfile {
	out := make(map[model.Archetype]ArchetypeProfile, len(defaultArchetypes))
	for k, v := range defaultArchetypes {
		out[k] = v
	}
	return out
}

// DayPattern returns the 24-hour weights of an archetype. Unknown archetypes use "away".
func DayPattern(profiles map[model.Archetype]ArchetypeProfile, a model.Archetype, weekend bool) [24]float64 {
	p, ok := profiles[a]
	if !ok {
		p = profiles[model.ArchetypeAway]
	}
	if weekend {
		return p.Weekend.Hours()
	}
	return p.Weekday.Hours()
}

// YearPattern tiles the day patterns over 365 days. With a non-nil rng every
// hour gets an independent uniform jitter in [0.9, 1.1).
func YearPattern(profiles map[model.Archetype]ArchetypeProfile, a model.Archetype, rng *rand.Rand) model.Series {
	weekday := DayPattern(profiles, a, false)
	weekend := DayPattern(profiles, a, true)

	s := model.NewSeries()
	for d := 0; d < model.DaysPerYear; d++ {
		day := &weekday
		if model.IsWeekend(d) {
			day = &weekend
		}
		for h, v := range day {
			if rng != nil {
				v *= 0.9 + 0.2*rng.Float64()
			}
			s[d*model.HoursPerDay+h] = v
		}
	}
	return s
}
