package consumption

import (
	"math/rand"

	"pv-simulator/internal/model"

	"github.com/rs/zerolog/log"
)

// PulseDefaults describe how a programmable appliance runs when the household leaves a field unset.
type PulseDefaults struct {
	UsualHour      int     `yaml:"usual_hour"`
	OptimalHour    int     `yaml:"optimal_hour"`
	DurationHours  int     `yaml:"duration_hours"`
	CyclesPerWeek  float64 `yaml:"cycles_per_week"`
	EnergyPerCycle float64 `yaml:"energy_per_cycle_kwh"`
}

var defaultPulses = map[model.ApplianceKind]PulseDefaults{
	model.ApplianceWaterHeater: {UsualHour: 23, OptimalHour: 13, DurationHours: 3, CyclesPerWeek: 7},
	model.ApplianceWasher:      {UsualHour: 20, OptimalHour: 12, DurationHours: 2, CyclesPerWeek: 3, EnergyPerCycle: 1.0},
	model.ApplianceDishwasher:  {UsualHour: 21, OptimalHour: 13, DurationHours: 2, CyclesPerWeek: 4, EnergyPerCycle: 1.2},
	model.ApplianceDryer:       {UsualHour: 20, OptimalHour: 13, DurationHours: 2, CyclesPerWeek: 2, EnergyPerCycle: 3.0},
	model.ApplianceEVCharger:   {UsualHour: 19, OptimalHour: 11, DurationHours: 4},
	model.AppliancePoolPump:    {UsualHour: 10, OptimalHour: 10, DurationHours: 8},
}

// Pool season on the abstract year, as day-of-year [start, end).
const (
	poolSeasonStart = 120
	poolSeasonEnd   = 270
)

// Synthesizer spreads annual energy over the 8760 hours of the year.
type Synthesizer struct {
	Calc     Calculator
	Profiles map[model.Archetype]ArchetypeProfile
	// ProgrammableShare is the part of the total carried by appliance pulses.
	ProgrammableShare float64
}

func NewSynthesizer(c Calculator) Synthesizer {
	return Synthesizer{Calc: c, Profiles: DefaultArchetypes(), ProgrammableShare: 0.6}
}

// SynthOptions tune one synthesis.
type SynthOptions struct {
	// Seed enables the ±10% hourly jitter; nil keeps the pattern deterministic and smooth.
	Seed *int64
	// Optimized starts programmable appliances at their optimal (solar) hour.
	Optimized bool
}

// Synthesize returns an hourly series summing to total.
func (s Synthesizer) Synthesize(h model.Household, b Breakdown, total float64, opts SynthOptions) model.Series {
	var rng *rand.Rand
	if opts.Seed != nil {
		rng = rand.New(rand.NewSource(*opts.Seed))
	}
	base := YearPattern(s.Profiles, h.Archetype, rng)

	prog, taken := s.pulses(h, b, opts.Optimized)

	non := model.NewSeries()
	for _, cat := range Categories() {
		kwh := b[cat]
		if kwh <= 0 || taken[cat] {
			continue
		}
		non.Add(s.shape(cat, h.Archetype, base).ScaleTo(kwh))
	}
	if non.Total() <= 0 {
		non = base.Clone()
	}

	out := model.NewSeries()
	if total <= 0 {
		return out
	}
	if prog.Total() > 0 {
		out.Add(prog.ScaleTo(total * s.ProgrammableShare))
		out.Add(non.ScaleTo(total * (1 - s.ProgrammableShare)))
	} else {
		out.Add(non.ScaleTo(total))
	}

	log.Debug().
		Str("archetype", string(h.Archetype)).
		Int("appliances", len(h.Appliances)).
		Bool("optimized", opts.Optimized).
		Float64("total_kwh", total).
		Msg("hourly consumption synthesized")
	return out
}

// shape returns the un-normalized hourly shape of a non-programmable category.
func (s Synthesizer) shape(cat Category, a model.Archetype, base model.Series) model.Series {
	switch cat {
	case CategoryHeating:
		return heatingShape(base, a)
	case CategoryDHW:
		return dhwShape(a)
	case CategoryLighting:
		return lightingShape(base)
	default:
		return base.Clone()
	}
}

// approxMonth is the 1-based month using 730-hour months.
func approxMonth(h int) int { return (h/730)%12 + 1 }

func heatingShape(base model.Series, a model.Archetype) model.Series {
	out := base.Clone()
	for h := range out {
		switch approxMonth(h) {
		case 11, 12, 1, 2, 3:
			out[h] *= 2.0
		case 6, 7, 8:
			out[h] *= 0.3
		default:
			out[h] *= 1.2
		}
		if hod := model.HourOfDay(h); a == model.ArchetypeAway && hod >= 9 && hod <= 17 {
			out[h] *= 0.3
		}
	}
	return out
}

func dhwShape(a model.Archetype) model.Series {
	out := model.NewSeries()
	for h := range out {
		hod := model.HourOfDay(h)
		switch a {
		case model.ArchetypeHomeOffice:
			if hod == 7 || hod == 12 || hod == 19 {
				out[h] = 0.8
			}
		case model.ArchetypeRetired:
			if hod >= 7 && hod <= 20 {
				out[h] = 0.5
			}
		case model.ArchetypeFamily:
			if hod == 7 || hod == 8 || hod == 19 || hod == 20 {
				out[h] = 1.0
			}
			if model.IsWeekend(model.DayOfHour(h)) && hod == 12 {
				out[h] = 0.7
			}
		default:
			if hod == 7 || hod == 19 {
				out[h] = 1.0
			}
		}
	}
	return out
}

func lightingShape(base model.Series) model.Series {
	out := model.NewSeries()
	for h := range out {
		hod := model.HourOfDay(h)
		winter := 1.0
		switch approxMonth(h) {
		case 11, 12, 1, 2:
			winter = 1.5
		}
		switch {
		case hod >= 6 && hod <= 8:
			out[h] = 0.5 * winter
		case hod >= 18:
			out[h] = 1.0 * winter
		case hod <= 1:
			out[h] = 0.3
		}
		out[h] *= base[h]
	}
	return out
}

// pulses builds the programmable component and reports which categories it absorbed.
func (s Synthesizer) pulses(h model.Household, b Breakdown, optimized bool) (model.Series, map[Category]bool) {
	out := model.NewSeries()
	taken := map[Category]bool{}
	g := s.Calc.T.Generic

	for _, a := range h.Appliances {
		d := defaultPulses[a.Kind]
		hour := d.UsualHour
		if a.UsualHour != nil {
			hour = *a.UsualHour
		}
		if optimized {
			hour = d.OptimalHour
			if a.OptimalHour != nil {
				hour = *a.OptimalHour
			}
		}
		dur := d.DurationHours
		if a.DurationHours > 0 {
			dur = a.DurationHours
		}
		cycles := orDefault(a.CyclesPerWeek, d.CyclesPerWeek)
		perCycle := orDefault(a.EnergyPerCycleKWh, d.EnergyPerCycle)

		switch a.Kind {
		case model.ApplianceWasher, model.ApplianceDishwasher, model.ApplianceDryer:
			out.Add(CyclePulses(hour, dur, cycles, perCycle))
			taken[CategoryLaundry] = true
		case model.ApplianceEVCharger:
			out.Add(EVPulses(hour, dur, orDefault(b[CategoryEV], g.EVFixed)))
			taken[CategoryEV] = true
		case model.AppliancePoolPump:
			start, end := poolSeasonStart, poolSeasonEnd
			if a.SeasonEndDay > a.SeasonStartDay {
				start, end = a.SeasonStartDay, a.SeasonEndDay
			}
			out.Add(SeasonPulses(hour, dur, start, end, orDefault(b[CategoryPool], g.PoolFixed)))
			taken[CategoryPool] = true
		case model.ApplianceWaterHeater:
			kwh := b[CategoryDHW]
			if kwh <= 0 {
				kwh = s.Calc.DHW(h)
			}
			if kwh <= 0 {
				continue
			}
			if optimized {
				out.Add(SolarDHW(hour).ScaleTo(kwh))
			} else {
				out.Add(SeasonPulses(hour, dur, 0, model.DaysPerYear, kwh))
			}
			taken[CategoryDHW] = true
		}
	}
	return out, taken
}

// CyclePulses spreads int(cyclesPerWeek*52) runs evenly over the year.
// Each run starts at hour on its day and draws perCycle kWh over duration hours.
func CyclePulses(hour, duration int, cyclesPerWeek, perCycle float64) model.Series {
	out := model.NewSeries()
	n := int(cyclesPerWeek * 52)
	if n <= 0 || duration <= 0 {
		return out
	}
	for i := 0; i < n; i++ {
		day := int(float64(i) * model.DaysPerYear / float64(n))
		start := day*model.HoursPerDay + hour
		if start > model.HoursPerYear-duration {
			continue
		}
		for k := 0; k < duration; k++ {
			out[start+k] = perCycle / float64(duration)
		}
	}
	return out
}

// EVPulses charges every other day, 182 sessions sharing the annual energy.
func EVPulses(hour, duration int, annual float64) model.Series {
	out := model.NewSeries()
	n := model.DaysPerYear / 2
	if duration <= 0 {
		return out
	}
	per := annual / float64(n)
	for i := 0; i < n; i++ {
		start := 2*i*model.HoursPerDay + hour
		if start > model.HoursPerYear-duration {
			continue
		}
		for k := 0; k < duration; k++ {
			out[start+k] = per / float64(duration)
		}
	}
	return out
}

// SeasonPulses runs once a day on days [startDay, endDay), sharing annual energy.
func SeasonPulses(hour, duration, startDay, endDay int, annual float64) model.Series {
	out := model.NewSeries()
	days := endDay - startDay
	if days <= 0 || duration <= 0 {
		return out
	}
	perDay := annual / float64(days)
	for d := startDay; d < endDay; d++ {
		start := d*model.HoursPerDay + hour
		if start > model.HoursPerYear-duration {
			continue
		}
		for k := 0; k < duration; k++ {
			out[start+k] = perDay / float64(duration)
		}
	}
	return out
}

// SolarDHW heats water from one hour before to two hours after opt, with a
// small evening top-up at 19:00 and 20:00.
func SolarDHW(opt int) model.Series {
	out := model.NewSeries()
	for h := range out {
		hod := model.HourOfDay(h)
		switch {
		case hod >= opt-1 && hod <= opt+2:
			out[h] = 1.0
		case hod == 19 || hod == 20:
			out[h] = 0.3
		}
	}
	return out
}
