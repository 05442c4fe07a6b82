package consumption

import (
	"fmt"

	"pv-simulator/internal/model"

	"github.com/rs/zerolog/log"
)

// Mode selects how the annual total and its breakdown are obtained.
type Mode string

const (
	// ModeGeneric decomposes a declared annual total.
	ModeGeneric Mode = "generic"
	// ModeStandard sums flat per-person and per-m² rates.
	ModeStandard Mode = "standard"
	// ModeExpert sums an itemized inventory.
	ModeExpert Mode = "expert"
)

func (m Mode) Valid() bool {
	return m == ModeGeneric || m == ModeStandard || m == ModeExpert
}

// ModeFor picks the most detailed mode the household data supports.
func ModeFor(h model.Household) Mode {
	switch {
	case h.Inventory != nil:
		return ModeExpert
	case h.DeclaredAnnualKWh > 0:
		return ModeGeneric
	default:
		return ModeStandard
	}
}

// Options for one estimate. The zero value auto-selects the mode and applies no shift.
type Options struct {
	Mode Mode
	SynthOptions
	// SolarShift is the share of avoidable-hour load moved to solar hours; 0 disables it.
	SolarShift float64
}

// Result is an annual consumption estimate and its hourly series.
type Result struct {
	Mode   Mode
	Hourly model.Series

	AnnualKWh float64
	Monthly   [12]float64
	Daily     [24]float64
	// CategoryMonthly is the monthly split implied by the category weights alone.
	CategoryMonthly [12]float64

	Breakdown Breakdown
	Items     []ItemUsage

	ExpectedKWh float64
	GapPct      float64
}

// Engine estimates household consumption.
type Engine struct {
	calc  Calculator
	dec   Decomposer
	items Itemizer
	synth Synthesizer
}

func New(t Tables) *Engine {
	c := NewCalculator(t)
	return &Engine{
		calc:  c,
		dec:   Decomposer{Calc: c},
		items: Itemizer{Calc: c},
		synth: NewSynthesizer(c),
	}
}

// WithProfiles replaces the occupancy table used for hourly synthesis.
func (e *Engine) WithProfiles(p map[model.Archetype]ArchetypeProfile) *Engine {
	e.synth.Profiles = p
	return e
}

func (e *Engine) Calculator() Calculator { return e.calc }

func (e *Engine) Estimate(h model.Household, opts Options) (*Result, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModeFor(h)
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("consumption mode %q: %w", mode, model.ErrInvalidInput)
	}

	res := &Result{Mode: mode}
	switch mode {
	case ModeGeneric:
		if h.DeclaredAnnualKWh <= 0 {
			return nil, &model.ValidationError{Field: "household.declared_annual_kwh", Reason: "must be > 0 in generic mode"}
		}
		res.Breakdown = e.dec.Decompose(h, h.DeclaredAnnualKWh)
	case ModeStandard:
		res.Breakdown = e.dec.Standard(h)
	case ModeExpert:
		if h.Inventory == nil {
			return nil, &model.ValidationError{Field: "household.inventory", Reason: "is required in expert mode"}
		}
		res.Items, res.Breakdown = e.items.Itemize(h)
	}
	res.AnnualKWh = res.Breakdown.Total()
	if mode == ModeGeneric {
		res.AnnualKWh = h.DeclaredAnnualKWh
	}

	hourly := e.synth.Synthesize(h, res.Breakdown, res.AnnualKWh, opts.SynthOptions)
	if opts.SolarShift > 0 {
		shifted, err := DefaultShiftPlan(opts.SolarShift).Apply(hourly)
		if err != nil {
			return nil, fmt.Errorf("solar shift: %w", err)
		}
		hourly = shifted
	}
	if err := hourly.Validate("consumption"); err != nil {
		return nil, err
	}

	res.Hourly = hourly
	res.Monthly = hourly.Monthly()
	res.Daily = hourly.HourOfDayMean()
	res.CategoryMonthly = e.calc.Monthly(res.Breakdown, h.Latitude)
	res.ExpectedKWh = e.calc.Expected(h)
	res.GapPct = GapPct(res.AnnualKWh, res.ExpectedKWh)

	log.Debug().
		Str("mode", string(mode)).
		Float64("annual_kwh", res.AnnualKWh).
		Float64("expected_kwh", res.ExpectedKWh).
		Float64("solar_shift", opts.SolarShift).
		Msg("consumption estimated")
	return res, nil
}
