package production

import (
	"fmt"
	"math"

	"pv-simulator/internal/model"

	"github.com/rs/zerolog/log"
)

// Result is the hourly AC output of an installation and its summaries.
type Result struct {
	AC model.Series

	AnnualKWh float64
	// SpecificYield is kWh produced per installed kWc.
	SpecificYield float64
	// PerformanceRatio compares AC output with the irradiation reaching the array.
	PerformanceRatio float64
	ClippedKWh       float64

	Monthly [12]float64
	Daily   [24]float64
	// DisplayOnly is set when Monthly and Daily are synthesized because the
	// weather carried no timestamps.
	DisplayOnly bool
}

type Engine struct {
	Params Params
}

func New(p Params) *Engine { return &Engine{Params: p} }

// Run converts irradiance into AC power hour by hour.
func (e *Engine) Run(w *model.Weather, inst model.Installation) (*Result, error) {
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("weather: %w", err)
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}

	p := e.Params
	kwc := inst.PeakKW()
	static := p.OrientationFactor(inst.AzimuthDeg) * p.TiltFactor(inst.TiltDeg) *
		inst.Losses.Factor() * inst.Shading

	ac := model.NewSeries()
	clipped := 0.0
	for h, ghi := range w.GHI {
		if ghi <= 0 {
			continue
		}
		dc := ghi / 1000 * kwc
		if w.Temperature != nil {
			dc *= p.TemperatureFactor(ghi, w.Temperature[h], inst.TempCoefficient)
		}
		dc *= static

		out := dc * p.InverterEfficiency(dc/inst.InverterKW)
		if out > inst.InverterKW {
			clipped += out - inst.InverterKW
			out = inst.InverterKW
		}
		ac[h] = out
	}

	res := &Result{
		AC:         ac,
		AnnualKWh:  ac.Total(),
		ClippedKWh: clipped,
	}
	if kwc > 0 {
		res.SpecificYield = res.AnnualKWh / kwc
	}
	if irr := w.AnnualIrradiation(); irr > 0 && kwc > 0 {
		res.PerformanceRatio = res.AnnualKWh / (irr * kwc)
	}

	if w.HasTimestamps {
		res.Monthly = ac.Monthly()
		res.Daily = ac.HourOfDayMean()
	} else {
		res.Monthly = UniformMonthly(res.AnnualKWh)
		res.Daily = BellDay(res.AnnualKWh / model.DaysPerYear)
		res.DisplayOnly = true
	}

	log.Debug().
		Float64("kwc", kwc).
		Float64("annual_kwh", res.AnnualKWh).
		Float64("clipped_kwh", clipped).
		Bool("display_only", res.DisplayOnly).
		Msg("production computed")
	return res, nil
}

// UniformMonthly spreads an annual total over months in proportion to their length.
func UniformMonthly(annual float64) [12]float64 {
	var out [12]float64
	for m := range out {
		out[m] = annual * float64(model.MonthDays(m)) / model.DaysPerYear
	}
	return out
}

// BellDay is a half-sine curve from 06:00 to 19:00 summing to dayTotal.
func BellDay(dayTotal float64) [24]float64 {
	var out [24]float64
	sum := 0.0
	for h := 6; h <= 19; h++ {
		out[h] = math.Sin(float64(h-6) * math.Pi / 13)
		sum += out[h]
	}
	for h := range out {
		out[h] = out[h] / sum * dayTotal
	}
	return out
}
