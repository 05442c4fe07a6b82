package battery

import (
	"fmt"
	"math"

	"pv-simulator/internal/model"
	"pv-simulator/internal/reconcile"

	"github.com/rs/zerolog/log"
)

// MaxLifetimeYears is reported when the battery barely cycles.
const MaxLifetimeYears = 99

// InitialSOCFraction is the share of usable capacity stored at hour 0.
const InitialSOCFraction = 0.5

type Engine struct{}

func New() *Engine { return &Engine{} }

// Run executes the hourly battery dispatch over one year.
// baseline is the no-battery reconciliation; it is computed when nil.
func (e *Engine) Run(prod, cons model.Series, cfg model.BatteryConfig, baseline *reconcile.Result) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("battery config invalid: %w", err)
	}
	if baseline == nil {
		var err error
		baseline, err = reconcile.Reconcile(prod, cons)
		if err != nil {
			return nil, err
		}
	} else {
		if err := prod.Validate("production"); err != nil {
			return nil, err
		}
		if err := cons.Validate("consumption"); err != nil {
			return nil, err
		}
	}

	usable := cfg.UsableKWh()
	socMin, socMax := cfg.SoCMin(), cfg.SoCMax()
	eff, pmax := cfg.Efficiency, cfg.MaxPowerKW
	soc := InitialSOCFraction * usable

	res := &Result{
		Ledger: make([]LedgerRow, 0, len(prod)),
		Self:   model.NewSeries(),
		Export: model.NewSeries(),
		Import: model.NewSeries(),
	}
	cycled := 0.0

	for h := range prod {
		p, c := prod[h], cons[h]
		row := LedgerRow{
			Index:          h,
			Day:            model.DayOfHour(h),
			HourOfDay:      model.HourOfDay(h),
			ProductionKWh:  p,
			ConsumptionKWh: c,
			SOCStart:       soc,
		}

		if p > c {
			row.DirectSelfKWh = c
			surplus := p - c
			// Headroom bounds the surplus drawn from PV, before losses.
			headroom := math.Max(0, socMax-soc)
			charge := math.Min(surplus, math.Min(headroom, pmax))
			row.ChargedKWh = charge
			row.StoredKWh = charge * eff
			row.ExportKWh = surplus - charge
			soc += row.StoredKWh
			cycled += row.StoredKWh
		} else {
			row.DirectSelfKWh = p
			deficit := c - p
			available := math.Max(0, soc-socMin)
			deliver := math.Min(deficit, math.Min(available*eff, pmax))
			row.DischargedKWh = deliver
			row.ImportKWh = deficit - deliver
			soc -= deliver / eff
		}
		// Clamp float drift at the bounds.
		soc = math.Min(socMax, math.Max(socMin, soc))
		row.SOCEnd = soc
		row.Action = model.ActionFromFlow(row.StoredKWh, row.DischargedKWh)

		res.Self[h] = row.DirectSelfKWh + row.DischargedKWh
		res.Export[h] = row.ExportKWh
		res.Import[h] = row.ImportKWh
		res.Ledger = append(res.Ledger, row)
	}

	res.Totals = reconcile.Totals{
		ProductionKWh:  prod.Total(),
		ConsumptionKWh: cons.Total(),
		SelfKWh:        res.Self.Total(),
		ExportKWh:      res.Export.Total(),
		ImportKWh:      res.Import.Total(),
	}
	res.EnergyCycledKWh = cycled
	res.CyclesPerYear = cycled / usable
	res.LifetimeYears = Lifetime(cfg.GuaranteedCycles, res.CyclesPerYear)
	res.FinalSOC = soc
	res.SelfConsumptionRate = res.Totals.SelfConsumptionRate()
	res.SelfProductionRate = res.Totals.SelfProductionRate()
	res.SelfConsumptionGain = res.SelfConsumptionRate - baseline.SelfConsumptionRate
	res.SelfProductionGain = res.SelfProductionRate - baseline.SelfProductionRate

	log.Debug().
		Float64("capacity_kwh", cfg.CapacityKWh).
		Float64("cycles", res.CyclesPerYear).
		Float64("gain_pts", res.SelfConsumptionGain).
		Msg("battery simulated")
	return res, nil
}

// Lifetime converts guaranteed cycles into years, capped at MaxLifetimeYears.
func Lifetime(guaranteedCycles, cyclesPerYear float64) float64 {
	if cyclesPerYear < 1e-9 {
		return MaxLifetimeYears
	}
	return math.Min(MaxLifetimeYears, guaranteedCycles/cyclesPerYear)
}
