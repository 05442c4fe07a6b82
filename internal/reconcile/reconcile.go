package reconcile

import (
	"fmt"

	"pv-simulator/internal/model"

	"github.com/rs/zerolog/log"
)

// Totals are annual energy flows in kWh.
type Totals struct {
	ProductionKWh  float64 `json:"production_kwh"`
	ConsumptionKWh float64 `json:"consumption_kwh"`
	SelfKWh        float64 `json:"self_consumed_kwh"`
	ExportKWh      float64 `json:"exported_kwh"`
	ImportKWh      float64 `json:"imported_kwh"`
}

// SelfConsumptionRate is the share of production used on site, in percent.
func (t Totals) SelfConsumptionRate() float64 { return pct(t.SelfKWh, t.ProductionKWh) }

// SelfProductionRate is the share of consumption covered by production, in percent.
func (t Totals) SelfProductionRate() float64 { return pct(t.SelfKWh, t.ConsumptionKWh) }

// MonthBalance is one calendar month of Totals.
type MonthBalance struct {
	Month int `json:"month"`
	Totals
}

// Result is the hour-by-hour balance of production against consumption.
type Result struct {
	Self   model.Series
	Export model.Series
	Import model.Series

	Totals  Totals
	Monthly []MonthBalance

	SelfConsumptionRate float64
	SelfProductionRate  float64
}

// Reconcile balances two hourly series that share the ordinal-hour grid.
// Both must hold exactly one value per hour of the year.
func Reconcile(prod, cons model.Series) (*Result, error) {
	if err := prod.Validate("production"); err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}
	if err := cons.Validate("consumption"); err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	res := &Result{
		Self:   model.NewSeries(),
		Export: model.NewSeries(),
		Import: model.NewSeries(),
	}
	for h := range prod {
		p, c := prod[h], cons[h]
		if p >= c {
			res.Self[h] = c
			res.Export[h] = p - c
		} else {
			res.Self[h] = p
			res.Import[h] = c - p
		}
	}

	res.Totals = Totals{
		ProductionKWh:  prod.Total(),
		ConsumptionKWh: cons.Total(),
		SelfKWh:        res.Self.Total(),
		ExportKWh:      res.Export.Total(),
		ImportKWh:      res.Import.Total(),
	}
	res.Monthly = MonthlyBalances(prod, cons, res.Self, res.Export, res.Import)
	res.SelfConsumptionRate = res.Totals.SelfConsumptionRate()
	res.SelfProductionRate = res.Totals.SelfProductionRate()

	log.Debug().
		Float64("self_consumption_pct", res.SelfConsumptionRate).
		Float64("self_production_pct", res.SelfProductionRate).
		Msg("reconciled")
	return res, nil
}

// MonthlyBalances aggregates hourly flows per calendar month.
func MonthlyBalances(prod, cons, self, export, imp model.Series) []MonthBalance {
	p, c, s, e, i := prod.Monthly(), cons.Monthly(), self.Monthly(), export.Monthly(), imp.Monthly()
	out := make([]MonthBalance, 12)
	for m := range out {
		out[m] = MonthBalance{
			Month: m + 1,
			Totals: Totals{
				ProductionKWh:  p[m],
				ConsumptionKWh: c[m],
				SelfKWh:        s[m],
				ExportKWh:      e[m],
				ImportKWh:      i[m],
			},
		}
	}
	return out
}

func pct(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	r := num / den * 100
	if r > 100 {
		return 100
	}
	return r
}
