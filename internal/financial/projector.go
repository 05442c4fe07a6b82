package financial

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
)

// Inputs are the annual aggregates of one simulated year.
// InstallCost overrides PeakKW × CostPerKWc when > 0.
type Inputs struct {
	PeakKW         float64 `json:"peak_kw"`
	ProductionKWh  float64 `json:"production_kwh"`
	ConsumptionKWh float64 `json:"consumption_kwh"`
	ImportKWh      float64 `json:"import_kwh"`
	ExportKWh      float64 `json:"export_kwh"`
	InstallCost    float64 `json:"install_cost,omitempty"`
}

func (in Inputs) Validate() error {
	for name, v := range map[string]float64{
		"peak_kw":         in.PeakKW,
		"production_kwh":  in.ProductionKWh,
		"consumption_kwh": in.ConsumptionKWh,
		"import_kwh":      in.ImportKWh,
		"export_kwh":      in.ExportKWh,
		"install_cost":    in.InstallCost,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("financial inputs: %s must be finite and >= 0", name)
		}
	}
	if in.PeakKW == 0 {
		return fmt.Errorf("financial inputs: peak_kw must be > 0")
	}
	return nil
}

// YearRow is one projected year, amounts in €.
type YearRow struct {
	Year        int     `json:"year"`
	Price       float64 `json:"price_kwh"`
	BillWithout float64 `json:"bill_without"`
	BillWith    float64 `json:"bill_with"`
	FeedIn      float64 `json:"feed_in"`
	Savings     float64 `json:"savings"`
	Cumulative  float64 `json:"cumulative"`
	Remaining   float64 `json:"remaining"`
	Amortized   bool    `json:"amortized"`
}

// Summary condenses a projection. ReturnPct is total savings over net investment, per year.
type Summary struct {
	InstallCost      float64 `json:"install_cost"`
	Subsidy          float64 `json:"subsidy"`
	NetInvestment    float64 `json:"net_investment"`
	FirstYearSavings float64 `json:"first_year_savings"`
	LastYearSavings  float64 `json:"last_year_savings"`
	TotalSavings     float64 `json:"total_savings"`
	PaybackYears     int     `json:"payback_years"`
	ReturnPct        float64 `json:"return_pct"`
	CO2              CO2     `json:"co2"`
}

// CO2 is the emission avoided by the production.
type CO2 struct {
	AnnualKg       float64 `json:"annual_kg"`
	LifetimeTonnes float64 `json:"lifetime_tonnes"`
	CarKm          float64 `json:"car_km"`
	Trees          float64 `json:"trees"`
}

type Projection struct {
	Years   []YearRow `json:"years"`
	Summary Summary   `json:"summary"`
}

// KeyYears returns the rows usually shown in a report plus the payback year.
func (p *Projection) KeyYears() []YearRow {
	keep := map[int]bool{1: true, 2: true, 3: true, 5: true, 10: true, 15: true, 20: true, 25: true}
	keep[p.Summary.PaybackYears] = true
	out := make([]YearRow, 0, len(keep))
	for _, r := range p.Years {
		if keep[r.Year] {
			out = append(out, r)
		}
	}
	return out
}

const (
	carKgPerKm  = 0.12
	treeKgPerYr = 25.0
)

// Project builds the yearly cash-flow projection.
func Project(in Inputs, t Tariffs) (*Projection, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	cost := in.InstallCost
	if cost == 0 {
		cost = in.PeakKW * t.CostPerKWc
	}
	subsidy := t.SubsidyAmount(in.PeakKW)
	net := cost - subsidy
	fee := t.GridFee(in.PeakKW)
	feedInPrice := t.FeedInPrice(in.PeakKW)

	p := &Projection{Years: make([]YearRow, 0, t.ProjectionYears)}
	cum := 0.0
	payback := 0
	for y := 1; y <= t.ProjectionYears; y++ {
		price := t.BasePrice * math.Pow(1+t.Inflation, float64(y-1))
		row := YearRow{
			Year:        y,
			Price:       price,
			BillWithout: in.ConsumptionKWh*price + fee,
			BillWith:    in.ImportKWh*price + fee,
			FeedIn:      in.ExportKWh * feedInPrice,
		}
		row.Savings = row.BillWithout - row.BillWith + row.FeedIn
		cum += row.Savings
		row.Cumulative = cum
		row.Remaining = net - cum
		row.Amortized = row.Remaining <= 0
		if row.Amortized && payback == 0 {
			payback = y
		}
		p.Years = append(p.Years, row)
	}
	if payback == 0 {
		payback = t.ProjectionYears
	}

	last := p.Years[len(p.Years)-1]
	p.Summary = Summary{
		InstallCost:      cost,
		Subsidy:          subsidy,
		NetInvestment:    net,
		FirstYearSavings: p.Years[0].Savings,
		LastYearSavings:  last.Savings,
		TotalSavings:     last.Cumulative,
		PaybackYears:     payback,
		CO2:              AvoidedCO2(in.ProductionKWh, t.CO2PerKWh, t.ProjectionYears),
	}
	if net > 0 {
		p.Summary.ReturnPct = last.Cumulative / net * 100 / float64(t.ProjectionYears)
	}

	log.Debug().
		Float64("net_investment", net).
		Int("payback_years", payback).
		Float64("total_savings", last.Cumulative).
		Msg("financial projection")
	return p, nil
}

// AvoidedCO2 converts annual production into avoided emissions over years.
func AvoidedCO2(productionKWh, kgPerKWh float64, years int) CO2 {
	annual := productionKWh * kgPerKWh
	total := annual * float64(years)
	return CO2{
		AnnualKg:       annual,
		LifetimeTonnes: total / 1000,
		CarKm:          total / carKgPerKm,
		Trees:          total / treeKgPerYr,
	}
}
