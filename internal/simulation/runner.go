package simulation

import (
	"context"
	"fmt"
	"time"

	"pv-simulator/internal/battery"
	"pv-simulator/internal/config"
	"pv-simulator/internal/consumption"
	"pv-simulator/internal/financial"
	"pv-simulator/internal/model"
	"pv-simulator/internal/production"
	"pv-simulator/internal/reconcile"
	"pv-simulator/internal/sizing"
	"pv-simulator/internal/weather"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// WeatherSource supplies a typical year for a location.
type WeatherSource interface {
	Get(ctx context.Context, lat, lon float64) (*model.Weather, error)
}

// Stage names one step of a run, in execution order.
type Stage string

const (
	StageWeather     Stage = "weather"
	StageProduction  Stage = "production"
	StageConsumption Stage = "consumption"
	StageReconcile   Stage = "reconcile"
	StageBattery     Stage = "battery"
	StageFinancial   Stage = "financial"
	StageSizing      Stage = "sizing"
)

// Event reports a finished stage.
type Event struct {
	Stage   Stage         `json:"stage"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

type Request struct {
	Config config.Config
	// Weather skips weather resolution when set.
	Weather *model.Weather
	// Observe is called after each stage.
	Observe func(Event)
}

// Runner wires the engines into one simulation. It holds no per-run state and
// is safe for concurrent use.
type Runner struct {
	Weather WeatherSource
	Sites   *weather.SiteList
	// SitesFile anchors relative site weather files.
	SitesFile string

	Production  *production.Engine
	Consumption *consumption.Engine
	Battery     *battery.Engine
	Tariffs     financial.Tariffs
	Prices      financial.PriceTable
	Rules       sizing.Rules

	now func() time.Time
}

// NewRunner uses the default tables. A nil source falls back to synthetic weather.
func NewRunner(ws WeatherSource) *Runner {
	return &Runner{
		Weather:     ws,
		Production:  production.New(production.DefaultParams()),
		Consumption: consumption.New(consumption.DefaultTables()),
		Battery:     battery.New(),
		Tariffs:     financial.DefaultTariffs(),
		Prices:      financial.DefaultPriceTable(),
		Rules:       sizing.DefaultRules(),
		now:         time.Now,
	}
}

func (r *Runner) Run(ctx context.Context, req Request) (*Report, error) {
	cfg := req.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tariffs, cons, err := r.overrides(cfg)
	if err != nil {
		return nil, err
	}

	start := r.now()
	step := start
	done := func(s Stage) {
		if req.Observe == nil {
			return
		}
		now := r.now()
		req.Observe(Event{Stage: s, Elapsed: now.Sub(step)})
		step = now
	}

	in := cfg.Inputs()
	inst, hh := in.Installation, in.Household
	rep := &Report{
		ID:           uuid.NewString(),
		CreatedAt:    start.UTC(),
		Installation: SummarizeInstallation(inst),
	}

	w := req.Weather
	if w == nil {
		if w, err = r.ResolveWeather(ctx, cfg); err != nil {
			return nil, fmt.Errorf("weather: %w", err)
		}
	}
	in.Weather = w
	if err := in.Validate(); err != nil {
		return nil, err
	}
	rep.Weather = w.Meta
	done(StageWeather)

	prod, err := r.Production.Run(w, inst)
	if err != nil {
		return nil, fmt.Errorf("production: %w", err)
	}
	rep.Production = ProductionSummary{
		AnnualKWh:        prod.AnnualKWh,
		SpecificYield:    prod.SpecificYield,
		PerformanceRatio: prod.PerformanceRatio,
		ClippedKWh:       prod.ClippedKWh,
		Monthly:          prod.Monthly,
		Daily:            prod.Daily,
		DisplayOnly:      prod.DisplayOnly,
	}
	done(StageProduction)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	load, err := cons.Estimate(hh, cfg.Consumption.Options())
	if err != nil {
		return nil, fmt.Errorf("consumption: %w", err)
	}
	rep.Consumption = ConsumptionSummary{
		Mode:        load.Mode,
		AnnualKWh:   load.AnnualKWh,
		Monthly:     load.Monthly,
		Daily:       load.Daily,
		Breakdown:   load.Breakdown,
		Items:       load.Items,
		ExpectedKWh: load.ExpectedKWh,
		GapPct:      load.GapPct,
	}
	done(StageConsumption)

	base, err := reconcile.Reconcile(prod.AC, load.Hourly)
	if err != nil {
		return nil, err
	}
	rep.Balance = BalanceSummary{
		Totals:              base.Totals,
		SelfConsumptionRate: base.SelfConsumptionRate,
		SelfProductionRate:  base.SelfProductionRate,
		Monthly:             base.Monthly,
	}
	rep.Series = &Series{
		Production:  prod.AC,
		Consumption: load.Hourly,
		Self:        base.Self,
		Export:      base.Export,
		Import:      base.Import,
	}
	done(StageReconcile)

	var batt *battery.Result
	if in.Battery != nil {
		bcfg := *in.Battery
		if batt, err = r.Battery.Run(prod.AC, load.Hourly, bcfg, base); err != nil {
			return nil, fmt.Errorf("battery: %w", err)
		}
		price, err := r.batteryPrice(cfg.Battery)
		if err != nil {
			return nil, err
		}
		if cfg.Battery.Cost > 0 {
			price.Total = cfg.Battery.Cost
		}
		rep.Battery = &BatterySummary{
			Name:                bcfg.Name,
			CapacityKWh:         bcfg.CapacityKWh,
			UsableKWh:           bcfg.UsableKWh(),
			MaxPowerKW:          bcfg.MaxPowerKW,
			Efficiency:          bcfg.Efficiency,
			DepthOfDischarge:    bcfg.DepthOfDischarge,
			Totals:              batt.Totals,
			SelfConsumptionRate: batt.SelfConsumptionRate,
			SelfProductionRate:  batt.SelfProductionRate,
			SelfConsumptionGain: batt.SelfConsumptionGain,
			SelfProductionGain:  batt.SelfProductionGain,
			EnergyCycledKWh:     batt.EnergyCycledKWh,
			CyclesPerYear:       batt.CyclesPerYear,
			LifetimeYears:       batt.LifetimeYears,
			Price:               price,
			Economics:           financial.BatteryEconomics(base.Totals, batt.Totals, price.Total, tariffs),
		}
		rep.Series.BatterySelf = batt.Self
		rep.Series.BatteryExport = batt.Export
		rep.Series.BatteryImport = batt.Import
		rep.Series.Ledger = batt.Ledger
		done(StageBattery)
	}

	if rep.Financial, err = r.financials(cfg, inst, hh, load, base, rep.Battery, tariffs); err != nil {
		return nil, err
	}
	done(StageFinancial)

	if cfg.Sizing.Enabled {
		s := &sizing.Sizer{Engine: r.Battery, Prices: r.Prices, Tariffs: tariffs, Rules: r.Rules}
		rep.Sizing, err = s.Size(ctx, prod.AC, load.Hourly, base, sizing.Options{
			Archetype:  hh.Archetype,
			Tier:       financial.Tier(cfg.Sizing.Tier),
			Capacities: cfg.Sizing.Capacities,
			BudgetMax:  cfg.Sizing.BudgetMax,
		})
		if err != nil {
			return nil, err
		}
		done(StageSizing)
	}

	rep.Duration = r.now().Sub(start)
	log.Debug().
		Str("id", rep.ID).
		Str("weather", string(rep.Weather.Source)).
		Float64("production_kwh", rep.Production.AnnualKWh).
		Float64("consumption_kwh", rep.Consumption.AnnualKWh).
		Float64("self_consumption_rate", rep.Balance.SelfConsumptionRate).
		Dur("took", rep.Duration).
		Msg("simulation complete")
	return rep, nil
}

func (r *Runner) financials(cfg config.Config, inst model.Installation, hh model.Household,
	load *consumption.Result, base *reconcile.Result, batt *BatterySummary, t financial.Tariffs,
) (FinancialSummary, error) {
	var out FinancialSummary
	in := financial.Inputs{
		PeakKW:         inst.PeakKW(),
		ProductionKWh:  base.Totals.ProductionKWh,
		ConsumptionKWh: base.Totals.ConsumptionKWh,
		ImportKWh:      base.Totals.ImportKWh,
		ExportKWh:      base.Totals.ExportKWh,
		InstallCost:    cfg.Financial.InstallCost,
	}
	p, err := financial.Project(in, t)
	if err != nil {
		return out, fmt.Errorf("financial: %w", err)
	}
	out.Projection = p
	out.KeyYears = p.KeyYears()

	kva := cfg.Financial.SubscribedKVA
	if kva == 0 {
		kva = financial.DefaultSubscribedKVA
	}
	cmp, err := financial.CompareContracts(load.Breakdown, kva, t)
	if err != nil {
		return out, fmt.Errorf("financial: %w", err)
	}
	out.Contracts = *cmp
	out.OffPeak = financial.PlanOffPeak(load.AnnualKWh, hh.Archetype, cmp.KVA, t)

	if batt != nil {
		in.InstallCost = p.Summary.InstallCost + batt.Price.Total
		in.ImportKWh = batt.Totals.ImportKWh
		in.ExportKWh = batt.Totals.ExportKWh
		wb, err := financial.Project(in, t)
		if err != nil {
			return out, fmt.Errorf("financial with battery: %w", err)
		}
		out.WithBattery = &wb.Summary
	}
	return out, nil
}

// overrides loads per-config tariff and consumption tables when the config names them.
func (r *Runner) overrides(cfg config.Config) (financial.Tariffs, *consumption.Engine, error) {
	t, cons := r.Tariffs, r.Consumption
	if f := cfg.Financial.TariffsFile; f != "" {
		var err error
		if t, err = financial.LoadTariffs(f); err != nil {
			return t, nil, err
		}
	}
	if f := cfg.Consumption.TablesFile; f != "" {
		tables, err := consumption.LoadTables(f)
		if err != nil {
			return t, nil, err
		}
		cons = consumption.New(tables)
	}
	return t, cons, nil
}

// ResolveWeather picks the config's weather file, else its site, else the
// source at the installation coordinates.
func (r *Runner) ResolveWeather(ctx context.Context, cfg config.Config) (*model.Weather, error) {
	if cfg.WeatherFile != "" {
		return weather.LoadFile(cfg.WeatherFile)
	}
	lat, lon := cfg.Installation.Latitude, cfg.Installation.Longitude
	if cfg.Site != "" {
		if r.Sites == nil {
			return nil, &model.ValidationError{Field: "site", Reason: "no site list is configured"}
		}
		s, ok := r.Sites.Find(cfg.Site)
		if !ok {
			return nil, &model.ValidationError{Field: "site", Reason: fmt.Sprintf("%q is not a known site", cfg.Site)}
		}
		if s.WeatherFile != "" {
			return weather.LoadFile(weather.WeatherPath(r.SitesFile, s))
		}
		lat, lon = s.Latitude, s.Longitude
	}
	if r.Weather == nil {
		return weather.Fallback(lat, lon, 0), nil
	}
	return r.Weather.Get(ctx, lat, lon)
}

func (r *Runner) batteryPrice(b config.BatteryConfig) (financial.Price, error) {
	p, err := r.Prices.Quote(b.CapacityKWh, b.PriceTier())
	if err != nil {
		return p, fmt.Errorf("battery price: %w", err)
	}
	return p, nil
}

func SummarizeInstallation(i model.Installation) InstallationSummary {
	return InstallationSummary{
		PeakKW:         i.PeakKW(),
		InverterKW:     i.InverterKW,
		InverterFamily: i.InverterFamily,
		AzimuthDeg:     i.AzimuthDeg,
		TiltDeg:        i.TiltDeg,
		Shading:        i.Shading,
		LossFactor:     i.Losses.Factor(),
		Latitude:       i.Latitude,
		Longitude:      i.Longitude,
	}
}
