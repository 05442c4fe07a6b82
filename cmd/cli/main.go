package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pv-simulator/internal/battery"
	"pv-simulator/internal/config"
	"pv-simulator/internal/consumption"
	"pv-simulator/internal/logging"
	"pv-simulator/internal/model"
	"pv-simulator/internal/simulation"
	"pv-simulator/internal/sizing"
	"pv-simulator/internal/weather"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "simulate":
		err = cmdSimulate(os.Args[2:])
	case "consumption":
		err = cmdConsumption(os.Args[2:])
	case "sizing":
		err = cmdSizing(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("command failed")
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli simulate --config examples/config.yaml --out results")
	fmt.Println("  cli consumption --config examples/config.yaml")
	fmt.Println("  cli sizing --config examples/config.yaml --tier premium --budget 9000")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - simulate writes report.json, hourly.csv and, with a battery, ledger.csv")
	fmt.Println("  - weather comes from PVGIS unless --offline is set or the config names a weather file")
}

// common holds the flags every subcommand accepts.
type common struct {
	cfgPath  string
	offline  bool
	logLevel string
}

func (c *common) register(fs *pflag.FlagSet) {
	fs.StringVarP(&c.cfgPath, "config", "c", "", "Path to YAML config (required)")
	fs.BoolVar(&c.offline, "offline", false, "Use the synthetic weather year instead of PVGIS")
	fs.StringVar(&c.logLevel, "log-level", "warn", "Log level")
}

func (c *common) load() (*config.Config, error) {
	logging.Setup(c.logLevel, true)
	if c.cfgPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	return config.Load(c.cfgPath)
}

func (c *common) runner() (*simulation.Runner, func()) {
	if c.offline {
		return simulation.NewRunner(nil), func() {}
	}
	cache := weather.NewCache(time.Hour)
	provider := weather.NewProvider(weather.NewPVGISClient("", 0), cache)
	return simulation.NewRunner(provider), cache.Close
}

func cmdSimulate(args []string) error {
	fs := pflag.NewFlagSet("simulate", pflag.ExitOnError)
	var c common
	c.register(fs)
	outDir := fs.StringP("out", "o", "results", "Output directory")
	_ = fs.Parse(args)

	cfg, err := c.load()
	if err != nil {
		return err
	}
	runner, done := c.runner()
	defer done()

	rep, err := runner.Run(context.Background(), simulation.Request{Config: *cfg})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(*outDir, "report.json"), raw, 0o644); err != nil {
		return err
	}
	if err := simulation.WriteHourlyCSV(filepath.Join(*outDir, "hourly.csv"), rep.Series.Rows(0, model.HoursPerYear)); err != nil {
		return err
	}
	if rep.Series.Ledger != nil {
		if err := battery.WriteLedgerCSV(filepath.Join(*outDir, "ledger.csv"), rep.Series.Ledger); err != nil {
			return err
		}
	}

	printReport(rep)
	fmt.Printf("\nWrote results to %s\n", *outDir)
	return nil
}

func printReport(rep *simulation.Report) {
	w := rep.Weather
	fmt.Printf("Weather      %s (synthetic=%v) %.0f kWh/m²\n", w.Source, w.Synthetic, w.AnnualIrradiation)
	fmt.Printf("Installation %.2f kWc, inverter %.1f kW %s\n",
		rep.Installation.PeakKW, rep.Installation.InverterKW, rep.Installation.InverterFamily)
	fmt.Printf("Production   %.0f kWh (%.0f kWh/kWc, PR %.2f)\n",
		rep.Production.AnnualKWh, rep.Production.SpecificYield, rep.Production.PerformanceRatio)
	fmt.Printf("Consumption  %.0f kWh (%s mode, expected %.0f, gap %+.1f%%)\n",
		rep.Consumption.AnnualKWh, rep.Consumption.Mode, rep.Consumption.ExpectedKWh, rep.Consumption.GapPct)

	b := rep.Balance
	fmt.Printf("\n%-14s %-10s %-10s %-10s %-8s %-8s\n", "", "self", "export", "import", "SC%", "SP%")
	fmt.Printf("%-14s %-10.0f %-10.0f %-10.0f %-8.1f %-8.1f\n", "no battery",
		b.SelfKWh, b.ExportKWh, b.ImportKWh, b.SelfConsumptionRate, b.SelfProductionRate)
	if bt := rep.Battery; bt != nil {
		fmt.Printf("%-14s %-10.0f %-10.0f %-10.0f %-8.1f %-8.1f\n", fmt.Sprintf("%g kWh", bt.CapacityKWh),
			bt.Totals.SelfKWh, bt.Totals.ExportKWh, bt.Totals.ImportKWh, bt.SelfConsumptionRate, bt.SelfProductionRate)
		fmt.Printf("\nBattery %.0f cycles/year, lifetime %.1f years, price %.0f €, ROI %.1f years\n",
			bt.CyclesPerYear, bt.LifetimeYears, bt.Price.Total, bt.Economics.ROIYears)
	}

	f := rep.Financial
	if f.Projection != nil {
		s := f.Projection.Summary
		fmt.Printf("\nInvestment %.0f € (subsidy %.0f €), payback %d years, %d-year savings %.0f €\n",
			s.NetInvestment, s.Subsidy, s.PaybackYears, len(f.Projection.Years), s.TotalSavings)
	}
	if f.WithBattery != nil {
		fmt.Printf("With battery %.0f €, payback %d years, savings %.0f €\n",
			f.WithBattery.NetInvestment, f.WithBattery.PaybackYears, f.WithBattery.TotalSavings)
	}
	fmt.Printf("Contract %d kVA: base %.0f €/year", f.Contracts.KVA, f.Contracts.Base.Total)
	if f.Contracts.Peak != nil {
		fmt.Printf(", peak/off-peak %.0f €/year (%.0f%% off-peak)", f.Contracts.Peak.Total, f.Contracts.Peak.OffPeakPct)
	}
	fmt.Println()

	if rep.Sizing != nil {
		fmt.Println()
		printCandidates(rep.Sizing)
	}
}

func cmdConsumption(args []string) error {
	fs := pflag.NewFlagSet("consumption", pflag.ExitOnError)
	var c common
	c.register(fs)
	_ = fs.Parse(args)

	cfg, err := c.load()
	if err != nil {
		return err
	}
	runner := simulation.NewRunner(nil)
	inst := cfg.Installation.ToModel()
	res, err := runner.Consumption.Estimate(cfg.Household.ToModel(inst.Latitude), cfg.Consumption.Options())
	if err != nil {
		return err
	}

	fmt.Printf("Mode %s, %.0f kWh/year (expected %.0f, gap %+.1f%%)\n\n",
		res.Mode, res.AnnualKWh, res.ExpectedKWh, res.GapPct)
	fmt.Printf("%-14s %-10s %-6s\n", "category", "kWh", "share")
	for _, cat := range consumption.Categories() {
		v := res.Breakdown[cat]
		share := 0.0
		if res.AnnualKWh > 0 {
			share = v / res.AnnualKWh * 100
		}
		fmt.Printf("%-14s %-10.0f %-6.1f\n", cat, v, share)
	}
	fmt.Printf("\n%-6s %-10s\n", "month", "kWh")
	for m, v := range res.Monthly {
		fmt.Printf("%-6d %-10.0f\n", m+1, v)
	}
	return nil
}

func cmdSizing(args []string) error {
	fs := pflag.NewFlagSet("sizing", pflag.ExitOnError)
	var c common
	c.register(fs)
	tier := fs.String("tier", "", "Price tier: economy, standard or premium")
	budget := fs.Float64("budget", 0, "Optional maximum battery price in €")
	caps := fs.Float64Slice("capacities", nil, "Capacities to compare in kWh (default: standard sizes)")
	_ = fs.Parse(args)

	cfg, err := c.load()
	if err != nil {
		return err
	}
	runner, done := c.runner()
	defer done()

	cfg.BatteryFile = ""
	cfg.Battery = config.BatteryConfig{}
	cfg.Sizing.Enabled = true
	if *tier != "" {
		cfg.Sizing.Tier = *tier
	}
	if *budget > 0 {
		cfg.Sizing.BudgetMax = *budget
	}
	if len(*caps) > 0 {
		cfg.Sizing.Capacities = *caps
	}

	rep, err := runner.Run(context.Background(), simulation.Request{Config: *cfg})
	if err != nil {
		return err
	}
	fmt.Printf("Production %.0f kWh, consumption %.0f kWh, baseline self-consumption %.1f%%\n\n",
		rep.Production.AnnualKWh, rep.Consumption.AnnualKWh, rep.Balance.SelfConsumptionRate)
	printCandidates(rep.Sizing)
	return nil
}

func printCandidates(rec *sizing.Recommendation) {
	fmt.Printf("Archetype %s, rule of thumb %.1f kWh\n", rec.Archetype, rec.TheoreticalKWh)
	if rec.BudgetExcludedAll {
		fmt.Println("No capacity fits the budget")
		return
	}
	fmt.Printf("%-4s %-10s %-10s %-8s %-8s %-10s %-8s\n", "rank", "capacity", "price€", "SC%", "gain", "savings€", "ROI")
	for i, cand := range rec.Candidates {
		fmt.Printf("%-4d %-10.1f %-10.0f %-8.1f %-8.1f %-10.0f %-8.1f\n",
			i+1,
			cand.CapacityKWh,
			cand.Price.Total,
			cand.SelfConsumptionRate,
			cand.SelfConsumptionGain,
			cand.Economics.AnnualSavings,
			cand.Economics.ROIYears,
		)
	}
	fmt.Printf("\nRecommended %.1f kWh\n", rec.RecommendedKWh)
}
