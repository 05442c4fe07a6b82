package financial

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"pv-simulator/internal/consumption"
	"pv-simulator/internal/model"
	"pv-simulator/internal/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTariffBands(t *testing.T) {
	tr := DefaultTariffs()

	tests := []struct {
		kwc     float64
		fee     float64
		feedIn  float64
		subsidy float64
	}{
		{kwc: 3, fee: 51.17, feedIn: 0.04, subsidy: 240},
		{kwc: 6, fee: 51.17, feedIn: 0.04, subsidy: 480},
		{kwc: 6.5, fee: 63.26, feedIn: 0.04, subsidy: 520},
		{kwc: 9, fee: 63.26, feedIn: 0.04, subsidy: 720},
		{kwc: 10, fee: 75.35, feedIn: 0.07, subsidy: 1400},
		{kwc: 50, fee: 75.35, feedIn: 0.07, subsidy: 3500},
		{kwc: 120, fee: 75.35, feedIn: 0.07, subsidy: 0},
	}
	for _, tc := range tests {
		assert.InDelta(t, tc.fee, tr.GridFee(tc.kwc), 1e-9, "fee at %v kWc", tc.kwc)
		assert.InDelta(t, tc.feedIn, tr.FeedInPrice(tc.kwc), 1e-9, "feed-in at %v kWc", tc.kwc)
		assert.InDelta(t, tc.subsidy, tr.SubsidyAmount(tc.kwc), 1e-9, "subsidy at %v kWc", tc.kwc)
	}
}

func TestProject(t *testing.T) {
	in := Inputs{
		PeakKW:         6,
		ProductionKWh:  4000,
		ConsumptionKWh: 5000,
		ImportKWh:      3000,
		ExportKWh:      2000,
	}
	p, err := Project(in, DefaultTariffs())
	require.NoError(t, err)
	require.Len(t, p.Years, 25)

	first := p.Years[0]
	assert.InDelta(t, 0.2516, first.Price, 1e-12)
	assert.InDelta(t, 1309.17, first.BillWithout, 1e-6)
	assert.InDelta(t, 805.97, first.BillWith, 1e-6)
	assert.InDelta(t, 80, first.FeedIn, 1e-9)
	assert.InDelta(t, 583.2, first.Savings, 1e-6)

	cum := 0.0
	for i, r := range p.Years {
		assert.Equal(t, i+1, r.Year)
		assert.InDelta(t, 0.2516*math.Pow(1.03, float64(i)), r.Price, 1e-12)
		cum += r.Savings
		assert.InDelta(t, cum, r.Cumulative, 1e-6)
		assert.InDelta(t, 10320-cum, r.Remaining, 1e-6)
	}

	s := p.Summary
	assert.InDelta(t, 10800, s.InstallCost, 1e-9)
	assert.InDelta(t, 480, s.Subsidy, 1e-9)
	assert.InDelta(t, 10320, s.NetInvestment, 1e-9)
	assert.Equal(t, 15, s.PaybackYears)
	assert.False(t, p.Years[13].Amortized)
	assert.True(t, p.Years[14].Amortized)
	assert.InDelta(t, cum/10320*100/25, s.ReturnPct, 1e-9)
	assert.InDelta(t, 222.8, s.CO2.AnnualKg, 1e-9)
	assert.InDelta(t, 5.57, s.CO2.LifetimeTonnes, 1e-9)
}

func TestProjectNeverAmortized(t *testing.T) {
	p, err := Project(Inputs{PeakKW: 9, ConsumptionKWh: 3000, ImportKWh: 2990, ExportKWh: 0}, DefaultTariffs())
	require.NoError(t, err)
	assert.Equal(t, 25, p.Summary.PaybackYears)
	assert.False(t, p.Years[24].Amortized)
}

func TestProjectInstallCostOverride(t *testing.T) {
	p, err := Project(Inputs{PeakKW: 3, ConsumptionKWh: 4000, ImportKWh: 2000, ExportKWh: 500, InstallCost: 7000}, DefaultTariffs())
	require.NoError(t, err)
	assert.InDelta(t, 7000, p.Summary.InstallCost, 1e-9)
	assert.InDelta(t, 7000-240, p.Summary.NetInvestment, 1e-9)
}

func TestProjectRejectsBadInputs(t *testing.T) {
	_, err := Project(Inputs{PeakKW: 0, ConsumptionKWh: 1}, DefaultTariffs())
	assert.Error(t, err)
	_, err = Project(Inputs{PeakKW: 3, ConsumptionKWh: math.NaN()}, DefaultTariffs())
	assert.Error(t, err)
	_, err = Project(Inputs{PeakKW: 3, ImportKWh: -1}, DefaultTariffs())
	assert.Error(t, err)
}

func TestKeyYearsIncludesPayback(t *testing.T) {
	p, err := Project(Inputs{PeakKW: 6, ProductionKWh: 4000, ConsumptionKWh: 5000, ImportKWh: 3000, ExportKWh: 2000}, DefaultTariffs())
	require.NoError(t, err)
	years := []int{}
	for _, r := range p.KeyYears() {
		years = append(years, r.Year)
	}
	assert.Equal(t, []int{1, 2, 3, 5, 10, 15, 20, 25}, years)

	p.Summary.PaybackYears = 7
	years = years[:0]
	for _, r := range p.KeyYears() {
		years = append(years, r.Year)
	}
	assert.Equal(t, []int{1, 2, 3, 5, 7, 10, 15, 20, 25}, years)
}

func TestLoadTariffsOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tariffs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_price: 0.30\ninflation: 0.05\n"), 0o644))

	tr, err := LoadTariffs(path)
	require.NoError(t, err)
	assert.Equal(t, 0.30, tr.BasePrice)
	assert.Equal(t, 0.05, tr.Inflation)
	assert.Equal(t, 1800.0, tr.CostPerKWc)
	assert.Equal(t, 25, tr.ProjectionYears)
}

func sampleBreakdown() consumption.Breakdown {
	return consumption.Breakdown{
		consumption.CategoryHeating:     4000,
		consumption.CategoryDHW:         2000,
		consumption.CategoryAppliances:  1000,
		consumption.CategoryCooking:     500,
		consumption.CategoryAudiovisual: 500,
	}
}

func TestCompareContracts(t *testing.T) {
	c, err := CompareContracts(sampleBreakdown(), 6, DefaultTariffs())
	require.NoError(t, err)

	assert.Equal(t, 6, c.KVA)
	assert.InDelta(t, 2164.0, c.Base.Total, 1e-6)
	require.NotNil(t, c.Peak)
	assert.InDelta(t, 4125, c.Peak.OffPeakKWh, 1e-9)
	assert.InDelta(t, 3875, c.Peak.PeakKWh, 1e-9)
	assert.InDelta(t, 4125.0/8000*100, c.Peak.OffPeakPct, 1e-9)
	assert.InDelta(t, 2055.42, c.Peak.Total, 1e-6)
	assert.InDelta(t, 108.58, c.SavingsVsBase, 1e-6)
}

func TestCompareContractsNoPeakAt3KVA(t *testing.T) {
	c, err := CompareContracts(sampleBreakdown(), 3, DefaultTariffs())
	require.NoError(t, err)
	assert.Equal(t, 3, c.KVA)
	assert.Nil(t, c.Peak)
	assert.InDelta(t, 136.12+8000*0.2516, c.Base.Total, 1e-6)
	assert.Zero(t, c.SavingsVsBase)
}

func TestCompareContractsUnknownKVA(t *testing.T) {
	c, err := CompareContracts(sampleBreakdown(), 7, DefaultTariffs())
	require.NoError(t, err)
	assert.Equal(t, DefaultSubscribedKVA, c.KVA)
}

func TestPlanOffPeak(t *testing.T) {
	tr := DefaultTariffs()

	p := PlanOffPeak(10000, model.ArchetypeAway, 6, tr)
	assert.Equal(t, 37.0, p.CurrentPct)
	assert.Equal(t, 52.0, p.OptimalPct)
	assert.InDelta(t, 94.8, p.Savings, 1e-6)

	p = PlanOffPeak(10000, model.ArchetypeRetired, 6, tr)
	assert.Equal(t, 37.0, p.OptimalPct)

	tr.OffPeakBoost = 30
	p = PlanOffPeak(10000, model.ArchetypeAway, 6, tr)
	assert.Equal(t, 55.0, p.OptimalPct)
}

func TestBatteryPrice(t *testing.T) {
	tests := []struct {
		name     string
		capacity float64
		tier     Tier
		total    float64
	}{
		{"listed", 10, TierStandard, 7500},
		{"listed premium", 13.5, TierPremium, 12150},
		{"interpolated", 8.5, TierStandard, 6690},
		{"below range", 2, TierStandard, 2205},
		{"above range", 20, TierStandard, 14250},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := BatteryPrice(tc.capacity, tc.tier)
			require.NoError(t, err)
			assert.InDelta(t, tc.total, p.Total, 1e-6)
			assert.InDelta(t, 0.8*tc.total, p.Hardware, 1e-6)
			assert.InDelta(t, 0.2*tc.total, p.Installation, 1e-6)
			assert.InDelta(t, tc.total/tc.capacity, p.PerKWh, 1e-6)
		})
	}
}

func TestBatteryPriceCycleCosts(t *testing.T) {
	p, err := BatteryPrice(10, TierStandard)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, p.CostPerCycle, 1e-9)
	assert.InDelta(t, 7500/(10*0.9*6000.0), p.CostPerStoredKWh, 1e-9)

	p, err = BatteryPrice(10, TierPremium)
	require.NoError(t, err)
	assert.InDelta(t, 10000/(10*6000.0), p.CostPerStoredKWh, 1e-9)
}

func TestBatteryPriceRejects(t *testing.T) {
	_, err := BatteryPrice(0, TierStandard)
	assert.Error(t, err)
	_, err = BatteryPrice(5, Tier("gold"))
	assert.Error(t, err)
}

func TestBatteryEconomics(t *testing.T) {
	tr := DefaultTariffs()
	without := reconcile.Totals{ImportKWh: 5000, ExportKWh: 3000}
	with := reconcile.Totals{ImportKWh: 3500, ExportKWh: 1800}

	e := BatteryEconomics(without, with, 7500, tr)
	assert.InDelta(t, 748, e.BalanceWithout, 1e-9)
	assert.InDelta(t, 562.6, e.BalanceWith, 1e-9)
	assert.InDelta(t, 185.4, e.AnnualSavings, 1e-9)
	assert.InDelta(t, 7500/185.4, e.ROIYears, 1e-9)

	e = BatteryEconomics(without, without, 7500, tr)
	assert.Equal(t, float64(MaxROIYears), e.ROIYears)
}
