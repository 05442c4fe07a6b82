package simulation

import (
	"time"

	"pv-simulator/internal/battery"
	"pv-simulator/internal/consumption"
	"pv-simulator/internal/financial"
	"pv-simulator/internal/model"
	"pv-simulator/internal/reconcile"
	"pv-simulator/internal/sizing"
)

// Report is everything one simulation run produced. The hourly series ride
// along for the hourly and ledger endpoints but are not serialized.
type Report struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Duration  time.Duration `json:"duration_ns"`

	Weather      model.WeatherMetadata  `json:"weather"`
	Installation InstallationSummary    `json:"installation"`
	Production   ProductionSummary      `json:"production"`
	Consumption  ConsumptionSummary     `json:"consumption"`
	Balance      BalanceSummary         `json:"balance"`
	Battery      *BatterySummary        `json:"battery,omitempty"`
	Financial    FinancialSummary       `json:"financial"`
	Sizing       *sizing.Recommendation `json:"sizing,omitempty"`

	Series *Series `json:"-"`
}

type InstallationSummary struct {
	PeakKW         float64              `json:"peak_kw"`
	InverterKW     float64              `json:"inverter_kw"`
	InverterFamily model.InverterFamily `json:"inverter_family"`
	AzimuthDeg     float64              `json:"azimuth_deg"`
	TiltDeg        float64              `json:"tilt_deg"`
	Shading        float64              `json:"shading"`
	LossFactor     float64              `json:"loss_factor"`
	Latitude       float64              `json:"latitude"`
	Longitude      float64              `json:"longitude"`
}

type ProductionSummary struct {
	AnnualKWh        float64     `json:"annual_kwh"`
	SpecificYield    float64     `json:"specific_yield_kwh_kwc"`
	PerformanceRatio float64     `json:"performance_ratio"`
	ClippedKWh       float64     `json:"clipped_kwh"`
	Monthly          [12]float64 `json:"monthly_kwh"`
	Daily            [24]float64 `json:"hour_of_day_kwh"`
	DisplayOnly      bool        `json:"display_only,omitempty"`
}

type ConsumptionSummary struct {
	Mode      consumption.Mode        `json:"mode"`
	AnnualKWh float64                 `json:"annual_kwh"`
	Monthly   [12]float64             `json:"monthly_kwh"`
	Daily     [24]float64             `json:"hour_of_day_kwh"`
	Breakdown consumption.Breakdown   `json:"breakdown_kwh"`
	Items     []consumption.ItemUsage `json:"items,omitempty"`

	ExpectedKWh float64 `json:"expected_kwh"`
	GapPct      float64 `json:"gap_pct"`
}

// BalanceSummary is the no-battery reconciliation.
type BalanceSummary struct {
	reconcile.Totals
	SelfConsumptionRate float64                  `json:"self_consumption_rate"`
	SelfProductionRate  float64                  `json:"self_production_rate"`
	Monthly             []reconcile.MonthBalance `json:"monthly"`
}

type BatterySummary struct {
	Name             string  `json:"name,omitempty"`
	CapacityKWh      float64 `json:"capacity_kwh"`
	UsableKWh        float64 `json:"usable_kwh"`
	MaxPowerKW       float64 `json:"max_power_kw"`
	Efficiency       float64 `json:"efficiency"`
	DepthOfDischarge float64 `json:"depth_of_discharge"`

	Totals              reconcile.Totals `json:"totals"`
	SelfConsumptionRate float64          `json:"self_consumption_rate"`
	SelfProductionRate  float64          `json:"self_production_rate"`
	SelfConsumptionGain float64          `json:"self_consumption_gain"`
	SelfProductionGain  float64          `json:"self_production_gain"`
	EnergyCycledKWh     float64          `json:"energy_cycled_kwh"`
	CyclesPerYear       float64          `json:"cycles_per_year"`
	LifetimeYears       float64          `json:"lifetime_years"`

	Price     financial.Price     `json:"price"`
	Economics financial.Economics `json:"economics"`
}

type FinancialSummary struct {
	Projection *financial.Projection        `json:"projection"`
	KeyYears   []financial.YearRow          `json:"key_years"`
	Contracts  financial.ContractComparison `json:"contracts"`
	OffPeak    financial.OffPeakPlan        `json:"off_peak"`
	// WithBattery projects PV plus battery as one investment.
	WithBattery *financial.Summary `json:"with_battery,omitempty"`
}

// Series are the hourly results on the shared 8760-hour grid.
// The battery fields are nil when no battery was simulated.
type Series struct {
	Production  model.Series
	Consumption model.Series
	Self        model.Series
	Export      model.Series
	Import      model.Series

	BatterySelf   model.Series
	BatteryExport model.Series
	BatteryImport model.Series
	Ledger        []battery.LedgerRow
}

// HourRow is one hour of Series, for JSON output.
type HourRow struct {
	Hour           int      `json:"hour"`
	Day            int      `json:"day"`
	HourOfDay      int      `json:"hour_of_day"`
	ProductionKWh  float64  `json:"production_kwh"`
	ConsumptionKWh float64  `json:"consumption_kwh"`
	SelfKWh        float64  `json:"self_kwh"`
	ExportKWh      float64  `json:"export_kwh"`
	ImportKWh      float64  `json:"import_kwh"`
	SOCKWh         *float64 `json:"soc_kwh,omitempty"`
}

// Rows returns hours [from, to) clamped to the year, battery-adjusted when a
// battery ran.
func (s *Series) Rows(from, to int) []HourRow {
	if s == nil {
		return nil
	}
	from = max(from, 0)
	to = min(to, len(s.Production))
	if from >= to {
		return []HourRow{}
	}
	self, export, imp := s.Self, s.Export, s.Import
	if s.BatterySelf != nil {
		self, export, imp = s.BatterySelf, s.BatteryExport, s.BatteryImport
	}
	out := make([]HourRow, 0, to-from)
	for h := from; h < to; h++ {
		r := HourRow{
			Hour:           h,
			Day:            model.DayOfHour(h),
			HourOfDay:      model.HourOfDay(h),
			ProductionKWh:  s.Production[h],
			ConsumptionKWh: s.Consumption[h],
			SelfKWh:        self[h],
			ExportKWh:      export[h],
			ImportKWh:      imp[h],
		}
		if h < len(s.Ledger) {
			soc := s.Ledger[h].SOCEnd
			r.SOCKWh = &soc
		}
		out = append(out, r)
	}
	return out
}
