package financial

import (
	"fmt"
	"os"

	"pv-simulator/internal/consumption"
	"pv-simulator/internal/model"

	"gopkg.in/yaml.v3"
)

// Band maps installed peak power up to UpToKWc (inclusive) onto a value.
type Band struct {
	UpToKWc float64 `yaml:"up_to_kwc" json:"up_to_kwc"`
	Value   float64 `yaml:"value" json:"value"`
}

// BaseContract is a flat-rate supply contract for one subscribed power.
type BaseContract struct {
	Subscription float64 `yaml:"subscription" json:"subscription"`
	Price        float64 `yaml:"price" json:"price"`
}

// PeakContract is a peak/off-peak contract for one subscribed power.
type PeakContract struct {
	Subscription float64 `yaml:"subscription" json:"subscription"`
	PeakPrice    float64 `yaml:"peak_price" json:"peak_price"`
	OffPeakPrice float64 `yaml:"off_peak_price" json:"off_peak_price"`
}

// Tariffs holds every price used by the projector.
// Units:
// - prices: €/kWh
// - fees and subscriptions: €/year
// - CostPerKWc and subsidy bands: €/kWc
// - CO2PerKWh: kg/kWh
type Tariffs struct {
	BasePrice       float64 `yaml:"base_price"`
	Inflation       float64 `yaml:"inflation"`
	ProjectionYears int     `yaml:"projection_years"`
	GridFees        []Band  `yaml:"grid_fees"`
	FeedIn          []Band  `yaml:"feed_in"`
	Subsidy         []Band  `yaml:"subsidy"`
	CostPerKWc      float64 `yaml:"cost_per_kwc"`
	CO2PerKWh       float64 `yaml:"co2_per_kwh"`

	BatteryBuyPrice  float64 `yaml:"battery_buy_price"`
	BatterySellPrice float64 `yaml:"battery_sell_price"`

	BaseContracts map[int]BaseContract `yaml:"base_contracts"`
	PeakContracts map[int]PeakContract `yaml:"peak_contracts"`
	// OffPeakShares is the share of each category consumed in off-peak hours.
	OffPeakShares map[consumption.Category]float64 `yaml:"off_peak_shares"`
	// OffPeakByArchetype is the off-peak share (percent) a household reaches without scheduling.
	OffPeakByArchetype map[model.Archetype]float64 `yaml:"off_peak_by_archetype"`
	OffPeakBoost       float64                     `yaml:"off_peak_boost"`
	OffPeakCap         float64                     `yaml:"off_peak_cap"`
}

func DefaultTariffs() Tariffs {
	return Tariffs{
		BasePrice:       0.2516,
		Inflation:       0.03,
		ProjectionYears: 25,
		GridFees: []Band{
			{UpToKWc: 6, Value: 51.17},
			{UpToKWc: 9, Value: 63.26},
			{UpToKWc: 0, Value: 75.35},
		},
		FeedIn: []Band{
			{UpToKWc: 9, Value: 0.04},
			{UpToKWc: 0, Value: 0.07},
		},
		Subsidy: []Band{
			{UpToKWc: 9, Value: 80},
			{UpToKWc: 36, Value: 140},
			{UpToKWc: 100, Value: 70},
		},
		CostPerKWc: 1800,
		CO2PerKWh:  0.0557,

		BatteryBuyPrice:  0.2276,
		BatterySellPrice: 0.13,

		BaseContracts: map[int]BaseContract{
			3:  {Subscription: 136.12, Price: 0.2516},
			6:  {Subscription: 151.20, Price: 0.2516},
			9:  {Subscription: 189.48, Price: 0.2516},
			12: {Subscription: 228.48, Price: 0.2516},
			15: {Subscription: 266.76, Price: 0.2516},
		},
		PeakContracts: map[int]PeakContract{
			6:  {Subscription: 156.12, PeakPrice: 0.27, OffPeakPrice: 0.2068},
			9:  {Subscription: 198.24, PeakPrice: 0.27, OffPeakPrice: 0.2068},
			12: {Subscription: 242.88, PeakPrice: 0.27, OffPeakPrice: 0.2068},
			15: {Subscription: 282.00, PeakPrice: 0.27, OffPeakPrice: 0.2068},
		},
		OffPeakShares: map[consumption.Category]float64{
			consumption.CategoryHeating:     0.50,
			consumption.CategoryDHW:         0.80,
			consumption.CategoryAppliances:  0.35,
			consumption.CategoryCooking:     0.10,
			consumption.CategoryAudiovisual: 0.25,
			consumption.CategoryLighting:    0.45,
		},
		OffPeakByArchetype: map[model.Archetype]float64{
			model.ArchetypeAway:       37,
			model.ArchetypeHomeOffice: 32,
			model.ArchetypeRetired:    22,
			model.ArchetypeFamily:     30,
		},
		OffPeakBoost: 15,
		OffPeakCap:   55,
	}
}

// LoadTariffs overlays a YAML file on the defaults.
func LoadTariffs(path string) (Tariffs, error) {
	t := DefaultTariffs()
	b, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tariffs %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &t); err != nil {
		return t, fmt.Errorf("parse tariffs %s: %w", path, err)
	}
	return t, t.Validate()
}

func (t Tariffs) Validate() error {
	switch {
	case !(t.BasePrice > 0):
		return fmt.Errorf("tariffs: base_price must be > 0")
	case t.Inflation < 0:
		return fmt.Errorf("tariffs: inflation must be >= 0")
	case t.ProjectionYears <= 0:
		return fmt.Errorf("tariffs: projection_years must be > 0")
	case len(t.GridFees) == 0 || len(t.FeedIn) == 0:
		return fmt.Errorf("tariffs: grid_fees and feed_in need at least one band")
	case t.CostPerKWc < 0:
		return fmt.Errorf("tariffs: cost_per_kwc must be >= 0")
	}
	return nil
}

// GridFee is the fixed yearly grid-access fee for the installed power.
func (t Tariffs) GridFee(peakKW float64) float64 {
	return openBand(t.GridFees, peakKW)
}

// FeedInPrice is the €/kWh paid for exported surplus.
func (t Tariffs) FeedInPrice(peakKW float64) float64 {
	return openBand(t.FeedIn, peakKW)
}

// SubsidyAmount is the one-time self-consumption subsidy; none above the last band.
func (t Tariffs) SubsidyAmount(peakKW float64) float64 {
	if peakKW <= 0 {
		return 0
	}
	for _, b := range t.Subsidy {
		if peakKW <= b.UpToKWc {
			return peakKW * b.Value
		}
	}
	return 0
}

// openBand picks the first band covering kwc; UpToKWc 0 or running past the end means the last band.
func openBand(bands []Band, kwc float64) float64 {
	if len(bands) == 0 {
		return 0
	}
	for _, b := range bands {
		if b.UpToKWc <= 0 || kwc <= b.UpToKWc {
			return b.Value
		}
	}
	return bands[len(bands)-1].Value
}
