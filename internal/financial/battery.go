package financial

import (
	"fmt"
	"math"
	"sort"

	"pv-simulator/internal/reconcile"
)

type Tier string

const (
	TierEconomy  Tier = "economy"
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

func Tiers() []Tier { return []Tier{TierEconomy, TierStandard, TierPremium} }

func (t Tier) Valid() bool {
	switch t {
	case TierEconomy, TierStandard, TierPremium:
		return true
	}
	return false
}

// TierTraits are the typical datasheet values of a price tier.
type TierTraits struct {
	Efficiency       float64 `yaml:"efficiency" json:"efficiency"`
	DepthOfDischarge float64 `yaml:"depth_of_discharge" json:"depth_of_discharge"`
	GuaranteedCycles float64 `yaml:"guaranteed_cycles" json:"guaranteed_cycles"`
	WarrantyYears    int     `yaml:"warranty_years" json:"warranty_years"`
}

// PriceTable holds installed prices (€) per capacity (kWh) and tier.
type PriceTable struct {
	Prices        map[float64]map[Tier]float64 `yaml:"prices"`
	Traits        map[Tier]TierTraits          `yaml:"traits"`
	HardwareShare float64                      `yaml:"hardware_share"`
	SmallPremium  float64                      `yaml:"small_premium"`
	LargeDiscount float64                      `yaml:"large_discount"`
}

func DefaultPriceTable() PriceTable {
	lfp := TierTraits{Efficiency: 0.95, DepthOfDischarge: 0.90, GuaranteedCycles: 6000, WarrantyYears: 10}
	return PriceTable{
		Prices: map[float64]map[Tier]float64{
			3:    {TierEconomy: 2625, TierStandard: 3150, TierPremium: 3938},
			5:    {TierEconomy: 3750, TierStandard: 4500, TierPremium: 5625},
			7:    {TierEconomy: 4900, TierStandard: 5880, TierPremium: 7350},
			10:   {TierEconomy: 6000, TierStandard: 7500, TierPremium: 10000},
			13.5: {TierEconomy: 8100, TierStandard: 10125, TierPremium: 12150},
			15:   {TierEconomy: 9000, TierStandard: 11250, TierPremium: 13500},
		},
		Traits: map[Tier]TierTraits{
			TierEconomy:  lfp,
			TierStandard: lfp,
			TierPremium:  {Efficiency: 0.90, DepthOfDischarge: 1.0, GuaranteedCycles: 6000, WarrantyYears: 10},
		},
		HardwareShare: 0.80,
		SmallPremium:  1.05,
		LargeDiscount: 0.95,
	}
}

// Capacities returns the listed capacities in ascending order.
func (pt PriceTable) Capacities() []float64 {
	out := make([]float64, 0, len(pt.Prices))
	for c := range pt.Prices {
		out = append(out, c)
	}
	sort.Float64s(out)
	return out
}

// Price is a battery quote. CostPerStoredKWh spreads the price over every kWh the warranty covers.
type Price struct {
	CapacityKWh      float64 `json:"capacity_kwh"`
	Tier             Tier    `json:"tier"`
	Hardware         float64 `json:"hardware"`
	Installation     float64 `json:"installation"`
	Total            float64 `json:"total"`
	PerKWh           float64 `json:"per_kwh"`
	CostPerCycle     float64 `json:"cost_per_cycle"`
	CostPerStoredKWh float64 `json:"cost_per_stored_kwh"`
}

// Quote prices capacity for a tier. Between listed capacities the price is
// interpolated; outside the table the nearest per-kWh price is scaled with a
// premium below the range and a discount above.
func (pt PriceTable) Quote(capacity float64, tier Tier) (Price, error) {
	if !(capacity > 0) || math.IsInf(capacity, 0) {
		return Price{}, fmt.Errorf("battery price: capacity must be > 0")
	}
	if !tier.Valid() {
		return Price{}, fmt.Errorf("battery price: unknown tier %q", tier)
	}
	caps := pt.Capacities()
	if len(caps) == 0 {
		return Price{}, fmt.Errorf("battery price: empty price table")
	}

	var total float64
	lo, hi := caps[0], caps[len(caps)-1]
	switch {
	case capacity < lo:
		total = capacity * pt.Prices[lo][tier] / lo * pt.SmallPremium
	case capacity > hi:
		total = capacity * pt.Prices[hi][tier] / hi * pt.LargeDiscount
	default:
		i := sort.SearchFloat64s(caps, capacity)
		if caps[i] == capacity {
			total = pt.Prices[capacity][tier]
			break
		}
		c0, c1 := caps[i-1], caps[i]
		p0, p1 := pt.Prices[c0][tier], pt.Prices[c1][tier]
		total = p0 + (capacity-c0)/(c1-c0)*(p1-p0)
	}

	tr := pt.Traits[tier]
	p := Price{
		CapacityKWh:  capacity,
		Tier:         tier,
		Hardware:     total * pt.HardwareShare,
		Installation: total * (1 - pt.HardwareShare),
		Total:        total,
		PerKWh:       total / capacity,
	}
	if tr.GuaranteedCycles > 0 {
		p.CostPerCycle = total / tr.GuaranteedCycles
		if tr.DepthOfDischarge > 0 {
			p.CostPerStoredKWh = total / (capacity * tr.DepthOfDischarge * tr.GuaranteedCycles)
		}
	}
	return p, nil
}

// BatteryPrice quotes from the default table.
func BatteryPrice(capacity float64, tier Tier) (Price, error) {
	return DefaultPriceTable().Quote(capacity, tier)
}

// Economics compares the annual grid balance with and without a battery.
// Balance is purchases minus feed-in revenue, so lower is better.
type Economics struct {
	BalanceWithout float64 `json:"balance_without"`
	BalanceWith    float64 `json:"balance_with"`
	AnnualSavings  float64 `json:"annual_savings"`
	Cost           float64 `json:"cost"`
	ROIYears       float64 `json:"roi_years"`
}

// MaxROIYears is reported when the battery saves nothing.
const MaxROIYears = 99

// BatteryEconomics prices the grid exchange of both runs with the battery buy/sell prices.
func BatteryEconomics(without, with reconcile.Totals, cost float64, t Tariffs) Economics {
	bal := func(x reconcile.Totals) float64 {
		return x.ImportKWh*t.BatteryBuyPrice - x.ExportKWh*t.BatterySellPrice
	}
	e := Economics{
		BalanceWithout: bal(without),
		BalanceWith:    bal(with),
		Cost:           cost,
		ROIYears:       MaxROIYears,
	}
	e.AnnualSavings = e.BalanceWithout - e.BalanceWith
	if e.AnnualSavings > 0 {
		e.ROIYears = math.Min(MaxROIYears, cost/e.AnnualSavings)
	}
	return e
}
