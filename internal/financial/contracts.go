package financial

import (
	"fmt"

	"pv-simulator/internal/consumption"
	"pv-simulator/internal/model"

	"github.com/samber/lo"
)

const DefaultSubscribedKVA = 6

// ContractCost is the yearly cost of one contract option.
type ContractCost struct {
	Subscription float64 `json:"subscription"`
	Energy       float64 `json:"energy"`
	Total        float64 `json:"total"`
}

type PeakCost struct {
	ContractCost
	PeakKWh      float64 `json:"peak_kwh"`
	OffPeakKWh   float64 `json:"off_peak_kwh"`
	OffPeakPct   float64 `json:"off_peak_pct"`
	PeakPrice    float64 `json:"peak_price"`
	OffPeakPrice float64 `json:"off_peak_price"`
}

// ContractComparison sets the flat contract against peak/off-peak.
// Peak is nil when the subscribed power has no peak/off-peak offer.
// SavingsVsBase > 0 means peak/off-peak is cheaper.
type ContractComparison struct {
	KVA           int          `json:"kva"`
	Base          ContractCost `json:"base"`
	Peak          *PeakCost    `json:"peak,omitempty"`
	SavingsVsBase float64      `json:"savings_vs_base"`
}

// CompareContracts prices annual consumption under both contract types.
// An unknown kVA falls back to DefaultSubscribedKVA.
func CompareContracts(b consumption.Breakdown, kva int, t Tariffs) (*ContractComparison, error) {
	total := b.Total()
	if total < 0 {
		return nil, fmt.Errorf("compare contracts: negative consumption")
	}
	base, ok := t.BaseContracts[kva]
	if !ok {
		kva = DefaultSubscribedKVA
		base, ok = t.BaseContracts[kva]
		if !ok {
			return nil, fmt.Errorf("compare contracts: no base contract for %d kVA", kva)
		}
	}
	out := &ContractComparison{
		KVA: kva,
		Base: ContractCost{
			Subscription: base.Subscription,
			Energy:       total * base.Price,
		},
	}
	out.Base.Total = out.Base.Subscription + out.Base.Energy

	peak, ok := t.PeakContracts[kva]
	if !ok {
		return out, nil
	}
	off := OffPeakKWh(b, t.OffPeakShares)
	pc := &PeakCost{
		PeakKWh:      total - off,
		OffPeakKWh:   off,
		PeakPrice:    peak.PeakPrice,
		OffPeakPrice: peak.OffPeakPrice,
	}
	if total > 0 {
		pc.OffPeakPct = off / total * 100
	}
	pc.Subscription = peak.Subscription
	pc.Energy = pc.PeakKWh*peak.PeakPrice + pc.OffPeakKWh*peak.OffPeakPrice
	pc.Total = pc.Subscription + pc.Energy
	out.Peak = pc
	out.SavingsVsBase = out.Base.Total - pc.Total
	return out, nil
}

// OffPeakKWh is the consumption expected in off-peak hours; categories without a share count as peak.
func OffPeakKWh(b consumption.Breakdown, shares map[consumption.Category]float64) float64 {
	return lo.SumBy(lo.Entries(b), func(e lo.Entry[consumption.Category, float64]) float64 {
		return e.Value * shares[e.Key]
	})
}

// OffPeakPlan estimates what scheduling loads into off-peak hours saves.
type OffPeakPlan struct {
	CurrentPct float64 `json:"current_pct"`
	OptimalPct float64 `json:"optimal_pct"`
	Savings    float64 `json:"savings"`
}

// PlanOffPeak raises the archetype's off-peak share by the configured boost, up to the cap.
func PlanOffPeak(totalKWh float64, a model.Archetype, kva int, t Tariffs) OffPeakPlan {
	cur, ok := t.OffPeakByArchetype[a]
	if !ok {
		cur = 30
	}
	opt := min(cur+t.OffPeakBoost, t.OffPeakCap)
	peak, ok := t.PeakContracts[kva]
	if !ok {
		peak = t.PeakContracts[DefaultSubscribedKVA]
	}
	cost := func(pct float64) float64 {
		off := totalKWh * pct / 100
		return (totalKWh-off)*peak.PeakPrice + off*peak.OffPeakPrice
	}
	return OffPeakPlan{
		CurrentPct: cur,
		OptimalPct: opt,
		Savings:    cost(cur) - cost(opt),
	}
}
