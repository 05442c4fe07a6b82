package sizing

import (
	"context"
	"fmt"
	"sort"

	"pv-simulator/internal/battery"
	"pv-simulator/internal/financial"
	"pv-simulator/internal/model"
	"pv-simulator/internal/reconcile"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Candidate is one simulated battery size.
type Candidate struct {
	CapacityKWh         float64             `json:"capacity_kwh"`
	Price               financial.Price     `json:"price"`
	SelfConsumptionRate float64             `json:"self_consumption_rate"`
	SelfConsumptionGain float64             `json:"self_consumption_gain"`
	SelfProductionRate  float64             `json:"self_production_rate"`
	SelfKWh             float64             `json:"self_kwh"`
	ExportKWh           float64             `json:"export_kwh"`
	ImportKWh           float64             `json:"import_kwh"`
	CyclesPerYear       float64             `json:"cycles_per_year"`
	LifetimeYears       float64             `json:"lifetime_years"`
	Economics           financial.Economics `json:"economics"`
}

type Options struct {
	Archetype model.Archetype
	Tier      financial.Tier
	// Capacities overrides the standard sizes when set.
	Capacities []float64
	// BudgetMax drops candidates priced above it when > 0.
	BudgetMax float64
}

// Recommendation is the result of a sizing study.
type Recommendation struct {
	Archetype         model.Archetype `json:"archetype"`
	Rule              Rule            `json:"rule"`
	Surplus           SurplusStats    `json:"surplus"`
	TheoreticalKWh    float64         `json:"theoretical_kwh"`
	BaselineRate      float64         `json:"baseline_self_consumption_rate"`
	Candidates        []Candidate     `json:"candidates"`
	BestROI           *Candidate      `json:"best_roi,omitempty"`
	BestGain          *Candidate      `json:"best_gain,omitempty"`
	RecommendedKWh    float64         `json:"recommended_kwh"`
	BudgetExcludedAll bool            `json:"budget_excluded_all,omitempty"`
}

// Sizer compares battery sizes by simulating each one hour by hour.
type Sizer struct {
	Engine  *battery.Engine
	Prices  financial.PriceTable
	Tariffs financial.Tariffs
	Rules   Rules
}

func New(prices financial.PriceTable, tariffs financial.Tariffs, rules Rules) *Sizer {
	return &Sizer{Engine: battery.New(), Prices: prices, Tariffs: tariffs, Rules: rules}
}

// Size ranks candidate capacities by return on investment, fastest first.
// baseline is the no-battery reconciliation; it is computed when nil.
func (s *Sizer) Size(ctx context.Context, prod, cons model.Series, baseline *reconcile.Result, opts Options) (*Recommendation, error) {
	if opts.Tier == "" {
		opts.Tier = financial.TierStandard
	}
	if !opts.Tier.Valid() {
		return nil, fmt.Errorf("sizing: unknown tier %q", opts.Tier)
	}
	if baseline == nil {
		var err error
		if baseline, err = reconcile.Reconcile(prod, cons); err != nil {
			return nil, err
		}
	}
	caps := opts.Capacities
	if len(caps) == 0 {
		caps = s.Rules.Capacities
	}
	traits := s.Prices.Traits[opts.Tier]

	rec := &Recommendation{
		Archetype:      opts.Archetype,
		Rule:           s.Rules.Rule(opts.Archetype),
		Surplus:        ComputeSurplus(prod, cons),
		TheoreticalKWh: s.Rules.Recommend(prod.Total(), opts.Archetype),
		BaselineRate:   baseline.SelfConsumptionRate,
	}

	all := make([]Candidate, 0, len(caps))
	for _, c := range caps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		price, err := s.Prices.Quote(c, opts.Tier)
		if err != nil {
			return nil, fmt.Errorf("sizing %v kWh: %w", c, err)
		}
		cfg := s.Rules.Config(c, traits.Efficiency, traits.DepthOfDischarge, traits.GuaranteedCycles)
		cfg.Name = fmt.Sprintf("%s %g kWh", opts.Tier, c)
		res, err := s.Engine.Run(prod, cons, cfg, baseline)
		if err != nil {
			return nil, fmt.Errorf("sizing %v kWh: %w", c, err)
		}
		all = append(all, Candidate{
			CapacityKWh:         c,
			Price:               price,
			SelfConsumptionRate: res.SelfConsumptionRate,
			SelfConsumptionGain: res.SelfConsumptionGain,
			SelfProductionRate:  res.SelfProductionRate,
			SelfKWh:             res.Totals.SelfKWh,
			ExportKWh:           res.Totals.ExportKWh,
			ImportKWh:           res.Totals.ImportKWh,
			CyclesPerYear:       res.CyclesPerYear,
			LifetimeYears:       res.LifetimeYears,
			Economics:           financial.BatteryEconomics(baseline.Totals, res.Totals, price.Total, s.Tariffs),
		})
	}

	if opts.BudgetMax > 0 {
		all = lo.Filter(all, func(c Candidate, _ int) bool { return c.Price.Total <= opts.BudgetMax })
		rec.BudgetExcludedAll = len(all) == 0
	}
	rec.Candidates = RankByROI(all)

	if len(rec.Candidates) > 0 {
		best := rec.Candidates[0]
		gain := lo.MaxBy(rec.Candidates, func(a, b Candidate) bool { return a.SelfConsumptionGain > b.SelfConsumptionGain })
		rec.BestROI, rec.BestGain = &best, &gain
		rec.RecommendedKWh = best.CapacityKWh
	}

	log.Debug().
		Str("archetype", string(opts.Archetype)).
		Int("candidates", len(rec.Candidates)).
		Float64("recommended_kwh", rec.RecommendedKWh).
		Msg("battery sizing")
	return rec, nil
}

// RankByROI sorts candidates by payback years ascending; ties favor the larger gain.
func RankByROI(cands []Candidate) []Candidate {
	out := append([]Candidate(nil), cands...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Economics.ROIYears != out[j].Economics.ROIYears {
			return out[i].Economics.ROIYears < out[j].Economics.ROIYears
		}
		return out[i].SelfConsumptionGain > out[j].SelfConsumptionGain
	})
	return out
}
