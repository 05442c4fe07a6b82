package sizing

import (
	"math"

	"pv-simulator/internal/model"
)

// Rule is the battery-to-daily-production ratio that suits an occupancy pattern.
type Rule struct {
	MinRatio     float64 `yaml:"min_ratio" json:"min_ratio"`
	MaxRatio     float64 `yaml:"max_ratio" json:"max_ratio"`
	OptimalRatio float64 `yaml:"optimal_ratio" json:"optimal_ratio"`
	Description  string  `yaml:"description" json:"description"`
}

type Rules struct {
	ByArchetype map[model.Archetype]Rule `yaml:"by_archetype"`
	// Capacities are the standard sizes sold, ascending.
	Capacities []float64 `yaml:"capacities"`
	// CRate sets the charge/discharge power as a fraction of capacity.
	CRate float64 `yaml:"c_rate"`
}

func DefaultRules() Rules {
	return Rules{
		ByArchetype: map[model.Archetype]Rule{
			model.ArchetypeAway: {
				MinRatio: 0.30, MaxRatio: 0.45, OptimalRatio: 0.35,
				Description: "Away during the day, morning and evening peaks",
			},
			model.ArchetypeHomeOffice: {
				MinRatio: 0.40, MaxRatio: 0.55, OptimalRatio: 0.45,
				Description: "Home during the day, spread consumption",
			},
			model.ArchetypeRetired: {
				MinRatio: 0.40, MaxRatio: 0.55, OptimalRatio: 0.45,
				Description: "Home all day, strong daytime consumption",
			},
			model.ArchetypeFamily: {
				MinRatio: 0.35, MaxRatio: 0.50, OptimalRatio: 0.40,
				Description: "Family with children, marked morning and evening peaks",
			},
		},
		Capacities: []float64{3, 5, 7, 10, 13.5, 15},
		CRate:      0.5,
	}
}

// Rule returns the archetype's rule, or the away rule for unknown archetypes.
func (r Rules) Rule(a model.Archetype) Rule {
	if rule, ok := r.ByArchetype[a]; ok {
		return rule
	}
	return r.ByArchetype[model.ArchetypeAway]
}

// Recommend sizes a battery at the archetype ratio of mean daily production,
// rounded to the nearest standard capacity. No production means no battery.
func (r Rules) Recommend(annualProductionKWh float64, a model.Archetype) float64 {
	daily := annualProductionKWh / model.DaysPerYear
	return r.RoundToStandard(daily * r.Rule(a).OptimalRatio)
}

// RoundToStandard picks the closest standard capacity; ties go to the smaller one.
func (r Rules) RoundToStandard(capacity float64) float64 {
	if capacity <= 0 || len(r.Capacities) == 0 {
		return 0
	}
	best := r.Capacities[0]
	for _, c := range r.Capacities[1:] {
		if math.Abs(c-capacity) < math.Abs(best-capacity) {
			best = c
		}
	}
	return best
}

// Config builds the battery a capacity stands for, using tier datasheet values.
func (r Rules) Config(capacity, efficiency, dod, cycles float64) model.BatteryConfig {
	cfg := model.NewBatteryConfig(capacity, capacity*r.CRate)
	if efficiency > 0 {
		cfg.Efficiency = efficiency
	}
	if dod > 0 {
		cfg.DepthOfDischarge = dod
	}
	if cycles > 0 {
		cfg.GuaranteedCycles = cycles
	}
	return cfg
}
