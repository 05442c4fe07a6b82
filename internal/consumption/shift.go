package consumption

import (
	"fmt"

	"pv-simulator/internal/model"
)

// ShiftPlan moves part of the load out of avoidable hours into solar hours.
type ShiftPlan struct {
	// Share is the fraction of avoidable-hour energy to move, e.g. 0.3, 0.5 or 0.7.
	Share     float64  `json:"share" yaml:"share"`
	Avoidable []Window `json:"avoidable" yaml:"avoidable"`
	Solar     []Window `json:"solar" yaml:"solar"`
}

// ShiftLevels are the advice levels offered to households.
var ShiftLevels = []float64{0.3, 0.5, 0.7}

func DefaultShiftPlan(share float64) ShiftPlan {
	return ShiftPlan{
		Share:     share,
		Avoidable: []Window{{Start: "00:00", End: "06:00"}, {Start: "21:00", End: "24:00"}},
		Solar:     []Window{{Start: "10:00", End: "16:00"}},
	}
}

// Apply returns a shifted copy of s. Every day keeps its total: the energy
// removed from avoidable hours lands in solar hours in proportion to the load
// already there, or evenly when those hours are empty.
func (p ShiftPlan) Apply(s model.Series) (model.Series, error) {
	if err := s.Validate("consumption"); err != nil {
		return nil, err
	}
	if p.Share < 0 || p.Share > 1 {
		return nil, fmt.Errorf("shift share %.2f: %w", p.Share, model.ErrInvalidInput)
	}
	avoid, err := masks(p.Avoidable)
	if err != nil {
		return nil, fmt.Errorf("avoidable window: %w", err)
	}
	solar, err := masks(p.Solar)
	if err != nil {
		return nil, fmt.Errorf("solar window: %w", err)
	}
	nSolar := 0
	for h := range solar {
		if solar[h] && avoid[h] {
			return nil, fmt.Errorf("solar and avoidable windows overlap at %02d:00: %w", h, model.ErrInvalidInput)
		}
		if solar[h] {
			nSolar++
		}
	}

	out := s.Clone()
	if nSolar == 0 || p.Share == 0 {
		return out, nil
	}
	for d := 0; d < model.DaysPerYear; d++ {
		day := out[d*model.HoursPerDay : (d+1)*model.HoursPerDay]
		moved, solarLoad := 0.0, 0.0
		for h, v := range day {
			if avoid[h] {
				moved += v * p.Share
				day[h] = v * (1 - p.Share)
			} else if solar[h] {
				solarLoad += v
			}
		}
		for h := range day {
			if !solar[h] {
				continue
			}
			if solarLoad > 0 {
				day[h] += moved * day[h] / solarLoad
			} else {
				day[h] += moved / float64(nSolar)
			}
		}
	}
	return out, nil
}
