package consumption

import (
	"sort"

	"pv-simulator/internal/model"

	"github.com/rs/zerolog/log"
)

// Decomposer splits a declared annual total into categories.
type Decomposer struct {
	Calc Calculator
}

// Decompose always returns a breakdown summing to total.
// Fixed EV and pool allowances are taken first and scaled down together when
// they alone exceed the total; heating and hot water are then capped against
// what remains, and the rest is split by weight.
func (d Decomposer) Decompose(h model.Household, total float64) Breakdown {
	g := d.Calc.T.Generic
	b := Breakdown{}
	remaining := total

	var ev, pool float64
	if hasEV(h) {
		ev = g.EVFixed
	}
	if hasPool(h) {
		pool = g.PoolFixed
	}
	if fixed := ev + pool; fixed > total && fixed > 0 {
		ev, pool = ev*total/fixed, pool*total/fixed
	}
	b[CategoryEV] = ev
	b[CategoryPool] = pool
	remaining -= ev + pool

	heating := min(d.Calc.Heating(h), remaining*g.HeatingCap)
	b[CategoryHeating] = heating
	remaining -= heating

	dhw := min(d.Calc.DHW(h), remaining*g.DHWCap)
	b[CategoryDHW] = dhw
	remaining -= dhw

	if remaining > 0 {
		wsum := 0.0
		for _, w := range g.RestWeights {
			wsum += w
		}
		// Sorted so the float sum is deterministic.
		cats := make([]Category, 0, len(g.RestWeights))
		for c := range g.RestWeights {
			cats = append(cats, c)
		}
		sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
		for _, c := range cats {
			if wsum > 0 {
				b[c] += remaining * g.RestWeights[c] / wsum
			}
		}
	}

	log.Debug().Float64("declared_kwh", total).Float64("heating_kwh", heating).Float64("dhw_kwh", dhw).Msg("declared total decomposed")
	return b
}

func hasEV(h model.Household) bool {
	return h.HasAppliance(model.ApplianceEVCharger) || (h.Inventory != nil && len(h.Inventory.Vehicles) > 0)
}

func hasPool(h model.Household) bool {
	return h.HasAppliance(model.AppliancePoolPump) || (h.Inventory != nil && h.Inventory.Pool != nil)
}

// Standard estimates each category from flat per-person and per-m² rates.
func (d Decomposer) Standard(h model.Household) Breakdown {
	c := d.Calc
	b := Breakdown{
		CategoryHeating:     c.Heating(h),
		CategoryDHW:         c.DHW(h),
		CategoryAppliances:  c.Appliances(h),
		CategoryCooking:     c.Cooking(h),
		CategoryAudiovisual: c.Audiovisual(h),
		CategoryLighting:    c.Lighting(h),
	}
	if hasEV(h) {
		b[CategoryEV] = c.T.Generic.EVFixed
	}
	if hasPool(h) {
		b[CategoryPool] = c.T.Generic.PoolFixed
	}
	return b
}
