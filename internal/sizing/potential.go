package sizing

import (
	"math"
	"sort"

	"pv-simulator/internal/model"
)

// SurplusStats summarizes the daily PV surplus a battery could shift.
// It does not depend on a battery size.
type SurplusStats struct {
	Days int `json:"days"`

	MeanDailyProductionKWh float64 `json:"mean_daily_production_kwh"`
	MeanDailySurplusKWh    float64 `json:"mean_daily_surplus_kwh"`
	MaxDailySurplusKWh     float64 `json:"max_daily_surplus_kwh"`
	P05DailySurplusKWh     float64 `json:"p05_daily_surplus_kwh"`
	P50DailySurplusKWh     float64 `json:"p50_daily_surplus_kwh"`
	P95DailySurplusKWh     float64 `json:"p95_daily_surplus_kwh"`

	// DaysWithSurplus counts days exporting more than 0.1 kWh.
	DaysWithSurplus int `json:"days_with_surplus"`
	// ShiftableKWh is the part of each day's surplus that evening demand could absorb, summed.
	ShiftableKWh float64 `json:"shiftable_kwh"`
}

// ComputeSurplus aggregates the hourly surplus and the demand left after it per day.
func ComputeSurplus(prod, cons model.Series) SurplusStats {
	st := SurplusStats{Days: model.DaysPerYear}
	if len(prod) != model.HoursPerYear || len(cons) != model.HoursPerYear {
		return SurplusStats{}
	}

	surplus := make([]float64, model.DaysPerYear)
	deficit := make([]float64, model.DaysPerYear)
	for h := range prod {
		d := model.DayOfHour(h)
		if diff := prod[h] - cons[h]; diff > 0 {
			surplus[d] += diff
		} else {
			deficit[d] -= diff
		}
	}

	sum, maxv := 0.0, math.Inf(-1)
	for d, s := range surplus {
		sum += s
		maxv = math.Max(maxv, s)
		if s > 0.1 {
			st.DaysWithSurplus++
		}
		st.ShiftableKWh += math.Min(s, deficit[d])
	}
	st.MeanDailyProductionKWh = prod.Total() / model.DaysPerYear
	st.MeanDailySurplusKWh = sum / model.DaysPerYear
	st.MaxDailySurplusKWh = maxv

	sorted := append([]float64(nil), surplus...)
	sort.Float64s(sorted)
	st.P05DailySurplusKWh = percentileSorted(sorted, 0.05)
	st.P50DailySurplusKWh = percentileSorted(sorted, 0.50)
	st.P95DailySurplusKWh = percentileSorted(sorted, 0.95)
	return st
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
