package sizing

import (
	"context"
	"testing"

	"pv-simulator/internal/financial"
	"pv-simulator/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatDay produces 2 kWh per hour from 10:00 to 14:59 against a constant 0.3 kWh load.
func flatDay() (model.Series, model.Series) {
	prod := model.NewSeries()
	for h := range prod {
		if hod := model.HourOfDay(h); hod >= 10 && hod <= 14 {
			prod[h] = 2
		}
	}
	return prod, model.Constant(0.3)
}

func TestRoundToStandard(t *testing.T) {
	r := DefaultRules()
	tests := map[float64]float64{
		0:     0,
		-1:    0,
		1:     3,
		5.6:   5,
		6:     5,
		6.1:   7,
		9:     10,
		14.25: 13.5,
		100:   15,
	}
	for in, want := range tests {
		assert.Equal(t, want, r.RoundToStandard(in), "capacity %v", in)
	}
}

func TestRecommend(t *testing.T) {
	r := DefaultRules()
	assert.Equal(t, 5.0, r.Recommend(5856, model.ArchetypeAway))
	assert.Equal(t, 10.0, r.Recommend(7300, model.ArchetypeHomeOffice))
	assert.Equal(t, 0.0, r.Recommend(0, model.ArchetypeFamily))
	assert.Equal(t, r.Rule(model.ArchetypeAway), r.Rule(model.Archetype("night_shift")))
}

func TestRulesConfig(t *testing.T) {
	cfg := DefaultRules().Config(10, 0.9, 1.0, 8000)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5.0, cfg.MaxPowerKW)
	assert.Equal(t, 0.9, cfg.Efficiency)
	assert.Equal(t, 1.0, cfg.DepthOfDischarge)
	assert.Equal(t, 8000.0, cfg.GuaranteedCycles)
}

func TestComputeSurplus(t *testing.T) {
	prod, cons := flatDay()
	st := ComputeSurplus(prod, cons)

	assert.Equal(t, 365, st.Days)
	assert.InDelta(t, 10, st.MeanDailyProductionKWh, 1e-9)
	assert.InDelta(t, 8.5, st.MeanDailySurplusKWh, 1e-9)
	assert.InDelta(t, 8.5, st.P05DailySurplusKWh, 1e-9)
	assert.InDelta(t, 8.5, st.P95DailySurplusKWh, 1e-9)
	assert.Equal(t, 365, st.DaysWithSurplus)
	assert.InDelta(t, 5.7*365, st.ShiftableKWh, 1e-6)

	assert.Equal(t, SurplusStats{}, ComputeSurplus(prod[:10], cons))
}

func TestPercentileSorted(t *testing.T) {
	v := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 1.0, percentileSorted(v, 0))
	assert.Equal(t, 3.0, percentileSorted(v, 0.5))
	assert.InDelta(t, 4.8, percentileSorted(v, 0.95), 1e-9)
	assert.Equal(t, 5.0, percentileSorted(v, 1))
	assert.Zero(t, percentileSorted(nil, 0.5))
}

func newSizer() *Sizer {
	return New(financial.DefaultPriceTable(), financial.DefaultTariffs(), DefaultRules())
}

func TestSizeRanksByROI(t *testing.T) {
	prod, cons := flatDay()
	rec, err := newSizer().Size(context.Background(), prod, cons, nil, Options{Archetype: model.ArchetypeAway})
	require.NoError(t, err)

	require.Len(t, rec.Candidates, 6)
	for i := 1; i < len(rec.Candidates); i++ {
		assert.LessOrEqual(t, rec.Candidates[i-1].Economics.ROIYears, rec.Candidates[i].Economics.ROIYears)
	}
	for _, c := range rec.Candidates {
		assert.GreaterOrEqual(t, c.SelfConsumptionGain, 0.0, "capacity %v", c.CapacityKWh)
		assert.GreaterOrEqual(t, rec.BestGain.SelfConsumptionGain, c.SelfConsumptionGain)
		assert.Equal(t, financial.TierStandard, c.Price.Tier)
	}
	require.NotNil(t, rec.BestROI)
	assert.Equal(t, rec.Candidates[0].CapacityKWh, rec.RecommendedKWh)
	assert.Equal(t, 0.35, rec.Rule.OptimalRatio)
	assert.Equal(t, 3.0, rec.TheoreticalKWh)
	assert.Greater(t, rec.BaselineRate, 0.0)
}

func TestSizeBudget(t *testing.T) {
	prod, cons := flatDay()
	s := newSizer()

	rec, err := s.Size(context.Background(), prod, cons, nil, Options{BudgetMax: 4000})
	require.NoError(t, err)
	require.Len(t, rec.Candidates, 1)
	assert.Equal(t, 3.0, rec.Candidates[0].CapacityKWh)

	rec, err = s.Size(context.Background(), prod, cons, nil, Options{BudgetMax: 100})
	require.NoError(t, err)
	assert.True(t, rec.BudgetExcludedAll)
	assert.Empty(t, rec.Candidates)
	assert.Nil(t, rec.BestROI)
	assert.Zero(t, rec.RecommendedKWh)
}

func TestSizeCustomCapacitiesAndErrors(t *testing.T) {
	prod, cons := flatDay()
	s := newSizer()

	rec, err := s.Size(context.Background(), prod, cons, nil, Options{Capacities: []float64{4, 8}, Tier: financial.TierPremium})
	require.NoError(t, err)
	require.Len(t, rec.Candidates, 2)

	_, err = s.Size(context.Background(), prod, cons, nil, Options{Tier: "gold"})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Size(ctx, prod, cons, nil, Options{})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.Size(context.Background(), prod[:100], cons, nil, Options{})
	assert.ErrorIs(t, err, model.ErrContract)
}
