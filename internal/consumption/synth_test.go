package consumption

import (
	"testing"

	"pv-simulator/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestDayPatternSegments(t *testing.T) {
	p := DayPattern(DefaultArchetypes(), model.ArchetypeAway, false)
	assert.Equal(t, 0.3, p[0])
	assert.Equal(t, 0.4, p[5])
	assert.Equal(t, 1.2, p[7])
	assert.Equal(t, 0.6, p[9])
	assert.Equal(t, 1.5, p[19])
	assert.Equal(t, 0.6, p[23])

	fam := DayPattern(DefaultArchetypes(), model.ArchetypeFamily, true)
	assert.Equal(t, 1.3, fam[19])

	unknown := DayPattern(DefaultArchetypes(), "nomad", false)
	assert.Equal(t, p, unknown)
}

func TestYearPatternWeekendsAndJitter(t *testing.T) {
	profiles := DefaultArchetypes()
	s := YearPattern(profiles, model.ArchetypeAway, nil)
	require.NoError(t, s.Validate("pattern"))
	// Day 0 is a weekday, day 5 a weekend day.
	assert.Equal(t, 1.2, s[7])
	assert.Equal(t, 0.8, s[5*24+7])
	assert.Equal(t, s[7], s[7*24+7])

	a := YearPattern(profiles, model.ArchetypeAway, newRand(7))
	b := YearPattern(profiles, model.ArchetypeAway, newRand(7))
	assert.Equal(t, a, b)
	for h := range a {
		assert.GreaterOrEqual(t, a[h], s[h]*0.9-1e-12)
		assert.Less(t, a[h], s[h]*1.1+1e-12)
	}
}

func TestCyclePulses(t *testing.T) {
	s := CyclePulses(20, 2, 3, 1.0)
	n := int(3.0 * 52)
	assert.InDelta(t, float64(n), s.Total(), 1e-9)
	assert.Equal(t, 0.5, s[20])
	assert.Equal(t, 0.5, s[21])
	assert.Zero(t, s[22])
	for h, v := range s {
		if v > 0 {
			hod := h % 24
			assert.True(t, hod == 20 || hod == 21, "hour %d", h)
		}
	}
}

func TestEVAndSeasonPulses(t *testing.T) {
	ev := EVPulses(19, 4, 1820)
	assert.InDelta(t, 1820, ev.Total(), 1e-6)
	assert.InDelta(t, 2.5, ev[19], 1e-9)
	assert.Zero(t, ev[24+19])
	assert.InDelta(t, 2.5, ev[48+19], 1e-9)

	pool := SeasonPulses(10, 8, 120, 270, 1500)
	assert.InDelta(t, 1500, pool.Total(), 1e-6)
	assert.Zero(t, pool[119*24+10])
	assert.InDelta(t, 1.25, pool[120*24+10], 1e-9)
	assert.Zero(t, pool[270*24+10])
}

func TestPulsesEndingAtYearEnd(t *testing.T) {
	// A run on the last day from 22:00 for two hours fills hours 8758 and 8759.
	last := model.HoursPerYear - 2
	pool := SeasonPulses(22, 2, model.DaysPerYear-1, model.DaysPerYear, 10)
	assert.InDelta(t, 5, pool[last], 1e-12)
	assert.InDelta(t, 5, pool[last+1], 1e-12)
	assert.InDelta(t, 10, pool.Total(), 1e-12)

	// One more hour would run past the year and is dropped.
	late := SeasonPulses(23, 2, model.DaysPerYear-1, model.DaysPerYear, 10)
	assert.Zero(t, late.Total())
}

func TestSolarDHW(t *testing.T) {
	s := SolarDHW(13)
	assert.Equal(t, 0.0, s[11])
	assert.Equal(t, 1.0, s[12])
	assert.Equal(t, 1.0, s[15])
	assert.Equal(t, 0.0, s[16])
	assert.Equal(t, 0.3, s[19])
	assert.Equal(t, 0.3, s[20])
}

func TestSynthesizeMatchesTotalWithoutAppliances(t *testing.T) {
	sy := NewSynthesizer(NewCalculator(DefaultTables()))
	h := baseHousehold()
	b := Breakdown{CategoryHeating: 3000, CategoryDHW: 1500, CategoryLighting: 400, CategoryCooking: 600}

	s := sy.Synthesize(h, b, 5500, SynthOptions{})
	require.NoError(t, s.Validate("consumption"))
	assert.InDelta(t, 5500, s.Total(), 1e-6)

	m := s.Monthly()
	assert.Greater(t, m[0], m[6], "heating makes winter heavier")
}

func TestSynthesizeProgrammableShare(t *testing.T) {
	sy := NewSynthesizer(NewCalculator(DefaultTables()))
	h := baseHousehold()
	h.Appliances = []model.Appliance{{Kind: model.ApplianceWasher, UsualHour: intPtr(20)}}
	b := Breakdown{CategoryCooking: 1000, CategoryLaundry: 200}

	s := sy.Synthesize(h, b, 4000, SynthOptions{})
	assert.InDelta(t, 4000, s.Total(), 1e-6)

	prog := CyclePulses(20, 2, 3, 1.0).ScaleTo(4000 * 0.6)
	rest := s.Clone()
	for i := range rest {
		rest[i] -= prog[i]
	}
	assert.InDelta(t, 4000*0.4, rest.Total(), 1e-6)
	for _, v := range rest {
		assert.GreaterOrEqual(t, v, -1e-9)
	}
}

func TestSynthesizeOptimizedMovesPulses(t *testing.T) {
	sy := NewSynthesizer(NewCalculator(DefaultTables()))
	h := baseHousehold()
	h.Appliances = []model.Appliance{
		{Kind: model.ApplianceDishwasher},
		{Kind: model.ApplianceWaterHeater, OptimalHour: intPtr(13)},
	}
	b := Breakdown{CategoryDHW: 2000, CategoryCooking: 1000}

	usual := sy.Synthesize(h, b, 5000, SynthOptions{})
	opt := sy.Synthesize(h, b, 5000, SynthOptions{Optimized: true})
	assert.InDelta(t, 5000, opt.Total(), 1e-6)

	solarShare := func(s model.Series) float64 {
		d := s.HourOfDayMean()
		tot, sol := 0.0, 0.0
		for h, v := range d {
			tot += v
			if h >= 10 && h < 16 {
				sol += v
			}
		}
		return sol / tot
	}
	assert.Greater(t, solarShare(opt), solarShare(usual))
}

func TestSynthesizeSeedIsReproducible(t *testing.T) {
	sy := NewSynthesizer(NewCalculator(DefaultTables()))
	seed := int64(42)
	b := Breakdown{CategoryAppliances: 3000}
	a := sy.Synthesize(baseHousehold(), b, 3000, SynthOptions{Seed: &seed})
	c := sy.Synthesize(baseHousehold(), b, 3000, SynthOptions{Seed: &seed})
	assert.Equal(t, a, c)
	assert.InDelta(t, 3000, a.Total(), 1e-6)
}

func TestSynthesizeZeroTotal(t *testing.T) {
	sy := NewSynthesizer(NewCalculator(DefaultTables()))
	s := sy.Synthesize(baseHousehold(), Breakdown{}, 0, SynthOptions{})
	require.Len(t, s, model.HoursPerYear)
	assert.Zero(t, s.Total())
}
