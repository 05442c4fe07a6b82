package consumption

import (
	"os"
	"path/filepath"
	"testing"

	"pv-simulator/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseHousehold() model.Household {
	return model.Household{
		AreaM2:           100,
		Occupants:        3,
		DPE:              "D",
		ConstructionYear: 2015,
		Heating:          model.HeatingElectric,
		DHW:              model.DHWElectric,
		Archetype:        model.ArchetypeFamily,
		Latitude:         46,
	}
}

func TestHeatingReferenceHouse(t *testing.T) {
	c := NewCalculator(DefaultTables())
	h := baseHousehold()
	want := 190.0 / 2.58 * 1.0 * 0.85 * 100
	assert.InDelta(t, want, c.Heating(h), 1e-9)

	h.Heating = model.HeatingHeatPump
	assert.InDelta(t, want/3, c.Heating(h), 1e-9)

	h.Heating = model.HeatingGas
	assert.Zero(t, c.Heating(h))
	h.Heating = model.HeatingWood
	assert.Zero(t, c.Heating(h))
}

func TestHeatingAdjustments(t *testing.T) {
	c := NewCalculator(DefaultTables())
	ref := c.Heating(baseHousehold())

	h := baseHousehold()
	h.Latitude = 50
	assert.InDelta(t, ref*1.2, c.Heating(h), 1e-9)
	h.Latitude = 43
	assert.InDelta(t, ref*0.75, c.Heating(h), 1e-9)

	h = baseHousehold()
	h.ConstructionYear = 1960
	assert.InDelta(t, ref/0.85*1.5, c.Heating(h), 1e-9)

	h = baseHousehold()
	h.AltitudeM = 400
	assert.InDelta(t, ref*1.1, c.Heating(h), 1e-9)

	h = baseHousehold()
	h.Ventilation = model.VentilationDoubleFlow
	assert.InDelta(t, ref*0.85, c.Heating(h), 1e-9)

	h = baseHousehold()
	h.SetpointC = 21
	assert.InDelta(t, ref*1.14, c.Heating(h), 1e-9)
	h.SetpointC = 18
	assert.InDelta(t, ref, c.Heating(h), 1e-9)
}

func TestHeatingConfigurableCoefficient(t *testing.T) {
	tables := DefaultTables()
	tables.PrimaryToFinal[model.HeatingElectric] = 2.3
	c := NewCalculator(tables)
	assert.InDelta(t, 190.0/2.3*0.85*100, c.Heating(baseHousehold()), 1e-9)
}

func TestDHW(t *testing.T) {
	c := NewCalculator(DefaultTables())
	h := baseHousehold()
	assert.InDelta(t, 741*3, c.DHW(h), 1e-9)

	h.DHW = model.DHWHeatPump
	assert.InDelta(t, 741*3/2.5, c.DHW(h), 1e-9)

	h.DHW = model.DHWElectric
	h.DHWTankLitres = 200
	assert.InDelta(t, 741*3*1.1, c.DHW(h), 1e-9)

	for _, d := range []model.DHWType{model.DHWGas, model.DHWSolar, model.DHWNone} {
		h.DHW = d
		assert.Zero(t, c.DHW(h), d)
	}
}

func TestFlatRates(t *testing.T) {
	c := NewCalculator(DefaultTables())
	h := baseHousehold()

	h.ApplianceAge = model.AgeRecent
	assert.InDelta(t, 800*3*0.85, c.Appliances(h), 1e-9)
	h.ApplianceAge = model.AgeOld
	assert.InDelta(t, 800*3*1.2, c.Appliances(h), 1e-9)

	h.Cooking = model.CookingInduction
	assert.InDelta(t, 350*3*0.9, c.Cooking(h), 1e-9)
	h.Cooking = model.CookingElectric
	assert.InDelta(t, 350*3, c.Cooking(h), 1e-9)
	h.Cooking = model.CookingGas
	assert.InDelta(t, 50, c.Cooking(h), 1e-9)

	h.Audiovisual = model.UsageHeavy
	assert.InDelta(t, 1200, c.Audiovisual(h), 1e-9)

	h.Lighting = model.LightingHalogen
	assert.InDelta(t, 1200, c.Lighting(h), 1e-9)
	h.Lighting = model.LightingMixed
	assert.InDelta(t, 800, c.Lighting(h), 1e-9)
}

func TestExpectedAndGap(t *testing.T) {
	c := NewCalculator(DefaultTables())
	h := baseHousehold()
	h.Heating = model.HeatingGas
	assert.InDelta(t, 1500+800*3, c.Expected(h), 1e-9)
	assert.InDelta(t, 10, GapPct(4290, 3900), 1e-9)
	assert.Zero(t, GapPct(100, 0))
}

func TestMonthlyWeights(t *testing.T) {
	c := NewCalculator(DefaultTables())
	w := c.MonthlyWeights(CategoryHeating, 50)
	assert.InDelta(t, 1.5*1.1, w[0], 1e-9)
	assert.Zero(t, w[6])

	d := c.MonthlyWeights(CategoryDHW, 46)
	assert.Equal(t, 1.1, d[0])
	assert.Equal(t, 1.0, d[3])
	assert.Equal(t, 0.9, d[6])

	m := c.Monthly(Breakdown{CategoryHeating: 1000, CategoryCooking: 120}, 46)
	sum := 0.0
	for _, v := range m {
		sum += v
	}
	assert.InDelta(t, 1120, sum, 1e-9)
	assert.InDelta(t, 10, m[6], 1e-9)
}

func TestLoadTablesOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte("primary_to_final:\n  electric: 2.3\ndhw_per_person: 800\n"), 0o644))

	tables, err := LoadTables(path)
	require.NoError(t, err)
	assert.Equal(t, 2.3, tables.PrimaryToFinal[model.HeatingElectric])
	assert.Equal(t, 800.0, tables.DHWPerPerson)
	assert.Equal(t, 190.0, tables.DPEIntensity["D"])
}
