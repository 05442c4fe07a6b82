package consumption

import (
	"testing"

	"pv-simulator/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestDecomposeSumsToDeclared(t *testing.T) {
	d := Decomposer{Calc: NewCalculator(DefaultTables())}
	for _, total := range []float64{1500, 4500, 9000, 20000} {
		b := d.Decompose(baseHousehold(), total)
		assert.InDelta(t, total, b.Total(), 1e-6, "total %v", total)
		for cat, v := range b {
			assert.GreaterOrEqual(t, v, 0.0, cat)
		}
	}
}

func TestDecomposeCaps(t *testing.T) {
	d := Decomposer{Calc: NewCalculator(DefaultTables())}
	h := baseHousehold()
	h.DPE = "G"
	h.AreaM2 = 250

	b := d.Decompose(h, 5000)
	assert.InDelta(t, 3500, b[CategoryHeating], 1e-9)
	// DHW demand 2223 exceeds half of the 1500 left.
	assert.InDelta(t, 750, b[CategoryDHW], 1e-9)
	assert.InDelta(t, 750*0.25, b[CategoryCooking], 1e-9)
	assert.InDelta(t, 750*0.35, b[CategoryAppliances], 1e-9)
	assert.InDelta(t, 750*0.20, b[CategoryLighting], 1e-9)
	assert.InDelta(t, 750*0.20, b[CategoryAudiovisual], 1e-9)
}

func TestDecomposeFixedItems(t *testing.T) {
	d := Decomposer{Calc: NewCalculator(DefaultTables())}
	h := baseHousehold()
	h.Appliances = []model.Appliance{{Kind: model.ApplianceEVCharger}, {Kind: model.AppliancePoolPump}}

	b := d.Decompose(h, 10000)
	assert.Equal(t, 2500.0, b[CategoryEV])
	assert.Equal(t, 2000.0, b[CategoryPool])
	assert.InDelta(t, 10000, b.Total(), 1e-6)

	small := d.Decompose(h, 3000)
	assert.InDelta(t, 3000*2500/4500.0, small[CategoryEV], 1e-9)
	assert.InDelta(t, 3000*2000/4500.0, small[CategoryPool], 1e-9)
	assert.InDelta(t, 3000, small.Total(), 1e-6)
	assert.Zero(t, small[CategoryHeating])
}

func TestStandardBreakdown(t *testing.T) {
	c := NewCalculator(DefaultTables())
	d := Decomposer{Calc: c}
	h := baseHousehold()
	h.Heating = model.HeatingGas
	h.DHW = model.DHWGas

	b := d.Standard(h)
	assert.Zero(t, b[CategoryHeating])
	assert.Zero(t, b[CategoryDHW])
	assert.InDelta(t, 2400+945+750+500, b.Total(), 1e-9)
}
