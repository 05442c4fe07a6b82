package consumption

import "pv-simulator/internal/model"

// Category is a named end use of electricity.
type Category string

const (
	CategoryHeating       Category = "heating"
	CategoryDHW           Category = "dhw"
	CategoryCooking       Category = "cooking"
	CategoryAppliances    Category = "appliances"
	CategoryRefrigeration Category = "refrigeration"
	CategoryLaundry       Category = "laundry"
	CategoryAudiovisual   Category = "audiovisual"
	CategoryLighting      Category = "lighting"
	CategoryPool          Category = "pool"
	CategorySpa           Category = "spa"
	CategoryEV            Category = "ev"
)

// Categories lists every category in reporting order.
func Categories() []Category {
	return []Category{
		CategoryHeating, CategoryDHW, CategoryCooking, CategoryAppliances,
		CategoryRefrigeration, CategoryLaundry, CategoryAudiovisual, CategoryLighting,
		CategoryPool, CategorySpa, CategoryEV,
	}
}

// Breakdown is annual kWh per category.
type Breakdown map[Category]float64

func (b Breakdown) Total() float64 {
	t := 0.0
	for _, v := range b {
		t += v
	}
	return t
}

// Calculator computes the categories every estimation mode shares.
// It holds no state besides its tables.
type Calculator struct {
	T Tables
}

func NewCalculator(t Tables) Calculator { return Calculator{T: t} }

// Heating is the annual final electricity for space heating. Non-electric systems return 0.
func (c Calculator) Heating(h model.Household) float64 {
	if !h.Heating.Electric() {
		return 0
	}
	coef := c.T.PrimaryToFinal[h.Heating]
	if coef <= 0 {
		return 0
	}
	kwh := c.T.DPEIntensity[h.EffectiveDPE()] * h.AreaM2 / coef
	kwh *= c.T.Zone(h.Latitude).Factor
	kwh *= c.T.InsulationFactor(h.ConstructionYear)
	kwh *= 1 + h.AltitudeM/c.T.AltitudeStepM*c.T.AltitudeStepFactor

	if h.Heating == model.HeatingHeatPump {
		kwh /= c.T.HeatPumpCOP
	}
	if h.Ventilation == model.VentilationDoubleFlow {
		kwh *= c.T.DoubleFlowFactor
	}
	if h.SetpointC > c.T.SetpointBaseC {
		kwh *= 1 + (h.SetpointC-c.T.SetpointBaseC)*c.T.SetpointStep
	}
	return kwh
}

// DHW is the annual electricity for domestic hot water.
func (c Calculator) DHW(h model.Household) float64 {
	if !h.DHW.Electric() {
		return 0
	}
	kwh := c.T.DHWPerPerson * float64(h.Occupants)
	if h.DHW == model.DHWHeatPump {
		kwh /= c.T.DHWHeatPumpCOP
	}
	if h.DHWTankLitres > c.T.DHWTankLitresPerson*float64(h.Occupants) {
		kwh *= c.T.DHWLargeTankFactor
	}
	return kwh
}

// Appliances is the flat-rate allowance for household appliances.
func (c Calculator) Appliances(h model.Household) float64 {
	f, ok := c.T.ApplianceAge[h.ApplianceAge]
	if !ok {
		f = 1
	}
	return c.T.AppliancesPerPerson * float64(h.Occupants) * f
}

func (c Calculator) Cooking(h model.Household) float64 {
	base := c.T.CookingPerPerson * float64(h.Occupants)
	switch h.Cooking {
	case model.CookingGas:
		return c.T.GasCookingFlat
	case model.CookingElectric:
		return base
	default:
		return base * c.T.InductionFactor
	}
}

func (c Calculator) Audiovisual(h model.Household) float64 {
	v, ok := c.T.Audiovisual[h.Audiovisual]
	if !ok {
		v = c.T.Audiovisual[model.UsageNormal]
	}
	return v * float64(h.Occupants)
}

func (c Calculator) Lighting(h model.Household) float64 {
	v, ok := c.T.LightingM2[h.Lighting]
	if !ok {
		v = c.T.LightingM2[model.LightingLED]
	}
	return v * h.AreaM2
}

// Expected is the benchmark consumption of a comparable household.
func (c Calculator) Expected(h model.Household) float64 {
	return c.T.ExpectedBase + c.T.ExpectedPerPerson*float64(h.Occupants) + c.Heating(h)
}

// GapPct is how far an estimate sits from the benchmark, in percent.
func GapPct(estimate, expected float64) float64 {
	if expected <= 0 {
		return 0
	}
	return (estimate - expected) / expected * 100
}

// MonthlyWeights returns the relative monthly distribution of a category.
func (c Calculator) MonthlyWeights(cat Category, lat float64) [12]float64 {
	var w [12]float64
	switch cat {
	case CategoryHeating:
		zf := c.T.Zone(lat).Monthly
		for m := range w {
			w[m] = c.T.HeatingMonthly[m] * zf
		}
	case CategoryDHW:
		for m := range w {
			w[m] = 1
			switch m + 1 {
			case 1, 2, 3, 11, 12:
				w[m] = c.T.DHWWinterFactor
			case 6, 7, 8:
				w[m] = c.T.DHWSummerFactor
			}
		}
	case CategoryLighting:
		w = c.T.LightingMonthly
	default:
		for m := range w {
			w[m] = 1
		}
	}
	return w
}

// Monthly spreads each category's annual energy over the months.
func (c Calculator) Monthly(b Breakdown, lat float64) [12]float64 {
	var out [12]float64
	for cat, kwh := range b {
		if kwh <= 0 {
			continue
		}
		w := c.MonthlyWeights(cat, lat)
		sum := 0.0
		for _, x := range w {
			sum += x
		}
		if sum <= 0 {
			continue
		}
		for m := range out {
			out[m] += kwh * w[m] / sum
		}
	}
	return out
}
