package consumption

import (
	"fmt"
	"os"

	"pv-simulator/internal/model"

	"gopkg.in/yaml.v3"
)

// Tables holds every constant of the consumption estimate.
// The zero value is useless; start from DefaultTables and override with LoadTables.
type Tables struct {
	// DPEIntensity is primary energy per m² and year (kWh/m²) by grade.
	DPEIntensity map[model.DPE]float64 `yaml:"dpe_intensity"`
	// PrimaryToFinal converts primary to final energy by heating type.
	PrimaryToFinal map[model.HeatingType]float64 `yaml:"primary_to_final"`
	Zones          []ClimateZone                 `yaml:"zones"`
	Insulation     []InsulationStep              `yaml:"insulation"`

	AltitudeStepM      float64 `yaml:"altitude_step_m"`
	AltitudeStepFactor float64 `yaml:"altitude_step_factor"`
	HeatPumpCOP        float64 `yaml:"heat_pump_cop"`
	DoubleFlowFactor   float64 `yaml:"double_flow_factor"`
	SetpointBaseC      float64 `yaml:"setpoint_base_c"`
	SetpointStep       float64 `yaml:"setpoint_step"`

	DHWPerPerson        float64 `yaml:"dhw_per_person"`
	DHWHeatPumpCOP      float64 `yaml:"dhw_heat_pump_cop"`
	DHWTankLitresPerson float64 `yaml:"dhw_tank_litres_per_person"`
	DHWLargeTankFactor  float64 `yaml:"dhw_large_tank_factor"`

	AppliancesPerPerson float64                            `yaml:"appliances_per_person"`
	ApplianceAge        map[model.ApplianceAge]float64     `yaml:"appliance_age"`
	CookingPerPerson    float64                            `yaml:"cooking_per_person"`
	InductionFactor     float64                            `yaml:"induction_factor"`
	GasCookingFlat      float64                            `yaml:"gas_cooking_flat"`
	Audiovisual         map[model.AudiovisualUsage]float64 `yaml:"audiovisual"`
	LightingM2          map[model.LightingType]float64     `yaml:"lighting_m2"`

	HeatingMonthly  [12]float64 `yaml:"heating_monthly"`
	LightingMonthly [12]float64 `yaml:"lighting_monthly"`
	DHWWinterFactor float64     `yaml:"dhw_winter_factor"`
	DHWSummerFactor float64     `yaml:"dhw_summer_factor"`

	ExpectedBase      float64 `yaml:"expected_base"`
	ExpectedPerPerson float64 `yaml:"expected_per_person"`

	Generic GenericSplit `yaml:"generic"`
	Items   ItemTables   `yaml:"items"`
}

// ClimateZone applies Factor north of MinLatitude (exclusive). Zones are checked in order.
type ClimateZone struct {
	Name        string  `yaml:"name"`
	MinLatitude float64 `yaml:"min_latitude"`
	Factor      float64 `yaml:"factor"`
	// Monthly scales the heating monthly weights for this zone.
	Monthly float64 `yaml:"monthly"`
}

// InsulationStep applies Factor to homes built in or after FromYear. Steps are checked in order.
type InsulationStep struct {
	FromYear int     `yaml:"from_year"`
	Factor   float64 `yaml:"factor"`
}

// GenericSplit drives the decomposition of a declared annual total.
type GenericSplit struct {
	EVFixed     float64              `yaml:"ev_fixed"`
	PoolFixed   float64              `yaml:"pool_fixed"`
	HeatingCap  float64              `yaml:"heating_cap"`
	DHWCap      float64              `yaml:"dhw_cap"`
	RestWeights map[Category]float64 `yaml:"rest_weights"`
}

// ItemTables are the per-appliance figures of the itemized estimate.
type ItemTables struct {
	ColdBase      map[string]float64 `yaml:"cold_base"`
	ClassFactor   map[string]float64 `yaml:"class_factor"`
	WasherCycle   map[string]float64 `yaml:"washer_cycle"`
	DishCycle     map[string]float64 `yaml:"dish_cycle"`
	DryerCycle    map[string]float64 `yaml:"dryer_cycle"`
	OvenBase      map[string]float64 `yaml:"oven_base"`
	TVWatts       map[string]float64 `yaml:"tv_watts"`
	OLEDFactor    float64            `yaml:"oled_factor"`
	TVHours       float64            `yaml:"tv_hours"`
	BoxKWh        float64            `yaml:"box_kwh"`
	BoxDecoderKWh float64            `yaml:"box_decoder_kwh"`
	BoxNightOff   float64            `yaml:"box_night_off"`
	DesktopW      float64            `yaml:"desktop_w"`
	LaptopW       float64            `yaml:"laptop_w"`
	ComputerHours float64            `yaml:"computer_hours"`
	ConsoleOldW   float64            `yaml:"console_old_w"`
	ConsoleNewW   float64            `yaml:"console_new_w"`
	ConsoleHours  float64            `yaml:"console_hours"`
	LEDBulbW      float64            `yaml:"led_bulb_w"`
	HalogenBulbW  float64            `yaml:"halogen_bulb_w"`
	BulbHours     float64            `yaml:"bulb_hours"`
	PoolPumpW     map[string]float64 `yaml:"pool_pump_w"`
	PoolHours     float64            `yaml:"pool_hours"`
	PoolStart     int                `yaml:"pool_start_month"`
	PoolEnd       int                `yaml:"pool_end_month"`
	PoolRobotKWh  float64            `yaml:"pool_robot_kwh"`
	SpaBase       map[string]float64 `yaml:"spa_base"`
	SpaSeasonal   float64            `yaml:"spa_seasonal"`
	SpaUnheated   float64            `yaml:"spa_unheated"`
	SpaCovered    float64            `yaml:"spa_covered"`
	ChargerEff    map[string]float64 `yaml:"charger_eff"`
	EVKWhPer100   float64            `yaml:"ev_kwh_per_100km"`
	EVKmPerYear   float64            `yaml:"ev_km_per_year"`
}

func DefaultTables() Tables {
	return Tables{
		DPEIntensity: map[model.DPE]float64{
			"A": 35, "B": 70, "C": 120, "D": 190, "E": 280, "F": 390, "G": 500,
		},
		PrimaryToFinal: map[model.HeatingType]float64{
			model.HeatingElectric: 2.58,
			model.HeatingHeatPump: 2.58,
			model.HeatingGas:      1.0,
			model.HeatingOil:      1.0,
			model.HeatingWood:     0.6,
		},
		Zones: []ClimateZone{
			{Name: "H1", MinLatitude: 48.5, Factor: 1.20, Monthly: 1.1},
			{Name: "H2", MinLatitude: 44, Factor: 1.00, Monthly: 1.0},
			{Name: "H3", MinLatitude: -90, Factor: 0.75, Monthly: 0.7},
		},
		Insulation: []InsulationStep{
			{FromYear: 2013, Factor: 0.85},
			{FromYear: 2005, Factor: 1.00},
			{FromYear: 1988, Factor: 1.15},
			{FromYear: 1974, Factor: 1.30},
			{FromYear: 0, Factor: 1.50},
		},
		AltitudeStepM:      200,
		AltitudeStepFactor: 0.05,
		HeatPumpCOP:        3.0,
		DoubleFlowFactor:   0.85,
		SetpointBaseC:      19,
		SetpointStep:       0.07,

		DHWPerPerson:        741,
		DHWHeatPumpCOP:      2.5,
		DHWTankLitresPerson: 50,
		DHWLargeTankFactor:  1.10,

		AppliancesPerPerson: 800,
		ApplianceAge: map[model.ApplianceAge]float64{
			model.AgeRecent: 0.85, model.AgeAverage: 1.0, model.AgeOld: 1.2,
		},
		CookingPerPerson: 350,
		InductionFactor:  0.9,
		GasCookingFlat:   50,
		Audiovisual: map[model.AudiovisualUsage]float64{
			model.UsageModerate: 150, model.UsageNormal: 250, model.UsageHeavy: 400,
		},
		LightingM2: map[model.LightingType]float64{
			model.LightingLED: 5, model.LightingHalogen: 12, model.LightingMixed: 8,
		},

		HeatingMonthly:  [12]float64{1.5, 1.4, 1.2, 0.8, 0.3, 0, 0, 0, 0.2, 0.6, 1.1, 1.4},
		LightingMonthly: [12]float64{1.3, 1.3, 1.2, 1.0, 0.8, 0.7, 0.7, 0.8, 1.0, 1.2, 1.3, 1.3},
		DHWWinterFactor: 1.1,
		DHWSummerFactor: 0.9,

		ExpectedBase:      1500,
		ExpectedPerPerson: 800,

		Generic: GenericSplit{
			EVFixed:    2500,
			PoolFixed:  2000,
			HeatingCap: 0.70,
			DHWCap:     0.50,
			RestWeights: map[Category]float64{
				CategoryCooking:     0.25,
				CategoryAppliances:  0.35,
				CategoryLighting:    0.20,
				CategoryAudiovisual: 0.20,
			},
		},
		Items: ItemTables{
			ColdBase: map[string]float64{
				"simple": 250, "combined": 300, "american": 500,
				"chest": 250, "upright": 300,
			},
			ClassFactor: map[string]float64{
				"A+++": 0.70, "A++": 0.85, "A+": 1.0, "A": 1.15, "B": 1.30, "C": 1.40,
			},
			WasherCycle: map[string]float64{"A+++": 0.45, "A++": 0.60, "A+": 0.80, "A": 1.0, "B": 1.2},
			DishCycle:   map[string]float64{"A+++": 0.7, "A++": 0.9, "A+": 1.1, "A": 1.4, "B": 1.6},
			DryerCycle: map[string]float64{
				"heat_pump_a+++": 1.5, "heat_pump_a++": 2.0, "condenser": 3.5, "vented": 4.5,
			},
			OvenBase: map[string]float64{"microwave": 100, "electric": 150, "combined": 200},
			TVWatts: map[string]float64{
				"small": 50, "medium": 80, "large": 120, "very_large": 150, "xxl": 200,
			},
			OLEDFactor:    1.2,
			TVHours:       4,
			BoxKWh:        150,
			BoxDecoderKWh: 200,
			BoxNightOff:   0.7,
			DesktopW:      200,
			LaptopW:       50,
			ComputerHours: 6,
			ConsoleOldW:   150,
			ConsoleNewW:   200,
			ConsoleHours:  2,
			LEDBulbW:      10,
			HalogenBulbW:  50,
			BulbHours:     5,
			PoolPumpW:     map[string]float64{"small": 600, "standard": 1000, "large": 1500},
			PoolHours:     8,
			PoolStart:     5,
			PoolEnd:       9,
			PoolRobotKWh:  200 * 2 * 52 / 1000.0,
			SpaBase:       map[string]float64{"inflatable": 2000, "rigid": 3000, "indoor": 4000},
			SpaSeasonal:   0.5,
			SpaUnheated:   0.6,
			SpaCovered:    0.7,
			ChargerEff: map[string]float64{
				"plug": 0.85, "wallbox_7": 0.90, "wallbox_11": 0.92, "wallbox_22": 0.93,
			},
			EVKWhPer100: 18,
			EVKmPerYear: 15000,
		},
	}
}

// LoadTables reads a YAML overlay on top of DefaultTables.
// Keys absent from the file keep their default value.
func LoadTables(path string) (Tables, error) {
	t := DefaultTables()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("parse tables %s: %w", path, err)
	}
	return t, nil
}

// Zone returns the climate zone for a latitude.
func (t Tables) Zone(lat float64) ClimateZone {
	for _, z := range t.Zones {
		if lat > z.MinLatitude {
			return z
		}
	}
	return t.Zones[len(t.Zones)-1]
}

// InsulationFactor returns the construction-era factor. A zero year counts as the middle band.
func (t Tables) InsulationFactor(year int) float64 {
	if year == 0 {
		year = 2005
	}
	for _, s := range t.Insulation {
		if year >= s.FromYear {
			return s.Factor
		}
	}
	return t.Insulation[len(t.Insulation)-1].Factor
}
