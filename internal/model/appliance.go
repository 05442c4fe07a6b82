package model

// ApplianceKind names a programmable load that can be scheduled.
type ApplianceKind string

const (
	ApplianceWaterHeater ApplianceKind = "water_heater"
	ApplianceWasher      ApplianceKind = "washer"
	ApplianceDishwasher  ApplianceKind = "dishwasher"
	ApplianceDryer       ApplianceKind = "dryer"
	ApplianceEVCharger   ApplianceKind = "ev_charger"
	AppliancePoolPump    ApplianceKind = "pool_pump"
)

func ApplianceKinds() []ApplianceKind {
	return []ApplianceKind{
		ApplianceWaterHeater, ApplianceWasher, ApplianceDishwasher,
		ApplianceDryer, ApplianceEVCharger, AppliancePoolPump,
	}
}

func (k ApplianceKind) Valid() bool {
	for _, x := range ApplianceKinds() {
		if k == x {
			return true
		}
	}
	return false
}

// Appliance is one programmable load. Zero or nil fields fall back to the kind defaults.
// Units:
// - UsualHour / OptimalHour: start hour 0..23
// - DurationHours: hours per run
// - CyclesPerWeek: runs per week
// - EnergyPerCycleKWh: kWh per run
// - SeasonStartDay / SeasonEndDay: day-of-year window [start, end)
type Appliance struct {
	Kind              ApplianceKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	UsualHour         *int          `json:"usual_hour,omitempty" yaml:"usual_hour,omitempty"`
	OptimalHour       *int          `json:"optimal_hour,omitempty" yaml:"optimal_hour,omitempty"`
	DurationHours     int           `json:"duration_hours,omitempty" yaml:"duration_hours,omitempty"`
	CyclesPerWeek     float64       `json:"cycles_per_week,omitempty" yaml:"cycles_per_week,omitempty"`
	EnergyPerCycleKWh float64       `json:"energy_per_cycle_kwh,omitempty" yaml:"energy_per_cycle_kwh,omitempty"`
	SeasonStartDay    int           `json:"season_start_day,omitempty" yaml:"season_start_day,omitempty"`
	SeasonEndDay      int           `json:"season_end_day,omitempty" yaml:"season_end_day,omitempty"`
}

func (a Appliance) Validate() error {
	if !a.Kind.Valid() {
		return invalid("kind", "is not a known appliance")
	}
	if a.UsualHour != nil && (*a.UsualHour < 0 || *a.UsualHour > 23) {
		return invalid("usual_hour", "must be in [0, 23]")
	}
	if a.OptimalHour != nil && (*a.OptimalHour < 0 || *a.OptimalHour > 23) {
		return invalid("optimal_hour", "must be in [0, 23]")
	}
	if a.DurationHours < 0 || a.DurationHours > 24 {
		return invalid("duration_hours", "must be in [0, 24]")
	}
	if a.CyclesPerWeek < 0 || a.CyclesPerWeek > 7*24 {
		return invalid("cycles_per_week", "must be in [0, 168]")
	}
	if a.EnergyPerCycleKWh < 0 {
		return invalid("energy_per_cycle_kwh", "must be >= 0")
	}
	if a.SeasonStartDay < 0 || a.SeasonEndDay > DaysPerYear || a.SeasonStartDay > a.SeasonEndDay {
		return invalid("season", "must satisfy 0 <= start <= end <= 365")
	}
	return nil
}

// Inventory is the itemized equipment list used by the expert estimate.
type Inventory struct {
	Fridges  []ColdAppliance `json:"fridges,omitempty" yaml:"fridges,omitempty"`
	Freezers []ColdAppliance `json:"freezers,omitempty" yaml:"freezers,omitempty"`

	Washer     *CycleAppliance `json:"washer,omitempty" yaml:"washer,omitempty"`
	Dishwasher *CycleAppliance `json:"dishwasher,omitempty" yaml:"dishwasher,omitempty"`
	Dryer      *Dryer          `json:"dryer,omitempty" yaml:"dryer,omitempty"`
	Oven       *Oven           `json:"oven,omitempty" yaml:"oven,omitempty"`

	TVs         []TV         `json:"tvs,omitempty" yaml:"tvs,omitempty"`
	InternetBox *InternetBox `json:"internet_box,omitempty" yaml:"internet_box,omitempty"`
	Desktops    int          `json:"desktops,omitempty" yaml:"desktops,omitempty"`
	Laptops     int          `json:"laptops,omitempty" yaml:"laptops,omitempty"`
	// ComputerHours is daily use per computer.
	ComputerHours float64  `json:"computer_hours,omitempty" yaml:"computer_hours,omitempty"`
	Console       *Console `json:"console,omitempty" yaml:"console,omitempty"`

	LEDBulbs      int     `json:"led_bulbs,omitempty" yaml:"led_bulbs,omitempty"`
	HalogenBulbs  int     `json:"halogen_bulbs,omitempty" yaml:"halogen_bulbs,omitempty"`
	LightingHours float64 `json:"lighting_hours,omitempty" yaml:"lighting_hours,omitempty"`

	Pool     *Pool     `json:"pool,omitempty" yaml:"pool,omitempty"`
	Spa      *Spa      `json:"spa,omitempty" yaml:"spa,omitempty"`
	Vehicles []Vehicle `json:"vehicles,omitempty" yaml:"vehicles,omitempty"`
}

// ColdAppliance is a fridge (simple, combined, american) or freezer (chest, upright).
type ColdAppliance struct {
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
	Class string `json:"class,omitempty" yaml:"class,omitempty"`
	Count int    `json:"count,omitempty" yaml:"count,omitempty"`
}

// CycleAppliance is a washer or dishwasher rated per cycle by energy class.
type CycleAppliance struct {
	Class         string  `json:"class,omitempty" yaml:"class,omitempty"`
	CyclesPerWeek float64 `json:"cycles_per_week,omitempty" yaml:"cycles_per_week,omitempty"`
}

// Dryer types: heat_pump_a+++, heat_pump_a++, condenser, vented.
type Dryer struct {
	Type          string  `json:"type,omitempty" yaml:"type,omitempty"`
	CyclesPerWeek float64 `json:"cycles_per_week,omitempty" yaml:"cycles_per_week,omitempty"`
}

// Oven types: microwave, electric, combined. Usage 1 (rarely) .. 4 (intensive).
type Oven struct {
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
	Usage int    `json:"usage,omitempty" yaml:"usage,omitempty"`
}

// TV sizes: small, medium, large, very_large, xxl.
type TV struct {
	Size        string  `json:"size,omitempty" yaml:"size,omitempty"`
	OLED        bool    `json:"oled,omitempty" yaml:"oled,omitempty"`
	HoursPerDay float64 `json:"hours_per_day,omitempty" yaml:"hours_per_day,omitempty"`
}

type InternetBox struct {
	WithDecoder bool `json:"with_decoder,omitempty" yaml:"with_decoder,omitempty"`
	OffAtNight  bool `json:"off_at_night,omitempty" yaml:"off_at_night,omitempty"`
}

type Console struct {
	Current     bool    `json:"current,omitempty" yaml:"current,omitempty"`
	HoursPerDay float64 `json:"hours_per_day,omitempty" yaml:"hours_per_day,omitempty"`
}

// Pool pump sizes: small, standard, large; PumpW overrides the size.
type Pool struct {
	PumpSize        string  `json:"pump_size,omitempty" yaml:"pump_size,omitempty"`
	PumpW           float64 `json:"pump_w,omitempty" yaml:"pump_w,omitempty"`
	FiltrationHours float64 `json:"filtration_hours,omitempty" yaml:"filtration_hours,omitempty"`
	StartMonth      int     `json:"start_month,omitempty" yaml:"start_month,omitempty"`
	EndMonth        int     `json:"end_month,omitempty" yaml:"end_month,omitempty"`
	HeatingW        float64 `json:"heating_w,omitempty" yaml:"heating_w,omitempty"`
	HeatingHours    float64 `json:"heating_hours,omitempty" yaml:"heating_hours,omitempty"`
	Robot           bool    `json:"robot,omitempty" yaml:"robot,omitempty"`
}

// Spa types: inflatable, rigid, indoor.
type Spa struct {
	Type           string `json:"type,omitempty" yaml:"type,omitempty"`
	YearRound      bool   `json:"year_round,omitempty" yaml:"year_round,omitempty"`
	TempMaintained bool   `json:"temp_maintained,omitempty" yaml:"temp_maintained,omitempty"`
	Covered        bool   `json:"covered,omitempty" yaml:"covered,omitempty"`
}

// Vehicle charger types: plug, wallbox_7, wallbox_11, wallbox_22.
type Vehicle struct {
	KmPerYear   float64 `json:"km_per_year,omitempty" yaml:"km_per_year,omitempty"`
	KWhPer100Km float64 `json:"kwh_per_100km,omitempty" yaml:"kwh_per_100km,omitempty"`
	Charger     string  `json:"charger,omitempty" yaml:"charger,omitempty"`
	HomeShare   float64 `json:"home_share,omitempty" yaml:"home_share,omitempty"`
}
