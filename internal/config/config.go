package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"pv-simulator/internal/consumption"
	"pv-simulator/internal/financial"
	"pv-simulator/internal/model"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk simulation configuration (YAML). The API accepts the
// same shape as JSON.
type Config struct {
	// Weather comes from WeatherFile, else from the named Site, else from the
	// provider at the installation coordinates.
	WeatherFile string `yaml:"weather_file" json:"weather_file,omitempty"`
	Site        string `yaml:"site" json:"site,omitempty"`

	Installation Installation `yaml:"installation" json:"installation"`
	Household    Household    `yaml:"household" json:"household"`

	// Optional: load battery parameters from a separate YAML (e.g. examples/batteries/*.yaml).
	// If both BatteryFile and Battery are provided, Battery overrides BatteryFile.
	BatteryFile string        `yaml:"battery_file" json:"battery_file,omitempty"`
	Battery     BatteryConfig `yaml:"battery" json:"battery,omitempty"`

	Consumption Consumption `yaml:"consumption" json:"consumption,omitempty"`
	Financial   Financial   `yaml:"financial" json:"financial,omitempty"`
	Sizing      Sizing      `yaml:"sizing" json:"sizing,omitempty"`
}

type Installation struct {
	PanelCount     int     `yaml:"panel_count" json:"panel_count"`
	PanelPowerWc   float64 `yaml:"panel_power_wc" json:"panel_power_wc"`
	InverterKW     float64 `yaml:"inverter_kw" json:"inverter_kw,omitempty"`
	InverterFamily string  `yaml:"inverter_family" json:"inverter_family,omitempty"`
	// Nil azimuth and tilt mean due south at 30°.
	AzimuthDeg *float64 `yaml:"azimuth_deg" json:"azimuth_deg,omitempty"`
	TiltDeg    *float64 `yaml:"tilt_deg" json:"tilt_deg,omitempty"`
	// Shading is the unshaded fraction; nil means 1.
	Shading         *float64      `yaml:"shading" json:"shading,omitempty"`
	Losses          *model.Losses `yaml:"losses" json:"losses,omitempty"`
	TempCoefficient *float64      `yaml:"temp_coefficient" json:"temp_coefficient,omitempty"`
	Latitude        float64       `yaml:"latitude" json:"latitude"`
	Longitude       float64       `yaml:"longitude" json:"longitude"`
}

const (
	DefaultAzimuthDeg = 180
	DefaultTiltDeg    = 30
)

// ToModel fills defaults. A missing inverter rating is sized to the array peak.
func (i Installation) ToModel() model.Installation {
	out := model.Installation{
		PanelCount:      i.PanelCount,
		PanelPowerWc:    i.PanelPowerWc,
		InverterKW:      i.InverterKW,
		InverterFamily:  model.InverterFamily(i.InverterFamily),
		AzimuthDeg:      floatOr(i.AzimuthDeg, DefaultAzimuthDeg),
		TiltDeg:         floatOr(i.TiltDeg, DefaultTiltDeg),
		Shading:         floatOr(i.Shading, 1),
		Losses:          model.DefaultLosses(),
		TempCoefficient: floatOr(i.TempCoefficient, model.DefaultTempCoefficient),
		Latitude:        i.Latitude,
		Longitude:       i.Longitude,
	}
	if i.Losses != nil {
		out.Losses = *i.Losses
	}
	if out.InverterKW == 0 {
		out.InverterKW = out.PeakKW()
	}
	if out.InverterFamily == "" {
		out.InverterFamily = model.InverterCentral
	}
	return out
}

type Household struct {
	AreaM2           float64 `yaml:"area_m2" json:"area_m2"`
	Occupants        int     `yaml:"occupants" json:"occupants"`
	DPE              string  `yaml:"dpe" json:"dpe,omitempty"`
	ConstructionYear int     `yaml:"construction_year" json:"construction_year,omitempty"`
	Heating          string  `yaml:"heating" json:"heating,omitempty"`
	DHW              string  `yaml:"dhw" json:"dhw,omitempty"`
	DHWTankLitres    float64 `yaml:"dhw_tank_litres" json:"dhw_tank_litres,omitempty"`
	Archetype        string  `yaml:"archetype" json:"archetype,omitempty"`
	// Latitude defaults to the installation's.
	Latitude     *float64 `yaml:"latitude" json:"latitude,omitempty"`
	AltitudeM    float64  `yaml:"altitude_m" json:"altitude_m,omitempty"`
	Ventilation  string   `yaml:"ventilation" json:"ventilation,omitempty"`
	SetpointC    float64  `yaml:"setpoint_c" json:"setpoint_c,omitempty"`
	ApplianceAge string   `yaml:"appliance_age" json:"appliance_age,omitempty"`
	Cooking      string   `yaml:"cooking" json:"cooking,omitempty"`
	Lighting     string   `yaml:"lighting" json:"lighting,omitempty"`
	Audiovisual  string   `yaml:"audiovisual" json:"audiovisual,omitempty"`

	DeclaredAnnualKWh float64           `yaml:"declared_annual_kwh" json:"declared_annual_kwh,omitempty"`
	Inventory         *model.Inventory  `yaml:"inventory" json:"inventory,omitempty"`
	Appliances        []model.Appliance `yaml:"appliances" json:"appliances,omitempty"`
}

// ToModel fills defaults: electric heating and hot water, away archetype.
func (h Household) ToModel(defaultLat float64) model.Household {
	return model.Household{
		AreaM2:            h.AreaM2,
		Occupants:         h.Occupants,
		DPE:               model.DPE(h.DPE),
		ConstructionYear:  h.ConstructionYear,
		Heating:           model.HeatingType(stringOr(h.Heating, string(model.HeatingElectric))),
		DHW:               model.DHWType(stringOr(h.DHW, string(model.DHWElectric))),
		DHWTankLitres:     h.DHWTankLitres,
		Archetype:         model.Archetype(stringOr(h.Archetype, string(model.ArchetypeAway))),
		Latitude:          floatOr(h.Latitude, defaultLat),
		AltitudeM:         h.AltitudeM,
		Ventilation:       model.Ventilation(h.Ventilation),
		SetpointC:         h.SetpointC,
		ApplianceAge:      model.ApplianceAge(h.ApplianceAge),
		Cooking:           model.CookingType(h.Cooking),
		Lighting:          model.LightingType(h.Lighting),
		Audiovisual:       model.AudiovisualUsage(h.Audiovisual),
		DeclaredAnnualKWh: h.DeclaredAnnualKWh,
		Inventory:         h.Inventory,
		Appliances:        h.Appliances,
	}
}

// BatteryConfig is a home battery as written in presets and configs.
// Zero fields take the model defaults; a zero capacity means no battery.
type BatteryConfig struct {
	Name             string  `yaml:"name" json:"name,omitempty"`
	CapacityKWh      float64 `yaml:"capacity_kwh" json:"capacity_kwh,omitempty"`
	UsableFraction   float64 `yaml:"usable_fraction" json:"usable_fraction,omitempty"`
	MaxPowerKW       float64 `yaml:"max_power_kw" json:"max_power_kw,omitempty"`
	Efficiency       float64 `yaml:"efficiency" json:"efficiency,omitempty"`
	DepthOfDischarge float64 `yaml:"depth_of_discharge" json:"depth_of_discharge,omitempty"`
	GuaranteedCycles float64 `yaml:"guaranteed_cycles" json:"guaranteed_cycles,omitempty"`
	// Tier prices the battery from the catalog; Cost overrides the catalog price.
	Tier string  `yaml:"tier" json:"tier,omitempty"`
	Cost float64 `yaml:"cost" json:"cost,omitempty"`
}

// DefaultCRate sizes the power rating when a preset leaves it out.
const DefaultCRate = 0.5

func (b BatteryConfig) Enabled() bool { return b.CapacityKWh != 0 }

func (b BatteryConfig) ToModel() model.BatteryConfig {
	power := b.MaxPowerKW
	if power == 0 {
		power = b.CapacityKWh * DefaultCRate
	}
	out := model.NewBatteryConfig(b.CapacityKWh, power)
	out.Name = b.Name
	if b.UsableFraction != 0 {
		out.UsableFraction = b.UsableFraction
	}
	if b.Efficiency != 0 {
		out.Efficiency = b.Efficiency
	}
	if b.DepthOfDischarge != 0 {
		out.DepthOfDischarge = b.DepthOfDischarge
	}
	if b.GuaranteedCycles != 0 {
		out.GuaranteedCycles = b.GuaranteedCycles
	}
	return out
}

// PriceTier returns the catalog tier, standard when unset.
func (b BatteryConfig) PriceTier() financial.Tier {
	if b.Tier == "" {
		return financial.TierStandard
	}
	return financial.Tier(b.Tier)
}

type Consumption struct {
	// Mode is generic, standard or expert; empty picks the most detailed the household supports.
	Mode      string `yaml:"mode" json:"mode,omitempty"`
	Seed      *int64 `yaml:"seed" json:"seed,omitempty"`
	Optimized bool   `yaml:"optimized" json:"optimized,omitempty"`
	// SolarShift is the share of avoidable-hour load moved into solar hours.
	SolarShift float64 `yaml:"solar_shift" json:"solar_shift,omitempty"`
	TablesFile string  `yaml:"tables_file" json:"-"`
}

func (c Consumption) Options() consumption.Options {
	return consumption.Options{
		Mode:         consumption.Mode(c.Mode),
		SynthOptions: consumption.SynthOptions{Seed: c.Seed, Optimized: c.Optimized},
		SolarShift:   c.SolarShift,
	}
}

func (c Consumption) Validate() error {
	if m := consumption.Mode(c.Mode); m != "" && !m.Valid() {
		return &model.ValidationError{Field: "consumption.mode", Reason: "must be generic, standard or expert"}
	}
	if s := c.SolarShift; s < 0 || s > 1 {
		return &model.ValidationError{Field: "consumption.solar_shift", Reason: "must be in [0, 1]"}
	}
	return nil
}

type Financial struct {
	// InstallCost overrides the per-kWc estimate when > 0.
	InstallCost   float64 `yaml:"install_cost" json:"install_cost,omitempty"`
	SubscribedKVA int     `yaml:"subscribed_kva" json:"subscribed_kva,omitempty"`
	TariffsFile   string  `yaml:"tariffs_file" json:"-"`
}

type Sizing struct {
	Enabled    bool      `yaml:"enabled" json:"enabled,omitempty"`
	Tier       string    `yaml:"tier" json:"tier,omitempty"`
	BudgetMax  float64   `yaml:"budget_max" json:"budget_max,omitempty"`
	Capacities []float64 `yaml:"capacities" json:"capacities,omitempty"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Relative file references resolve against the config file directory first.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	c.WeatherFile = resolve(dir, c.WeatherFile)
	c.Consumption.TablesFile = resolve(dir, c.Consumption.TablesFile)
	c.Financial.TariffsFile = resolve(dir, c.Financial.TariffsFile)

	// If battery_file is set, load it and merge in any explicit overrides from c.Battery.
	if c.BatteryFile != "" {
		loaded, err := LoadBatteryFile(resolve(dir, c.BatteryFile))
		if err != nil {
			return nil, err
		}
		c.Battery = MergeBattery(loaded, c.Battery)
	}
	return &c, nil
}

// resolve prefers a path relative to dir, falling back to the path as given
// (relative to cwd) when that doesn't exist.
func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	cand := filepath.Join(dir, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	inst := c.Installation.ToModel()
	if err := inst.Validate(); err != nil {
		return err
	}
	if err := c.Household.ToModel(inst.Latitude).Validate(); err != nil {
		return err
	}
	if c.Battery.Enabled() {
		if err := c.Battery.ToModel().Validate(); err != nil {
			return fmt.Errorf("battery config invalid: %w", err)
		}
		if !c.Battery.PriceTier().Valid() {
			return &model.ValidationError{Field: "battery.tier", Reason: "must be economy, standard or premium"}
		}
		if c.Battery.Cost < 0 {
			return &model.ValidationError{Field: "battery.cost", Reason: "must be >= 0"}
		}
	}
	if err := c.Consumption.Validate(); err != nil {
		return err
	}
	if c.Financial.InstallCost < 0 {
		return &model.ValidationError{Field: "financial.install_cost", Reason: "must be >= 0"}
	}
	if c.Financial.SubscribedKVA < 0 {
		return &model.ValidationError{Field: "financial.subscribed_kva", Reason: "must be >= 0"}
	}
	if t := financial.Tier(c.Sizing.Tier); t != "" && !t.Valid() {
		return &model.ValidationError{Field: "sizing.tier", Reason: "must be economy, standard or premium"}
	}
	for _, v := range c.Sizing.Capacities {
		if !(v > 0) {
			return &model.ValidationError{Field: "sizing.capacities", Reason: "must all be > 0"}
		}
	}
	return nil
}

// Inputs converts the config into model inputs without weather.
func (c *Config) Inputs() model.Inputs {
	inst := c.Installation.ToModel()
	in := model.Inputs{
		Installation: inst,
		Household:    c.Household.ToModel(inst.Latitude),
	}
	if c.Battery.Enabled() {
		b := c.Battery.ToModel()
		in.Battery = &b
	}
	return in
}

type batteryFileWrapper struct {
	Battery BatteryConfig `yaml:"battery"`
}

// LoadBatteryFile reads a battery preset, a YAML document with a top-level battery key.
func LoadBatteryFile(path string) (BatteryConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return BatteryConfig{}, err
	}
	var w batteryFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return BatteryConfig{}, fmt.Errorf("battery file %s: %w", path, err)
	}
	return w.Battery, nil
}

// MergeBattery overlays non-zero fields from override onto base.
// This is used when loading a battery file and then applying overrides from the request.
func MergeBattery(base, override BatteryConfig) BatteryConfig {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.CapacityKWh != 0 {
		out.CapacityKWh = override.CapacityKWh
	}
	if override.UsableFraction != 0 {
		out.UsableFraction = override.UsableFraction
	}
	if override.MaxPowerKW != 0 {
		out.MaxPowerKW = override.MaxPowerKW
	}
	if override.Efficiency != 0 {
		out.Efficiency = override.Efficiency
	}
	if override.DepthOfDischarge != 0 {
		out.DepthOfDischarge = override.DepthOfDischarge
	}
	if override.GuaranteedCycles != 0 {
		out.GuaranteedCycles = override.GuaranteedCycles
	}
	if override.Tier != "" {
		out.Tier = override.Tier
	}
	if override.Cost != 0 {
		out.Cost = override.Cost
	}
	return out
}

func floatOr(p *float64, d float64) float64 {
	if p == nil {
		return d
	}
	return *p
}

func stringOr(s, d string) string {
	if s == "" {
		return d
	}
	return s
}
