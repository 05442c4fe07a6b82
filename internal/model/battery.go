package model

import "math"

// BatteryConfig defines a home storage system.
// Units:
// - CapacityKWh: kWh (nameplate)
// - UsableFraction: 0..1 share of nameplate that can be stored
// - MaxPowerKW: kW, same limit for charge and discharge
// - Efficiency: 0..1 round-trip, applied on the way in and again on the way out
// - DepthOfDischarge: 0..1 share of usable capacity that may be cycled
type BatteryConfig struct {
	Name             string
	CapacityKWh      float64
	UsableFraction   float64
	MaxPowerKW       float64
	Efficiency       float64
	DepthOfDischarge float64
	GuaranteedCycles float64
}

const (
	DefaultUsableFraction   = 0.9
	DefaultBatteryEff       = 0.95
	DefaultDepthOfDischarge = 0.90
	DefaultGuaranteedCycles = 6000
)

// NewBatteryConfig fills the documented defaults around a capacity and power rating.
func NewBatteryConfig(capacityKWh, maxPowerKW float64) BatteryConfig {
	return BatteryConfig{
		CapacityKWh:      capacityKWh,
		UsableFraction:   DefaultUsableFraction,
		MaxPowerKW:       maxPowerKW,
		Efficiency:       DefaultBatteryEff,
		DepthOfDischarge: DefaultDepthOfDischarge,
		GuaranteedCycles: DefaultGuaranteedCycles,
	}
}

func (b BatteryConfig) UsableKWh() float64 { return b.CapacityKWh * b.UsableFraction }

func (b BatteryConfig) SoCMin() float64 { return b.UsableKWh() * (1 - b.DepthOfDischarge) }

func (b BatteryConfig) SoCMax() float64 { return b.UsableKWh() }

func (b BatteryConfig) Validate() error {
	switch {
	case !(b.CapacityKWh > 0) || math.IsInf(b.CapacityKWh, 0):
		return invalid("battery.capacity_kwh", "must be > 0")
	case b.UsableFraction <= 0 || b.UsableFraction > 1:
		return invalid("battery.usable_fraction", "must be in (0, 1]")
	case !(b.MaxPowerKW > 0):
		return invalid("battery.max_power_kw", "must be > 0")
	case b.Efficiency <= 0 || b.Efficiency > 1:
		return invalid("battery.efficiency", "must be in (0, 1]")
	case b.DepthOfDischarge <= 0 || b.DepthOfDischarge > 1:
		return invalid("battery.depth_of_discharge", "must be in (0, 1]")
	case b.GuaranteedCycles < 0:
		return invalid("battery.guaranteed_cycles", "must be >= 0")
	}
	return nil
}
