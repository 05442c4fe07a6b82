package model

import (
	"errors"
	"fmt"
	"strings"
)

// DPE is the French energy-performance grade, A (best) to G (worst).
type DPE string

func (d DPE) Valid() bool {
	return len(d) == 1 && strings.Contains("ABCDEFG", string(d))
}

type HeatingType string

const (
	HeatingNone     HeatingType = "none"
	HeatingElectric HeatingType = "electric"
	HeatingHeatPump HeatingType = "heat_pump"
	HeatingGas      HeatingType = "gas"
	HeatingOil      HeatingType = "oil"
	HeatingWood     HeatingType = "wood"
)

// Electric reports whether the heating draws from the household meter.
func (h HeatingType) Electric() bool {
	return h == HeatingElectric || h == HeatingHeatPump
}

type DHWType string

const (
	DHWNone     DHWType = "none"
	DHWElectric DHWType = "electric"
	DHWHeatPump DHWType = "heat_pump"
	DHWGas      DHWType = "gas"
	DHWSolar    DHWType = "solar"
)

func (d DHWType) Electric() bool {
	return d == DHWElectric || d == DHWHeatPump
}

// Archetype is the household occupancy pattern.
type Archetype string

const (
	ArchetypeAway       Archetype = "away"
	ArchetypeHomeOffice Archetype = "home_office"
	ArchetypeRetired    Archetype = "retired"
	ArchetypeFamily     Archetype = "family"
)

func Archetypes() []Archetype {
	return []Archetype{ArchetypeAway, ArchetypeHomeOffice, ArchetypeRetired, ArchetypeFamily}
}

func (a Archetype) Valid() bool {
	for _, x := range Archetypes() {
		if a == x {
			return true
		}
	}
	return false
}

type Ventilation string

const (
	VentilationNone       Ventilation = "none"
	VentilationSingleFlow Ventilation = "single_flow"
	VentilationDoubleFlow Ventilation = "double_flow"
)

type ApplianceAge string

const (
	AgeRecent  ApplianceAge = "recent"
	AgeAverage ApplianceAge = "average"
	AgeOld     ApplianceAge = "old"
)

type CookingType string

const (
	CookingInduction CookingType = "induction"
	CookingElectric  CookingType = "electric"
	CookingGas       CookingType = "gas"
)

type LightingType string

const (
	LightingLED     LightingType = "led"
	LightingHalogen LightingType = "halogen"
	LightingMixed   LightingType = "mixed"
)

type AudiovisualUsage string

const (
	UsageModerate AudiovisualUsage = "moderate"
	UsageNormal   AudiovisualUsage = "normal"
	UsageHeavy    AudiovisualUsage = "heavy"
)

// Household is everything the consumption engine knows about a home.
// DeclaredAnnualKWh > 0 selects the generic decomposition of a known total.
type Household struct {
	AreaM2           float64
	Occupants        int
	DPE              DPE
	ConstructionYear int
	Heating          HeatingType
	DHW              DHWType
	DHWTankLitres    float64
	Archetype        Archetype
	Latitude         float64
	AltitudeM        float64
	Ventilation      Ventilation
	SetpointC        float64
	ApplianceAge     ApplianceAge
	Cooking          CookingType
	Lighting         LightingType
	Audiovisual      AudiovisualUsage

	DeclaredAnnualKWh float64

	// Inventory enables the itemized estimate.
	Inventory *Inventory
	// Appliances are the programmable loads placed as hourly pulses.
	Appliances []Appliance
}

// EffectiveDPE returns the declared grade, or one inferred from the construction year.
func (h Household) EffectiveDPE() DPE {
	if h.DPE.Valid() {
		return h.DPE
	}
	switch y := h.ConstructionYear; {
	case y == 0:
		return "D"
	case y < 1975:
		return "F"
	case y < 2000:
		return "E"
	case y < 2013:
		return "D"
	case y < 2021:
		return "C"
	default:
		return "B"
	}
}

// HasAppliance reports whether a programmable appliance of kind k is declared.
func (h Household) HasAppliance(k ApplianceKind) bool {
	for _, a := range h.Appliances {
		if a.Kind == k {
			return true
		}
	}
	return false
}

func (h Household) Validate() error {
	if !(h.AreaM2 > 0) {
		return invalid("household.area_m2", "must be > 0")
	}
	if h.Occupants <= 0 {
		return invalid("household.occupants", "must be > 0")
	}
	if h.DPE != "" && !h.DPE.Valid() {
		return invalid("household.dpe", "must be one of A-G")
	}
	if h.ConstructionYear < 0 {
		return invalid("household.construction_year", "must be >= 0")
	}
	if !h.Archetype.Valid() {
		return invalid("household.archetype", "must be away, home_office, retired or family")
	}
	if h.DeclaredAnnualKWh < 0 {
		return invalid("household.declared_annual_kwh", "must be >= 0")
	}
	if h.Latitude < -90 || h.Latitude > 90 {
		return invalid("household.latitude", "must be in [-90, 90]")
	}
	for i, a := range h.Appliances {
		if err := a.Validate(); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				return invalid(fmt.Sprintf("household.appliances[%d].%s", i, ve.Field), ve.Reason)
			}
			return err
		}
	}
	return nil
}
