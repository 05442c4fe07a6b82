package model

import "math"

// InverterFamily is carried through results; no formula depends on it.
type InverterFamily string

const (
	InverterCentral   InverterFamily = "central"
	InverterMicro     InverterFamily = "micro"
	InverterOptimizer InverterFamily = "optimizer"
)

func (f InverterFamily) Valid() bool {
	switch f {
	case InverterCentral, InverterMicro, InverterOptimizer:
		return true
	}
	return false
}

// Losses are fractional system losses, each applied multiplicatively.
type Losses struct {
	Cabling      float64 `json:"cabling" yaml:"cabling"`
	Soiling      float64 `json:"soiling" yaml:"soiling"`
	Mismatch     float64 `json:"mismatch" yaml:"mismatch"`
	Connections  float64 `json:"connections" yaml:"connections"`
	Availability float64 `json:"availability" yaml:"availability"`
}

func DefaultLosses() Losses {
	return Losses{
		Cabling:      0.02,
		Soiling:      0.03,
		Mismatch:     0.02,
		Connections:  0.005,
		Availability: 0.01,
	}
}

// Factor is the share of DC energy left after all losses.
func (l Losses) Factor() float64 {
	f := 1.0
	for _, x := range l.values() {
		f *= 1 - x
	}
	return f
}

func (l Losses) values() []float64 {
	return []float64{l.Cabling, l.Soiling, l.Mismatch, l.Connections, l.Availability}
}

// Installation describes the PV array and its inverter.
// Units:
// - PanelPowerWc: Wc per panel
// - InverterKW: kW AC nominal
// - AzimuthDeg: 0..360, 180 = south
// - TiltDeg: 0..90
// - Shading: (0, 1], 1 = unshaded
// - TempCoefficient: per °C, negative
type Installation struct {
	PanelCount      int
	PanelPowerWc    float64
	InverterKW      float64
	InverterFamily  InverterFamily
	AzimuthDeg      float64
	TiltDeg         float64
	Shading         float64
	Losses          Losses
	TempCoefficient float64
	Latitude        float64
	Longitude       float64
}

const DefaultTempCoefficient = -0.0037

// PeakKW is the installed peak power (kWc).
func (i Installation) PeakKW() float64 {
	return float64(i.PanelCount) * i.PanelPowerWc / 1000
}

func (i Installation) Validate() error {
	if i.PanelCount <= 0 {
		return invalid("installation.panel_count", "must be > 0")
	}
	if !(i.PanelPowerWc > 0) {
		return invalid("installation.panel_power_wc", "must be > 0")
	}
	if !(i.InverterKW > 0) {
		return invalid("installation.inverter_kw", "must be > 0")
	}
	if i.InverterFamily != "" && !i.InverterFamily.Valid() {
		return invalid("installation.inverter_family", "must be central, micro or optimizer")
	}
	if i.AzimuthDeg < 0 || i.AzimuthDeg > 360 {
		return invalid("installation.azimuth_deg", "must be in [0, 360]")
	}
	if i.TiltDeg < 0 || i.TiltDeg > 90 {
		return invalid("installation.tilt_deg", "must be in [0, 90]")
	}
	if i.Shading <= 0 || i.Shading > 1 {
		return invalid("installation.shading", "must be in (0, 1]")
	}
	for _, x := range i.Losses.values() {
		if x < 0 || x >= 1 {
			return invalid("installation.losses", "each loss must be in [0, 1)")
		}
	}
	if i.TempCoefficient > 0 {
		return invalid("installation.temp_coefficient", "must be <= 0")
	}
	return ValidateLocation(i.Latitude, i.Longitude)
}

// ValidateLocation rejects coordinates outside the globe.
func ValidateLocation(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return invalid("latitude", "must be in [-90, 90]")
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return invalid("longitude", "must be in [-180, 180]")
	}
	return nil
}
