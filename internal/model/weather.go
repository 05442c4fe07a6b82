package model

import (
	"math"
	"time"
)

// WeatherSource tells callers where hourly weather came from.
type WeatherSource string

const (
	SourceAPI      WeatherSource = "api"
	SourceCache    WeatherSource = "cache"
	SourceFile     WeatherSource = "file"
	SourceFallback WeatherSource = "fallback"
)

// WeatherMetadata accompanies every weather series.
// Synthetic is true whenever the data was generated rather than observed.
type WeatherMetadata struct {
	Source            WeatherSource `json:"source"`
	Synthetic         bool          `json:"synthetic"`
	AnnualIrradiation float64       `json:"annual_irradiation_kwh_m2"`
	Latitude          float64       `json:"latitude"`
	Longitude         float64       `json:"longitude"`
	APIVersion        string        `json:"api_version,omitempty"`
	RetrievedAt       time.Time     `json:"retrieved_at"`
	CachedUntil       time.Time     `json:"cached_until,omitempty"`
}

// Weather is a typical meteorological year on the abstract hourly grid.
// Units:
// - GHI: W/m² global horizontal irradiance
// - Temperature: °C ambient; nil when unavailable
type Weather struct {
	GHI         Series
	Temperature Series
	// HasTimestamps is false when the source carried no usable time index.
	HasTimestamps bool
	Meta          WeatherMetadata
}

// AnnualIrradiation integrates GHI over the year in kWh/m².
func (w *Weather) AnnualIrradiation() float64 {
	return w.GHI.Total() / 1000
}

// Validate enforces the weather contract: 8760 finite GHI values >= 0 and,
// when present, 8760 finite temperatures.
func (w *Weather) Validate() error {
	if w == nil {
		return &ContractError{Series: "ghi", Reason: "weather is nil"}
	}
	if err := w.GHI.Validate("ghi"); err != nil {
		return err
	}
	if w.Temperature == nil {
		return nil
	}
	if len(w.Temperature) != HoursPerYear {
		return &LengthError{Series: "temperature", Got: len(w.Temperature), Want: HoursPerYear}
	}
	for h, v := range w.Temperature {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ContractError{Series: "temperature", Hour: h, Reason: "value is not finite"}
		}
	}
	return nil
}
