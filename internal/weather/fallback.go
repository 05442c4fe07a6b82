package weather

import (
	"math"

	"pv-simulator/internal/model"
)

const (
	minFallbackIrradiation = 1000.0
	maxFallbackIrradiation = 1800.0
	peakIrradiance         = 800.0
	seasonalAmplitude      = 0.3
	meanTemperature        = 12.0
	temperatureAmplitude   = 10.0
	// springEquinoxDay anchors the seasonal sine.
	springEquinoxDay = 80
)

// EstimateIrradiation is the annual GHI (kWh/m²) assumed for a latitude when nothing better is known.
func EstimateIrradiation(lat float64) float64 {
	return math.Max(minFallbackIrradiation, math.Min(maxFallbackIrradiation, 2000-math.Abs(lat)*10))
}

// Fallback synthesizes a clear-sky-like year scaled to annualKWhM2.
// annualKWhM2 <= 0 uses EstimateIrradiation. The result depends only on the
// arguments; RetrievedAt stays zero.
func Fallback(lat, lon, annualKWhM2 float64) *model.Weather {
	if annualKWhM2 <= 0 {
		annualKWhM2 = EstimateIrradiation(lat)
	}
	ghi := model.NewSeries()
	temp := model.NewSeries()
	for h := range ghi {
		day := model.DayOfHour(h)
		season := math.Sin(float64(day-springEquinoxDay) * 2 * math.Pi / model.DaysPerYear)
		hod := float64(model.HourOfDay(h))
		ghi[h] = math.Max(0, peakIrradiance*math.Sin((hod-6)*math.Pi/12)) * (1 + seasonalAmplitude*season)
		temp[h] = meanTemperature + temperatureAmplitude*season
	}
	ghi.ScaleTo(annualKWhM2 * 1000)

	return &model.Weather{
		GHI:           ghi,
		Temperature:   temp,
		HasTimestamps: false,
		Meta: model.WeatherMetadata{
			Source:            model.SourceFallback,
			Synthetic:         true,
			AnnualIrradiation: annualKWhM2,
			Latitude:          lat,
			Longitude:         lon,
		},
	}
}

// Validate checks w against the hourly weather contract.
func Validate(w *model.Weather) error {
	return w.Validate()
}
