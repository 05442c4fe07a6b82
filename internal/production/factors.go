package production

import "math"

// TemperatureFactor derates DC output for cell temperature.
// Cell temperature follows the NOCT model: Tc = Ta + (NOCT - 20) * G / 800.
func (p Params) TemperatureFactor(ghi, ambient, coef float64) float64 {
	tc := ambient + (p.NOCT-20)*ghi/800
	f := 1 + coef*(tc-25)
	return math.Max(p.TempFactorMin, math.Min(p.TempFactorMax, f))
}

// OrientationFactor interpolates between the compass points around due south (180°).
func (p Params) OrientationFactor(azimuth float64) float64 {
	az := math.Mod(azimuth, 360)
	if az < 0 {
		az += 360
	}
	dev := math.Abs(az - 180)
	i := int(dev / 45)
	if i >= len(p.OrientationPoints)-1 {
		return p.OrientationPoints[len(p.OrientationPoints)-1]
	}
	frac := (dev - float64(i)*45) / 45
	return p.OrientationPoints[i] + frac*(p.OrientationPoints[i+1]-p.OrientationPoints[i])
}

// TiltFactor is flat at 1 inside the optimal band and linear towards flat and vertical mounts.
func (p Params) TiltFactor(tilt float64) float64 {
	switch {
	case tilt < p.TiltOptimalMin:
		return p.TiltFlatFactor + (1-p.TiltFlatFactor)*tilt/p.TiltOptimalMin
	case tilt > p.TiltOptimalMax:
		span := 90 - p.TiltOptimalMax
		return 1 - (1-p.TiltWallFactor)*math.Min(tilt-p.TiltOptimalMax, span)/span
	default:
		return 1
	}
}

// InverterEfficiency returns the conversion efficiency at load ratio r = dc / nominal.
func (p Params) InverterEfficiency(r float64) float64 {
	for _, b := range p.InverterBands {
		if r < b.UpTo || (b.Inclusive && r == b.UpTo) {
			return b.Efficiency
		}
	}
	return math.Max(p.OverloadFloor, p.OverloadEfficiency)
}
