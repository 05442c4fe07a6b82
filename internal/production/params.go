package production

// Params holds the physical constants of the production chain.
type Params struct {
	// NOCT is the nominal operating cell temperature (°C).
	NOCT float64
	// TempFactorMin and TempFactorMax bound the thermal derating factor.
	TempFactorMin float64
	TempFactorMax float64

	// OrientationPoints are factors at 0, 45, 90, 135 and 180 degrees away from south.
	OrientationPoints [5]float64

	TiltOptimalMin float64
	TiltOptimalMax float64
	TiltFlatFactor float64
	TiltWallFactor float64

	// InverterBands maps the DC/AC load ratio to inverter efficiency.
	InverterBands []InverterBand
	// OverloadEfficiency is applied above 100% load, floored at OverloadFloor.
	OverloadEfficiency float64
	OverloadFloor      float64
}

// InverterBand applies Efficiency while the load ratio is below UpTo (or equal, when Inclusive).
type InverterBand struct {
	UpTo       float64
	Inclusive  bool
	Efficiency float64
}

func DefaultParams() Params {
	return Params{
		NOCT:              45,
		TempFactorMin:     0.70,
		TempFactorMax:     1.10,
		OrientationPoints: [5]float64{1.0, 0.95, 0.85, 0.70, 0.50},
		TiltOptimalMin:    25,
		TiltOptimalMax:    40,
		TiltFlatFactor:    0.85,
		TiltWallFactor:    0.70,
		InverterBands: []InverterBand{
			{UpTo: 0.05, Efficiency: 0.85},
			{UpTo: 0.10, Efficiency: 0.92},
			{UpTo: 0.50, Inclusive: true, Efficiency: 0.98},
			{UpTo: 1.00, Inclusive: true, Efficiency: 0.97},
		},
		OverloadEfficiency: 0.97 * 0.95,
		OverloadFloor:      0.90,
	}
}
