package model

// Inputs is the canonical set of immutable inputs for one simulation run.
// Battery is optional; a nil battery skips storage simulation.
type Inputs struct {
	Weather      *Weather
	Installation Installation
	Household    Household
	Battery      *BatteryConfig
}

func (in Inputs) Validate() error {
	if err := in.Installation.Validate(); err != nil {
		return err
	}
	if err := in.Household.Validate(); err != nil {
		return err
	}
	if in.Battery != nil {
		if err := in.Battery.Validate(); err != nil {
			return err
		}
	}
	if in.Weather != nil {
		return in.Weather.Validate()
	}
	return nil
}
