package model

// Action is a human-friendly battery mode for one hour.
// Keep these values stable; they are intended for CSV output.
type Action string

const (
	ActionCharging    Action = "CHARGING"
	ActionIdle        Action = "IDLE"
	ActionDischarging Action = "DISCHARGING"
)

// ActionFromFlow classifies an hour from the energy that entered or left storage.
func ActionFromFlow(chargedKWh, dischargedKWh float64) Action {
	switch {
	case chargedKWh > 0:
		return ActionCharging
	case dischargedKWh > 0:
		return ActionDischarging
	default:
		return ActionIdle
	}
}
