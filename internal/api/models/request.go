package models

import "pv-simulator/internal/config"

// SimulateRequest represents the request body for running a simulation
type SimulateRequest struct {
	Config  config.Config   `json:"config" binding:"required"`
	Options SimulateOptions `json:"options,omitempty"`
}

// SimulateOptions contains optional simulation parameters
type SimulateOptions struct {
	IncludeHourly bool `json:"include_hourly,omitempty"` // default: false
}

// ConsumptionRequest estimates a household load without any PV
type ConsumptionRequest struct {
	Household config.Household   `json:"household" binding:"required"`
	Latitude  float64            `json:"latitude"`
	Options   config.Consumption `json:"options,omitempty"`
	// IncludeHourly adds the 8760-value series to the response
	IncludeHourly bool `json:"include_hourly,omitempty"`
}

// ProductionRequest estimates the output of an installation at its own coordinates
type ProductionRequest struct {
	Installation  config.Installation `json:"installation" binding:"required"`
	IncludeHourly bool                `json:"include_hourly,omitempty"`
}

// SizingRequest compares battery capacities for one installation and household
type SizingRequest struct {
	Config     config.Config `json:"config" binding:"required"`
	Tier       string        `json:"tier,omitempty"`
	BudgetMax  float64       `json:"budget_max,omitempty"`
	Capacities []float64     `json:"capacities,omitempty"`
}

// BatteryPriceQuery prices a battery from the catalog
type BatteryPriceQuery struct {
	CapacityKWh float64 `form:"capacity_kwh" binding:"required"`
	Tier        string  `form:"tier,default=standard"`
}

// HourlyQuery selects a range of hours [from, to)
type HourlyQuery struct {
	From int `form:"from,omitempty"`
	To   int `form:"to,default=8760"`
}
