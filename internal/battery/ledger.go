package battery

import (
	"pv-simulator/internal/model"
	"pv-simulator/internal/reconcile"
)

// LedgerRow is one hour of battery operation.
// This is the primary artifact for "what happened" in a simulation.
type LedgerRow struct {
	Index     int
	Day       int
	HourOfDay int

	ProductionKWh  float64
	ConsumptionKWh float64

	Action model.Action

	DirectSelfKWh float64
	// ChargedKWh is the surplus taken from the PV side; StoredKWh is what reached the cells.
	ChargedKWh    float64
	StoredKWh     float64
	DischargedKWh float64

	ExportKWh float64
	ImportKWh float64

	SOCStart float64
	SOCEnd   float64
}

type Result struct {
	Ledger []LedgerRow

	Self   model.Series
	Export model.Series
	Import model.Series

	Totals reconcile.Totals

	EnergyCycledKWh float64
	CyclesPerYear   float64
	LifetimeYears   float64
	FinalSOC        float64

	SelfConsumptionRate float64
	SelfProductionRate  float64
	// Gains are in percentage points over the no-battery baseline.
	SelfConsumptionGain float64
	SelfProductionGain  float64
}
