package models

import (
	"encoding/json"

	"pv-simulator/internal/consumption"
	"pv-simulator/internal/financial"
	"pv-simulator/internal/model"
	"pv-simulator/internal/simulation"
	"pv-simulator/internal/sizing"
)

// SimulationResponse represents the response from a simulation run
type SimulationResponse struct {
	Status string `json:"status"`
	*simulation.Report
	Hourly []simulation.HourRow `json:"hourly,omitempty"`
}

// HourlyResponse is a slice of a stored simulation's hourly series
type HourlyResponse struct {
	ID    string               `json:"id"`
	From  int                  `json:"from"`
	To    int                  `json:"to"`
	Hours []simulation.HourRow `json:"hours"`
}

// ConsumptionResponse represents a standalone consumption estimate
type ConsumptionResponse struct {
	Mode            consumption.Mode        `json:"mode"`
	AnnualKWh       float64                 `json:"annual_kwh"`
	Monthly         [12]float64             `json:"monthly_kwh"`
	CategoryMonthly [12]float64             `json:"category_monthly_kwh"`
	Daily           [24]float64             `json:"hour_of_day_kwh"`
	Breakdown       consumption.Breakdown   `json:"breakdown_kwh"`
	Items           []consumption.ItemUsage `json:"items,omitempty"`
	ExpectedKWh     float64                 `json:"expected_kwh"`
	GapPct          float64                 `json:"gap_pct"`
	Hourly          []float64               `json:"hourly,omitempty"`
}

// ProductionResponse represents a standalone production estimate
type ProductionResponse struct {
	Weather model.WeatherMetadata `json:"weather"`
	simulation.InstallationSummary
	Production simulation.ProductionSummary `json:"production"`
	Hourly     []float64                    `json:"hourly,omitempty"`
}

// SizingResponse wraps a battery sizing study with the no-battery baseline
type SizingResponse struct {
	Weather        model.WeatherMetadata     `json:"weather"`
	ProductionKWh  float64                   `json:"production_kwh"`
	ConsumptionKWh float64                   `json:"consumption_kwh"`
	Recommendation *sizing.Recommendation    `json:"recommendation"`
	Baseline       simulation.BalanceSummary `json:"baseline"`
}

// BatteryInfo represents information about a battery preset
type BatteryInfo struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	File  string           `json:"file"`
	Specs BatterySpecs     `json:"specs"`
	Price *financial.Price `json:"price,omitempty"`
}

// BatterySpecs contains battery specifications
type BatterySpecs struct {
	CapacityKWh      float64        `json:"capacity_kwh"`
	UsableKWh        float64        `json:"usable_kwh"`
	MaxPowerKW       float64        `json:"max_power_kw"`
	Efficiency       float64        `json:"efficiency"`
	DepthOfDischarge float64        `json:"depth_of_discharge"`
	GuaranteedCycles float64        `json:"guaranteed_cycles"`
	Tier             financial.Tier `json:"tier"`
}

// ArchetypeInfo describes one occupancy pattern
type ArchetypeInfo struct {
	ID          model.Archetype `json:"id"`
	Description string          `json:"description"`
	Weekday     [24]float64     `json:"weekday"`
	Weekend     [24]float64     `json:"weekend"`
	Sizing      sizing.Rule     `json:"sizing"`
	OffPeakPct  float64         `json:"off_peak_pct"`
}

// StreamMessage is one websocket frame of a streamed simulation
type StreamMessage struct {
	Type    string          `json:"type"` // "stage", "month", "result", "error"
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewStreamMessage marshals payload into a frame
func NewStreamMessage(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(StreamMessage{Type: msgType, Payload: raw})
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
