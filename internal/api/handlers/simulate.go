package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"

	"pv-simulator/internal/api/models"
	"pv-simulator/internal/battery"
	"pv-simulator/internal/config"
	"pv-simulator/internal/model"
	"pv-simulator/internal/simulation"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// SimulationHandler handles simulation-related requests
type SimulationHandler struct {
	runner     *simulation.Runner
	store      *simulation.Store
	batteryDir string
}

// NewSimulationHandler creates a new simulation handler. Reports are kept in
// store so hourly data and ledgers can be fetched by ID.
func NewSimulationHandler(runner *simulation.Runner, store *simulation.Store, batteryDir string) *SimulationHandler {
	return &SimulationHandler{runner: runner, store: store, batteryDir: batteryDir}
}

// Simulate handles POST /api/v1/simulate
func (h *SimulationHandler) Simulate(c *gin.Context) {
	var req models.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	cfg, err := h.buildConfig(req.Config)
	if err != nil {
		respondError(c, err)
		return
	}

	rep, err := h.runner.Run(c.Request.Context(), simulation.Request{Config: cfg})
	if err != nil {
		respondError(c, err)
		return
	}
	h.store.Put(rep)

	resp := models.SimulationResponse{Status: "completed", Report: rep}
	if req.Options.IncludeHourly {
		resp.Hourly = rep.Series.Rows(0, model.HoursPerYear)
	}
	c.JSON(http.StatusOK, resp)
}

// GetReport handles GET /api/v1/simulate/:id
func (h *SimulationHandler) GetReport(c *gin.Context) {
	rep, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.SimulationResponse{Status: "completed", Report: rep})
}

// GetHourly handles GET /api/v1/simulate/:id/hourly?from=&to=
func (h *SimulationHandler) GetHourly(c *gin.Context) {
	var q models.HourlyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	rep, ok := h.lookup(c)
	if !ok {
		return
	}
	rows := rep.Series.Rows(q.From, q.To)
	c.JSON(http.StatusOK, models.HourlyResponse{
		ID:    rep.ID,
		From:  max(q.From, 0),
		To:    max(q.From, 0) + len(rows),
		Hours: rows,
	})
}

// GetLedger handles GET /api/v1/simulate/:id/ledger.csv
func (h *SimulationHandler) GetLedger(c *gin.Context) {
	rep, ok := h.lookup(c)
	if !ok {
		return
	}
	if rep.Series == nil || rep.Series.Ledger == nil {
		abortWithError(c, http.StatusNotFound, "NO_LEDGER", "simulation ran without a battery", nil)
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="ledger-%s.csv"`, rep.ID))
	c.Status(http.StatusOK)
	if err := battery.WriteLedger(c.Writer, rep.Series.Ledger); err != nil {
		log.Error().Err(err).Str("id", rep.ID).Msg("failed to write ledger")
	}
}

func (h *SimulationHandler) lookup(c *gin.Context) (*simulation.Report, bool) {
	id := c.Param("id")
	rep, ok := h.store.Get(id)
	if !ok {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", "simulation not found or expired", map[string]interface{}{"id": id})
		return nil, false
	}
	return rep, true
}

// buildConfig resolves battery presets from the battery directory. Server
// paths cannot be named by clients, so only preset base names are honored and
// weather files are refused.
func (h *SimulationHandler) buildConfig(cfg config.Config) (config.Config, error) {
	return resolvePresets(cfg, h.batteryDir)
}

func resolvePresets(cfg config.Config, batteryDir string) (config.Config, error) {
	if cfg.WeatherFile != "" {
		return cfg, &model.ValidationError{Field: "weather_file", Reason: "is not accepted over the API; use site"}
	}
	cfg.Consumption.TablesFile = ""
	cfg.Financial.TariffsFile = ""
	if cfg.BatteryFile == "" {
		return cfg, nil
	}
	path := filepath.Join(batteryDir, filepath.Base(cfg.BatteryFile))
	loaded, err := config.LoadBatteryFile(path)
	if err != nil {
		return cfg, &model.ValidationError{Field: "battery_file", Reason: fmt.Sprintf("unknown preset %q", cfg.BatteryFile)}
	}
	cfg.Battery = config.MergeBattery(loaded, cfg.Battery)
	cfg.BatteryFile = ""
	return cfg, nil
}
