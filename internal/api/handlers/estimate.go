package handlers

import (
	"net/http"

	"pv-simulator/internal/api/models"
	"pv-simulator/internal/config"
	"pv-simulator/internal/simulation"

	"github.com/gin-gonic/gin"
)

// EstimateHandler serves the standalone production and consumption estimates
type EstimateHandler struct {
	runner *simulation.Runner
}

// NewEstimateHandler creates a new estimate handler
func NewEstimateHandler(runner *simulation.Runner) *EstimateHandler {
	return &EstimateHandler{runner: runner}
}

// Consumption handles POST /api/v1/consumption/estimate
func (h *EstimateHandler) Consumption(c *gin.Context) {
	var req models.ConsumptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	if err := req.Options.Validate(); err != nil {
		respondError(c, err)
		return
	}

	hh := req.Household.ToModel(req.Latitude)
	res, err := h.runner.Consumption.Estimate(hh, req.Options.Options())
	if err != nil {
		respondError(c, err)
		return
	}
	resp := models.ConsumptionResponse{
		Mode:            res.Mode,
		AnnualKWh:       res.AnnualKWh,
		Monthly:         res.Monthly,
		CategoryMonthly: res.CategoryMonthly,
		Daily:           res.Daily,
		Breakdown:       res.Breakdown,
		Items:           res.Items,
		ExpectedKWh:     res.ExpectedKWh,
		GapPct:          res.GapPct,
	}
	if req.IncludeHourly {
		resp.Hourly = res.Hourly
	}
	c.JSON(http.StatusOK, resp)
}

// Production handles POST /api/v1/production/estimate
func (h *EstimateHandler) Production(c *gin.Context) {
	var req models.ProductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	inst := req.Installation.ToModel()
	if err := inst.Validate(); err != nil {
		respondError(c, err)
		return
	}
	w, err := h.runner.ResolveWeather(c.Request.Context(), config.Config{Installation: req.Installation})
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.runner.Production.Run(w, inst)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.ProductionResponse{
		Weather:             w.Meta,
		InstallationSummary: simulation.SummarizeInstallation(inst),
		Production: simulation.ProductionSummary{
			AnnualKWh:        res.AnnualKWh,
			SpecificYield:    res.SpecificYield,
			PerformanceRatio: res.PerformanceRatio,
			ClippedKWh:       res.ClippedKWh,
			Monthly:          res.Monthly,
			Daily:            res.Daily,
			DisplayOnly:      res.DisplayOnly,
		},
	}
	if req.IncludeHourly {
		resp.Hourly = res.AC
	}
	c.JSON(http.StatusOK, resp)
}
