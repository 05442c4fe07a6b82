package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"pv-simulator/internal/api/models"
	"pv-simulator/internal/config"
	"pv-simulator/internal/financial"
	"pv-simulator/internal/simulation"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// BatteryHandler handles battery-related requests
type BatteryHandler struct {
	batteryDir string
	runner     *simulation.Runner
}

// NewBatteryHandler creates a new battery handler reading presets from dir
func NewBatteryHandler(runner *simulation.Runner, dir string) *BatteryHandler {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	log.Info().Str("dir", dir).Msg("battery presets")
	return &BatteryHandler{batteryDir: dir, runner: runner}
}

// ListBatteries handles GET /api/v1/batteries
func (h *BatteryHandler) ListBatteries(c *gin.Context) {
	batteries := []models.BatteryInfo{}

	entries, err := os.ReadDir(h.batteryDir)
	if err != nil {
		log.Warn().Err(err).Str("dir", h.batteryDir).Msg("failed to read battery directory")
		c.JSON(http.StatusOK, gin.H{"batteries": batteries})
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		info, err := h.loadBatteryInfo(entry.Name())
		if err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("skipping battery preset")
			continue
		}
		batteries = append(batteries, *info)
	}

	c.JSON(http.StatusOK, gin.H{"batteries": batteries})
}

func (h *BatteryHandler) loadBatteryInfo(filename string) (*models.BatteryInfo, error) {
	b, err := config.LoadBatteryFile(filepath.Join(h.batteryDir, filename))
	if err != nil {
		return nil, err
	}

	// "standard-10kwh.yaml" -> "standard-10kwh"
	id := strings.TrimSuffix(filename, ".yaml")
	name := b.Name
	if name == "" {
		name = id
	}

	m := b.ToModel()
	info := &models.BatteryInfo{
		ID:   id,
		Name: name,
		File: filename,
		Specs: models.BatterySpecs{
			CapacityKWh:      m.CapacityKWh,
			UsableKWh:        m.UsableKWh(),
			MaxPowerKW:       m.MaxPowerKW,
			Efficiency:       m.Efficiency,
			DepthOfDischarge: m.DepthOfDischarge,
			GuaranteedCycles: m.GuaranteedCycles,
			Tier:             b.PriceTier(),
		},
	}
	if p, err := h.runner.Prices.Quote(m.CapacityKWh, b.PriceTier()); err == nil {
		if b.Cost > 0 {
			p.Total = b.Cost
		}
		info.Price = &p
	}
	return info, nil
}

// Price handles GET /api/v1/battery/price?capacity_kwh=&tier=
func (h *BatteryHandler) Price(c *gin.Context) {
	var q models.BatteryPriceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	p, err := h.runner.Prices.Quote(q.CapacityKWh, financial.Tier(q.Tier))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error(), map[string]interface{}{
			"capacity_kwh": q.CapacityKWh,
			"tier":         q.Tier,
		})
		return
	}
	c.JSON(http.StatusOK, p)
}

// Sizing handles POST /api/v1/battery/sizing
//
// The installation and household are simulated without a battery, then each
// candidate capacity is simulated against the same series.
func (h *BatteryHandler) Sizing(c *gin.Context) {
	var req models.SizingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	cfg := req.Config
	cfg.BatteryFile = ""
	cfg.Battery = config.BatteryConfig{}
	cfg, err := resolvePresets(cfg, h.batteryDir)
	if err != nil {
		respondError(c, err)
		return
	}
	cfg.Sizing = config.Sizing{
		Enabled:    true,
		Tier:       req.Tier,
		BudgetMax:  req.BudgetMax,
		Capacities: req.Capacities,
	}

	rep, err := h.runner.Run(c.Request.Context(), simulation.Request{Config: cfg})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SizingResponse{
		Weather:        rep.Weather,
		ProductionKWh:  rep.Production.AnnualKWh,
		ConsumptionKWh: rep.Consumption.AnnualKWh,
		Recommendation: rep.Sizing,
		Baseline:       rep.Balance,
	})
}
