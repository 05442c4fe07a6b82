package handlers

import (
	"net/http"

	"pv-simulator/internal/api/models"
	"pv-simulator/internal/consumption"
	"pv-simulator/internal/model"
	"pv-simulator/internal/simulation"
	"pv-simulator/internal/weather"

	"github.com/gin-gonic/gin"
)

// ReferenceHandler serves the lookup tables a client needs to build a config
type ReferenceHandler struct {
	runner   *simulation.Runner
	profiles map[model.Archetype]consumption.ArchetypeProfile
}

// NewReferenceHandler creates a new reference handler
func NewReferenceHandler(runner *simulation.Runner) *ReferenceHandler {
	return &ReferenceHandler{runner: runner, profiles: consumption.DefaultArchetypes()}
}

// ListArchetypes handles GET /api/v1/archetypes
func (h *ReferenceHandler) ListArchetypes(c *gin.Context) {
	out := make([]models.ArchetypeInfo, 0, len(h.profiles))
	for _, a := range model.Archetypes() {
		p, ok := h.profiles[a]
		if !ok {
			continue
		}
		out = append(out, models.ArchetypeInfo{
			ID:          a,
			Description: p.Description,
			Weekday:     p.Weekday.Hours(),
			Weekend:     p.Weekend.Hours(),
			Sizing:      h.runner.Rules.Rule(a),
			OffPeakPct:  h.runner.Tariffs.OffPeakByArchetype[a],
		})
	}
	c.JSON(http.StatusOK, gin.H{"archetypes": out})
}

// ListSites handles GET /api/v1/sites
func (h *ReferenceHandler) ListSites(c *gin.Context) {
	sites := []weather.Site{}
	updated := ""
	if h.runner.Sites != nil {
		sites = h.runner.Sites.Sites
		updated = h.runner.Sites.UpdatedAt
	}
	c.JSON(http.StatusOK, gin.H{
		"sites":      sites,
		"updated_at": updated,
		"count":      len(sites),
	})
}
