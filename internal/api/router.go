package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"pv-simulator/internal/api/handlers"
	"pv-simulator/internal/api/middleware"
	"pv-simulator/internal/simulation"

	"github.com/NYTimes/gziphandler"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Deps are the shared services the routes are built on.
type Deps struct {
	Runner     *simulation.Runner
	Store      *simulation.Store
	BatteryDir string
	// StaticDir holds a built web client; empty or missing disables it.
	StaticDir string
}

// NewRouter registers every route on a new gin engine.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	sim := handlers.NewSimulationHandler(d.Runner, d.Store, d.BatteryDir)
	est := handlers.NewEstimateHandler(d.Runner)
	batt := handlers.NewBatteryHandler(d.Runner, d.BatteryDir)
	ref := handlers.NewReferenceHandler(d.Runner)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "stored": d.Store.Len()})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/simulate", sim.Simulate)
		api.GET("/simulate/stream", sim.Stream)
		api.GET("/simulate/:id", sim.GetReport)
		api.GET("/simulate/:id/hourly", sim.GetHourly)
		api.GET("/simulate/:id/ledger.csv", sim.GetLedger)

		api.POST("/consumption/estimate", est.Consumption)
		api.POST("/production/estimate", est.Production)

		api.GET("/batteries", batt.ListBatteries)
		api.GET("/battery/price", batt.Price)
		api.POST("/battery/sizing", batt.Sizing)

		api.GET("/archetypes", ref.ListArchetypes)
		api.GET("/sites", ref.ListSites)
	}

	serveStatic(router, d.StaticDir)
	return router
}

// serveStatic serves a single-page client, falling back to index.html for
// every path outside the API.
func serveStatic(router *gin.Engine, dir string) {
	notFound := func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	}
	if dir == "" {
		router.NoRoute(notFound)
		return
	}
	if _, err := os.Stat(dir); err != nil {
		log.Info().Str("dir", dir).Msg("static directory not found, skipping static file serving")
		router.NoRoute(notFound)
		return
	}

	router.Static("/assets", filepath.Join(dir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(dir, "favicon.ico"))
	index := filepath.Join(dir, "index.html")
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			notFound(c)
			return
		}
		c.File(index)
	})
	log.Info().Str("dir", dir).Msg("serving static files")
}

// Handler wraps the router with gzip compression at level; 0 disables it.
// Websocket upgrades bypass the gzip writer, which cannot be hijacked.
func Handler(router http.Handler, level int) (http.Handler, error) {
	if level == 0 {
		return router, nil
	}
	wrap, err := gziphandler.NewGzipLevelHandler(level)
	if err != nil {
		return nil, err
	}
	gz := wrap(router)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			router.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	}), nil
}
