package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pv-simulator/internal/api"
	"pv-simulator/internal/config"
	"pv-simulator/internal/consumption"
	"pv-simulator/internal/financial"
	"pv-simulator/internal/logging"
	"pv-simulator/internal/simulation"
	"pv-simulator/internal/weather"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	cfgPath := pflag.StringP("config", "c", "", "Optional YAML server config; environment variables override it")
	envFile := pflag.String("env-file", ".env", "Dotenv file loaded before reading the environment")
	pflag.Parse()

	// A missing .env is normal outside development.
	_ = godotenv.Load(*envFile)

	srv, err := config.LoadServer(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read server config")
	}
	logging.Setup(srv.LogLevel, srv.LogPretty)

	if srv.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	runner, cache, err := buildRunner(srv)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build simulation runner")
	}
	if cache != nil {
		defer cache.Close()
	}
	store := simulation.NewStore(srv.ResultTTL, srv.MaxStored)
	defer store.Close()

	router := api.NewRouter(api.Deps{
		Runner:     runner,
		Store:      store,
		BatteryDir: srv.BatteryDir,
		StaticDir:  srv.StaticDir,
	})
	handler, err := api.Handler(router, srv.CompressLevel)
	if err != nil {
		log.Fatal().Err(err).Int("level", srv.CompressLevel).Msg("invalid compression level")
	}

	httpServer := &http.Server{
		Addr:              ":" + srv.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", httpServer.Addr).Str("env", srv.Env).Msg("starting API server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// buildRunner wires the weather provider, site list and optional tables from
// the server settings. The returned cache is nil when PVGIS is disabled.
func buildRunner(srv *config.Server) (*simulation.Runner, *weather.Cache, error) {
	var (
		fetcher weather.Fetcher
		cache   *weather.Cache
	)
	if !srv.PVGISDisabled {
		fetcher = weather.NewPVGISClient(srv.PVGISBaseURL, srv.PVGISTimeout)
		cache = weather.NewCache(srv.WeatherCacheTTL)
	} else {
		log.Warn().Msg("PVGIS disabled, every run uses the fallback weather year")
	}

	runner := simulation.NewRunner(weather.NewProvider(fetcher, cache))

	if srv.SitesFile != "" {
		sites, err := weather.LoadSites(srv.SitesFile)
		switch {
		case err == nil:
			runner.Sites = sites
			runner.SitesFile = srv.SitesFile
			log.Info().Str("file", srv.SitesFile).Int("sites", len(sites.Sites)).Msg("site list loaded")
		case errors.Is(err, os.ErrNotExist):
			log.Warn().Str("file", srv.SitesFile).Msg("site list not found, sites disabled")
		default:
			return nil, cache, err
		}
	}
	if srv.TariffsFile != "" {
		t, err := financial.LoadTariffs(srv.TariffsFile)
		if err != nil {
			return nil, cache, err
		}
		runner.Tariffs = t
	}
	if srv.TablesFile != "" {
		tables, err := consumption.LoadTables(srv.TablesFile)
		if err != nil {
			return nil, cache, err
		}
		runner.Consumption = consumption.New(tables)
	}
	return runner, cache, nil
}
