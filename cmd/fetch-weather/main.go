package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pv-simulator/internal/weather"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

// fetch-weather downloads a typical year from PVGIS for every site in the
// site list, stores it as CSV next to the list and records the file on the site.
func main() {
	var (
		sitesPath = pflag.String("sites", "", "Site list (default: $SITES_FILE or ./examples/sites.json)")
		outDir    = pflag.String("dir", "weather", "Directory for the CSV files, relative to the site list")
		only      = pflag.String("site", "", "Only fetch this site ID")
		baseURL   = pflag.String("base-url", "", "PVGIS API base URL")
		force     = pflag.Bool("force", false, "Fetch sites that already have a weather file")
		pause     = pflag.Duration("pause", 2*time.Second, "Pause between requests")
	)
	pflag.Parse()
	_ = godotenv.Load()

	if *sitesPath == "" {
		*sitesPath = os.Getenv("SITES_FILE")
	}
	if *sitesPath == "" {
		*sitesPath = "./examples/sites.json"
	}
	if *baseURL == "" {
		*baseURL = os.Getenv("PVGIS_BASE_URL")
	}

	list, err := weather.LoadSites(*sitesPath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *sitesPath).Msg("failed to load site list")
	}
	fmt.Printf("Fetching weather for %d sites from %s\n", len(list.Sites), *sitesPath)

	client := weather.NewPVGISClient(*baseURL, 0)
	root := filepath.Dir(*sitesPath)
	ctx := context.Background()

	updated := 0
	for i := range list.Sites {
		s := &list.Sites[i]
		if *only != "" && s.ID != *only {
			continue
		}
		if s.WeatherFile != "" && !*force {
			fmt.Printf("  - %s already has %s\n", s.ID, s.WeatherFile)
			continue
		}
		if updated > 0 {
			time.Sleep(*pause)
		}

		w, err := client.TMY(ctx, s.Latitude, s.Longitude)
		if err != nil {
			// Keep the existing site entry even if the fetch fails
			fmt.Printf("  ! failed to fetch %s: %v\n", s.ID, err)
			continue
		}
		rel := filepath.Join(*outDir, s.ID+".csv")
		if err := weather.SaveCSV(filepath.Join(root, rel), w); err != nil {
			log.Fatal().Err(err).Str("site", s.ID).Msg("failed to save weather")
		}
		s.WeatherFile = filepath.ToSlash(rel)
		updated++
		fmt.Printf("  + %s (%s): %.0f kWh/m², saved %s\n", s.ID, s.Name, w.Meta.AnnualIrradiation, rel)
	}

	if updated == 0 {
		fmt.Println("Nothing to update")
		return
	}
	list.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := weather.SaveSites(list, *sitesPath); err != nil {
		log.Fatal().Err(err).Msg("failed to save site list")
	}
	fmt.Printf("Updated %d sites in %s\n", updated, *sitesPath)
}
