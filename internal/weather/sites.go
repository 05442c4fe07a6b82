package weather

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"pv-simulator/internal/model"
)

// Site is a named location with pre-fetched or fetchable weather.
type Site struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	AltitudeM float64 `json:"altitude_m"`
	// WeatherFile is a TMY file relative to the site list.
	WeatherFile string `json:"weather_file,omitempty"`
}

type SiteList struct {
	UpdatedAt string `json:"updated_at"`
	Sites     []Site `json:"sites"`
}

// Find returns the site with the given id.
func (l *SiteList) Find(id string) (Site, bool) {
	if l == nil {
		return Site{}, false
	}
	for _, s := range l.Sites {
		if s.ID == id {
			return s, true
		}
	}
	return Site{}, false
}

func (l *SiteList) Validate() error {
	seen := map[string]bool{}
	for i, s := range l.Sites {
		if s.ID == "" {
			return fmt.Errorf("sites[%d]: id is required", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("sites[%d]: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = true
		if err := model.ValidateLocation(s.Latitude, s.Longitude); err != nil {
			return fmt.Errorf("sites[%d]: %w", i, err)
		}
	}
	return nil
}

func LoadSites(path string) (*SiteList, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sites file: %w", err)
	}
	var list SiteList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to parse sites file: %w", err)
	}
	if err := list.Validate(); err != nil {
		return nil, err
	}
	return &list, nil
}

func SaveSites(list *SiteList, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	raw, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sites: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write sites file: %w", err)
	}
	return nil
}

// WeatherPath resolves a site's weather file against the directory of the site list.
func WeatherPath(sitesFile string, s Site) string {
	if s.WeatherFile == "" || filepath.IsAbs(s.WeatherFile) {
		return s.WeatherFile
	}
	return filepath.Join(filepath.Dir(sitesFile), s.WeatherFile)
}
