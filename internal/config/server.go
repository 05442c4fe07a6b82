package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Server holds the API process settings, read from the environment and
// optionally from a YAML file first.
type Server struct {
	Port        string `yaml:"port" env:"API_PORT" env-default:"8080"`
	Env         string `yaml:"env" env:"API_ENV" env-default:"development"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogPretty   bool   `yaml:"log_pretty" env:"LOG_PRETTY"`
	StaticDir   string `yaml:"static_dir" env:"STATIC_DIR" env-default:"./web/dist"`
	BatteryDir  string `yaml:"battery_dir" env:"BATTERY_DIR" env-default:"./examples/batteries"`
	SitesFile   string `yaml:"sites_file" env:"SITES_FILE" env-default:"./examples/sites.json"`
	TariffsFile string `yaml:"tariffs_file" env:"TARIFFS_FILE"`
	TablesFile  string `yaml:"tables_file" env:"TABLES_FILE"`

	PVGISBaseURL    string        `yaml:"pvgis_base_url" env:"PVGIS_BASE_URL" env-default:"https://re.jrc.ec.europa.eu/api/v5_3"`
	PVGISTimeout    time.Duration `yaml:"pvgis_timeout" env:"PVGIS_TIMEOUT" env-default:"30s"`
	WeatherCacheTTL time.Duration `yaml:"weather_cache_ttl" env:"WEATHER_CACHE_TTL" env-default:"720h"`
	// PVGISDisabled skips the remote fetch and goes straight to the fallback year.
	PVGISDisabled bool `yaml:"pvgis_disabled" env:"PVGIS_DISABLED"`

	ResultTTL     time.Duration `yaml:"result_ttl" env:"RESULT_TTL" env-default:"1h"`
	MaxStored     int           `yaml:"max_stored" env:"MAX_STORED" env-default:"256"`
	CompressLevel int           `yaml:"compress_level" env:"COMPRESS_LEVEL" env-default:"-1"`
}

// LoadServer reads path (when set) and then the environment, which wins.
func LoadServer(path string) (*Server, error) {
	var s Server
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &s)
	} else {
		err = cleanenv.ReadEnv(&s)
	}
	if err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}
	if s.MaxStored <= 0 {
		return nil, fmt.Errorf("server config: max_stored must be > 0")
	}
	return &s, nil
}

func (s Server) Production() bool { return s.Env == "production" }
