package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bertrandstanley/Weather-Dashboard/internal/common"
)

type AppConfig struct {
	Port  string `yaml:"port" validate:"required,numeric"`
	Debug bool   `yaml:"debug"`

	// Upstream selection.
	Geocoder         string `yaml:"geocoder" validate:"oneof=openweather openmeteo google"`
	ForecastProvider string `yaml:"forecast_provider" validate:"oneof=openweather openmeteo"`

	OpenWeatherAPIKey     string `yaml:"openweather_api_key"`
	OpenWeatherBaseURL    string `yaml:"openweather_base_url" validate:"required,url"`
	OpenMeteoGeocodingURL string `yaml:"openmeteo_geocoding_url" validate:"required,url"`
	OpenMeteoForecastURL  string `yaml:"openmeteo_forecast_url" validate:"required,url"`
	GoogleAPIKey          string `yaml:"google_geocoding_api_key" validate:"required_if=Geocoder google"`

	// HTTPTimeout bounds each outbound HTTP request.
	HTTPTimeout time.Duration `yaml:"http_timeout" validate:"gt=0"`
	// UpstreamTimeout bounds resolve + fetch for one query.
	UpstreamTimeout    time.Duration `yaml:"upstream_timeout" validate:"gt=0"`
	UpstreamMaxRetries int           `yaml:"upstream_max_retries" validate:"gte=0,lte=5"`

	// Timezone used for day bucketing; "Local" means the server zone.
	Timezone string `yaml:"timezone" validate:"required"`

	// Search history persistence.
	HistoryBackend  string `yaml:"history_backend" validate:"oneof=file memory redis sqlite postgres"`
	HistoryFile     string `yaml:"history_file" validate:"required_if=HistoryBackend file"`
	RedisURL        string `yaml:"redis_url" validate:"required_if=HistoryBackend redis"`
	HistoryRedisKey string `yaml:"history_redis_key"`
	DatabaseURL     string `yaml:"database_url"`

	StaticDir string `yaml:"static_dir"`

	// Periodic upstream probe; disabled when ProbeLocations is empty.
	ProbeLocations []string      `yaml:"probe_locations"`
	ProbeInterval  time.Duration `yaml:"probe_interval" validate:"gte=0"`
}

var validate = validator.New()

func defaults() *AppConfig {
	return &AppConfig{
		Port:                  "3001",
		Geocoder:              "openweather",
		ForecastProvider:      "openweather",
		OpenWeatherBaseURL:    "https://api.openweathermap.org",
		OpenMeteoGeocodingURL: "https://geocoding-api.open-meteo.com",
		OpenMeteoForecastURL:  "https://api.open-meteo.com",
		HTTPTimeout:           10 * time.Second,
		UpstreamTimeout:       10 * time.Second,
		Timezone:              "Local",
		HistoryBackend:        "file",
		HistoryFile:           "searchHistory.json",
		HistoryRedisKey:       "weather:history",
		ProbeInterval:         15 * time.Minute,
	}
}

// Load reads configuration from defaults, then the optional YAML file named by
// CONFIG_FILE, then environment variables, and validates the result.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.check(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// check covers requirements that span several fields.
func (c *AppConfig) check() error {
	if c.OpenWeatherAPIKey == "" && (c.Geocoder == "openweather" || c.ForecastProvider == "openweather") {
		return errors.New("OPENWEATHER_API_KEY is required when an openweather upstream is selected")
	}
	if c.DatabaseURL == "" && (c.HistoryBackend == "sqlite" || c.HistoryBackend == "postgres") {
		return fmt.Errorf("DATABASE_URL is required for the %s history backend", c.HistoryBackend)
	}
	return nil
}

// Location resolves the configured time zone.
func (c *AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	tz, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	return tz, nil
}

func loadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	cfg.Port = getenvDefault("PORT", cfg.Port)
	cfg.Geocoder = getenvDefault("GEOCODER", cfg.Geocoder)
	cfg.ForecastProvider = getenvDefault("FORECAST_PROVIDER", cfg.ForecastProvider)
	cfg.OpenWeatherAPIKey = getenvDefault("OPENWEATHER_API_KEY", cfg.OpenWeatherAPIKey)
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", cfg.OpenWeatherBaseURL)
	cfg.OpenMeteoGeocodingURL = getenvDefault("OPENMETEO_GEOCODING_URL", cfg.OpenMeteoGeocodingURL)
	cfg.OpenMeteoForecastURL = getenvDefault("OPENMETEO_FORECAST_URL", cfg.OpenMeteoForecastURL)
	cfg.GoogleAPIKey = getenvDefault("GOOGLE_GEOCODING_API_KEY", cfg.GoogleAPIKey)
	cfg.UpstreamMaxRetries = getenvInt("UPSTREAM_MAX_RETRIES", cfg.UpstreamMaxRetries)
	cfg.Timezone = getenvDefault("TIMEZONE", cfg.Timezone)
	cfg.HistoryBackend = getenvDefault("HISTORY_BACKEND", cfg.HistoryBackend)
	cfg.HistoryFile = getenvDefault("HISTORY_FILE", cfg.HistoryFile)
	cfg.RedisURL = getenvDefault("REDIS_URL", cfg.RedisURL)
	cfg.HistoryRedisKey = getenvDefault("HISTORY_REDIS_KEY", cfg.HistoryRedisKey)
	cfg.DatabaseURL = getenvDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.StaticDir = getenvDefault("STATIC_DIR", cfg.StaticDir)

	if v := os.Getenv("DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DEBUG: %w", err)
		}
		cfg.Debug = debug
	}
	if v := os.Getenv("PROBE_LOCATIONS"); v != "" {
		cfg.ProbeLocations = common.SplitList(v)
	}

	var errs []error
	for key, dst := range map[string]*time.Duration{
		"HTTP_TIMEOUT":     &cfg.HTTPTimeout,
		"UPSTREAM_TIMEOUT": &cfg.UpstreamTimeout,
		"PROBE_INTERVAL":   &cfg.ProbeInterval,
	} {
		if err := getenvDuration(key, dst); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
