package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // time_zone must resolve on hosts without zoneinfo

	"gopkg.in/yaml.v3"
)

// Fetch modes for the dining feed.
const (
	FetchHTTP    = "http"
	FetchBrowser = "browser"
)

// AppConfig holds infrastructure config from standard env vars
type AppConfig struct {
	DBPath     string
	ConfigPath string // Path to the YAML config file
	CSVPath    string // Scored table export
}

// SiteConfig holds the dining feed and suggestion settings (from YAML)
type SiteConfig struct {
	LocationsURL   string           `yaml:"locations_url"`
	MenuURL        string           `yaml:"menu_url"`
	FetchMode      string           `yaml:"fetch_mode"`
	RequestTimeout time.Duration    `yaml:"request_timeout"`
	DiningCommons  []string         `yaml:"dining_commons"`
	Suggestion     SuggestionConfig `yaml:"suggestion"`
}

type SuggestionConfig struct {
	Model          string  `yaml:"model"`
	EmbeddingModel string  `yaml:"embedding_model"`
	MaxTokens      int32   `yaml:"max_tokens"`
	Temperature    float32 `yaml:"temperature"`
	Campus         string  `yaml:"campus"`
	TimeZone       string  `yaml:"time_zone"`
}

// GetAppConfig reads basic infrastructure settings from environment variables.
func GetAppConfig() (AppConfig, error) {
	dbPath := os.Getenv("DB_PATH")
	configPath := os.Getenv("CONFIG_PATH")
	csvPath := os.Getenv("CSV_PATH")

	// Set defaults if not provided
	if dbPath == "" {
		dbPath = "./local-data/dining.db"
	}
	if configPath == "" {
		configPath = "config.yaml"
	}
	if csvPath == "" {
		csvPath = "dining_info_scores.csv"
	}

	return AppConfig{
		DBPath:     dbPath,
		ConfigPath: configPath,
		CSVPath:    csvPath,
	}, nil
}

// LoadSiteConfig reads the YAML file and fills in defaults for omitted fields.
func LoadSiteConfig(path string) (*SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file at '%s': %w", path, err)
	}
	return ParseSiteConfig(data)
}

// defaultTemperature is set before decoding because 0 is a valid temperature.
const defaultTemperature = 0.7

// ParseSiteConfig decodes YAML content into a SiteConfig.
func ParseSiteConfig(data []byte) (*SiteConfig, error) {
	cfg := SiteConfig{Suggestion: SuggestionConfig{Temperature: defaultTemperature}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	cfg.applyDefaults()
	if cfg.FetchMode != FetchHTTP && cfg.FetchMode != FetchBrowser {
		return nil, fmt.Errorf("invalid fetch_mode %q (want %q or %q)", cfg.FetchMode, FetchHTTP, FetchBrowser)
	}
	if cfg.Suggestion.Temperature < 0 {
		return nil, fmt.Errorf("invalid suggestion.temperature %v (must not be negative)", cfg.Suggestion.Temperature)
	}
	if _, err := time.LoadLocation(cfg.Suggestion.TimeZone); err != nil {
		return nil, fmt.Errorf("invalid suggestion.time_zone: %w", err)
	}
	return &cfg, nil
}

func (c *SiteConfig) applyDefaults() {
	if c.LocationsURL == "" {
		c.LocationsURL = "https://www.umassdining.com/uapp/get_infov2"
	}
	if c.MenuURL == "" {
		c.MenuURL = "https://umassdining.com/foodpro-menu-ajax"
	}
	if c.FetchMode == "" {
		c.FetchMode = FetchHTTP
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}

	s := &c.Suggestion
	if s.Model == "" {
		s.Model = "gemini-1.5-flash"
	}
	if s.EmbeddingModel == "" {
		s.EmbeddingModel = "text-embedding-004"
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = 200
	}
	if s.Campus == "" {
		s.Campus = "Amherst, MA, USA"
	}
	if s.TimeZone == "" {
		s.TimeZone = "America/New_York"
	}
}
