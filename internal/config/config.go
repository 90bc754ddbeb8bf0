// Package config defines the typed configuration the trading system core
// consumes, and a YAML/env loader for the demo binary. The core itself
// never reads a file or an environment variable; it is handed an already
// populated Config.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PhaseSpec describes one entry in the trading-phase schedule.
type PhaseSpec struct {
	Phase        string        `yaml:"phase"`
	StartTime    string        `yaml:"start_time"`     // "HH:MM:SS" in TimezoneClock
	EndTime      string        `yaml:"end_time"`       // "HH:MM:SS" in TimezoneClock
	EndTimeRange time.Duration `yaml:"end_time_range"` // jitter window applied to EndTime
	AllowCancels bool          `yaml:"allow_cancels"`
}

// Config is the full set of options the core recognizes.
type Config struct {
	VenueID               string        `yaml:"venue_id"`
	PersistenceEnabled    bool          `yaml:"persistence_enabled"`
	PersistenceFilePath   string        `yaml:"persistence_file_path"`
	TradingPhasesSchedule []PhaseSpec   `yaml:"trading_phases_schedule"`
	TimezoneClock         string        `yaml:"timezone_clock"`
	TickInterval          time.Duration `yaml:"tick_interval"`

	CancelOnDisconnect bool `yaml:"cancel_on_disconnect"`
	IncludeOwnOrders   bool `yaml:"include_own_orders"`
	TnsEnabled         bool `yaml:"tns_enabled"`
	TnsQtyEnabled      bool `yaml:"tns_qty_enabled"`
	TnsSideEnabled     bool `yaml:"tns_side_enabled"`
	TnsPartiesEnabled  bool `yaml:"tns_parties_enabled"`
	SupportTifIOC      bool `yaml:"support_tif_ioc"`
	SupportTifFOK      bool `yaml:"support_tif_fok"`
	SupportTifDay      bool `yaml:"support_tif_day"`
	OrderOnStartup     bool `yaml:"order_on_startup"`
	RandomPartiesCount int  `yaml:"random_parties_count"`
	RestPort           int  `yaml:"rest_port"`
}

// Default returns a Config with the conservative defaults a freshly
// installed venue should start from.
func Default() *Config {
	return &Config{
		VenueID:            "VENUE",
		PersistenceEnabled: false,
		TimezoneClock:      "UTC",
		TickInterval:       time.Second,
		SupportTifIOC:      true,
		SupportTifFOK:      true,
		SupportTifDay:      true,
		RestPort:           8080,
	}
}

// Load reads a YAML config file (if it exists) layered over Default, then
// applies `.env`/process environment overrides for the handful of values
// that operators most often need to flip per-deployment without editing
// the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("VENUE_ID")); v != "" {
		cfg.VenueID = v
	}
	if v := strings.TrimSpace(os.Getenv("PERSISTENCE_FILE_PATH")); v != "" {
		cfg.PersistenceFilePath = v
	}
	if v := strings.TrimSpace(os.Getenv("PERSISTENCE_ENABLED")); v != "" {
		cfg.PersistenceEnabled = v == "true" || v == "1"
	}
	if v := strings.TrimSpace(os.Getenv("REST_PORT")); v != "" {
		fmt.Sscanf(v, "%d", &cfg.RestPort)
	}
}

// Validate checks invariants the core relies on: a timezone it can load,
// and a persistence file path whenever persistence is enabled.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.TimezoneClock); err != nil {
		return fmt.Errorf("config: invalid timezone_clock %q: %w", c.TimezoneClock, err)
	}
	if c.PersistenceEnabled && strings.TrimSpace(c.PersistenceFilePath) == "" {
		return fmt.Errorf("config: persistence_enabled requires persistence_file_path")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("config: tick_interval must be positive")
	}
	return nil
}
