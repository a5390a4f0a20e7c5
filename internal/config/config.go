package config

import (
	"fmt"
	"path/filepath"
	"time"

	"focusguard/internal/core/model"
	"focusguard/internal/platform"
	"focusguard/internal/storage"

	"github.com/kelseyhightower/envconfig"
)

// AppName names the config directory and the single-instance lock.
const AppName = "FocusGuard"

// Config holds all runtime configuration, read from FOCUSGUARD_* variables.
type Config struct {
	// App mapping document. Empty resolves to <user config dir>/FocusGuard/apps.yaml.
	MappingPath string `envconfig:"MAPPING_PATH"`

	// Worker cadence and default session lengths.
	TickInterval time.Duration `envconfig:"TICK_INTERVAL" default:"1s"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
	JoinTimeout  time.Duration `envconfig:"JOIN_TIMEOUT" default:"2s"`
	FocusMinutes int           `envconfig:"FOCUS_MINUTES" default:"25"`
	BreakMinutes int           `envconfig:"BREAK_MINUTES" default:"5"`

	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogDevelopment bool   `envconfig:"LOG_DEV" default:"false"`
	LogFile        string `envconfig:"LOG_FILE"`

	// Prometheus endpoint, disabled when empty.
	MetricsAddr string `envconfig:"METRICS_ADDR"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("focusguard", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	timings := model.DefaultWorkerTimings()
	cfg := &Config{
		TickInterval: timings.TickInterval,
		PollInterval: timings.PollInterval,
		JoinTimeout:  timings.JoinTimeout,
		FocusMinutes: 25,
		BreakMinutes: 5,
		LogLevel:     "info",
	}
	if err := cfg.resolvePaths(); err != nil {
		cfg.MappingPath = storage.MappingFileName
	}
	return cfg
}

// Timings converts the cadence fields into worker timings.
func (cfg *Config) Timings() model.WorkerTimings {
	return model.WorkerTimings{
		TickInterval: cfg.TickInterval,
		PollInterval: cfg.PollInterval,
		JoinTimeout:  cfg.JoinTimeout,
	}.WithDefaults()
}

func (cfg *Config) resolvePaths() error {
	if cfg.MappingPath != "" {
		return nil
	}
	configDir, err := platform.ConfigDir(AppName)
	if err != nil {
		return fmt.Errorf("resolve mapping path: %w", err)
	}
	cfg.MappingPath = filepath.Join(configDir, storage.MappingFileName)
	return nil
}
