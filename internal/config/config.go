// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rovshanmuradov/token-pulse/internal/domain"
	"github.com/rovshanmuradov/token-pulse/internal/view"
	"github.com/spf13/viper"
)

const (
	DataSourceRandom = "random"
	DataSourceFile   = "file"

	EnvPrefix = "TOKEN_PULSE"
)

const (
	DefaultSeedDelay         = 800
	DefaultTickInterval      = 3000
	DefaultHighlightWindow   = 500
	DefaultJanitorInterval   = 1000
	DefaultTokensPerCategory = 20
	DefaultLoadRetries       = 3
	DefaultMetricsNamespace  = "token_pulse"
	DefaultLogFile           = "token-pulse.log"
	DefaultExportDir         = "exports"
)

// Config holds application settings. Durations are written in milliseconds.
type Config struct {
	SeedDelay         time.Duration `mapstructure:"-"`
	SeedDelayMS       int           `mapstructure:"seed_delay"`
	TickInterval      time.Duration `mapstructure:"-"`
	TickIntervalMS    int           `mapstructure:"tick_interval"`
	HighlightWindow   time.Duration `mapstructure:"-"`
	HighlightWindowMS int           `mapstructure:"highlight_window"`
	JanitorInterval   time.Duration `mapstructure:"-"`
	JanitorIntervalMS int           `mapstructure:"janitor_interval"`

	TokensPerCategory    int    `mapstructure:"tokens_per_category"`
	DefaultCategory      string `mapstructure:"default_category"`
	DefaultSortField     string `mapstructure:"default_sort_field"`
	DefaultSortDirection string `mapstructure:"default_sort_direction"`

	DataSource  string `mapstructure:"data_source"`
	DataFile    string `mapstructure:"data_file"`
	RandomSeed  uint64 `mapstructure:"random_seed"`
	LoadRetries int    `mapstructure:"load_retries"`

	HTTPAddr         string `mapstructure:"http_addr"`
	MetricsNamespace string `mapstructure:"metrics_namespace"`

	DebugLogging bool   `mapstructure:"debug_logging"`
	LogFile      string `mapstructure:"log_file"`

	QuickBuyAmount float64 `mapstructure:"quickbuy_amount"`

	ExportDir    string `mapstructure:"export_dir"`
	ExportFormat string `mapstructure:"export_format"`
}

// LoadConfig reads configuration from path and the environment. An empty
// path uses defaults plus TOKEN_PULSE_* variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"seed_delay":             DefaultSeedDelay,
		"tick_interval":          DefaultTickInterval,
		"highlight_window":       DefaultHighlightWindow,
		"janitor_interval":       DefaultJanitorInterval,
		"tokens_per_category":    DefaultTokensPerCategory,
		"default_category":       string(domain.CategoryNewPairs),
		"default_sort_field":     domain.FieldAge,
		"default_sort_direction": string(view.Asc),
		"data_source":            DataSourceRandom,
		"data_file":              "",
		"random_seed":            0,
		"load_retries":           DefaultLoadRetries,
		"http_addr":              "",
		"metrics_namespace":      DefaultMetricsNamespace,
		"debug_logging":          false,
		"log_file":               DefaultLogFile,
		"quickbuy_amount":        domain.DefaultQuickBuyAmount,
		"export_dir":             DefaultExportDir,
		"export_format":          "csv",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	// Convert ms to Duration
	cfg.SeedDelay = time.Duration(cfg.SeedDelayMS) * time.Millisecond
	cfg.TickInterval = time.Duration(cfg.TickIntervalMS) * time.Millisecond
	cfg.HighlightWindow = time.Duration(cfg.HighlightWindowMS) * time.Millisecond
	cfg.JanitorInterval = time.Duration(cfg.JanitorIntervalMS) * time.Millisecond

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if err := validateTimings(c); err != nil {
		return err
	}
	if c.TokensPerCategory <= 0 {
		return errors.New("invalid tokens_per_category")
	}
	if c.LoadRetries < 1 {
		return errors.New("invalid load_retries")
	}
	if c.QuickBuyAmount <= 0 {
		return errors.New("invalid quickbuy_amount")
	}
	if c.ExportFormat != "csv" && c.ExportFormat != "json" {
		return fmt.Errorf("invalid export_format %q", c.ExportFormat)
	}
	if _, err := domain.ParseCategory(c.DefaultCategory); err != nil {
		return fmt.Errorf("invalid default_category: %w", err)
	}
	if _, err := domain.LookupField(c.DefaultSortField); err != nil {
		return fmt.Errorf("invalid default_sort_field: %w", err)
	}
	if _, err := view.ParseDirection(c.DefaultSortDirection); err != nil {
		return fmt.Errorf("invalid default_sort_direction: %w", err)
	}

	switch c.DataSource {
	case DataSourceRandom:
	case DataSourceFile:
		if c.DataFile == "" {
			return errors.New("data_file is required when data_source is file")
		}
	default:
		return fmt.Errorf("unknown data_source %q", c.DataSource)
	}
	return nil
}

func validateTimings(c *Config) error {
	if c.SeedDelay < 0 {
		return errors.New("invalid seed_delay")
	}
	if c.TickInterval <= 0 {
		return errors.New("invalid tick_interval")
	}
	if c.HighlightWindow <= 0 {
		return errors.New("invalid highlight_window")
	}
	if c.JanitorInterval <= 0 {
		return errors.New("invalid janitor_interval")
	}
	return nil
}

// ViewSpec returns the initial projection described by the config
func (c *Config) ViewSpec() view.Spec {
	dir, _ := view.ParseDirection(c.DefaultSortDirection)
	return view.Spec{
		Category:  domain.Category(c.DefaultCategory),
		SortField: c.DefaultSortField,
		Direction: dir,
	}
}
