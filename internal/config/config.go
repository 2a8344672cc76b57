// Package config provides configuration management for the crawler.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingPrimaryBase   = errors.New("sources.primary_base is required")
	ErrMissingLegacyBase    = errors.New("sources.legacy_base is required")
	ErrInvalidSourceURL     = errors.New("source base must be an absolute URL")
	ErrInvalidMaxAttempts   = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidRetryDelay    = errors.New("retry.retry_delay_ms must be non-negative")
	ErrInvalidTimeout       = errors.New("retry.timeout_sec must be at least 1")
	ErrMissingNewsDir       = errors.New("paths.news_dir is required")
	ErrMissingLedgerFile    = errors.New("paths.ledger_file is required")
	ErrInvalidMinContent    = errors.New("content.min_length must be at least 1")
	ErrInvalidBroadcastHour = errors.New("content.broadcast_hour must be in [0,23]")
	ErrInvalidLogLevel      = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config represents the complete crawler configuration.
type Config struct {
	Sources    SourcesConfig    `yaml:"sources"`
	Retry      RetryPolicy      `yaml:"retry"`
	Politeness PolitenessConfig `yaml:"politeness"`
	Content    ContentConfig    `yaml:"content"`
	Paths      PathsConfig      `yaml:"paths"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SourcesConfig holds the two provider base URLs.
type SourcesConfig struct {
	// PrimaryBase is the newer provider, queried first.
	PrimaryBase string `yaml:"primary_base"`
	// LegacyBase is the original provider with inconsistent URL zero-padding.
	LegacyBase string `yaml:"legacy_base"`
}

// RetryPolicy defines retry behavior for remote fetches.
type RetryPolicy struct {
	MaxAttempts  int `yaml:"max_attempts"`
	RetryDelayMs int `yaml:"retry_delay_ms"`
	TimeoutSec   int `yaml:"timeout_sec"`
}

// Delay returns the fixed sleep between retry attempts.
func (rp *RetryPolicy) Delay() time.Duration {
	return time.Duration(rp.RetryDelayMs) * time.Millisecond
}

// Timeout returns the per-request timeout.
func (rp *RetryPolicy) Timeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// PolitenessConfig defines the fixed sleeps between remote operations.
type PolitenessConfig struct {
	PreFetchDelayMs     int `yaml:"pre_fetch_delay_ms"`
	BetweenDatesDelayMs int `yaml:"between_dates_delay_ms"`
}

// PreFetchDelay returns the sleep before the first remote attempt of a date.
func (p *PolitenessConfig) PreFetchDelay() time.Duration {
	return time.Duration(p.PreFetchDelayMs) * time.Millisecond
}

// BetweenDatesDelay returns the sleep between dates in batch mode.
func (p *PolitenessConfig) BetweenDatesDelay() time.Duration {
	return time.Duration(p.BetweenDatesDelayMs) * time.Millisecond
}

// ContentConfig defines content acceptance rules.
type ContentConfig struct {
	// MinLength is the minimum extracted body length in characters.
	MinLength int `yaml:"min_length"`
	// BroadcastHour is the local hour at which today's transcript exists.
	BroadcastHour int `yaml:"broadcast_hour"`
}

// PathsConfig defines where files are written.
type PathsConfig struct {
	NewsDir    string `yaml:"news_dir"`
	ReportsDir string `yaml:"reports_dir"`
	LedgerFile string `yaml:"ledger_file"`
	LogsDir    string `yaml:"logs_dir"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	return &Config{
		Sources: SourcesConfig{
			PrimaryBase: "https://cn.govopendata.com/xinwenlianbo",
			LegacyBase:  "http://mrxwlb.com",
		},
		Retry: RetryPolicy{
			MaxAttempts:  3,
			RetryDelayMs: 2000,
			TimeoutSec:   15,
		},
		Politeness: PolitenessConfig{
			PreFetchDelayMs:     500,
			BetweenDatesDelayMs: 2000,
		},
		Content: ContentConfig{
			MinLength:     50,
			BroadcastHour: 19,
		},
		Paths: PathsConfig{
			NewsDir:    "data/news",
			ReportsDir: "data/reports",
			LedgerFile: "data/news/not_exist.md",
			LogsDir:    "data/logs",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a YAML file, applies environment overrides
// and validates the result.
func Load(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides lets deployment environments relocate data directories
// without editing the config file. Values come from the process environment,
// typically seeded from a .env file by the command wrapper.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("XWLB_NEWS_DIR"); v != "" {
		c.Paths.NewsDir = v
	}

	if v := os.Getenv("XWLB_REPORTS_DIR"); v != "" {
		c.Paths.ReportsDir = v
	}

	if v := os.Getenv("XWLB_LEDGER_FILE"); v != "" {
		c.Paths.LedgerFile = v
	}

	if v := os.Getenv("XWLB_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Sources.PrimaryBase == "" {
		return ErrMissingPrimaryBase
	}

	if c.Sources.LegacyBase == "" {
		return ErrMissingLegacyBase
	}

	for _, base := range []string{c.Sources.PrimaryBase, c.Sources.LegacyBase} {
		parsed, err := url.Parse(base)
		if err != nil || !parsed.IsAbs() {
			return fmt.Errorf("%w: %s", ErrInvalidSourceURL, base)
		}
	}

	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Retry.RetryDelayMs < 0 {
		return ErrInvalidRetryDelay
	}

	if c.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Paths.NewsDir == "" {
		return ErrMissingNewsDir
	}

	if c.Paths.LedgerFile == "" {
		return ErrMissingLedgerFile
	}

	if c.Content.MinLength < 1 {
		return ErrInvalidMinContent
	}

	if c.Content.BroadcastHour < 0 || c.Content.BroadcastHour > 23 {
		return ErrInvalidBroadcastHour
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Primary: %s, Legacy: %s, MaxAttempts: %d, NewsDir: %s}",
		c.Sources.PrimaryBase,
		c.Sources.LegacyBase,
		c.Retry.MaxAttempts,
		c.Paths.NewsDir,
	)
}
