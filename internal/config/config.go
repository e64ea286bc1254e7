// Package config handles rpotool configuration loading and management.
package config

import (
	"fmt"
	"net/url"
	"runtime"
	"time"

	"github.com/Faultbox/rpotool/pkg/formats"
)

// Config holds all rpotool settings.
type Config struct {
	Convert ConvertConfig `yaml:"convert" envPrefix:"CONVERT_"`
	Fetch   FetchConfig   `yaml:"fetch" envPrefix:"FETCH_"`
	Batch   BatchConfig   `yaml:"batch" envPrefix:"BATCH_"`
	Logging LoggingConfig `yaml:"logging" envPrefix:"LOG_"`
}

// ConvertConfig holds decoder and OBJ output settings.
type ConvertConfig struct {
	Layout       string `yaml:"layout" env:"LAYOUT"`                 // auto, scan, compact or legacy
	Comments     bool   `yaml:"comments" env:"COMMENTS"`             // Write "# Converted from" header
	Notice       string `yaml:"notice" env:"NOTICE"`                 // Extra header comment line
	MaxInflateMB int    `yaml:"max_inflate_mb" env:"MAX_INFLATE_MB"` // RPOZ decompression cap
}

// FetchConfig holds DLC catalog download settings.
type FetchConfig struct {
	CatalogURL string        `yaml:"catalog_url" env:"CATALOG_URL"`
	AssetURL   string        `yaml:"asset_url" env:"ASSET_URL"`
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT"`
	Retries    int           `yaml:"retries" env:"RETRIES"`
	UserAgent  string        `yaml:"user_agent" env:"USER_AGENT"`
}

// BatchConfig holds parallel conversion settings.
type BatchConfig struct {
	Workers int `yaml:"workers" env:"WORKERS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" env:"LEVEL"`
	LogFile string `yaml:"log_file" env:"FILE"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			Layout:       "auto",
			Comments:     true,
			Notice:       "This file is property of Auxbrain, Inc. and should be treated as such.",
			MaxInflateMB: formats.DefaultInflateLimit >> 20,
		},
		Fetch: FetchConfig{
			CatalogURL: "https://gist.githubusercontent.com/tylertms/7592bcbdd1b6891bdf9b2d1a4216b55b/raw/",
			AssetURL:   "https://auxbrain.com/dlc/shells/",
			Timeout:    30 * time.Second,
			Retries:    3,
			UserAgent:  "rpotool/1.0",
		},
		Batch: BatchConfig{
			Workers: runtime.NumCPU(),
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// LayoutMode returns the parsed layout strategy.
func (c ConvertConfig) LayoutMode() (formats.LayoutMode, error) {
	return formats.ParseLayoutMode(c.Layout)
}

// InflateLimit returns the decompression cap in bytes.
func (c ConvertConfig) InflateLimit() int {
	return c.MaxInflateMB << 20
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if _, err := c.Convert.LayoutMode(); err != nil {
		return fmt.Errorf("convert.layout: %w", err)
	}
	if c.Convert.MaxInflateMB < 1 {
		return fmt.Errorf("convert.max_inflate_mb must be at least 1, got %d", c.Convert.MaxInflateMB)
	}
	for name, raw := range map[string]string{
		"fetch.catalog_url": c.Fetch.CatalogURL,
		"fetch.asset_url":   c.Fetch.AssetURL,
	} {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%s: unsupported scheme %q", name, u.Scheme)
		}
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive, got %v", c.Fetch.Timeout)
	}
	if c.Fetch.Retries < 0 {
		return fmt.Errorf("fetch.retries must not be negative, got %d", c.Fetch.Retries)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1, got %d", c.Batch.Workers)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	return nil
}
