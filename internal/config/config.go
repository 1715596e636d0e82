// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

// Package config loads the application configuration with a strict
// precedence: built-in defaults, then an optional YAML file, then
// environment variables. The merged result is validated before use.
package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/concierge/internal/validation"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Concierge ConciergeConfig `koanf:"concierge"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Search    SearchConfig    `koanf:"search"`
	Metadata  MetadataConfig  `koanf:"metadata"`
	Session   SessionConfig   `koanf:"session"`
	Safety    SafetyConfig    `koanf:"safety"`
	Store     StoreConfig     `koanf:"store"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout         time.Duration `koanf:"timeout" validate:"min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=1s"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"min=1s"`
}

// ConciergeConfig controls the conversational feature.
type ConciergeConfig struct {
	Enabled bool `koanf:"enabled"`

	// GenerationProvider names an optional language-generation backend.
	// Empty runs the deterministic rules path.
	GenerationProvider string `koanf:"generation_provider"`

	// ResultCacheSize is the search result cache capacity.
	ResultCacheSize int `koanf:"result_cache_size" validate:"min=1"`

	// ResultCacheTTL is the search result cache entry lifetime.
	ResultCacheTTL time.Duration `koanf:"result_cache_ttl" validate:"min=1s"`
}

// CatalogConfig controls the in-process catalog store.
type CatalogConfig struct {
	// SeedFile is an optional JSON file of titles, availability rows,
	// and profiles loaded at startup.
	SeedFile string `koanf:"seed_file"`
}

// SearchConfig points at the full-text search index.
type SearchConfig struct {
	URL     string        `koanf:"url" validate:"omitempty,url"`
	Timeout time.Duration `koanf:"timeout" validate:"min=100ms"`
}

// MetadataConfig points at the external metadata provider.
type MetadataConfig struct {
	URL               string        `koanf:"url" validate:"omitempty,url"`
	Timeout           time.Duration `koanf:"timeout" validate:"min=100ms"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"min=0.1"`
	Burst             int           `koanf:"burst" validate:"min=1"`
}

// SessionConfig controls session lifetime and quotas.
type SessionConfig struct {
	TTL               time.Duration `koanf:"ttl" validate:"min=1m"`
	HistoryLimit      int           `koanf:"history_limit" validate:"min=2,max=200"`
	FreeDailyLimit    int64         `koanf:"free_daily_limit" validate:"min=1"`
	PremiumDailyLimit int64         `koanf:"premium_daily_limit" validate:"min=0"`
}

// SafetyConfig toggles the safety filter layers.
type SafetyConfig struct {
	InputCheckEnabled  bool    `koanf:"input_check_enabled"`
	OutputCheckEnabled bool    `koanf:"output_check_enabled"`
	SanitizerEnabled   bool    `koanf:"sanitizer_enabled"`
	MaxInputLength     int     `koanf:"max_input_length" validate:"min=1,max=100000"`
	SpecialCharRatio   float64 `koanf:"special_char_ratio" validate:"gt=0,lte=1"`
}

// StoreConfig controls the embedded key-value store.
type StoreConfig struct {
	Dir      string `koanf:"dir"`
	InMemory bool   `koanf:"in_memory"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults, applied before the file
// and environment layers.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8460,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   60,
			RateLimitWindow: time.Minute,
		},
		Concierge: ConciergeConfig{
			Enabled:            true,
			GenerationProvider: "",
			ResultCacheSize:    1024,
			ResultCacheTTL:     5 * time.Minute,
		},
		Catalog: CatalogConfig{
			SeedFile: "",
		},
		Search: SearchConfig{
			URL:     "",
			Timeout: 2 * time.Second,
		},
		Metadata: MetadataConfig{
			URL:               "",
			Timeout:           3 * time.Second,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Session: SessionConfig{
			TTL:               30 * time.Minute,
			HistoryLimit:      20,
			FreeDailyLimit:    25,
			PremiumDailyLimit: 0,
		},
		Safety: SafetyConfig{
			InputCheckEnabled:  true,
			OutputCheckEnabled: true,
			SanitizerEnabled:   true,
			MaxInputLength:     1000,
			SpecialCharRatio:   0.3,
		},
		Store: StoreConfig{
			Dir:      "/data/concierge",
			InMemory: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Session.PremiumDailyLimit > 0 && c.Session.PremiumDailyLimit < c.Session.FreeDailyLimit {
		return fmt.Errorf("premium daily limit %d must not be below the free limit %d",
			c.Session.PremiumDailyLimit, c.Session.FreeDailyLimit)
	}
	return nil
}
