// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package config loads and validates the service's YAML configuration.
//
// Secrets never appear in the file itself; token fields name
// environment variables that are read at wire-up time. Durations are
// written as strings ("500ms", "24h") and checked during validation.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/tributary/core"
)

// Config is the full service configuration.
type Config struct {
	Store    StoreConfig             `yaml:"store"`
	Embedder EmbedderConfig          `yaml:"embedder"`
	Sources  map[string]SourceConfig `yaml:"sources"`
	Resolver ResolverConfig          `yaml:"resolver"`
	Retry    RetryConfig             `yaml:"retry"`
	Server   ServerConfig            `yaml:"server"`
	Backfill BackfillConfig          `yaml:"backfill"`
}

// StoreConfig selects and configures the vector store backend.
type StoreConfig struct {
	// Backend is "badger" or "postgres".
	Backend string `yaml:"backend"`

	// Path is the badger data directory. Empty runs in memory.
	Path string `yaml:"path"`

	// DSN is the postgres connection string.
	DSN string `yaml:"dsn"`

	// Dimension is the embedding vector width.
	Dimension int `yaml:"dimension"`
}

// EmbedderConfig points at an OpenAI-compatible embedding service.
type EmbedderConfig struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	MaxChars  int    `yaml:"max_chars"`
}

// APIKey resolves the configured key environment variable. Empty when
// no variable is named or it is unset.
func (e EmbedderConfig) APIKey() string {
	if e.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(e.APIKeyEnv)
}

// SourceConfig configures one source system's connector. The section
// key names the source ("tracker", "wiki", "meetings", "chat").
type SourceConfig struct {
	BaseURL   string  `yaml:"base_url"`
	TokenEnv  string  `yaml:"token_env"`
	RateLimit float64 `yaml:"rate_limit"`
	PageSize  int     `yaml:"page_size"`
	Enabled   *bool   `yaml:"enabled"`

	// Space scopes the wiki connector to one space.
	Space string `yaml:"space"`

	// Channels lists the chat channels to pull history from.
	Channels []string `yaml:"channels"`
}

// IsEnabled reports whether the connector should be wired. Sections
// default to enabled; only an explicit false disables one.
func (s SourceConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Token resolves the configured token environment variable. Empty
// means anonymous access.
func (s SourceConfig) Token() string {
	if s.TokenEnv == "" {
		return ""
	}
	return os.Getenv(s.TokenEnv)
}

// ResolverConfig tunes the identity cache.
type ResolverConfig struct {
	MinInterval string `yaml:"min_interval"`
	Lookback    string `yaml:"lookback"`
}

// MinIntervalDuration returns the parsed slow-path throttle interval.
// Validate must have accepted the config first.
func (r ResolverConfig) MinIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(r.MinInterval)
	return d
}

// LookbackDuration returns the parsed incremental sync lookback.
func (r ResolverConfig) LookbackDuration() time.Duration {
	d, _ := time.ParseDuration(r.Lookback)
	return d
}

// RetryConfig tunes the outbound call envelope.
type RetryConfig struct {
	MaxRetries int    `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
	MaxDelay   string `yaml:"max_delay"`
}

// BaseDelayDuration returns the parsed first backoff delay.
func (r RetryConfig) BaseDelayDuration() time.Duration {
	d, _ := time.ParseDuration(r.BaseDelay)
	return d
}

// MaxDelayDuration returns the parsed backoff ceiling.
func (r RetryConfig) MaxDelayDuration() time.Duration {
	d, _ := time.ParseDuration(r.MaxDelay)
	return d
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	PoolSize int    `yaml:"pool_size"`
}

// BackfillConfig tunes batch processing.
type BackfillConfig struct {
	CheckpointInterval int    `yaml:"checkpoint_interval"`
	BatchSize          int    `yaml:"batch_size"`
	ChunkPause         string `yaml:"chunk_pause"`
}

// ChunkPauseDuration returns the parsed pause between chunk launches.
func (b BackfillConfig) ChunkPauseDuration() time.Duration {
	d, _ := time.ParseDuration(b.ChunkPause)
	return d
}

// Default returns the configuration used when the file leaves a
// section out.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:   "badger",
			Path:      "data",
			Dimension: 384,
		},
		Embedder: EmbedderConfig{
			BaseURL:  "http://localhost:11434/v1",
			Model:    "embeddinggemma",
			MaxChars: 8000,
		},
		Resolver: ResolverConfig{
			MinInterval: "100ms",
			Lookback:    "168h",
		},
		Retry: RetryConfig{
			MaxRetries: 3,
			BaseDelay:  "500ms",
			MaxDelay:   "30s",
		},
		Server: ServerConfig{
			Addr:     ":8080",
			PoolSize: 4,
		},
		Backfill: BackfillConfig{
			CheckpointInterval: 500,
			BatchSize:          100,
			ChunkPause:         "2s",
		},
	}
}

// Load reads the YAML file at path over the defaults. Unknown fields
// are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for contradictions and bad values.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "badger":
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required when store.backend is postgres")
		}
	default:
		return fmt.Errorf("store.backend must be badger or postgres, got %q", c.Store.Backend)
	}
	if c.Store.Dimension < 1 {
		return fmt.Errorf("store.dimension must be positive")
	}

	if c.Embedder.BaseURL == "" {
		return fmt.Errorf("embedder.base_url is required")
	}
	if c.Embedder.Model == "" {
		return fmt.Errorf("embedder.model is required")
	}
	if c.Embedder.MaxChars < 1 {
		return fmt.Errorf("embedder.max_chars must be positive")
	}

	for name, src := range c.Sources {
		if !slices.Contains(core.Sources, core.Source(name)) {
			return fmt.Errorf("sources.%s: unknown source", name)
		}
		if !src.IsEnabled() {
			continue
		}
		if src.BaseURL == "" {
			return fmt.Errorf("sources.%s.base_url is required", name)
		}
		if src.RateLimit < 0 {
			return fmt.Errorf("sources.%s.rate_limit must not be negative", name)
		}
		if src.PageSize < 0 {
			return fmt.Errorf("sources.%s.page_size must not be negative", name)
		}
	}

	if d, err := parseDuration("resolver.min_interval", c.Resolver.MinInterval); err != nil {
		return err
	} else if d <= 0 {
		return fmt.Errorf("resolver.min_interval must be positive")
	}
	if d, err := parseDuration("resolver.lookback", c.Resolver.Lookback); err != nil {
		return err
	} else if d <= 0 {
		return fmt.Errorf("resolver.lookback must be positive")
	}

	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative")
	}
	if _, err := parseDuration("retry.base_delay", c.Retry.BaseDelay); err != nil {
		return err
	}
	if _, err := parseDuration("retry.max_delay", c.Retry.MaxDelay); err != nil {
		return err
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.PoolSize < 1 {
		return fmt.Errorf("server.pool_size must be positive")
	}

	if c.Backfill.CheckpointInterval < 1 {
		return fmt.Errorf("backfill.checkpoint_interval must be positive")
	}
	if c.Backfill.BatchSize < 1 {
		return fmt.Errorf("backfill.batch_size must be positive")
	}
	if d, err := parseDuration("backfill.chunk_pause", c.Backfill.ChunkPause); err != nil {
		return err
	} else if d < 0 {
		return fmt.Errorf("backfill.chunk_pause must not be negative")
	}

	return nil
}

func parseDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", field, value)
	}
	return d, nil
}
