// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for parley.
//
// Configuration lives in ~/.parley/config.toml with sensible defaults and
// environment variable overrides (PARLEY_API_URL, PARLEY_DATA_DIR,
// PARLEY_THEME).
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/parley-tui/internal/api"
	"github.com/jeranaias/parley-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURE
// =============================================================================

// Config represents the complete parley configuration.
type Config struct {
	// APIURL is the base URL of the parley backend.
	APIURL string `toml:"api_url"`

	// DataDir is the directory for persisted state (history, cached user,
	// model catalogue). Empty means ~/.parley.
	DataDir string `toml:"data_dir"`

	// RequestTimeoutSecs is the timeout for non-streaming requests.
	// Streaming completions are bounded by context, not this value.
	RequestTimeoutSecs int `toml:"request_timeout_secs"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme selects the colour theme: "dark", "light", or "auto".
	Theme string `toml:"theme"`

	// Markdown enables rendered markdown for assistant messages. When
	// false, raw text is shown.
	Markdown bool `toml:"markdown"`

	// CodeStyle is the chroma style used for fenced code blocks.
	CodeStyle string `toml:"code_style"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		APIURL:             api.DefaultBaseURL,
		RequestTimeoutSecs: 60,
		UI: UIConfig{
			Theme:     "auto",
			Markdown:  true,
			CodeStyle: "monokai",
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the parley configuration directory (~/.parley).
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, ".parley"), nil
}

// ConfigPath returns the path of the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config file, applies environment overrides, and
// validates the result. A missing file yields defaults, not an error.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadFile(cfg, path); err != nil {
				return nil, err
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile decodes a TOML config file over cfg.
func LoadFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}
	return nil
}

// ApplyEnvOverrides applies environment variable overrides. Environment
// beats file so scripted runs can redirect the client without editing
// config.
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("PARLEY_API_URL"); u != "" {
		c.APIURL = u
	}
	if dir := os.Getenv("PARLEY_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if theme := os.Getenv("PARLEY_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// SetDefaults fills zero-valued fields with defaults.
func (c *Config) SetDefaults() {
	def := Default()
	if c.APIURL == "" {
		c.APIURL = def.APIURL
	}
	if c.RequestTimeoutSecs <= 0 {
		c.RequestTimeoutSecs = def.RequestTimeoutSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
	if c.UI.CodeStyle == "" {
		c.UI.CodeStyle = def.UI.CodeStyle
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid config field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	parsed, err := url.Parse(c.APIURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ValidationError{Field: "api_url", Message: "must be an absolute http(s) URL"}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ValidationError{Field: "api_url", Message: "scheme must be http or https"}
	}

	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		return ValidationError{Field: "ui.theme", Message: "must be dark, light, or auto"}
	}

	if c.RequestTimeoutSecs < 1 || c.RequestTimeoutSecs > 600 {
		return ValidationError{Field: "request_timeout_secs", Message: "must be between 1 and 600"}
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the default path.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(cfg, path)
}

// SaveFile writes the configuration as TOML to the given path.
func SaveFile(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# parley configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
