/*
Package config maps LNEPUB_* environment variables onto the defaults used by
the lnepub command.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Command-line flags override every value loaded here.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// # Configuration Schema

// Config holds the environment defaults for a build.
type Config struct {

	// Archive output
	OutputDir string `env:"LNEPUB_OUTPUT_DIR" envDefault:"."`
	Language  string `env:"LNEPUB_LANGUAGE"   envDefault:"en"`
	TOC       bool   `env:"LNEPUB_TOC"        envDefault:"false"`

	// Logging
	Debug     bool   `env:"LNEPUB_DEBUG"      envDefault:"false"`
	LogFormat string `env:"LNEPUB_LOG_FORMAT" envDefault:"text"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	switch cfg.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return nil, fmt.Errorf("config: LNEPUB_LOG_FORMAT must be %q or %q, got %q", LogFormatText, LogFormatJSON, cfg.LogFormat)
	}

	return cfg, nil
}

// JSONLogs reports whether log output should be JSON.
func (c *Config) JSONLogs() bool {
	return c.LogFormat == LogFormatJSON
}
