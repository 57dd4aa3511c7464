// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

// Package config loads host configuration from modkit.yaml merged with
// command-line flags. Flags win over the file; file wins over defaults.
package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds the host configuration.
type Config struct {
	// ExtensionsDir is the directory scanned for extension
	// subdirectories at startup.
	ExtensionsDir string `koanf:"extensions-dir"`

	// MetricsAddr is the observability server listen address.
	MetricsAddr string `koanf:"metrics-addr"`

	// LogFormat is "json" or "text".
	LogFormat string `koanf:"log-format"`
}

// Defaults for host configuration.
const (
	DefaultExtensionsDir = "extensions"
	DefaultMetricsAddr   = "127.0.0.1:9100"
	DefaultLogFormat     = "json"
)

// Load reads path (when it exists) and overlays flags. A missing file is
// not an error; an unreadable or malformed one is.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config file %s: %w", path, err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	cfg := &Config{
		ExtensionsDir: DefaultExtensionsDir,
		MetricsAddr:   DefaultMetricsAddr,
		LogFormat:     DefaultLogFormat,
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks configuration constraints.
func (c *Config) Validate() error {
	if c.ExtensionsDir == "" {
		return fmt.Errorf("extensions-dir is required")
	}
	if c.MetricsAddr == "" {
		return fmt.Errorf("metrics-addr is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("log-format must be 'json' or 'text', got %q", c.LogFormat)
	}
	return nil
}
