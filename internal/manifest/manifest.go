// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

// Package manifest parses and validates extension.yaml manifests.
package manifest

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/modkit/modkit/pkg/sdk"
)

// Filename is the manifest file an extension directory must contain.
const Filename = "extension.yaml"

// Type identifies the extension runtime.
type Type string

// Extension types supported by the loader.
const (
	TypeLua Type = "lua"
)

// Manifest represents an extension.yaml file.
type Manifest struct {
	Name         string     `yaml:"name" json:"name"`
	Version      string     `yaml:"version" json:"version"`
	Type         Type       `yaml:"type" json:"type"`
	Events       []string   `yaml:"events,omitempty" json:"events,omitempty"`
	Capabilities []string   `yaml:"capabilities,omitempty" json:"capabilities,omitempty"`
	Lua          *LuaConfig `yaml:"lua,omitempty" json:"lua,omitempty"`
}

// LuaConfig holds Lua-specific configuration.
type LuaConfig struct {
	Entry string `yaml:"entry" json:"entry"`
}

// maxNameLength is the maximum allowed length for extension names.
const maxNameLength = 64

// namePattern validates extension names: must start with a lowercase
// letter, followed by lowercase letters, digits, or hyphens, and cannot
// end with a hyphen. Single character names are allowed.
var namePattern = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)

// Parse parses and validates an extension.yaml file.
func Parse(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("manifest data is empty")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks manifest constraints.
func (m *Manifest) Validate() error {
	if m.Name == "" || !namePattern.MatchString(m.Name) {
		return fmt.Errorf("name %q must start with a-z, contain only a-z, 0-9, hyphens, and not end with a hyphen", m.Name)
	}
	if len(m.Name) > maxNameLength {
		return fmt.Errorf("name must be %d characters or less, got %d", maxNameLength, len(m.Name))
	}

	if m.Version == "" {
		return fmt.Errorf("version is required")
	}
	if _, err := semver.NewVersion(m.Version); err != nil {
		return fmt.Errorf("version %q is not a valid semantic version: %w", m.Version, err)
	}

	for _, event := range m.Events {
		if _, ok := sdk.CallbackType(event); !ok {
			return fmt.Errorf("event %q is not in the event catalog", event)
		}
	}

	switch m.Type {
	case TypeLua:
		if m.Lua == nil {
			return fmt.Errorf("lua is required when type is lua")
		}
		if m.Lua.Entry == "" {
			return fmt.Errorf("lua.entry is required")
		}
	default:
		return fmt.Errorf("type must be 'lua', got %q", m.Type)
	}

	return nil
}
