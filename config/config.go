// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config loads aurora presets from YAML or TOML files.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/aurora"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrUnsupportedFormat is returned for files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("config: unsupported file format")

// Config is an aurora configuration file.
type Config struct {
	Theme   string       `yaml:"theme" toml:"theme"`
	Backend string       `yaml:"backend" toml:"backend"` // registry name; empty selects the default
	Dark    Preset       `yaml:"dark" toml:"dark"`
	Light   Preset       `yaml:"light" toml:"light"`
	Render  RenderConfig `yaml:"render" toml:"render"`
}

// Preset holds the parameters for one theme.
type Preset struct {
	Stops     []string `yaml:"stops" toml:"stops"` // exactly three hex colors
	Amplitude float64  `yaml:"amplitude" toml:"amplitude"`
	Blend     float64  `yaml:"blend" toml:"blend"`
	Speed     float64  `yaml:"speed" toml:"speed"`
}

// RenderConfig sizes offline and watched renders.
type RenderConfig struct {
	Width  int `yaml:"width" toml:"width"`
	Height int `yaml:"height" toml:"height"`
	FPS    int `yaml:"fps" toml:"fps"`
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("config: parsing embedded defaults: %v", err))
	}
	return cfg
}

// Load reads path over the embedded defaults and validates the result.
// The format follows the extension: .yaml, .yml or .toml. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := decode(path, data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// decode unmarshals data into cfg, only overwriting keys present in data.
func decode(path string, data []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("config: parsing %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("config: parsing %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return nil
}

// Validate checks the theme, both presets and the render size.
func (c *Config) Validate() error {
	if _, err := aurora.ParseTheme(c.Theme); err != nil {
		return err
	}
	if _, err := c.Palette(); err != nil {
		return err
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("%w: render %dx%d", aurora.ErrInvalidDimensions, c.Render.Width, c.Render.Height)
	}
	if c.Render.FPS <= 0 {
		return fmt.Errorf("render fps must be positive, got %d", c.Render.FPS)
	}
	return nil
}

// Parameters converts p to renderer parameters.
func (p Preset) Parameters() (aurora.Parameters, error) {
	stops, err := aurora.ParseColorStops(p.Stops...)
	if err != nil {
		return aurora.Parameters{}, err
	}
	params := aurora.Parameters{
		ColorStops: stops,
		Amplitude:  p.Amplitude,
		Blend:      p.Blend,
		Speed:      p.Speed,
	}
	if err := params.Validate(); err != nil {
		return aurora.Parameters{}, err
	}
	return params, nil
}

// Palette converts both presets.
func (c *Config) Palette() (aurora.Palette, error) {
	dark, err := c.Dark.Parameters()
	if err != nil {
		return aurora.Palette{}, fmt.Errorf("dark: %w", err)
	}
	light, err := c.Light.Parameters()
	if err != nil {
		return aurora.Palette{}, fmt.Errorf("light: %w", err)
	}
	return aurora.Palette{Dark: dark, Light: light}, nil
}

// Active returns the theme and the parameters of its preset.
func (c *Config) Active() (aurora.Theme, aurora.Parameters, error) {
	theme, err := aurora.ParseTheme(c.Theme)
	if err != nil {
		return theme, aurora.Parameters{}, err
	}
	palette, err := c.Palette()
	if err != nil {
		return theme, aurora.Parameters{}, err
	}
	return theme, palette.For(theme), nil
}

// Write encodes c to path in the format given by its extension.
func (c *Config) Write(path string) error {
	var buf bytes.Buffer
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("config: encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("config: encoding yaml: %w", err)
		}
	case ".toml":
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("config: encoding toml: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}
