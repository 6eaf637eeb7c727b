package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/setanarut/inpaint"
	"gopkg.in/yaml.v3"
)

var errNoConfig = errors.New("config: no file given")

// Config mirrors the YAML file. Zero values fall back to defaults.
type Config struct {
	MaxIter    int     `yaml:"max_iter"`
	Tol        float64 `yaml:"tol"`
	Fidelity   float64 `yaml:"fidelity"`
	Smoothness float64 `yaml:"smoothness"`
	Ordering   string  `yaml:"ordering"`
	Workers    int     `yaml:"workers"`
	LogEvery   int     `yaml:"log_every"`

	// Random damage, used when Mask is empty.
	DamagePercent float64 `yaml:"damage_percent"`
	Seed          uint64  `yaml:"seed"`

	// Paint overlay: pixels close to Marker are damaged.
	Mask            string  `yaml:"mask"`
	Marker          string  `yaml:"marker"`
	MarkerTolerance float64 `yaml:"marker_tolerance"`

	MaxSide       int    `yaml:"max_side"`
	PaletteSize   int    `yaml:"palette_size"`
	PaletteMethod string `yaml:"palette_method"`

	Debug bool `yaml:"debug"`
	Info  bool `yaml:"info"`
	Human bool `yaml:"human"`
}

func defaultConfig() Config {
	opt := inpaint.DefaultOptions()
	return Config{
		MaxIter:         opt.MaxIter,
		Tol:             opt.Tol,
		Fidelity:        opt.Fidelity,
		Smoothness:      opt.Smoothness,
		LogEvery:        opt.LogEvery,
		DamagePercent:   30,
		Marker:          "#ffffff",
		MarkerTolerance: 0.1,
		PaletteSize:     5,
		PaletteMethod:   "kmeans",
		Info:            true,
	}
}

// loadConfig reads path over the defaults. An empty path returns the
// defaults together with errNoConfig so callers can tell the two apart.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, errNoConfig
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// options converts the solver part of cfg and validates it.
func (c Config) options() (inpaint.Options, error) {
	ord, err := inpaint.ParseOrdering(c.Ordering)
	if err != nil {
		return inpaint.Options{}, err
	}
	opt := inpaint.Options{
		MaxIter:    c.MaxIter,
		Tol:        c.Tol,
		Fidelity:   c.Fidelity,
		Smoothness: c.Smoothness,
		Ordering:   ord,
		Workers:    c.Workers,
		LogEvery:   c.LogEvery,
	}
	if err := opt.Validate(); err != nil {
		return inpaint.Options{}, err
	}
	if c.DamagePercent < 0 || c.DamagePercent > 100 {
		return inpaint.Options{}, fmt.Errorf("%w: damage_percent must be in [0,100], got %v",
			inpaint.ErrInvalidOptions, c.DamagePercent)
	}
	return opt, nil
}

func (c Config) marker() (colorful.Color, error) {
	col, err := colorful.Hex(c.Marker)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: marker %q: %v", inpaint.ErrInvalidOptions, c.Marker, err)
	}
	return col, nil
}
