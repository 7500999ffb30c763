package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RenderConfig carries the core-relevant rendering options. Zero-valued
// optional fields mean "unset" (unbounded depth, auto thread count, no
// clamping, no survival filter).
type RenderConfig struct {
	Width     int   `yaml:"width"`
	Height    int   `yaml:"height"`
	NbSamples int   `yaml:"nb_samples"`
	NbThreads int   `yaml:"nb_threads"`
	MaxDepth  int   `yaml:"max_depth"`
	TileSize  int   `yaml:"tile_size"`
	Seed      int64 `yaml:"seed"`

	// VPL integrator
	NbVPL          int     `yaml:"nb_vpl"`
	ClampingFactor float64 `yaml:"clamping_factor"`

	// Gradient-domain path tracer
	MinSurvival   float64 `yaml:"min_survival"`
	SurvivalScale float64 `yaml:"survival_scale"`
}

// DefaultRenderConfig returns the defaults used when a field is unset
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Width:         128,
		Height:        128,
		NbSamples:     16,
		TileSize:      16,
		NbVPL:         1024,
		SurvivalScale: 0.1,
	}
}

// LoadRenderConfig reads a yaml config file, applying defaults for unset
// fields
func LoadRenderConfig(path string) (RenderConfig, error) {
	cfg := DefaultRenderConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read render config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse render config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports configuration errors. These are fatal at scene
// construction.
func (c RenderConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", c.Width, c.Height)
	}
	if c.NbSamples <= 0 {
		return fmt.Errorf("nb_samples must be positive, got %d", c.NbSamples)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	if c.TileSize <= 0 {
		return fmt.Errorf("tile_size must be positive, got %d", c.TileSize)
	}
	if c.NbVPL <= 0 {
		return fmt.Errorf("nb_vpl must be positive, got %d", c.NbVPL)
	}
	if c.MinSurvival < 0 || c.MinSurvival > 1 {
		return fmt.Errorf("min_survival must be in [0,1], got %g", c.MinSurvival)
	}
	if c.SurvivalScale <= 0 {
		return fmt.Errorf("survival_scale must be positive, got %g", c.SurvivalScale)
	}
	return nil
}
