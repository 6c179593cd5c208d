// internal/config/config.go
// Optional YAML file overriding the calculation tunables. Flags still win
// over the file, the file wins over the built-in defaults.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors the tunable knobs of the core pipeline.
type Config struct {
	// Instrument model.
	KernelFWHM float64 `yaml:"kernel_fwhm"` // Gaussian kernel width, Da
	WindowPad  float64 `yaml:"window_pad"`  // fit window padding, Da

	// Preprocessing.
	AlignWidth         float64 `yaml:"align_width"`         // search half-window, Da
	BaselinePercentile float64 `yaml:"baseline_percentile"` // 0-100

	// Heuristics.
	CutoffFraction  float64  `yaml:"cutoff_fraction"`  // of max intensity
	AdductTolerance float64  `yaml:"adduct_tolerance"` // auto-detect window, Da
	Adducts         []string `yaml:"adducts"`          // auto-detect candidates
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		KernelFWHM:         0.05,
		WindowPad:          1.0,
		AlignWidth:         0.5,
		BaselinePercentile: 25,
		CutoffFraction:     0.01,
		AdductTolerance:    0.5,
	}
}

// Load reads path over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.KernelFWHM <= 0 {
		return fmt.Errorf("kernel_fwhm must be > 0, got %g", c.KernelFWHM)
	}
	if c.BaselinePercentile < 0 || c.BaselinePercentile > 100 {
		return fmt.Errorf("baseline_percentile must be 0-100, got %g", c.BaselinePercentile)
	}
	if c.CutoffFraction < 0 || c.CutoffFraction >= 1 {
		return fmt.Errorf("cutoff_fraction must be in [0,1), got %g", c.CutoffFraction)
	}
	return nil
}
