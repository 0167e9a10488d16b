package pipeline

import (
	"fmt"

	"github.com/roman-kulish/radiometer/internal/baseline"
	"github.com/roman-kulish/radiometer/internal/radiometer"
	"github.com/roman-kulish/radiometer/internal/spectrum"
)

// Config holds the parameters of a single pipeline run.
type Config struct {
	Channels   int              `yaml:"channels"`   // Readings per data line
	TempOffset int              `yaml:"tempOffset"` // Field index of the first reading
	Cutoffs    spectrum.Cutoffs `yaml:"cutoffs"`    // Edge sample counts at both ends
	Degree     int              `yaml:"degree"`     // Noise model polynomial degree
}

// DefaultConfig returns the configuration for the standard log layout.
// No edge samples are selected, so noise fitting is skipped by default.
func DefaultConfig() Config {
	return Config{
		Channels:   spectrum.DefaultChannels,
		TempOffset: spectrum.DefaultTempOffset,
		Degree:     baseline.DefaultDegree,
	}
}

func (c *Config) Validate() error {
	if c.Channels <= 0 {
		return fmt.Errorf("pipeline.Config: channel count must be positive: %d", c.Channels)
	}
	if c.TempOffset < radiometer.MinTempOffset {
		return fmt.Errorf("pipeline.Config: temperature offset must be at least %d: %d", radiometer.MinTempOffset, c.TempOffset)
	}
	if err := c.Cutoffs.Validate(); err != nil {
		return fmt.Errorf("pipeline.Config: %w", err)
	}
	if c.Degree < 0 {
		return fmt.Errorf("pipeline.Config: %w: %d", baseline.ErrInvalidDegree, c.Degree)
	}
	return nil
}

// FitEnabled reports whether any edge samples are selected for noise fitting.
func (c *Config) FitEnabled() bool {
	return c.Cutoffs.Low > 0 || c.Cutoffs.High > 0
}
