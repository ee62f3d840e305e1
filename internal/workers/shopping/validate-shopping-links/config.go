package validateshoppinglinks

import (
	"fmt"
	"time"

	"shoplink-workers/internal/common/config"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	// LinkValidation is the probe policy shared by every job of this worker.
	LinkValidation config.LinkValidationConfig `mapstructure:"link_validation"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       15 * time.Second,
		LinkValidation: config.LinkValidationConfig{
			ProbeTimeout:   4000,
			ReadLimitBytes: 100000,
			MaxRedirects:   10,
		},
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.LinkValidation.MaxConcurrency < 0 {
		return fmt.Errorf("link_validation.max_concurrency must not be negative")
	}
	if probe := config.GetDuration(c.LinkValidation.ProbeTimeout); probe >= c.Timeout {
		return fmt.Errorf("timeout %s must exceed the probe timeout %s", c.Timeout, probe)
	}
	return nil
}
