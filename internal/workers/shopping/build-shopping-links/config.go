package buildshoppinglinks

import (
	"fmt"
	"strings"
	"time"

	"shoplink-workers/internal/common/config"
)

type Config struct {
	Enabled       bool                             `mapstructure:"enabled"`
	MaxJobsActive int                              `mapstructure:"max_jobs_active"`
	Timeout       time.Duration                    `mapstructure:"timeout"`
	Retailers     map[string]config.RetailerConfig `mapstructure:"retailers"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 10,
		Timeout:       5 * time.Second,
		Retailers:     config.DefaultRetailers(),
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if len(c.Retailers) == 0 {
		return fmt.Errorf("at least one retailer is required")
	}
	for name, r := range c.Retailers {
		if name == "" {
			return fmt.Errorf("retailer name must not be empty")
		}
		if !strings.Contains(r.SearchURL, queryPlaceholder) {
			return fmt.Errorf("retailer %s: search_url must contain %s", name, queryPlaceholder)
		}
	}
	return nil
}
