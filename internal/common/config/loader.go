// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top
// and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env", "../../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars replaces ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

func overrideEmptyConfig(cfg *Config) {
	if cfg.Camunda.BrokerAddress == "" {
		if val := os.Getenv("ZEEBE_ADDRESS"); val != "" {
			cfg.Camunda.BrokerAddress = val
		}
	}
	if cfg.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Redis.Address = val
		}
	}
	if cfg.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Redis.Password = val
		}
	}
	if cfg.Observability.JaegerEndpoint == "" {
		if val := os.Getenv("JAEGER_ENDPOINT"); val != "" {
			cfg.Observability.JaegerEndpoint = val
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "shoplink-workers"
	}
	if cfg.Observability.MetricsAddress == "" {
		cfg.Observability.MetricsAddress = ":8080"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}

	lv := &cfg.LinkValidation
	if lv.ProbeTimeout == 0 {
		lv.ProbeTimeout = 4000
	}
	if lv.ReadLimitBytes == 0 {
		lv.ReadLimitBytes = 100000
	}
	if lv.MaxRedirects == 0 {
		lv.MaxRedirects = 10
	}
	if lv.UserAgent == "" {
		lv.UserAgent = DefaultUserAgent
	}
	if lv.AcceptLanguage == "" {
		lv.AcceptLanguage = "en-US,en;q=0.9"
	}
	if lv.SkipRetailers == nil {
		lv.SkipRetailers = []string{"nordstrom", "zara"}
	}
	if lv.Cache.TTLSeconds == 0 {
		lv.Cache.TTLSeconds = 600
	}
	if lv.Cache.KeyPrefix == "" {
		lv.Cache.KeyPrefix = "linkcheck:verdict:"
	}

	if len(cfg.Retailers) == 0 {
		cfg.Retailers = DefaultRetailers()
	}
	if cfg.RegistryPath == "" {
		cfg.RegistryPath = "configs/activity-registry.json"
	}
}

const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// DefaultRetailers are the search templates used when none are configured.
func DefaultRetailers() map[string]RetailerConfig {
	return map[string]RetailerConfig{
		"amazon": {
			SearchURL:     "https://www.amazon.com/s?k={query}",
			SpaceEncoding: "plus",
			GenderParams: map[string]string{
				"male":   "rh=n%3A7147441011",
				"female": "rh=n%3A7147440011",
			},
		},
		"asos": {
			SearchURL:     "https://www.asos.com/search/?q={query}",
			SpaceEncoding: "percent",
			GenderParams: map[string]string{
				"male":   "refine=floor:1001",
				"female": "refine=floor:1000",
			},
		},
		"nordstrom": {
			SearchURL:     "https://www.nordstrom.com/sr?origin=keywordsearch&keyword={query}",
			SpaceEncoding: "plus",
			GenderParams: map[string]string{
				"male":   "filterByGender=Men",
				"female": "filterByGender=Women",
			},
		},
		"zara": {
			SearchURL:     "https://www.zara.com/us/en/search?searchTerm={query}",
			SpaceEncoding: "percent",
			GenderParams: map[string]string{
				"male":   "section=MAN",
				"female": "section=WOMAN",
			},
		},
		"soleretriever": {
			SearchURL:     "https://www.soleretriever.com/search?q={query}",
			SpaceEncoding: "percent",
			Categories:    []string{"shoes"},
		},
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}
	if cfg.LinkValidation.ProbeTimeout < 0 {
		return fmt.Errorf("link_validation.probe_timeout must be positive")
	}
	if cfg.LinkValidation.ReadLimitBytes < 0 {
		return fmt.Errorf("link_validation.read_limit_bytes must be positive")
	}
	if cfg.LinkValidation.MaxConcurrency < 0 {
		return fmt.Errorf("link_validation.max_concurrency must not be negative")
	}
	if cfg.LinkValidation.Cache.Enabled && cfg.Redis.Address == "" {
		return fmt.Errorf("redis.address is required when link_validation.cache.enabled is set")
	}
	for name, r := range cfg.Retailers {
		if !strings.Contains(r.SearchURL, "{query}") {
			return fmt.Errorf("retailers.%s.search_url must contain {query}", name)
		}
		switch r.SpaceEncoding {
		case "", "plus", "percent":
		default:
			return fmt.Errorf("retailers.%s.space_encoding must be plus or percent", name)
		}
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
