// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App            AppConfig                 `mapstructure:"app"`
	Camunda        CamundaConfig             `mapstructure:"camunda"`
	Redis          RedisConfig               `mapstructure:"redis"`
	Workers        map[string]WorkerConfig   `mapstructure:"workers"`
	Logging        LoggingConfig             `mapstructure:"logging"`
	Observability  ObservabilityConfig       `mapstructure:"observability"`
	LinkValidation LinkValidationConfig      `mapstructure:"link_validation"`
	Retailers      map[string]RetailerConfig `mapstructure:"retailers"`
	RegistryPath   string                    `mapstructure:"registry_path"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	Plaintext      bool   `mapstructure:"plaintext"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	MetricsAddress string `mapstructure:"metrics_address"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// LinkValidationConfig is the probe policy for the link checker. The skip list
// and phrase list are policy data and can be extended without code changes.
type LinkValidationConfig struct {
	ProbeTimeout    int                `mapstructure:"probe_timeout"` // milliseconds
	ReadLimitBytes  int64              `mapstructure:"read_limit_bytes"`
	MaxRedirects    int                `mapstructure:"max_redirects"`
	MaxConcurrency  int                `mapstructure:"max_concurrency"` // 0 = one worker per candidate
	UserAgent       string             `mapstructure:"user_agent"`
	AcceptLanguage  string             `mapstructure:"accept_language"`
	SkipRetailers   []string           `mapstructure:"skip_retailers"`
	NoResultPhrases []string           `mapstructure:"no_result_phrases"`
	Cache           VerdictCacheConfig `mapstructure:"cache"`
}

type VerdictCacheConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
	KeyPrefix  string `mapstructure:"key_prefix"`
	// Consecutive Redis failures that open the breaker, and how long it stays open.
	BreakerFailures       int `mapstructure:"breaker_failures"`
	BreakerTimeoutSeconds int `mapstructure:"breaker_timeout_seconds"`
}

// RetailerConfig is one retailer search URL template. SearchURL must contain
// the {query} placeholder.
type RetailerConfig struct {
	SearchURL     string            `mapstructure:"search_url"`
	SpaceEncoding string            `mapstructure:"space_encoding"` // plus | percent
	GenderParams  map[string]string `mapstructure:"gender_params"`
	Categories    []string          `mapstructure:"categories"`
}
