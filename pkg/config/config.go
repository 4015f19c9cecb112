package config

import "time"

// Config is the root configuration structure for Sentinel. It covers the
// gateway HTTP server, upstream LLM providers, the policy store and engine,
// evaluator tuning, and telemetry.
type Config struct {
	// Server contains the gateway HTTP server configuration.
	Server ServerConfig `yaml:"server"`

	// Providers maps provider names (e.g. "openai") to their upstream
	// connection settings.
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Policy configures where policies come from and how they are
	// enforced.
	Policy PolicyConfig `yaml:"policy"`

	// Evaluators tunes the built-in evaluators.
	Evaluators EvaluatorsConfig `yaml:"evaluators"`

	// Telemetry configures logging, metrics, and health checking.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains the gateway HTTP server settings.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response
	// writes. Default: 60s, sized for slow upstream completions.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle limit. Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown. Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size. Default: 1MB
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// ProviderConfig contains the settings for one upstream LLM provider.
type ProviderConfig struct {
	// BaseURL is the provider's API endpoint, e.g.
	// "https://api.openai.com/v1". Empty uses the provider's default.
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates against the provider. Usually supplied via
	// environment override rather than the config file.
	APIKey string `yaml:"api_key"`

	// Timeout bounds a single upstream call. Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// Default marks this provider as the one used when a request names
	// no provider. At most one provider may be the default.
	Default bool `yaml:"default"`
}

// PolicyConfig configures the policy store and enforcement behavior.
type PolicyConfig struct {
	// Store selects the policy backend: "memory", "sqlite", or "file".
	// Default: "memory"
	Store string `yaml:"store"`

	// SQLitePath is the database file used when Store is "sqlite".
	// Default: "sentinel-policies.db"
	SQLitePath string `yaml:"sqlite_path"`

	// FilePath is the YAML policy file used when Store is "file".
	FilePath string `yaml:"file_path"`

	// Watch reloads the policy file on change; only meaningful when
	// Store is "file". Default: true
	Watch bool `yaml:"watch"`
}

// EvaluatorsConfig tunes the built-in evaluators.
type EvaluatorsConfig struct {
	// Keyword configures the keyword filter evaluator.
	Keyword KeywordConfig `yaml:"keyword"`
}

// KeywordConfig carries the banned keyword and pattern lists for the
// keyword filter evaluator. Empty lists fall back to the evaluator's
// built-in defaults.
type KeywordConfig struct {
	// Keywords are matched case-insensitively as substrings.
	Keywords []string `yaml:"keywords"`

	// Patterns are regular expressions compiled case-insensitively.
	Patterns []string `yaml:"patterns"`
}

// TelemetryConfig contains observability settings.
type TelemetryConfig struct {
	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`

	// Health configures periodic evaluator health sweeps.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error". Default: "info"
	Level string `yaml:"level"`

	// Format is "json" or "text". Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path. Default: "/metrics"
	Path string `yaml:"path"`
}

// HealthConfig contains the scheduled evaluator health sweep settings.
type HealthConfig struct {
	// SweepSchedule is a cron expression for periodic evaluator health
	// checks. Empty disables the sweep. Default: "@every 1m"
	SweepSchedule string `yaml:"sweep_schedule"`
}

// DefaultProvider returns the name of the provider marked Default, or the
// empty string when none is marked.
func (c *Config) DefaultProvider() string {
	for name, p := range c.Providers {
		if p.Default {
			return name
		}
	}
	return ""
}
