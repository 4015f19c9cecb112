package config

import "time"

// Store backend names accepted by PolicyConfig.Store.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreFile   = "file"
)

// Default returns a Config populated entirely from defaults. Load decodes
// YAML on top of this value, so booleans that default to true survive an
// absent field while an explicit false in the file still sticks.
func Default() *Config {
	cfg := &Config{
		Policy: PolicyConfig{
			Watch: true,
		},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{
				Enabled: true,
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in default values for any field left at its zero
// value. Default-true booleans are handled by Default instead; this only
// covers fields whose zero value is unambiguously "unset".
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = "127.0.0.1:8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = 1 << 20
	}

	for name, p := range cfg.Providers {
		if p.Timeout == 0 {
			p.Timeout = 60 * time.Second
			cfg.Providers[name] = p
		}
	}

	if cfg.Policy.Store == "" {
		cfg.Policy.Store = StoreMemory
	}
	if cfg.Policy.SQLitePath == "" {
		cfg.Policy.SQLitePath = "sentinel-policies.db"
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = "/metrics"
	}
	if cfg.Telemetry.Health.SweepSchedule == "" {
		cfg.Telemetry.Health.SweepSchedule = "@every 1m"
	}
}
