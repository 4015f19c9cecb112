package config

import (
	"errors"
	"strings"
	"testing"
)

func validConfig() *Config {
	return Default()
}

func fieldErrors(t *testing.T, err error) []FieldError {
	t.Helper()
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	return verr.Errors
}

func hasField(errs []FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidate_DefaultIsValid(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidate_Server(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty listen address", func(c *Config) { c.Server.ListenAddress = "" }, "server.listen_address"},
		{"no port", func(c *Config) { c.Server.ListenAddress = "localhost" }, "server.listen_address"},
		{"negative read timeout", func(c *Config) { c.Server.ReadTimeout = -1 }, "server.read_timeout"},
		{"zero shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }, "server.shutdown_timeout"},
		{"zero max header bytes", func(c *Config) { c.Server.MaxHeaderBytes = 0 }, "server.max_header_bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			errs := fieldErrors(t, Validate(cfg))
			if !hasField(errs, tt.field) {
				t.Errorf("expected error on %s, got %v", tt.field, errs)
			}
		})
	}
}

func TestValidate_Providers(t *testing.T) {
	cfg := validConfig()
	cfg.Providers = map[string]ProviderConfig{
		"openai":    {BaseURL: "not a url", Default: true},
		"anthropic": {Default: true},
	}

	errs := fieldErrors(t, Validate(cfg))
	if !hasField(errs, "providers.openai.base_url") {
		t.Errorf("expected base_url error, got %v", errs)
	}
	if !hasField(errs, "providers") {
		t.Errorf("expected multiple-default error, got %v", errs)
	}
}

func TestValidate_PolicyStoreBackends(t *testing.T) {
	cfg := validConfig()
	cfg.Policy.Store = StoreFile
	cfg.Policy.FilePath = ""

	errs := fieldErrors(t, Validate(cfg))
	if !hasField(errs, "policy.file_path") {
		t.Errorf("expected file_path error, got %v", errs)
	}

	cfg = validConfig()
	cfg.Policy.Store = StoreSQLite
	cfg.Policy.SQLitePath = ""
	errs = fieldErrors(t, Validate(cfg))
	if !hasField(errs, "policy.sqlite_path") {
		t.Errorf("expected sqlite_path error, got %v", errs)
	}
}

func TestValidate_KeywordPatterns(t *testing.T) {
	cfg := validConfig()
	cfg.Evaluators.Keyword.Patterns = []string{`valid.*`, `([unclosed`}

	errs := fieldErrors(t, Validate(cfg))
	if !hasField(errs, "evaluators.keyword.patterns[1]") {
		t.Errorf("expected pattern error, got %v", errs)
	}
}

func TestValidate_Telemetry(t *testing.T) {
	cfg := validConfig()
	cfg.Telemetry.Logging.Level = "verbose"
	cfg.Telemetry.Logging.Format = "xml"
	cfg.Telemetry.Metrics.Path = "metrics"

	errs := fieldErrors(t, Validate(cfg))
	for _, field := range []string{
		"telemetry.logging.level",
		"telemetry.logging.format",
		"telemetry.metrics.path",
	} {
		if !hasField(errs, field) {
			t.Errorf("expected error on %s, got %v", field, errs)
		}
	}
}

func TestValidationError_Message(t *testing.T) {
	err := ValidationError{Errors: []FieldError{
		{"server.listen_address", "must not be empty"},
		{"policy.store", "must be one of memory, sqlite, file"},
	}}
	msg := err.Error()
	if !strings.Contains(msg, "2 errors") || !strings.Contains(msg, "server.listen_address") {
		t.Errorf("message = %q", msg)
	}
}
