package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sentinel.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, "server:\n  listen_address: \"0.0.0.0:9000\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9000" {
		t.Errorf("listen_address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("read_timeout = %v, want default 30s", cfg.Server.ReadTimeout)
	}
	if cfg.Policy.Store != StoreMemory {
		t.Errorf("policy.store = %q, want memory", cfg.Policy.Store)
	}
	if !cfg.Policy.Watch {
		t.Error("policy.watch should default to true")
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("metrics should default to enabled")
	}
	if cfg.Telemetry.Logging.Level != "info" || cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("logging defaults = %q/%q", cfg.Telemetry.Logging.Level, cfg.Telemetry.Logging.Format)
	}
}

func TestLoad_ExplicitFalseSticks(t *testing.T) {
	path := writeConfigFile(t, `
telemetry:
  metrics:
    enabled: false
policy:
  watch: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("metrics.enabled = true, want explicit false to stick")
	}
	if cfg.Policy.Watch {
		t.Error("policy.watch = true, want explicit false to stick")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "server: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfigFile(t, `
policy:
  store: etcd
`)
	_, err := Load(path)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(verr.Errors) != 1 || verr.Errors[0].Field != "policy.store" {
		t.Errorf("errors = %v", verr.Errors)
	}
}

func TestLoadWithEnv_Overrides(t *testing.T) {
	path := writeConfigFile(t, `
server:
  listen_address: "127.0.0.1:8080"
providers:
  openai:
    api_key: "file-key"
`)

	t.Setenv("SENTINEL_SERVER_LISTEN_ADDRESS", "0.0.0.0:8443")
	t.Setenv("SENTINEL_PROVIDERS_OPENAI_API_KEY", "env-key")
	t.Setenv("SENTINEL_POLICY_STORE", "sqlite")
	t.Setenv("SENTINEL_TELEMETRY_METRICS_ENABLED", "false")

	cfg, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:8443" {
		t.Errorf("listen_address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Providers["openai"].APIKey != "env-key" {
		t.Errorf("api_key = %q, want env override", cfg.Providers["openai"].APIKey)
	}
	if cfg.Policy.Store != StoreSQLite {
		t.Errorf("policy.store = %q", cfg.Policy.Store)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("metrics.enabled = true, want env false")
	}
}

func TestLoadWithEnv_CreatesProviderEntry(t *testing.T) {
	path := writeConfigFile(t, "server:\n  listen_address: \"127.0.0.1:8080\"\n")

	t.Setenv("SENTINEL_PROVIDERS_ANTHROPIC_API_KEY", "from-env")

	cfg, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	p, ok := cfg.Providers["anthropic"]
	if !ok {
		t.Fatal("anthropic provider not created from env")
	}
	if p.APIKey != "from-env" {
		t.Errorf("api_key = %q", p.APIKey)
	}
	if p.Timeout != 60*time.Second {
		t.Errorf("timeout = %v, want default 60s", p.Timeout)
	}
}
