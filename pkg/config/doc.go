// Package config defines the Sentinel configuration model and its loading
// pipeline.
//
// Configuration is read from a YAML file, filled in with defaults, then
// optionally overridden by SENTINEL_* environment variables, and finally
// validated. Environment variables always win over file values.
//
// The zero Config is not usable; obtain one through Load, LoadWithEnv, or
// Default.
package config
