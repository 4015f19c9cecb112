package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// FieldError is a validation error for one configuration field.
type FieldError struct {
	// Field is the dotted path to the field (e.g. "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every validation error found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate checks the entire configuration and returns a ValidationError
// listing every failed rule, or nil when the configuration is valid.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateProviders(cfg.Providers)...)
	errs = append(errs, validatePolicy(&cfg.Policy)...)
	errs = append(errs, validateEvaluators(&cfg.Evaluators)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(s *ServerConfig) []FieldError {
	var errs []FieldError

	if s.ListenAddress == "" {
		errs = append(errs, FieldError{"server.listen_address", "must not be empty"})
	} else if !strings.Contains(s.ListenAddress, ":") {
		errs = append(errs, FieldError{"server.listen_address", "must be in host:port form"})
	}
	if s.ReadTimeout < 0 {
		errs = append(errs, FieldError{"server.read_timeout", "must not be negative"})
	}
	if s.WriteTimeout < 0 {
		errs = append(errs, FieldError{"server.write_timeout", "must not be negative"})
	}
	if s.ShutdownTimeout <= 0 {
		errs = append(errs, FieldError{"server.shutdown_timeout", "must be positive"})
	}
	if s.MaxHeaderBytes <= 0 {
		errs = append(errs, FieldError{"server.max_header_bytes", "must be positive"})
	}
	return errs
}

func validateProviders(providers map[string]ProviderConfig) []FieldError {
	var errs []FieldError

	defaults := 0
	for name, p := range providers {
		field := "providers." + name
		if p.BaseURL != "" {
			if u, err := url.Parse(p.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
				errs = append(errs, FieldError{field + ".base_url", "must be an absolute URL"})
			}
		}
		if p.Timeout < 0 {
			errs = append(errs, FieldError{field + ".timeout", "must not be negative"})
		}
		if p.Default {
			defaults++
		}
	}
	if defaults > 1 {
		errs = append(errs, FieldError{"providers", "at most one provider may set default: true"})
	}
	return errs
}

func validatePolicy(p *PolicyConfig) []FieldError {
	var errs []FieldError

	switch p.Store {
	case StoreMemory, StoreSQLite, StoreFile:
	default:
		errs = append(errs, FieldError{"policy.store",
			fmt.Sprintf("must be one of %q, %q, %q", StoreMemory, StoreSQLite, StoreFile)})
	}
	if p.Store == StoreSQLite && p.SQLitePath == "" {
		errs = append(errs, FieldError{"policy.sqlite_path", "required when store is sqlite"})
	}
	if p.Store == StoreFile && p.FilePath == "" {
		errs = append(errs, FieldError{"policy.file_path", "required when store is file"})
	}
	return errs
}

func validateEvaluators(e *EvaluatorsConfig) []FieldError {
	var errs []FieldError

	for i, pattern := range e.Keyword.Patterns {
		if _, err := regexp.Compile("(?i)" + pattern); err != nil {
			errs = append(errs, FieldError{
				fmt.Sprintf("evaluators.keyword.patterns[%d]", i),
				fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}
	return errs
}

func validateTelemetry(t *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch t.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level",
			"must be one of debug, info, warn, error"})
	}
	switch t.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format", "must be json or text"})
	}
	if t.Metrics.Enabled && !strings.HasPrefix(t.Metrics.Path, "/") {
		errs = append(errs, FieldError{"telemetry.metrics.path", "must start with /"})
	}
	return errs
}
