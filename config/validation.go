package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

// Has reports whether a field failed validation.
func (v ValidationErrors) Has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}

var (
	logLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	logFormats = map[string]bool{"json": true, "console": true}
)

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if cfg.ServerPort == "" {
		add("server_port", "is required")
	}
	if cfg.JWTSecret == "" {
		add("jwt_secret", "is required")
	} else if cfg.Environment == Production && len(cfg.JWTSecret) < 32 {
		add("jwt_secret", "must be at least 32 characters in production")
	}

	switch cfg.DBDriver {
	case "postgres":
		for field, val := range map[string]string{
			"db_host":     cfg.DBHost,
			"db_port":     cfg.DBPort,
			"db_user":     cfg.DBUser,
			"db_name":     cfg.DBName,
			"db_password": cfg.DBPassword,
		} {
			if val == "" {
				add(field, "is required for the postgres driver")
			}
		}
	case "sqlite":
		if cfg.Environment == Production {
			add("db_driver", "sqlite is not supported in production")
		}
		if cfg.SQLitePath == "" {
			add("sqlite_path", "is required for the sqlite driver")
		}
	default:
		add("db_driver", fmt.Sprintf("unsupported driver %q", cfg.DBDriver))
	}

	if cfg.Environment == Production {
		if !cfg.RedisEnabled() {
			add("redis_url", "is required in production")
		}
		if len(cfg.CSRFKey) != 32 {
			add("csrf_key", "must be exactly 32 bytes in production")
		}
	}

	if cfg.SessionTTL <= 0 {
		add("session_ttl", "must be positive")
	}
	if cfg.DraftTTL <= 0 {
		add("draft_ttl", "must be positive")
	}
	if cfg.SubmitDelay < 0 {
		add("submit_delay", "must not be negative")
	}
	if cfg.RateLimitRequests <= 0 || cfg.RateLimitWindow <= 0 {
		add("rate_limit", "window and request count must be positive")
	}
	if !logLevels[cfg.LogLevel] {
		add("log_level", fmt.Sprintf("unknown level %q", cfg.LogLevel))
	}
	if !logFormats[cfg.LogFormat] {
		add("log_format", fmt.Sprintf("unknown format %q", cfg.LogFormat))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
