package config

import (
	"os"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads CI and ENV. Anything unrecognised is development.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	switch Environment(os.Getenv("ENV")) {
	case Production:
		return Production
	case Test:
		return Test
	default:
		return Development
	}
}

// UsesDotEnv reports whether a local .env file may overlay the process environment.
func (e Environment) UsesDotEnv() bool {
	return e == Development || e == Test
}

// SecureCookies reports whether session and CSRF cookies must carry the Secure flag.
func (e Environment) SecureCookies() bool {
	return e == Production
}

// DefaultLogFormat is console output for local work and JSON everywhere else.
func (e Environment) DefaultLogFormat() string {
	if e == Development || e == Test {
		return "console"
	}
	return "json"
}

// GinMode maps the environment onto gin's debug/test/release modes.
func (e Environment) GinMode() string {
	switch e {
	case Production:
		return "release"
	case Test, CI:
		return "test"
	default:
		return "debug"
	}
}

// IsProduction returns true if the current environment is production
func IsProduction() bool {
	return GetEnvironment() == Production
}
