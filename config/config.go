package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort     string
	ServerHost     string
	AllowedOrigins []string
	CSRFKey        string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration. Leaving both RedisURL and RedisHost empty runs the
	// session, draft and rate-limit state in process memory.
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Sessions
	JWTSecret  string
	SessionTTL time.Duration
	DraftTTL   time.Duration

	// Plan assessment
	SubmitDelay time.Duration

	// Plan exports
	S3Bucket        string
	S3Region        string
	ExportURLExpiry time.Duration

	// Rate limiting
	RateLimitWindow   time.Duration
	RateLimitRequests int

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisEnabled reports whether a Redis server was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// ExportsEnabled reports whether plan exports to S3 are configured.
func (c *Config) ExportsEnabled() bool {
	return c.S3Bucket != ""
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// lookup resolves a lower_snake key such as "db_host" to a raw value.
type lookup func(key string) string

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env.UsesDotEnv() {
		if err := loadDotEnv(); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	var src lookup
	switch env {
	case CI:
		src = ciLookup
	case Development, Test:
		src = secretThenEnv
	case Production:
		src = readSecret
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	cfg, err := build(env, src)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func build(env Environment, src lookup) (*Config, error) {
	get := func(key, def string) string {
		if v := src(key); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Environment:   env,
		ServerPort:    get("server_port", "8080"),
		ServerHost:    get("server_host", "0.0.0.0"),
		CSRFKey:       src("csrf_key"),
		DBDriver:      get("db_driver", "postgres"),
		DBHost:        src("db_host"),
		DBPort:        get("db_port", "5432"),
		DBUser:        src("db_user"),
		DBPassword:    src("db_password"),
		DBName:        get("db_name", "nutriplan"),
		DBSSLMode:     get("db_ssl_mode", "disable"),
		SQLitePath:    get("sqlite_path", "nutriplan.db"),
		RedisHost:     src("redis_host"),
		RedisPort:     get("redis_port", "6379"),
		RedisPassword: src("redis_password"),
		RedisURL:      src("redis_url"),
		JWTSecret:     src("jwt_secret"),
		S3Bucket:      src("s3_bucket_name"),
		S3Region:      get("aws_region", "us-east-1"),
		LogLevel:      get("log_level", "info"),
		LogFormat:     get("log_format", env.DefaultLogFormat()),
	}

	if origins := src("allowed_origins"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{"http://localhost:5173"}
	}

	var err error
	if cfg.RedisDB, err = atoi(get("redis_db", "0")); err != nil {
		return nil, fmt.Errorf("redis_db: %w", err)
	}
	if cfg.RateLimitRequests, err = atoi(get("rate_limit_requests", "20")); err != nil {
		return nil, fmt.Errorf("rate_limit_requests: %w", err)
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"session_ttl", "24h", &cfg.SessionTTL},
		{"draft_ttl", "24h", &cfg.DraftTTL},
		{"submit_delay", "0s", &cfg.SubmitDelay},
		{"export_url_expiry", "15m", &cfg.ExportURLExpiry},
		{"rate_limit_window", "1m", &cfg.RateLimitWindow},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(get(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = v
	}

	return cfg, nil
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// loadDotEnv overlays ./.env (or DOTENV_PATH) onto the process environment.
// Existing variables win; a missing file is not an error.
func loadDotEnv() error {
	path := os.Getenv("DOTENV_PATH")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func envName(key string) string {
	return strings.ToUpper(key)
}

// ciLookup reads only the environment. Sensitive values prefer the TEST_
// prefixed variables that the CI workflow injects from its secret store.
func ciLookup(key string) string {
	switch key {
	case "db_password", "jwt_secret", "redis_password", "redis_url":
		if v := os.Getenv("TEST_" + envName(key)); v != "" {
			return v
		}
	}
	return os.Getenv(envName(key))
}

func secretThenEnv(key string) string {
	if v := readSecret(key); v != "" {
		return v
	}
	return os.Getenv(envName(key))
}

func secretsDir() string {
	if dir := os.Getenv("SECRETS_DIR"); dir != "" {
		return dir
	}
	return "/run/secrets"
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	data, err := os.ReadFile(filepath.Join(secretsDir(), name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
