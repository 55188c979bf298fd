package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSecrets(t *testing.T, secrets map[string]string) {
	t.Helper()
	dir := t.TempDir()
	for name, value := range secrets {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(value+"\n"), 0o600))
	}
	t.Setenv("SECRETS_DIR", dir)
}

func TestLoadConfig_DevelopmentSecretsOverEnv(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	t.Setenv("DOTENV_PATH", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("DB_HOST", "env-host")
	t.Setenv("DB_NAME", "from_env")
	writeSecrets(t, map[string]string{
		"db_host":     "secret-host",
		"db_user":     "postgres",
		"db_password": "postpass",
		"jwt_secret":  "test-jwt-secret",
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, "secret-host", cfg.DBHost)
	assert.Equal(t, "from_env", cfg.DBName)
	assert.Equal(t, "postpass", cfg.DBPassword)
	assert.Equal(t, "test-jwt-secret", cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.Duration(0), cfg.SubmitDelay)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadConfig_DotEnvOverlay(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "development")
	writeSecrets(t, map[string]string{})

	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte(
		"DB_DRIVER=sqlite\nSQLITE_PATH=dev.db\nJWT_SECRET=dotenv-secret\nSUBMIT_DELAY=1500ms\nALLOWED_ORIGINS=http://a.test, http://b.test\n",
	), 0o600))
	t.Setenv("DOTENV_PATH", dotenv)
	for _, k := range []string{"DB_DRIVER", "SQLITE_PATH", "JWT_SECRET", "SUBMIT_DELAY", "ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "dev.db", cfg.SQLitePath)
	assert.Equal(t, 1500*time.Millisecond, cfg.SubmitDelay)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoadConfig_CIPrefersTestSecrets(t *testing.T) {
	t.Setenv("CI", "true")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "plain")
	t.Setenv("TEST_DB_PASSWORD", "from-ci-secret")
	t.Setenv("TEST_JWT_SECRET", "ci-jwt")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, CI, cfg.Environment)
	assert.Equal(t, "from-ci-secret", cfg.DBPassword)
	assert.Equal(t, "ci-jwt", cfg.JWTSecret)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfig_BadDuration(t *testing.T) {
	t.Setenv("CI", "true")
	t.Setenv("SESSION_TTL", "forever")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session_ttl")
}

func validConfig() *Config {
	return &Config{
		Environment:       Development,
		ServerPort:        "8080",
		JWTSecret:         "secret",
		DBDriver:          "sqlite",
		SQLitePath:        ":memory:",
		SessionTTL:        time.Hour,
		DraftTTL:          time.Hour,
		RateLimitWindow:   time.Minute,
		RateLimitRequests: 10,
		LogLevel:          "info",
		LogFormat:         "json",
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		fields []string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:   "missing jwt secret",
			mutate: func(c *Config) { c.JWTSecret = "" },
			fields: []string{"jwt_secret"},
		},
		{
			name:   "postgres without connection details",
			mutate: func(c *Config) { c.DBDriver = "postgres" },
			fields: []string{"db_host", "db_user", "db_password"},
		},
		{
			name:   "unknown driver",
			mutate: func(c *Config) { c.DBDriver = "mysql" },
			fields: []string{"db_driver"},
		},
		{
			name: "production requirements",
			mutate: func(c *Config) {
				c.Environment = Production
				c.CSRFKey = "short"
			},
			fields: []string{"jwt_secret", "db_driver", "redis_url", "csrf_key"},
		},
		{
			name: "negative delay and bad logging",
			mutate: func(c *Config) {
				c.SubmitDelay = -time.Second
				c.LogLevel = "trace"
				c.LogFormat = "xml"
			},
			fields: []string{"submit_delay", "log_level", "log_format"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			for _, f := range tt.fields {
				assert.True(t, verrs.Has(f), "expected %s to fail validation, got %v", f, verrs)
			}
		})
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	assert.True(t, Production.SecureCookies())
	assert.False(t, Development.SecureCookies())
	assert.Equal(t, "release", Production.GinMode())
	assert.Equal(t, "test", CI.GinMode())
	assert.True(t, Test.UsesDotEnv())
	assert.False(t, Production.UsesDotEnv())
}
