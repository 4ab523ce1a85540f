package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GO_ENV", "CONFIG_FILE", "PORT", "STORE_DRIVER", "DATABASE_URL", "SQLITE_PATH",
		"MONGO_URI", "MONGO_DATABASE", "JWT_SECRET", "JWT_EXPIRY", "CONTEXT_TIMEOUT",
		"SESSION_IDLE_TIMEOUT", "SESSION_SWEEP_SCHEDULE", "CORS_ALLOWED_ORIGINS",
		"EMAIL_PROVIDER", "EMAIL_FROM_ADDRESS", "EMAIL_FROM_NAME", "AWS_REGION",
		"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
	} {
		t.Setenv(key, "")
	}
	// godotenv looks for .env in the working directory.
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 10*time.Second, cfg.ContextTimeout)
	assert.Equal(t, "@every 5m", cfg.SessionSweepSchedule)
	assert.Equal(t, "noop", cfg.Email.Provider)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/events.db")
	t.Setenv("JWT_EXPIRY", "1h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, https://events.example.com/ ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/events.db", cfg.SQLitePath)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.Equal(t, []string{"http://localhost:5173", "https://events.example.com/"}, cfg.CORSAllowedOrigins)
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"port: \"7070\"",
		"store_driver: mongo",
		"mongo_database: events",
		"context_timeout: 3s",
		"email:",
		"  provider: noop",
		"  from_name: Events",
	}, "\n")), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "6060")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "6060", cfg.Port, "environment wins over file")
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "events", cfg.MongoDatabase)
	assert.Equal(t, 3*time.Second, cfg.ContextTimeout)
	assert.Equal(t, "Events", cfg.Email.FromName)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown driver", map[string]string{"STORE_DRIVER": "dynamo"}, "unknown STORE_DRIVER"},
		{"production without secret", map[string]string{"GO_ENV": "production"}, "JWT_SECRET"},
		{"ses without sender", map[string]string{"EMAIL_PROVIDER": "ses"}, "EMAIL_FROM_ADDRESS"},
		{"missing config file", map[string]string{"CONFIG_FILE": "/nonexistent/config.yaml"}, "load config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "production", "warn").Info("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, "production", "debug").Debug("shown", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	newLogger(&buf, "development", "").Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
