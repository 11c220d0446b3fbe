package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/todopilot/pilot/pkg/slogx"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here

	for _, key := range []string{
		"ENV", "PORT", "JWT_SECRET", "PUBLIC_BASE_URL", "CLIENT_URL", "DATABASE_DRIVER",
		"CORS_ALLOWED_ORIGINS", "UNVERIFIED_RETENTION", "MAX_UPLOAD_BYTES",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, 5000, cfg.Port)
	require.Equal(t, "todo-pilot", cfg.TokenIssuer)
	require.Equal(t, "http://localhost:3000", cfg.PublicBaseURL)
	require.Equal(t, "sqlite", cfg.DatabaseDriver)
	require.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	require.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	require.Equal(t, 30*24*time.Hour, cfg.UnverifiedRetention)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("PORT", "8081")
	t.Setenv("PUBLIC_BASE_URL", "")
	t.Setenv("CLIENT_URL", "https://pilot.example.com")
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("HOUSEKEEPING_INTERVAL", "15")
	t.Setenv("UNVERIFIED_RETENTION", "0s")

	cfg := LoadConfig()
	require.Equal(t, 8081, cfg.Port)
	require.Equal(t, "https://pilot.example.com", cfg.PublicBaseURL)
	require.Equal(t, "postgres", cfg.DatabaseDriver)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	require.Equal(t, 15*time.Minute, cfg.HousekeepingInterval)
	require.Zero(t, cfg.UnverifiedRetention)
}

func TestConfigValidate(t *testing.T) {
	base := Config{Env: "dev", Port: 5000, DatabaseDriver: "sqlite", MaxUploadBytes: 1}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"dev without secret", func(c *Config) {}, ""},
		{"prod without secret", func(c *Config) { c.Env = "prod" }, "JWT_SECRET"},
		{"postgres without url", func(c *Config) { c.DatabaseDriver = "postgres" }, "DATABASE_URL"},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mongo" }, "DATABASE_DRIVER"},
		{"bad port", func(c *Config) { c.Port = 0 }, "PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestInitSigningKey(t *testing.T) {
	logger := slogx.Discard()

	t.Run("random secret in dev", func(t *testing.T) {
		key, err := InitSigningKey(Config{Env: "dev", TokenIssuer: "todo-pilot"}, logger)
		require.NoError(t, err)
		require.NotNil(t, key)
	})

	t.Run("required in prod", func(t *testing.T) {
		_, err := InitSigningKey(Config{Env: "prod", TokenIssuer: "todo-pilot"}, logger)
		require.Error(t, err)
	})

	t.Run("short secret rejected", func(t *testing.T) {
		_, err := InitSigningKey(Config{Env: "prod", JWTSecret: "short", TokenIssuer: "todo-pilot"}, logger)
		require.Error(t, err)
	})
}
