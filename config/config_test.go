package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_USER", "shul")
	t.Setenv("DB_NAME", "shul")
	t.Setenv("JWT_SECRET_KEY", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 4*1024*1024, cfg.BodyLimitBytes)
	assert.Equal(t, 60, cfg.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Contains(t, cfg.DSN(), "dbname=shul")
	assert.Contains(t, cfg.DSN(), "port=5432")
}

func TestLoadFallsBackToJWTSecret(t *testing.T) {
	t.Setenv("DB_USER", "shul")
	t.Setenv("DB_NAME", "shul")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("JWT_SECRET", "legacy")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.JWTSecret)
}

func TestLoadValidation(t *testing.T) {
	testCases := []struct {
		name          string
		env           map[string]string
		expectedError string
	}{
		{
			name:          "missing_db_user",
			env:           map[string]string{"DB_USER": ""},
			expectedError: "DB_USER is required",
		},
		{
			name:          "missing_jwt_secret",
			env:           map[string]string{"JWT_SECRET_KEY": "", "JWT_SECRET": ""},
			expectedError: "JWT secret not configured",
		},
		{
			name:          "short_secret_key",
			env:           map[string]string{"SECRET_KEY": "abcd"},
			expectedError: "SECRET_KEY must be 32 bytes",
		},
		{
			name:          "worker_timeout_exceeds_interval",
			env:           map[string]string{"WORKER_INTERVAL_SECONDS": "10", "WORKER_TIMEOUT_SECONDS": "30"},
			expectedError: "WORKER_TIMEOUT_SECONDS",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expectedError)
		})
	}
}
