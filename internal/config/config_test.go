package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{EnvValidatorURL, EnvAddr, EnvRedisAddr, EnvLogLevel, EnvNodeTypes, EnvSubmitTimeout, EnvSingleFlight} {
		t.Setenv(k, "")
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.ValidatorURL)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.SubmitTimeout)
	assert.False(t, cfg.SingleFlight)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv(EnvValidatorURL, "http://validator:9000")
	t.Setenv(EnvRedisDB, "2")
	t.Setenv(EnvSubmitTimeout, "5s")
	t.Setenv(EnvSingleFlight, "true")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "http://validator:9000", cfg.ValidatorURL)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 5*time.Second, cfg.SubmitTimeout)
	assert.True(t, cfg.SingleFlight)
}

func TestLoad_DotEnvFile(t *testing.T) {
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvRedisAddr, "")
	// godotenv.Load never overrides variables that are set; clear what the file provides.
	require.NoError(t, os.Unsetenv(EnvAddr))
	require.NoError(t, os.Unsetenv(EnvRedisAddr))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PIPELINE_ADDR=:9999\nPIPELINE_REDIS_ADDR=localhost:6379\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvValidatorURL, "localhost"},
		{EnvLogLevel, "chatty"},
		{EnvSubmitTimeout, "-1s"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
