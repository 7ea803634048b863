package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noFiles(t *testing.T) Options {
	t.Helper()
	dir := t.TempDir()
	return Options{
		ConfigFile: filepath.Join(dir, "missing.yaml"),
		EnvFile:    filepath.Join(dir, "missing.env"),
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := LoadWith(noFiles(t))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.HTTPServer.Port)
	assert.Equal(t, ":8000", cfg.Addr())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5*time.Second, cfg.HTTPServer.Timeout.ReadHeader)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_PortFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := LoadWith(noFiles(t))
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPServer.Port)
}

func TestLoad_PrefixedEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PRODUCT_LOG_LEVEL", "debug")
	t.Setenv("PRODUCT_SERVER_TIMEOUT_SHUTDOWN", "3s")
	t.Setenv("PRODUCT_METRICS_ENABLED", "true")
	t.Setenv("PRODUCT_METRICS_TOKEN", "s3cret")

	cfg, err := LoadWith(noFiles(t))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3*time.Second, cfg.HTTPServer.Timeout.Shutdown)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "s3cret", cfg.Metrics.Token)
	assert.NotContains(t, cfg.String(), "s3cret")
}

func TestLoad_FilePrecedence(t *testing.T) {
	t.Setenv("PORT", "")
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("server:\n  port: 8100\nlog:\n  level: warn\n"), 0o600))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("PORT=8200\n"), 0o600))

	cfg, err := LoadWith(Options{ConfigFile: yamlPath, EnvFile: envPath})
	require.NoError(t, err)
	assert.Equal(t, 8200, cfg.HTTPServer.Port)
	assert.Equal(t, "warn", cfg.Log.Level)

	t.Setenv("PORT", "8300")
	cfg, err = LoadWith(Options{ConfigFile: yamlPath, EnvFile: envPath})
	require.NoError(t, err)
	assert.Equal(t, 8300, cfg.HTTPServer.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "port out of range", key: "PORT", val: "70000"},
		{name: "bad log level", key: "PRODUCT_LOG_LEVEL", val: "loud"},
		{name: "metrics without token", key: "PRODUCT_METRICS_ENABLED", val: "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.key != "PORT" {
				t.Setenv("PORT", "")
			}
			t.Setenv(tt.key, tt.val)

			_, err := LoadWith(noFiles(t))
			require.Error(t, err)
		})
	}
}

func TestKeyTransformer(t *testing.T) {
	assert.Equal(t, "server.port", keyTransformer("PORT"))
	assert.Equal(t, "log.level", keyTransformer("PRODUCT_LOG_LEVEL"))
	assert.Equal(t, "", keyTransformer("HOME"))
}
