package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("FUNCTIONS_CUSTOMHANDLER_PORT", "")

	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, "127.0.0.1:3000", c.ListenAddr())
	assert.Empty(t, c.AdminAddr())
	assert.Equal(t, int64(20971520), c.MaxUploadBytes)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
port: 8081
admin_port: 9091
max_upload_bytes: 1024
log_level: DEBUG
log_format: json
shutdown_timeout: 3s
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8081, c.Port)
	assert.Equal(t, "127.0.0.1:9091", c.AdminAddr())
	assert.Equal(t, int64(1024), c.MaxUploadBytes)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "json", c.LogFormat)
	assert.Equal(t, 3*time.Second, c.ShutdownTimeout)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, "port: 8081\nmax_upload_bytes: 1024\n")
	t.Setenv("FUNCTIONS_CUSTOMHANDLER_PORT", "7071")
	t.Setenv("MSG2JSON_MAX_UPLOAD_BYTES", "2048")
	t.Setenv("MSG2JSON_SHUTDOWN_TIMEOUT", "500ms")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7071", c.ListenAddr())
	assert.Equal(t, int64(2048), c.MaxUploadBytes)
	assert.Equal(t, 500*time.Millisecond, c.ShutdownTimeout)
}

func TestLoadPathFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "port: 4000\n"))

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4000, c.Port)
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("FUNCTIONS_CUSTOMHANDLER_PORT", "not-a-port")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "port: [1, 2"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero port", func(c *Config) { c.Port = 0 }},
		{"port too large", func(c *Config) { c.Port = 70000 }},
		{"negative admin port", func(c *Config) { c.AdminPort = -1 }},
		{"admin port clashes", func(c *Config) { c.AdminPort = c.Port }},
		{"zero limit", func(c *Config) { c.MaxUploadBytes = 0 }},
		{"zero shutdown", func(c *Config) { c.ShutdownTimeout = 0 }},
		{"unknown level", func(c *Config) { c.LogLevel = "verbose" }},
		{"unknown format", func(c *Config) { c.LogFormat = "xml" }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
