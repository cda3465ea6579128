package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	return dir
}

func TestLoadReadsFileAndDefaults(t *testing.T) {
	dir := writeConfig(t, `
google:
  api:
    key: file-key
server:
  port: 9090
`)

	cfg, err := Load(New(dir))
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.APIKey)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "/api/", cfg.Prefix)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, "localhost:9090", cfg.Addr())
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	dir := writeConfig(t, "google:\n  api:\n    key: file-key\n")
	t.Setenv("PLACESMAP_GOOGLE_API_KEY", "env-key")

	cfg, err := Load(New(dir))
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.APIKey)
}

func TestLoadWithoutFileUsesEnvironment(t *testing.T) {
	t.Setenv("PLACESMAP_GOOGLE_API_KEY", "env-key")

	cfg, err := Load(New(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.APIKey)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing key", "server:\n  port: 8080\n"},
		{"blank key", "google:\n  api:\n    key: '   '\n"},
		{"port out of range", "google:\n  api:\n    key: k\nserver:\n  port: 70000\n"},
		{"prefix without slash", "google:\n  api:\n    key: k\nserver:\n  prefix: api\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(New(writeConfig(t, tt.content)))
			assert.Error(t, err)
		})
	}
}

func TestLoadReportsMalformedFile(t *testing.T) {
	dir := writeConfig(t, "google: [unclosed\n")
	_, err := Load(New(dir))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}
