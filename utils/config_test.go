package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigRoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.json")

	original := DefaultConfig()
	original.Backend.BaseURL = "http://example.com:9000"
	original.UI.Theme = "dark"

	require.NoError(t, SaveConfig(configPath, original))

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "http://example.com:9000", loaded.Backend.BaseURL)
	assert.Equal(t, "dark", loaded.UI.Theme)
	assert.Equal(t, original.Data.MaxHistory, loaded.Data.MaxHistory)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadConfigExpandsDBPath(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")

	config := DefaultConfig()
	config.Data.DBPath = "./data/chat.db"
	require.NoError(t, SaveConfig(configPath, config))

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(loaded.Data.DBPath))
}

func TestApplyEnvOverrides(t *testing.T) {
	config := DefaultConfig()

	t.Setenv("CHAT_BACKEND_URL", "http://override:8080")
	ApplyEnvOverrides(config)
	assert.Equal(t, "http://override:8080", config.Backend.BaseURL)
}

func TestApplyEnvOverridesNoEnv(t *testing.T) {
	config := DefaultConfig()
	baseURL := config.Backend.BaseURL

	t.Setenv("CHAT_BACKEND_URL", "")
	ApplyEnvOverrides(config)
	assert.Equal(t, baseURL, config.Backend.BaseURL)
}

func TestDefaultConfigSane(t *testing.T) {
	config := DefaultConfig()
	assert.NotEmpty(t, config.Backend.BaseURL)
	assert.Greater(t, config.UI.FontSize, 0)
	assert.Greater(t, config.Data.MaxHistory, 0)
}
