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
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "org.example.badgecounter", cfg.AppID)
	assert.Equal(t, ProviderMemory, cfg.Provider)
	assert.Empty(t, cfg.StateFile)
	assert.Equal(t, 0, cfg.InitialCount)
	assert.Equal(t, 1500*time.Millisecond, cfg.AutoIncrementInterval)
	assert.Equal(t, 300*time.Millisecond, cfg.AnimationDuration)
	assert.False(t, cfg.Sound)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.Lang)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badgecounter.yml")
	data := []byte("initial_count: 12\nauto_increment_interval: 2s\nlang: pt\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.InitialCount)
	assert.Equal(t, 2*time.Second, cfg.AutoIncrementInterval)
	assert.Equal(t, "pt", cfg.Lang)
	// untouched keys keep their defaults
	assert.Equal(t, ProviderMemory, cfg.Provider)
	assert.Equal(t, 300*time.Millisecond, cfg.AnimationDuration)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"), nil)
	assert.Error(t, err)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("BADGECOUNTER_PROVIDER", "file")
	t.Setenv("BADGECOUNTER_STATE_FILE", "/tmp/badges.yml")
	t.Setenv("BADGECOUNTER_INITIAL_COUNT", "5")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, ProviderFile, cfg.Provider)
	assert.Equal(t, "/tmp/badges.yml", cfg.StateFile)
	assert.Equal(t, 5, cfg.InitialCount)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BADGECOUNTER_DEBUG", "false")

	cfg, err := Load("", map[string]any{
		"debug":      true,
		"provider":   ProviderFile,
		"state_file": "badges.yml",
	})
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, ProviderFile, cfg.Provider)
	assert.Equal(t, "badges.yml", cfg.StateFile)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
	}{
		{"unknown provider", map[string]any{"provider": "cloud"}},
		{"file provider without state file", map[string]any{"provider": ProviderFile}},
		{"negative initial count", map[string]any{"initial_count": -1}},
		{"zero interval", map[string]any{"auto_increment_interval": "0s"}},
		{"unsupported language", map[string]any{"lang": "de"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("", tt.overrides)
			assert.Error(t, err)
		})
	}
}
