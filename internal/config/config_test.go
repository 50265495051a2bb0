package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.7, cfg.Pipeline.GateThreshold)
	assert.Equal(t, 8000, cfg.Pipeline.ValidatorTextLimit)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.True(t, cfg.LLMEnabled())
	assert.False(t, cfg.RecorderEnabled())
	assert.Equal(t, "*", cfg.Server.AllowedOrigin)
}

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.LLM.Model = "gemini-2.5-pro"
	cfg.Jobs.Workers = 8

	path := filepath.Join(t.TempDir(), "financeai.yaml")
	require.NoError(t, Save(path, cfg))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "financeai.yaml")
	content := "llm:\n  provider: none\n  timeout: 5s\njobs:\n  workers: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "none", cfg.LLM.Provider)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 2, cfg.Jobs.Workers)
	assert.Equal(t, 100, cfg.Jobs.QueueSize)
	assert.False(t, cfg.LLMEnabled())
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "financeai.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9000\"\n"), 0o644))

	t.Setenv(ConfigPathEnv, path)
	t.Setenv("PORT", "9100")
	t.Setenv("LLM_TIMEOUT", "30s")
	t.Setenv("QUALITY_GATE", "0.8")
	t.Setenv("GCP_PROJECT", "my-project")
	t.Setenv("CORS_ORIGIN", "https://app.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 0.8, cfg.Pipeline.GateThreshold)
	assert.True(t, cfg.RecorderEnabled())
	assert.Equal(t, "https://app.example.com", cfg.Server.AllowedOrigin)
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"WORKERS", "many"},
		{"LLM_TIMEOUT", "soon"},
		{"QUALITY_GATE", "high"},
		{"QUALITY_GATE", "1.5"},
		{"LLM_PROVIDER", "openai"},
		{"WORKERS", "0"},
		{"JOB_RETENTION", "-1h"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(ConfigPathEnv, "")
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
