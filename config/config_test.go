package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eunice-ai/eunice/cost"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "anthropic", cfg.ResearchManager.Provider)
	assert.Equal(t, cost.DefaultThresholds(), cfg.CostThresholds)
	assert.Equal(t, 3, cfg.Agents.MaxConcurrentTasks)
	assert.False(t, cfg.AbortOnEmergency)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, cost.DefaultThresholds(), cfg.CostThresholds)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eunice.yaml")
	doc := `
research_manager:
  provider: openai
  model: gpt-4o-mini
cost_thresholds:
  session_limit: 2.5
  daily_limit: 20
abort_on_emergency: true
agents:
  max_concurrent_tasks: 5
ai_providers:
  openai:
    models:
      gpt-4o-mini:
        input: 0.0002
        output: 0.0008
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.ResearchManager.Provider)
	assert.Equal(t, 2.5, cfg.CostThresholds.SessionLimit)
	assert.Equal(t, 20.0, cfg.CostThresholds.DailyLimit)
	// Unset thresholds are filled from defaults.
	assert.Equal(t, cost.DefaultThresholds().EmergencyStop, cfg.CostThresholds.EmergencyStop)
	assert.True(t, cfg.AbortOnEmergency)
	assert.Equal(t, 5, cfg.Agents.MaxConcurrentTasks)

	rate, ok := cfg.RateTable().Lookup("openai", "gpt-4o-mini")
	require.True(t, ok)
	assert.Equal(t, 0.0002, rate.InputPer1K)
	assert.Equal(t, 0.0008, rate.OutputPer1K)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agents: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("EUNICE_PROVIDER", "openai")
	t.Setenv("EUNICE_MODEL", "gpt-4o")
	t.Setenv("EUNICE_DAILY_LIMIT", "7.5")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.ResearchManager.Provider)
	assert.Equal(t, "gpt-4o", cfg.ResearchManager.Model)
	assert.Equal(t, 7.5, cfg.CostThresholds.DailyLimit)
}

func TestRateTableKeepsDefaults(t *testing.T) {
	cfg := Default()
	table := cfg.RateTable()

	_, ok := table.Lookup("openai", "gpt-4o")
	assert.True(t, ok)
}
