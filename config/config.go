// Package config loads Eunice configuration from a YAML file with optional
// .env overlays. All settings have working defaults so a zero-config run is
// always possible.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/eunice-ai/eunice/cost"
)

// ProviderConfig holds the per-model price entries for one AI provider.
type ProviderConfig struct {
	Models map[string]cost.Rate `yaml:"models"`
}

// ResearchManager names the default pricing pair used when a task spans
// multiple agents.
type ResearchManager struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// AgentSettings carries the lifecycle knobs shared by all agents.
type AgentSettings struct {
	MaxConcurrentTasks int `yaml:"max_concurrent_tasks"`
}

// LogSettings configures the structured logger.
type LogSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the root configuration document.
type Config struct {
	AIProviders     map[string]ProviderConfig `yaml:"ai_providers"`
	ResearchManager ResearchManager           `yaml:"research_manager"`
	CostThresholds  cost.Thresholds           `yaml:"cost_thresholds"`
	Agents          AgentSettings             `yaml:"agents"`
	Logging         LogSettings               `yaml:"logging"`
	// AbortOnEmergency engages the hard emergency stop instead of the
	// default log-only behavior when the daily ceiling is breached.
	AbortOnEmergency bool `yaml:"abort_on_emergency"`
	// LedgerPath is the SQLite file for finalized usage records; empty
	// disables persistence.
	LedgerPath string `yaml:"ledger_path"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		AIProviders:     map[string]ProviderConfig{},
		ResearchManager: ResearchManager{Provider: "anthropic", Model: "claude-sonnet-4-20250514"},
		CostThresholds:  cost.DefaultThresholds(),
		Agents:          AgentSettings{MaxConcurrentTasks: 3},
		Logging:         LogSettings{Level: "info", Format: "json"},
	}
}

// Load reads the YAML file at path, overlays values from a .env file and the
// process environment, and fills gaps with defaults. A missing file is not
// an error; you get defaults plus environment.
func Load(path string) (*Config, error) {
	// Best effort; absence of a .env file is the normal case.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	normalize(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("EUNICE_PROVIDER"); v != "" {
		cfg.ResearchManager.Provider = v
	}
	if v := os.Getenv("EUNICE_MODEL"); v != "" {
		cfg.ResearchManager.Model = v
	}
	if v := os.Getenv("EUNICE_LEDGER_PATH"); v != "" {
		cfg.LedgerPath = v
	}
	if v := os.Getenv("EUNICE_DAILY_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.CostThresholds.DailyLimit = f
		}
	}
	if v := os.Getenv("EUNICE_SESSION_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.CostThresholds.SessionLimit = f
		}
	}
}

func normalize(cfg *Config) {
	def := cost.DefaultThresholds()
	if cfg.CostThresholds.SessionWarning <= 0 {
		cfg.CostThresholds.SessionWarning = def.SessionWarning
	}
	if cfg.CostThresholds.SessionLimit <= 0 {
		cfg.CostThresholds.SessionLimit = def.SessionLimit
	}
	if cfg.CostThresholds.DailyWarning <= 0 {
		cfg.CostThresholds.DailyWarning = def.DailyWarning
	}
	if cfg.CostThresholds.DailyLimit <= 0 {
		cfg.CostThresholds.DailyLimit = def.DailyLimit
	}
	if cfg.CostThresholds.EmergencyStop <= 0 {
		cfg.CostThresholds.EmergencyStop = def.EmergencyStop
	}
	if cfg.Agents.MaxConcurrentTasks <= 0 {
		cfg.Agents.MaxConcurrentTasks = 3
	}
}

// RateTable merges the configured provider prices over the built-in table.
// Configured pairs win; everything else keeps its default rate.
func (c *Config) RateTable() cost.RateTable {
	table := cost.DefaultRateTable()
	for provider, pc := range c.AIProviders {
		if _, ok := table[provider]; !ok {
			table[provider] = map[string]cost.Rate{}
		}
		for model, rate := range pc.Models {
			table[provider][model] = rate
		}
	}
	return table
}
