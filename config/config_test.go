package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Fleet: &FleetConfig{
			Size:                 10,
			BaseAllocation:       1000,
			VolatilityMin:        0.01,
			VolatilityMax:        0.06,
			DegradingStrategyIDs: []int{3, 7},
			DegradationDrift:     5,
		},
		Failover: &FailoverConfig{
			FailingStrategyID:     3,
			BackupStrategyID:      101,
			CriticalLossThreshold: -2000,
			DeriskThreshold:       -500,
			DeriskMultiplier:      0.8,
		},
		Normal: &NormalConfig{
			TickIntervalMs:         1000,
			HeartbeatIntervalTicks: 30,
			SubmitTimeoutSeconds:   10,
			SnapshotHistorySize:    256,
			LogDirectory:           "logs",
		},
		Logs: &LogConfig{
			LogLevel:   "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 14,
		},
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsBrokenConfigs(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantSub string
	}{
		{"zero fleet size", func(c *Config) { c.Fleet.Size = 0 }, "fleet.size"},
		{"negative fleet size", func(c *Config) { c.Fleet.Size = -2 }, "fleet.size"},
		{"zero allocation", func(c *Config) { c.Fleet.BaseAllocation = 0 }, "base_allocation"},
		{"volatility range inverted", func(c *Config) { c.Fleet.VolatilityMax = 0.001 }, "volatility_max"},
		{"no degrading ids", func(c *Config) { c.Fleet.DegradingStrategyIDs = nil }, "degrading_strategy_ids"},
		{"degrading id out of fleet", func(c *Config) { c.Fleet.DegradingStrategyIDs = []int{99} }, "not a member"},
		{"zero drift", func(c *Config) { c.Fleet.DegradationDrift = 0 }, "degradation_drift"},
		{"failing id out of fleet", func(c *Config) { c.Failover.FailingStrategyID = 99 }, "failing_strategy_id"},
		{"backup collides with fleet", func(c *Config) { c.Failover.BackupStrategyID = 5 }, "collides"},
		{"positive loss threshold", func(c *Config) { c.Failover.CriticalLossThreshold = 100 }, "critical_loss_threshold"},
		{"bad derisk multiplier", func(c *Config) { c.Failover.DeriskMultiplier = 1.5 }, "derisk_multiplier"},
		{"zero tick interval", func(c *Config) { c.Normal.TickIntervalMs = 0 }, "tick_interval_ms"},
		{"zero heartbeat", func(c *Config) { c.Normal.HeartbeatIntervalTicks = 0 }, "heartbeat_interval_ticks"},
		{"zero submit timeout", func(c *Config) { c.Normal.SubmitTimeoutSeconds = 0 }, "submit_timeout_seconds"},
		{"empty log dir", func(c *Config) { c.Normal.LogDirectory = "" }, "log_directory"},
		{"empty log level", func(c *Config) { c.Logs.LogLevel = "" }, "log_level"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantSub)
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	yaml := `
use_simulation: true
random_seed: 42
fleet:
  size: 3
  base_allocation: 500.0
  volatility_min: 0.02
  volatility_max: 0.05
  degrading_strategy_ids: [1, 2]
  degradation_drift: 4.0
failover:
  failing_strategy_id: 1
  backup_strategy_id: 50
  critical_loss_threshold: -2000.0
  derisk_threshold: -500.0
  derisk_multiplier: 0.8
normal_config:
  tick_interval_ms: 100
  heartbeat_interval_ticks: 10
  submit_timeout_seconds: 5
  snapshot_history_size: 32
  log_directory: "logs"
logs:
  log_level: "debug"
  max_size_mb: 5
  max_backups: 2
  max_age_days: 7
  compress: false
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.UseSimulation)
	assert.Equal(t, int64(42), cfg.RandomSeed)
	assert.Equal(t, 3, cfg.Fleet.Size)
	assert.Equal(t, []int{1, 2}, cfg.Fleet.DegradingStrategyIDs)
	assert.Equal(t, -2000.0, cfg.Failover.CriticalLossThreshold)
	assert.Equal(t, 100, cfg.Normal.TickIntervalMs)
	assert.Equal(t, "debug", cfg.Logs.LogLevel)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadConfigInvalidContentFailsValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fleet:\n  size: -1\n"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}
