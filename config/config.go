// config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// FleetConfig holds the parameters of the monitored strategy fleet.
type FleetConfig struct {
	Size                 int     `yaml:"size"`
	BaseAllocation       float64 `yaml:"base_allocation"`
	VolatilityMin        float64 `yaml:"volatility_min"`
	VolatilityMax        float64 `yaml:"volatility_max"`
	DegradingStrategyIDs []int   `yaml:"degrading_strategy_ids"`
	DegradationDrift     float64 `yaml:"degradation_drift"`
}

// FailoverConfig holds the decision thresholds and the identities involved in
// the failover action. All values are fixed at startup and never mutated.
type FailoverConfig struct {
	FailingStrategyID     int     `yaml:"failing_strategy_id"`
	BackupStrategyID      int     `yaml:"backup_strategy_id"`
	CriticalLossThreshold float64 `yaml:"critical_loss_threshold"`
	DeriskThreshold       float64 `yaml:"derisk_threshold"`
	DeriskMultiplier      float64 `yaml:"derisk_multiplier"`
}

// LogConfig holds the configuration for logging.
type LogConfig struct {
	LogLevel   string `yaml:"log_level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// NormalConfig holds all general, non-decision configuration.
type NormalConfig struct {
	TickIntervalMs         int    `yaml:"tick_interval_ms"`
	HeartbeatIntervalTicks int64  `yaml:"heartbeat_interval_ticks"`
	SubmitTimeoutSeconds   int    `yaml:"submit_timeout_seconds"`
	SnapshotHistorySize    int    `yaml:"snapshot_history_size"`
	LogDirectory           string `yaml:"log_directory"`
}

// Config is the top-level configuration structure.
type Config struct {
	Fleet         *FleetConfig    `yaml:"fleet"`
	Failover      *FailoverConfig `yaml:"failover"`
	Normal        *NormalConfig   `yaml:"normal_config"`
	Logs          *LogConfig      `yaml:"logs"`
	UseSimulation bool            `yaml:"use_simulation"`
	RandomSeed    int64           `yaml:"random_seed"`
}

// NewConfig creates a Config with allocated nested blocks and safe defaults
// only. All critical decision parameters MUST come from the config file.
func NewConfig() *Config {
	return &Config{
		UseSimulation: false,
		Fleet:         &FleetConfig{},
		Failover: &FailoverConfig{
			DeriskThreshold:  -500,
			DeriskMultiplier: 0.8,
		},
		Normal: &NormalConfig{
			SnapshotHistorySize: 256,
		},
		Logs: &LogConfig{},
	}
}

// LoadConfig loads configuration from a given path, applies defaults, and
// validates it.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("Error: Config file not found at %s. Program cannot run without a config file", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the logical consistency and completeness of the entire
// configuration. A failure here is fatal before the scheduler ever starts.
func (c *Config) Validate() error {
	if c.Fleet == nil {
		return fmt.Errorf("Critical config missing: 'fleet' configuration block must be provided in config.yaml")
	}
	if c.Fleet.Size <= 0 {
		return fmt.Errorf("Critical config missing: 'fleet.size' must be explicitly specified in config.yaml and be positive")
	}
	if c.Fleet.BaseAllocation <= 0 {
		return fmt.Errorf("Critical config missing: 'fleet.base_allocation' must be explicitly specified in config.yaml and be positive")
	}
	if c.Fleet.VolatilityMin <= 0 {
		return fmt.Errorf("Critical config missing: 'fleet.volatility_min' must be explicitly specified in config.yaml and be positive")
	}
	if c.Fleet.VolatilityMax < c.Fleet.VolatilityMin {
		return fmt.Errorf("Config error: fleet.volatility_max (%.4f) must be >= fleet.volatility_min (%.4f)", c.Fleet.VolatilityMax, c.Fleet.VolatilityMin)
	}
	if len(c.Fleet.DegradingStrategyIDs) == 0 {
		return fmt.Errorf("Critical config missing: 'fleet.degrading_strategy_ids' must be explicitly specified in config.yaml")
	}
	for _, id := range c.Fleet.DegradingStrategyIDs {
		if id <= 0 || id > c.Fleet.Size {
			return fmt.Errorf("Config error: fleet.degrading_strategy_ids entry %d is not a member of a fleet of size %d", id, c.Fleet.Size)
		}
	}
	if c.Fleet.DegradationDrift <= 0 {
		return fmt.Errorf("Critical config missing: 'fleet.degradation_drift' must be explicitly specified in config.yaml and be positive (it is applied as a negative perturbation)")
	}

	if c.Failover == nil {
		return fmt.Errorf("Critical config missing: 'failover' configuration block must be provided in config.yaml")
	}
	if c.Failover.FailingStrategyID <= 0 || c.Failover.FailingStrategyID > c.Fleet.Size {
		return fmt.Errorf("Config error: failover.failing_strategy_id (%d) must identify a member of a fleet of size %d", c.Failover.FailingStrategyID, c.Fleet.Size)
	}
	if c.Failover.BackupStrategyID <= 0 {
		return fmt.Errorf("Critical config missing: 'failover.backup_strategy_id' must be explicitly specified in config.yaml and be positive")
	}
	if c.Failover.BackupStrategyID <= c.Fleet.Size {
		return fmt.Errorf("Config error: failover.backup_strategy_id (%d) collides with an active fleet identifier (fleet size %d)", c.Failover.BackupStrategyID, c.Fleet.Size)
	}
	if c.Failover.CriticalLossThreshold >= 0 {
		return fmt.Errorf("Critical config missing: 'failover.critical_loss_threshold' must be explicitly specified in config.yaml and be negative")
	}
	if c.Failover.DeriskThreshold >= 0 {
		return fmt.Errorf("Config error: failover.derisk_threshold must be negative")
	}
	if c.Failover.DeriskMultiplier <= 0 || c.Failover.DeriskMultiplier >= 1 {
		return fmt.Errorf("Config error: failover.derisk_multiplier must be in (0, 1)")
	}

	if c.Normal == nil {
		return fmt.Errorf("Critical config missing: 'normal_config' configuration block must be provided in config.yaml")
	}
	if c.Normal.TickIntervalMs <= 0 {
		return fmt.Errorf("Critical config missing: 'normal_config.tick_interval_ms' must be explicitly specified in config.yaml and be positive")
	}
	if c.Normal.HeartbeatIntervalTicks <= 0 {
		return fmt.Errorf("Critical config missing: 'normal_config.heartbeat_interval_ticks' must be explicitly specified in config.yaml and be positive")
	}
	if c.Normal.SubmitTimeoutSeconds <= 0 {
		return fmt.Errorf("Critical config missing: 'normal_config.submit_timeout_seconds' must be explicitly specified in config.yaml and be positive")
	}
	if c.Normal.SnapshotHistorySize <= 0 {
		return fmt.Errorf("Config error: normal_config.snapshot_history_size must be positive")
	}
	if c.Normal.LogDirectory == "" {
		return fmt.Errorf("Critical config missing: 'normal_config.log_directory' must be explicitly specified in config.yaml (e.g., 'logs')")
	}

	if c.Logs == nil {
		return fmt.Errorf("Critical config missing: 'logs' configuration block must be provided in config.yaml")
	}
	if c.Logs.LogLevel == "" {
		return fmt.Errorf("Critical config missing: 'logs.log_level' must be explicitly specified in config.yaml (e.g., 'info', 'debug', 'warn', 'error')")
	}
	if c.Logs.MaxSizeMB <= 0 {
		return fmt.Errorf("Critical config missing: 'logs.max_size_mb' must be explicitly specified in config.yaml and be positive")
	}
	if c.Logs.MaxBackups <= 0 {
		return fmt.Errorf("Critical config missing: 'logs.max_backups' must be explicitly specified in config.yaml and be positive")
	}
	if c.Logs.MaxAgeDays <= 0 {
		return fmt.Errorf("Critical config missing: 'logs.max_age_days' must be explicitly specified in config.yaml and be positive")
	}

	return nil
}

// EnvConfig carries secrets and endpoints that never belong in config.yaml.
type EnvConfig struct {
	SubmitURL   string
	SubmitToken string
}

func LoadEnvConfig() *EnvConfig {
	return &EnvConfig{
		SubmitURL:   os.Getenv("ORACLE_SUBMIT_URL"),
		SubmitToken: os.Getenv("ORACLE_SUBMIT_TOKEN"),
	}
}
