// Package config provides configuration management for the Trackside engine.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields, tolerating a missing config file.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// Missing file: continue with defaults and environment variables.

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TRACKSIDE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "trackside")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	engine := DefaultEngineConfig()
	v.SetDefault("engine.base_unit", engine.BaseUnit)
	v.SetDefault("engine.target_count", engine.TargetCount)
	v.SetDefault("engine.ev_floor", engine.EVFloor)
	v.SetDefault("engine.straight_depth", engine.StraightDepth)
	v.SetDefault("engine.key_with_limit", engine.KeyWithLimit)
	v.SetDefault("engine.key_horse_depth", engine.KeyHorseDepth)
	v.SetDefault("engine.seed_count", engine.SeedCount)
	v.SetDefault("engine.min_per_tier", engine.MinPerTier)
	v.SetDefault("engine.one_horse_policy", engine.OneHorsePolicy)
	v.SetDefault("engine.bet_verdict_overlay", engine.BetVerdictOverlay)
	v.SetDefault("engine.caution_verdict_overlay", engine.CautionVerdictOverlay)
	v.SetDefault("engine.cache_ttl_seconds", engine.CacheTTLSeconds)
	v.SetDefault("engine.cache_max_size", engine.CacheMaxSize)

	sizing := DefaultSizingConfig()
	v.SetDefault("sizing.kelly_fraction", sizing.KellyFraction)
	v.SetDefault("sizing.max_kelly_fraction", sizing.MaxKellyFraction)
	v.SetDefault("sizing.minimum_bet", sizing.MinimumBet)
	v.SetDefault("sizing.max_bet_percent", sizing.MaxBetPercent)
	v.SetDefault("sizing.rounding_increment", sizing.RoundingIncrement)
	v.SetDefault("sizing.max_race_exposure", sizing.MaxRaceExposure)

	allocation := DefaultAllocationConfig()
	v.SetDefault("allocation.style", allocation.Style)
	v.SetDefault("allocation.round_increment", allocation.RoundIncrement)
	v.SetDefault("allocation.minimum_per_race", allocation.MinimumPerRace)

	v.SetDefault("session.starting_bankroll", 500.0)
	v.SetDefault("session.history_limit", 100)
	v.SetDefault("session.persistence_enabled", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit_rps", 10.0)
	v.SetDefault("server.rate_limit_burst", 20)

	v.SetDefault("scheduler.checkpoint_cron", "*/5 * * * *")
	v.SetDefault("scheduler.rollover_cron", "0 0 * * *")
}
