// Package config provides configuration management for the Trackside engine.
package config

import "fmt"

// One-horse field policies. The source behavior is ambiguous, so the
// choice is surfaced as configuration rather than guessed.
const (
	OneHorseDisableExotics = "disable_exotics"
	OneHorsePassVerdict    = "pass_verdict"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Engine     EngineConfig     `mapstructure:"engine" validate:"required"`
	Sizing     SizingConfig     `mapstructure:"sizing" validate:"required"`
	Allocation AllocationConfig `mapstructure:"allocation" validate:"required"`
	Session    SessionConfig    `mapstructure:"session" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration. The
// section is optional: it is only required once session persistence is
// enabled (enforced cross-field at validation time).
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// EngineConfig governs candidate generation and ranking.
type EngineConfig struct {
	BaseUnit              float64 `mapstructure:"base_unit" validate:"required,gt=0"`
	TargetCount           int     `mapstructure:"target_count" validate:"required,gt=0"`
	EVFloor               float64 `mapstructure:"ev_floor"`
	StraightDepth         int     `mapstructure:"straight_depth" validate:"required,gt=1"`
	KeyWithLimit          int     `mapstructure:"key_with_limit" validate:"required,gt=1"`
	KeyHorseDepth         int     `mapstructure:"key_horse_depth" validate:"required,gt=0"`
	SeedCount             int     `mapstructure:"seed_count" validate:"required,gt=0"`
	MinPerTier            int     `mapstructure:"min_per_tier" validate:"required,gt=0"`
	OneHorsePolicy        string  `mapstructure:"one_horse_policy" validate:"required,onehorsepolicy"`
	BetVerdictOverlay     float64 `mapstructure:"bet_verdict_overlay" validate:"gte=0"`
	CautionVerdictOverlay float64 `mapstructure:"caution_verdict_overlay" validate:"gte=0"`
	CacheTTLSeconds       int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheMaxSize          int     `mapstructure:"cache_max_size" validate:"required,gt=0"`
}

// SizingConfig governs Kelly staking and the per-race exposure cap.
type SizingConfig struct {
	KellyFraction     float64 `mapstructure:"kelly_fraction" validate:"required,gt=0,lte=1"`
	MaxKellyFraction  float64 `mapstructure:"max_kelly_fraction" validate:"required,gt=0,lte=1"`
	MinimumBet        float64 `mapstructure:"minimum_bet" validate:"required,gt=0"`
	MaxBetPercent     float64 `mapstructure:"max_bet_percent" validate:"required,gt=0,lte=1"`
	RoundingIncrement float64 `mapstructure:"rounding_increment" validate:"required,gt=0"`
	MaxRaceExposure   float64 `mapstructure:"max_race_exposure" validate:"required,gt=0,lte=1"`
}

// AllocationConfig governs the day-bankroll allocator.
type AllocationConfig struct {
	Style          string  `mapstructure:"style" validate:"required,riskstyle"`
	RoundIncrement float64 `mapstructure:"round_increment" validate:"required,gt=0"`
	MinimumPerRace float64 `mapstructure:"minimum_per_race" validate:"required,gt=0"`
}

// SessionConfig governs the session bankroll tracker.
type SessionConfig struct {
	StartingBankroll   float64 `mapstructure:"starting_bankroll" validate:"required,gt=0"`
	HistoryLimit       int     `mapstructure:"history_limit" validate:"required,gt=0"`
	PersistenceEnabled bool    `mapstructure:"persistence_enabled"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required"`
}

// ServerConfig represents the HTTP surface configuration
type ServerConfig struct {
	Port           int     `mapstructure:"port" validate:"required,min=1,max=65535"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" validate:"required,gt=0"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" validate:"required,gt=0"`
}

// SchedulerConfig represents background job scheduling in serve mode
type SchedulerConfig struct {
	CheckpointCron string `mapstructure:"checkpoint_cron" validate:"required"`
	RolloverCron   string `mapstructure:"rollover_cron" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// DefaultEngineConfig returns generation defaults matching the live window.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		BaseUnit:              1,
		TargetCount:           25,
		EVFloor:               -0.5,
		StraightDepth:         6,
		KeyWithLimit:          4,
		KeyHorseDepth:         3,
		SeedCount:             15,
		MinPerTier:            3,
		OneHorsePolicy:        OneHorseDisableExotics,
		BetVerdictOverlay:     20,
		CautionVerdictOverlay: 5,
		CacheTTLSeconds:       300,
		CacheMaxSize:          256,
	}
}

// DefaultSizingConfig returns quarter-Kelly staking defaults.
func DefaultSizingConfig() SizingConfig {
	return SizingConfig{
		KellyFraction:     0.25,
		MaxKellyFraction:  0.1,
		MinimumBet:        2,
		MaxBetPercent:     0.05,
		RoundingIncrement: 1,
		MaxRaceExposure:   0.10,
	}
}

// DefaultAllocationConfig returns window-standard allocation defaults.
func DefaultAllocationConfig() AllocationConfig {
	return AllocationConfig{
		Style:          "balanced",
		RoundIncrement: 5,
		MinimumPerRace: 10,
	}
}
