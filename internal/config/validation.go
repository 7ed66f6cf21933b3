// Package config provides configuration management for the Trackside engine.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("riskstyle", validateRiskStyle)
	_ = v.RegisterValidation("onehorsepolicy", validateOneHorsePolicy)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateRiskStyle(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "safe", "balanced", "aggressive":
		return true
	default:
		return false
	}
}

func validateOneHorsePolicy(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case OneHorseDisableExotics, OneHorsePassVerdict:
		return true
	default:
		return false
	}
}

// validateCrossField enforces relationships between config sections.
func validateCrossField(cfg *Config) error {
	if cfg.Sizing.MinimumBet > cfg.Session.StartingBankroll {
		return fmt.Errorf("sizing.minimum_bet (%.2f) exceeds session.starting_bankroll (%.2f)",
			cfg.Sizing.MinimumBet, cfg.Session.StartingBankroll)
	}
	if cfg.Allocation.MinimumPerRace < cfg.Allocation.RoundIncrement {
		return fmt.Errorf("allocation.minimum_per_race (%.2f) must be at least the round increment (%.2f)",
			cfg.Allocation.MinimumPerRace, cfg.Allocation.RoundIncrement)
	}
	if cfg.Engine.SeedCount > cfg.Engine.TargetCount {
		return fmt.Errorf("engine.seed_count (%d) cannot exceed engine.target_count (%d)",
			cfg.Engine.SeedCount, cfg.Engine.TargetCount)
	}
	if cfg.Session.PersistenceEnabled {
		if cfg.Database.Host == "" || cfg.Database.Port == 0 || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("session.persistence_enabled requires database host, port, name and user")
		}
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, fmt.Sprintf("%s failed on '%s'", e.Namespace(), e.Tag()))
	}
	return fmt.Errorf("configuration validation failed: %s", strings.Join(messages, "; "))
}
