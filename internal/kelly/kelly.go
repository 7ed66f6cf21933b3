// Package kelly computes fractional-Kelly stakes and converts them into
// bounded dollar amounts.
package kelly

import (
	"github.com/sirupsen/logrus"
	"github.com/yourusername/trackside/internal/config"
	"github.com/yourusername/trackside/internal/models"
)

// Calculator evaluates the Kelly criterion for single wagers.
type Calculator struct {
	cfg    *config.SizingConfig
	logger *logrus.Logger
}

// NewCalculator creates a Kelly calculator.
func NewCalculator(cfg *config.SizingConfig, logger *logrus.Logger) *Calculator {
	return &Calculator{cfg: cfg, logger: logger}
}

// Evaluate computes the Kelly fractions for a wager at the given win
// probability, net decimal odds and bankroll. Invalid input degrades to
// ShouldBet=false; it is never an error.
//
// Kelly: f = (p*(odds+1) - 1) / odds
func (c *Calculator) Evaluate(probability, decimalOdds, bankroll float64) models.KellyResult {
	result := models.KellyResult{
		Probability: probability,
		DecimalOdds: decimalOdds,
		Bankroll:    bankroll,
	}

	if probability <= 0 || probability >= 1 || decimalOdds <= 0 || bankroll <= 0 {
		c.logger.WithFields(logrus.Fields{
			"probability": probability,
			"odds":        decimalOdds,
			"bankroll":    bankroll,
		}).Debug("Invalid Kelly input, no bet recommended")
		return result
	}

	result.IsPositiveEV = probability*(decimalOdds+1) > 1

	raw := (probability*(decimalOdds+1) - 1) / decimalOdds
	result.RawKellyFraction = raw
	if raw <= 0 {
		return result
	}

	fraction := raw * c.cfg.KellyFraction
	if fraction > c.cfg.MaxKellyFraction {
		fraction = c.cfg.MaxKellyFraction
	}
	result.FractionalKellyFraction = fraction
	result.ShouldBet = true

	c.logger.WithFields(logrus.Fields{
		"probability":      probability,
		"odds":             decimalOdds,
		"raw_kelly":        raw,
		"fractional_kelly": fraction,
	}).Debug("Kelly fraction calculated")

	return result
}
