package kelly

import (
	"math"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/trackside/internal/config"
	"github.com/yourusername/trackside/internal/models"
)

// Sizer converts Kelly results into bounded, rounded dollar stakes and
// rebalances concurrent same-race stakes against an exposure cap.
type Sizer struct {
	cfg    *config.SizingConfig
	logger *logrus.Logger
}

// NewSizer creates a bet sizer.
func NewSizer(cfg *config.SizingConfig, logger *logrus.Logger) *Sizer {
	return &Sizer{cfg: cfg, logger: logger}
}

// Size converts a Kelly result into a dollar stake clamped to
// [minimumBet, bankroll*maxBetPercent] and rounded to the configured
// increment. A no-bet Kelly result sizes to zero.
func (s *Sizer) Size(k models.KellyResult) models.SizedBet {
	if !k.ShouldBet {
		return models.SizedBet{}
	}

	raw := k.Bankroll * k.FractionalKellyFraction
	bet := models.SizedBet{RawDollarAmount: raw}

	amount := raw
	ceiling := k.Bankroll * s.cfg.MaxBetPercent
	if amount > ceiling {
		amount = ceiling
		bet.CappedByMaxPercent = true
	}
	if amount < s.cfg.MinimumBet {
		amount = s.cfg.MinimumBet
	}

	bet.BoundedFinalAmount = roundToIncrement(amount, s.cfg.RoundingIncrement)

	s.logger.WithFields(logrus.Fields{
		"raw":    raw,
		"final":  bet.BoundedFinalAmount,
		"capped": bet.CappedByMaxPercent,
	}).Debug("Bet sized")

	return bet
}

// RebalanceRace proportionally shrinks a race's stakes when their sum
// exceeds the configured fraction of bankroll reserved for simultaneous
// exposure. Relative proportions are preserved rather than truncating
// stakes arbitrarily.
func (s *Sizer) RebalanceRace(bets []models.SizedBet, bankroll float64) []models.SizedBet {
	exposureCap := bankroll * s.cfg.MaxRaceExposure
	total := 0.0
	for _, b := range bets {
		total += b.BoundedFinalAmount
	}
	if total <= exposureCap || total == 0 {
		return bets
	}

	scale := exposureCap / total
	rebalanced := make([]models.SizedBet, len(bets))
	for i, b := range bets {
		scaled := b.BoundedFinalAmount * scale
		rounded := roundToIncrement(scaled, s.cfg.RoundingIncrement)
		if rounded > scaled {
			// Round down: rounding up could push the total back over cap.
			rounded -= s.cfg.RoundingIncrement
		}
		if rounded < 0 {
			rounded = 0
		}
		rebalanced[i] = models.SizedBet{
			RawDollarAmount:    b.RawDollarAmount,
			BoundedFinalAmount: rounded,
			CappedByMaxPercent: b.CappedByMaxPercent,
		}
	}

	s.logger.WithFields(logrus.Fields{
		"bets":         len(bets),
		"total_before": total,
		"exposure_cap": exposureCap,
		"scale":        scale,
	}).Debug("Race stakes rebalanced against exposure cap")

	return rebalanced
}

func roundToIncrement(amount, increment float64) float64 {
	if increment <= 0 {
		return amount
	}
	return math.Round(amount/increment) * increment
}
