// Package logger provides bet-lifecycle logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// BetLogger provides dedicated logging for bankroll and wager events.
type BetLogger struct {
	*logrus.Entry
}

// NewBetLogger creates a new bet logger.
func NewBetLogger(baseLogger *logrus.Logger) *BetLogger {
	return &BetLogger{
		Entry: baseLogger.WithField("component", "ledger"),
	}
}

// LogBetPlaced logs a wager opening against the session bankroll.
func (bl *BetLogger) LogBetPlaced(ledgerID string, amount, bankrollAfter float64, betsPlaced int) {
	bl.WithFields(logrus.Fields{
		"ledger_id":      ledgerID,
		"amount":         amount,
		"bankroll_after": bankrollAfter,
		"bets_placed":    betsPlaced,
	}).Info("Bet placed")
}

// LogBetSettled logs a wager settlement, won or lost.
func (bl *BetLogger) LogBetSettled(ledgerID, outcome string, stake, payout, bankrollAfter float64, streak int) {
	bl.WithFields(logrus.Fields{
		"ledger_id":      ledgerID,
		"outcome":        outcome,
		"stake":          stake,
		"payout":         payout,
		"bankroll_after": bankrollAfter,
		"streak":         streak,
	}).Info("Bet settled")
}

// LogBankrollAdjustment logs a deposit or withdrawal.
func (bl *BetLogger) LogBankrollAdjustment(ledgerID, direction string, amount, bankrollAfter float64) {
	bl.WithFields(logrus.Fields{
		"ledger_id":      ledgerID,
		"direction":      direction,
		"amount":         amount,
		"bankroll_after": bankrollAfter,
	}).Info("Bankroll adjusted")
}

// LogDrawdownWarning logs a bankroll drop past the warning threshold.
func (bl *BetLogger) LogDrawdownWarning(ledgerID string, drawdownPercent, startingBankroll, currentBankroll float64) {
	bl.WithFields(logrus.Fields{
		"ledger_id":         ledgerID,
		"drawdown_percent":  drawdownPercent,
		"starting_bankroll": startingBankroll,
		"current_bankroll":  currentBankroll,
	}).Warn("Bankroll drawdown threshold exceeded")
}

// LogDayPlanBuilt logs a completed day allocation plan.
func (bl *BetLogger) LogDayPlanBuilt(style string, totalBankroll, multiRaceReserve float64, races int) {
	bl.WithFields(logrus.Fields{
		"risk_style":         style,
		"total_bankroll":     totalBankroll,
		"multi_race_reserve": multiRaceReserve,
		"races":              races,
	}).Info("Day plan built")
}
