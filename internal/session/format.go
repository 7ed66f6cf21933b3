package session

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yourusername/trackside/internal/models"
)

// FormatCurrency renders a dollar amount with two decimal places.
func FormatCurrency(amount float64) string {
	d := decimal.NewFromFloat(amount)
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// FormatROI renders a signed return-on-investment percentage.
func FormatROI(roi float64) string {
	return fmt.Sprintf("%+.1f%%", roi)
}

// FormatStreak renders the signed streak counter the way bettors say it:
// W3 for three straight wins, L2 for two straight losses.
func FormatStreak(streak int) string {
	switch {
	case streak > 0:
		return fmt.Sprintf("W%d", streak)
	case streak < 0:
		return fmt.Sprintf("L%d", -streak)
	default:
		return "even"
	}
}

// FormatLedger renders a one-line session summary.
func FormatLedger(state models.LedgerState) string {
	return fmt.Sprintf("Bankroll %s (started %s) | %d bets, %d-%d | ROI %s | streak %s",
		FormatCurrency(state.CurrentBankroll),
		FormatCurrency(state.StartingBankroll),
		state.BetsPlaced,
		state.BetsWon,
		state.BetsLost,
		FormatROI(state.ROI()),
		FormatStreak(state.CurrentStreak),
	)
}
