// Package session owns the mutable state of a betting sitting: the
// bankroll ledger and the day session. Each aggregate has exactly one
// owner, every mutation goes through a named operation returning a fresh
// snapshot, and each snapshot is persisted wholesale. Persistence
// failures are logged and swallowed; the in-memory state stays
// authoritative for the session.
package session

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/trackside/internal/config"
	applog "github.com/yourusername/trackside/internal/logger"
	"github.com/yourusername/trackside/internal/metrics"
	"github.com/yourusername/trackside/internal/models"
	"github.com/yourusername/trackside/internal/repository"
)

// drawdownWarningPercent is the bankroll drop that triggers a warning log.
const drawdownWarningPercent = 30.0

// Ledger is the session bankroll tracker. One outstanding bet at a time:
// RecordWin or RecordLoss must settle the open wager before the next
// PlaceBet. The mutex serializes mutations against scheduled checkpoints
// and rollovers, which run on their own goroutines in serve mode.
type Ledger struct {
	mu       sync.Mutex
	state    models.LedgerState
	repo     repository.LedgerRepository
	logger   *logrus.Logger
	bets     *applog.BetLogger
	limit    int
	starting float64
}

// NewLedger starts a fresh ledger at the configured bankroll. The
// repository may be nil for purely in-memory sessions.
func NewLedger(cfg *config.SessionConfig, repo repository.LedgerRepository, logger *logrus.Logger) *Ledger {
	return &Ledger{
		state: models.LedgerState{
			ID:               uuid.New(),
			CurrentBankroll:  cfg.StartingBankroll,
			StartingBankroll: cfg.StartingBankroll,
			UpdatedAt:        time.Now().UTC(),
		},
		repo:     repo,
		logger:   logger,
		bets:     applog.NewBetLogger(logger),
		limit:    cfg.HistoryLimit,
		starting: cfg.StartingBankroll,
	}
}

// RestoreLedger resumes a ledger from a persisted snapshot.
func RestoreLedger(state models.LedgerState, cfg *config.SessionConfig, repo repository.LedgerRepository, logger *logrus.Logger) *Ledger {
	return &Ledger{
		state:    state,
		repo:     repo,
		logger:   logger,
		bets:     applog.NewBetLogger(logger),
		limit:    cfg.HistoryLimit,
		starting: cfg.StartingBankroll,
	}
}

// Snapshot returns a defensive copy of the current state.
func (l *Ledger) Snapshot() models.LedgerState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Ledger) snapshotLocked() models.LedgerState {
	snapshot := l.state
	snapshot.History = append([]models.LedgerEvent(nil), l.state.History...)
	if l.state.OpenBetAmount != nil {
		amount := *l.state.OpenBetAmount
		snapshot.OpenBetAmount = &amount
	}
	return snapshot
}

// PlaceBet deducts the stake and opens a wager. Betting beyond the
// current bankroll is a hard failure: it signals a caller logic bug.
func (l *Ledger) PlaceBet(ctx context.Context, amount float64) (models.LedgerState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount <= 0 {
		return l.snapshotLocked(), models.ErrInvalidAmount
	}
	if l.state.HasOpenBet() {
		return l.snapshotLocked(), models.ErrBetOutstanding
	}
	if amount > l.state.CurrentBankroll {
		return l.snapshotLocked(), models.ErrInsufficientBankroll
	}

	l.state.CurrentBankroll -= amount
	l.state.BetsPlaced++
	l.state.TotalWagered += amount
	if amount > l.state.LargestBet {
		l.state.LargestBet = amount
	}
	l.state.OpenBetAmount = &amount

	l.commit(ctx, models.LedgerEventBetPlaced, amount)
	metrics.BetsPlacedTotal.Inc()
	l.bets.LogBetPlaced(l.state.ID.String(), amount, l.state.CurrentBankroll, l.state.BetsPlaced)
	return l.snapshotLocked(), nil
}

// RecordWin credits the payout for the open wager and settles it.
func (l *Ledger) RecordWin(ctx context.Context, payout float64) (models.LedgerState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.state.HasOpenBet() {
		return l.snapshotLocked(), models.ErrNoOpenBet
	}
	if payout < 0 {
		return l.snapshotLocked(), models.ErrInvalidAmount
	}

	stake := *l.state.OpenBetAmount
	l.state.CurrentBankroll += payout
	l.state.TotalReturned += payout
	l.state.BetsWon++

	profit := payout - stake
	if profit > l.state.LargestWin {
		l.state.LargestWin = profit
	}

	// Streak sign flips the instant the outcome type changes; the
	// magnitude resets to 1 on a flip.
	if l.state.CurrentStreak > 0 {
		l.state.CurrentStreak++
	} else {
		l.state.CurrentStreak = 1
	}
	if l.state.CurrentStreak > l.state.LongestWinStreak {
		l.state.LongestWinStreak = l.state.CurrentStreak
	}

	l.state.OpenBetAmount = nil
	l.commit(ctx, models.LedgerEventBetWon, payout)
	metrics.BetsWonTotal.Inc()
	l.bets.LogBetSettled(l.state.ID.String(), "won", stake, payout, l.state.CurrentBankroll, l.state.CurrentStreak)
	return l.snapshotLocked(), nil
}

// RecordLoss settles the open wager with no credit.
func (l *Ledger) RecordLoss(ctx context.Context) (models.LedgerState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.state.HasOpenBet() {
		return l.snapshotLocked(), models.ErrNoOpenBet
	}

	stake := *l.state.OpenBetAmount
	l.state.BetsLost++
	if stake > l.state.LargestLoss {
		l.state.LargestLoss = stake
	}

	if l.state.CurrentStreak < 0 {
		l.state.CurrentStreak--
	} else {
		l.state.CurrentStreak = -1
	}
	if -l.state.CurrentStreak > l.state.LongestLossStreak {
		l.state.LongestLossStreak = -l.state.CurrentStreak
	}

	l.state.OpenBetAmount = nil
	l.commit(ctx, models.LedgerEventBetLost, stake)
	metrics.BetsLostTotal.Inc()
	l.bets.LogBetSettled(l.state.ID.String(), "lost", stake, 0, l.state.CurrentBankroll, l.state.CurrentStreak)
	return l.snapshotLocked(), nil
}

// AdjustBankroll applies a deposit (positive) or withdrawal (negative).
// Deposits also bump the starting bankroll so ROI stays meaningful.
func (l *Ledger) AdjustBankroll(ctx context.Context, delta float64) (models.LedgerState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if delta == 0 {
		return l.snapshotLocked(), models.ErrInvalidAmount
	}
	if delta < 0 && -delta > l.state.CurrentBankroll {
		return l.snapshotLocked(), models.ErrInsufficientBankroll
	}

	l.state.CurrentBankroll += delta
	eventType := models.LedgerEventWithdrawal
	direction := "withdrawal"
	if delta > 0 {
		l.state.StartingBankroll += delta
		eventType = models.LedgerEventDeposit
		direction = "deposit"
	}

	l.commit(ctx, eventType, math.Abs(delta))
	l.bets.LogBankrollAdjustment(l.state.ID.String(), direction, math.Abs(delta), l.state.CurrentBankroll)
	return l.snapshotLocked(), nil
}

// RiskOfRuin estimates the chance of losing the current bankroll at the
// session's observed edge and average stake, via the gambler's-ruin
// approximation ((1-e)/(1+e))^units. Returns a percentage.
func (l *Ledger) RiskOfRuin() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.BetsPlaced == 0 || l.state.TotalWagered == 0 {
		return 0
	}
	edge := l.state.NetProfit() / l.state.TotalWagered
	if edge <= 0 {
		return 100
	}
	if edge >= 1 {
		return 0
	}
	avgBet := l.state.TotalWagered / float64(l.state.BetsPlaced)
	if avgBet <= 0 || l.state.CurrentBankroll <= 0 {
		return 100
	}
	units := l.state.CurrentBankroll / avgBet
	ror := math.Pow((1-edge)/(1+edge), units) * 100
	return math.Min(100, math.Max(0, ror))
}

// Checkpoint persists the current snapshot without mutating state.
func (l *Ledger) Checkpoint(ctx context.Context) error {
	if l.repo == nil {
		return nil
	}
	l.mu.Lock()
	snapshot := l.snapshotLocked()
	l.mu.Unlock()
	return l.repo.Save(ctx, &snapshot)
}

// Rollover closes out the session: the final state is persisted, then
// the ledger restarts in place at the configured bankroll under a new
// ID. The reset is skipped if the closing snapshot cannot be saved, so
// a settled day is never silently discarded.
func (l *Ledger) Rollover(ctx context.Context) (models.LedgerState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.repo != nil {
		closing := l.snapshotLocked()
		if err := l.repo.Save(ctx, &closing); err != nil {
			return l.snapshotLocked(), err
		}
	}

	previous := l.state.ID
	l.state = models.LedgerState{
		ID:               uuid.New(),
		CurrentBankroll:  l.starting,
		StartingBankroll: l.starting,
		UpdatedAt:        time.Now().UTC(),
	}
	metrics.CurrentBankroll.Set(l.state.CurrentBankroll)

	l.logger.WithFields(logrus.Fields{
		"closed_ledger": previous,
		"new_ledger":    l.state.ID,
		"bankroll":      l.starting,
	}).Info("Session ledger rolled over")

	return l.snapshotLocked(), nil
}

// commit finalizes a mutation: version bump, bounded history append,
// wholesale persist.
func (l *Ledger) commit(ctx context.Context, eventType models.LedgerEventType, amount float64) {
	l.state.Version++
	l.state.UpdatedAt = time.Now().UTC()
	l.state.History = append(l.state.History, models.LedgerEvent{
		Type:          eventType,
		Amount:        amount,
		BankrollAfter: l.state.CurrentBankroll,
		At:            l.state.UpdatedAt,
	})
	if len(l.state.History) > l.limit {
		l.state.History = l.state.History[len(l.state.History)-l.limit:]
	}

	metrics.CurrentBankroll.Set(l.state.CurrentBankroll)

	if l.state.StartingBankroll > 0 {
		drawdown := (l.state.StartingBankroll - l.state.CurrentBankroll) / l.state.StartingBankroll * 100
		if drawdown >= drawdownWarningPercent {
			l.bets.LogDrawdownWarning(l.state.ID.String(), drawdown, l.state.StartingBankroll, l.state.CurrentBankroll)
		}
	}

	if l.repo == nil {
		return
	}
	snapshot := l.snapshotLocked()
	if err := l.repo.Save(ctx, &snapshot); err != nil {
		// Storage boundary swallows the failure; memory is authoritative.
		l.logger.WithError(err).WithFields(logrus.Fields{
			"ledger_id": l.state.ID,
			"version":   l.state.Version,
		}).Error("Failed to persist ledger snapshot")
	}
}
