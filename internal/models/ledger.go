package models

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEventType tags entries in the ledger history.
type LedgerEventType string

const (
	LedgerEventBetPlaced  LedgerEventType = "bet_placed"
	LedgerEventBetWon     LedgerEventType = "bet_won"
	LedgerEventBetLost    LedgerEventType = "bet_lost"
	LedgerEventDeposit    LedgerEventType = "deposit"
	LedgerEventWithdrawal LedgerEventType = "withdrawal"
)

// LedgerEvent is one entry in the bounded session history.
type LedgerEvent struct {
	Type          LedgerEventType `json:"type"`
	Amount        float64         `json:"amount"`
	BankrollAfter float64         `json:"bankroll_after"`
	At            time.Time       `json:"at"`
}

// LedgerState is an immutable snapshot of a session bankroll ledger.
// Invariant: CurrentBankroll == StartingBankroll + TotalReturned - TotalWagered,
// with deposits and withdrawals folded into StartingBankroll.
type LedgerState struct {
	ID                uuid.UUID     `json:"id"`
	Version           int64         `json:"version"`
	CurrentBankroll   float64       `json:"current_bankroll"`
	StartingBankroll  float64       `json:"starting_bankroll"`
	BetsPlaced        int           `json:"bets_placed"`
	BetsWon           int           `json:"bets_won"`
	BetsLost          int           `json:"bets_lost"`
	TotalWagered      float64       `json:"total_wagered"`
	TotalReturned     float64       `json:"total_returned"`
	CurrentStreak     int           `json:"current_streak"` // positive = wins, negative = losses
	LongestWinStreak  int           `json:"longest_win_streak"`
	LongestLossStreak int           `json:"longest_loss_streak"`
	LargestBet        float64       `json:"largest_bet"`
	LargestWin        float64       `json:"largest_win"`
	LargestLoss       float64       `json:"largest_loss"`
	OpenBetAmount     *float64      `json:"open_bet_amount,omitempty"`
	History           []LedgerEvent `json:"history"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// NetProfit is total returned minus total wagered.
func (s LedgerState) NetProfit() float64 {
	return s.TotalReturned - s.TotalWagered
}

// ROI is net profit over total wagered, as a percentage.
func (s LedgerState) ROI() float64 {
	if s.TotalWagered == 0 {
		return 0
	}
	return s.NetProfit() / s.TotalWagered * 100
}

// WinRate is the percentage of settled bets that won.
func (s LedgerState) WinRate() float64 {
	settled := s.BetsWon + s.BetsLost
	if settled == 0 {
		return 0
	}
	return float64(s.BetsWon) / float64(settled) * 100
}

// HasOpenBet reports whether a wager is awaiting settlement.
func (s LedgerState) HasOpenBet() bool {
	return s.OpenBetAmount != nil
}
