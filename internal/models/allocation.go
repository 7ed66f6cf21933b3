package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Verdict classifies a race's betting opportunity.
type Verdict string

const (
	VerdictBet     Verdict = "BET"
	VerdictCaution Verdict = "CAUTION"
	VerdictPass    Verdict = "PASS"
)

// RiskStyle selects a bankroll allocation profile for the day.
type RiskStyle string

const (
	StyleSafe       RiskStyle = "safe"
	StyleBalanced   RiskStyle = "balanced"
	StyleAggressive RiskStyle = "aggressive"
)

// ParseRiskStyle converts user input into a RiskStyle.
func ParseRiskStyle(s string) (RiskStyle, error) {
	switch RiskStyle(s) {
	case StyleSafe, StyleBalanced, StyleAggressive:
		return RiskStyle(s), nil
	default:
		return "", fmt.Errorf("unknown risk style %q (want safe, balanced or aggressive)", s)
	}
}

// RaceCardEntry is the allocator's view of one race on the card.
type RaceCardEntry struct {
	RaceNumber int     `json:"race_number" validate:"required,gt=0"`
	TrackName  string  `json:"track_name"`
	Verdict    Verdict `json:"verdict" validate:"required,oneof=BET CAUTION PASS"`
	Edge       float64 `json:"edge"` // best overlay percentage, used to break rounding ties
	ValuePlay  *string `json:"value_play,omitempty"`
}

// RaceAllocation is the budget assigned to a single race.
// Mutated only through plan rebalance operations.
type RaceAllocation struct {
	RaceNumber      int     `json:"race_number"`
	TrackName       string  `json:"track_name"`
	Verdict         Verdict `json:"verdict"`
	ValuePlay       *string `json:"value_play,omitempty"`
	Edge            float64 `json:"edge"`
	AllocatedBudget float64 `json:"allocated_budget"`
}

// MultiRaceBet records a wager spanning several races (daily double,
// pick three and similar), funded from the multi-race reserve.
type MultiRaceBet struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	PlacedAt    time.Time `json:"placed_at"`
}

// DaySession is the mutable aggregate for a full day's card.
// Invariant: AmountRemaining == TotalBankroll - AmountWagered.
// Every mutation goes through a named operation and is persisted wholesale.
type DaySession struct {
	ID                 uuid.UUID        `json:"id"`
	Version            int64            `json:"version"`
	RiskStyle          RiskStyle        `json:"risk_style"`
	TotalBankroll      float64          `json:"total_bankroll"`
	SingleRaceBankroll float64          `json:"single_race_bankroll"`
	MultiRaceReserve   float64          `json:"multi_race_reserve"`
	RaceAllocations    []RaceAllocation `json:"race_allocations"`
	RacesCompleted     map[int]bool     `json:"races_completed"`
	AmountWagered      float64          `json:"amount_wagered"`
	AmountRemaining    float64          `json:"amount_remaining"`
	MultiRaceBets      []MultiRaceBet   `json:"multi_race_bets"`
	MultiRaceWagered   float64          `json:"multi_race_wagered"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// AllocationFor returns the allocation for a race number, nil if absent.
func (s *DaySession) AllocationFor(raceNumber int) *RaceAllocation {
	for i := range s.RaceAllocations {
		if s.RaceAllocations[i].RaceNumber == raceNumber {
			return &s.RaceAllocations[i]
		}
	}
	return nil
}
