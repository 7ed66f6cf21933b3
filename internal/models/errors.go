package models

import "errors"

// Custom errors
var (
	ErrNotFound              = errors.New("record not found")
	ErrEmptyField            = errors.New("field has no active horses")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInsufficientBankroll  = errors.New("amount exceeds current bankroll")
	ErrBetOutstanding        = errors.New("previous bet has not been settled")
	ErrNoOpenBet             = errors.New("no open bet to settle")
	ErrRaceNotInPlan         = errors.New("race is not part of the day plan")
	ErrOverrideNotApplicable = errors.New("override cannot be absorbed by non-BET races")
)
