package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/trackside/internal/allocator"
	"github.com/yourusername/trackside/internal/models"
	"github.com/yourusername/trackside/internal/repository"
)

// Day owns a DaySession aggregate for one card.
type Day struct {
	state  models.DaySession
	repo   repository.SessionRepository
	logger *logrus.Logger
}

// NewDay opens a day session from a built allocation plan.
func NewDay(plan *allocator.Plan, repo repository.SessionRepository, logger *logrus.Logger) *Day {
	now := time.Now().UTC()
	return &Day{
		state: models.DaySession{
			ID:                 uuid.New(),
			RiskStyle:          plan.RiskStyle,
			TotalBankroll:      plan.TotalBankroll,
			SingleRaceBankroll: plan.SingleRaceBankroll,
			MultiRaceReserve:   plan.MultiRaceReserve,
			RaceAllocations:    append([]models.RaceAllocation(nil), plan.Allocations...),
			RacesCompleted:     make(map[int]bool),
			AmountRemaining:    plan.TotalBankroll,
			CreatedAt:          now,
			UpdatedAt:          now,
		},
		repo:   repo,
		logger: logger,
	}
}

// RestoreDay resumes a day session from a persisted snapshot.
func RestoreDay(state models.DaySession, repo repository.SessionRepository, logger *logrus.Logger) *Day {
	if state.RacesCompleted == nil {
		state.RacesCompleted = make(map[int]bool)
	}
	return &Day{state: state, repo: repo, logger: logger}
}

// Snapshot returns a defensive copy of the session state.
func (d *Day) Snapshot() models.DaySession {
	snapshot := d.state
	snapshot.RaceAllocations = append([]models.RaceAllocation(nil), d.state.RaceAllocations...)
	snapshot.MultiRaceBets = append([]models.MultiRaceBet(nil), d.state.MultiRaceBets...)
	snapshot.RacesCompleted = make(map[int]bool, len(d.state.RacesCompleted))
	for race, done := range d.state.RacesCompleted {
		snapshot.RacesCompleted[race] = done
	}
	return snapshot
}

// RecordWager books a single-race wager against the day bankroll.
func (d *Day) RecordWager(ctx context.Context, raceNumber int, amount float64) (models.DaySession, error) {
	if amount <= 0 {
		return d.Snapshot(), models.ErrInvalidAmount
	}
	if d.state.AllocationFor(raceNumber) == nil {
		return d.Snapshot(), models.ErrRaceNotInPlan
	}
	if amount > d.state.AmountRemaining {
		return d.Snapshot(), models.ErrInsufficientBankroll
	}

	d.state.AmountWagered += amount
	d.commit(ctx)
	return d.Snapshot(), nil
}

// AddMultiRaceBet books a wager against the multi-race reserve.
func (d *Day) AddMultiRaceBet(ctx context.Context, description string, amount float64) (models.DaySession, error) {
	if amount <= 0 {
		return d.Snapshot(), models.ErrInvalidAmount
	}
	if d.state.MultiRaceWagered+amount > d.state.MultiRaceReserve {
		return d.Snapshot(), models.ErrInsufficientBankroll
	}

	d.state.MultiRaceBets = append(d.state.MultiRaceBets, models.MultiRaceBet{
		ID:          uuid.New(),
		Description: description,
		Amount:      amount,
		PlacedAt:    time.Now().UTC(),
	})
	d.state.MultiRaceWagered += amount
	d.state.AmountWagered += amount
	d.commit(ctx)
	return d.Snapshot(), nil
}

// CompleteRace marks a race as finished for the day.
func (d *Day) CompleteRace(ctx context.Context, raceNumber int) (models.DaySession, error) {
	if d.state.AllocationFor(raceNumber) == nil {
		return d.Snapshot(), models.ErrRaceNotInPlan
	}
	d.state.RacesCompleted[raceNumber] = true
	d.commit(ctx)
	return d.Snapshot(), nil
}

// OverrideRaceBudget adjusts one race's budget through the allocator's
// rebalance rules. On a not-applicable override the partially rebalanced
// allocations are NOT committed; the error carries the rejection.
func (d *Day) OverrideRaceBudget(ctx context.Context, alloc *allocator.Allocator, raceNumber int, newBudget float64) (models.DaySession, error) {
	plan := &allocator.Plan{
		RiskStyle:          d.state.RiskStyle,
		TotalBankroll:      d.state.TotalBankroll,
		MultiRaceReserve:   d.state.MultiRaceReserve,
		SingleRaceBankroll: d.state.SingleRaceBankroll,
		Allocations:        append([]models.RaceAllocation(nil), d.state.RaceAllocations...),
	}

	updated, err := alloc.ApplyOverride(plan, raceNumber, newBudget)
	if err != nil {
		return d.Snapshot(), err
	}

	d.state.RaceAllocations = updated.Allocations
	d.commit(ctx)
	return d.Snapshot(), nil
}

// Checkpoint persists the current snapshot without mutating state.
func (d *Day) Checkpoint(ctx context.Context) error {
	if d.repo == nil {
		return nil
	}
	snapshot := d.Snapshot()
	return d.repo.Save(ctx, &snapshot)
}

// commit restores the remaining-amount invariant, bumps the version and
// persists the whole snapshot.
func (d *Day) commit(ctx context.Context) {
	d.state.AmountRemaining = d.state.TotalBankroll - d.state.AmountWagered
	d.state.Version++
	d.state.UpdatedAt = time.Now().UTC()

	if d.repo == nil {
		return
	}
	snapshot := d.Snapshot()
	if err := d.repo.Save(ctx, &snapshot); err != nil {
		d.logger.WithError(err).WithFields(logrus.Fields{
			"session_id": d.state.ID,
			"version":    d.state.Version,
		}).Error("Failed to persist day session snapshot")
	}
}
