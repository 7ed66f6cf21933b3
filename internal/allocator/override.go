package allocator

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/trackside/internal/models"
)

// ApplyOverride sets one race's budget to a user-chosen amount and
// rebalances the difference across the rest of the card: PASS races
// absorb first, then CAUTION, never BET. When the full delta cannot be
// absorbed without breaching the per-race minimum, the partially
// rebalanced plan is returned for inspection along with
// models.ErrOverrideNotApplicable — it is never silently half-applied.
func (a *Allocator) ApplyOverride(plan *Plan, raceNumber int, newBudget float64) (*Plan, error) {
	if newBudget < 0 {
		return nil, models.ErrInvalidAmount
	}

	updated := clonePlan(plan)
	target := -1
	for i := range updated.Allocations {
		if updated.Allocations[i].RaceNumber == raceNumber {
			target = i
			break
		}
	}
	if target == -1 {
		return nil, models.ErrRaceNotInPlan
	}

	delta := decimal.NewFromFloat(newBudget).Sub(decimal.NewFromFloat(updated.Allocations[target].AllocatedBudget))
	if delta.IsZero() {
		return updated, nil
	}
	updated.Allocations[target].AllocatedBudget = newBudget

	recipients := overrideOrder(updated.Allocations, target)
	if delta.IsPositive() {
		// The overridden race takes more, so the others give it up.
		delta = a.absorbIncrease(updated, recipients, delta)
	} else {
		delta = a.distributeDecrease(updated, recipients, delta)
	}

	if !delta.IsZero() {
		a.logger.WithFields(logrus.Fields{
			"race":       raceNumber,
			"new_budget": newBudget,
			"unabsorbed": decimalToFloat(delta),
		}).Warn("Budget override could not be fully absorbed")
		return updated, models.ErrOverrideNotApplicable
	}

	a.logger.WithFields(logrus.Fields{
		"race":       raceNumber,
		"new_budget": newBudget,
	}).Info("Budget override applied")

	return updated, nil
}

// absorbIncrease reduces non-BET budgets, lowest edge first, each down to
// the per-race minimum, until the delta is covered. Returns what remains.
func (a *Allocator) absorbIncrease(plan *Plan, recipients []int, delta decimal.Decimal) decimal.Decimal {
	minimum := decimal.NewFromFloat(a.cfg.MinimumPerRace)
	for _, idx := range recipients {
		if delta.IsZero() {
			break
		}
		budget := decimal.NewFromFloat(plan.Allocations[idx].AllocatedBudget)
		headroom := budget.Sub(minimum)
		if !headroom.IsPositive() {
			continue
		}
		take := decimal.Min(headroom, delta)
		plan.Allocations[idx].AllocatedBudget = decimalToFloat(budget.Sub(take))
		delta = delta.Sub(take)
	}
	return delta
}

// distributeDecrease spreads freed budget across non-BET races, evenly in
// round increments with any residue on the first recipient.
func (a *Allocator) distributeDecrease(plan *Plan, recipients []int, delta decimal.Decimal) decimal.Decimal {
	if len(recipients) == 0 {
		return delta
	}
	freed := delta.Neg()
	increment := decimal.NewFromFloat(a.cfg.RoundIncrement)

	for i := 0; freed.GreaterThanOrEqual(increment); i++ {
		idx := recipients[i%len(recipients)]
		budget := decimal.NewFromFloat(plan.Allocations[idx].AllocatedBudget)
		plan.Allocations[idx].AllocatedBudget = decimalToFloat(budget.Add(increment))
		freed = freed.Sub(increment)
	}
	if !freed.IsZero() {
		idx := recipients[0]
		budget := decimal.NewFromFloat(plan.Allocations[idx].AllocatedBudget)
		plan.Allocations[idx].AllocatedBudget = decimalToFloat(budget.Add(freed))
	}
	return decimal.Zero
}

// overrideOrder lists the indices eligible to absorb an override: PASS
// races first, then CAUTION, lowest edge first within each group. BET
// races are never touched automatically.
func overrideOrder(allocations []models.RaceAllocation, exclude int) []int {
	rank := func(v models.Verdict) int {
		switch v {
		case models.VerdictPass:
			return 0
		case models.VerdictCaution:
			return 1
		default:
			return 2
		}
	}
	var indices []int
	for i := range allocations {
		if i == exclude || allocations[i].Verdict == models.VerdictBet {
			continue
		}
		indices = append(indices, i)
	}
	sort.SliceStable(indices, func(x, y int) bool {
		ax, ay := allocations[indices[x]], allocations[indices[y]]
		if rank(ax.Verdict) != rank(ay.Verdict) {
			return rank(ax.Verdict) < rank(ay.Verdict)
		}
		return ax.Edge < ay.Edge
	})
	return indices
}

func clonePlan(plan *Plan) *Plan {
	cloned := *plan
	cloned.Allocations = append([]models.RaceAllocation(nil), plan.Allocations...)
	return &cloned
}
