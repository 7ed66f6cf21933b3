// Package allocator distributes a day's bankroll across the races on a
// card, weighted by each race's betting verdict and the bettor's risk
// style, with a slice reserved for multi-race wagers.
package allocator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/trackside/internal/config"
	"github.com/yourusername/trackside/internal/models"
)

// Multi-race reserve percentage of total bankroll, per risk style.
var reservePercent = map[models.RiskStyle]decimal.Decimal{
	models.StyleSafe:       decimal.NewFromFloat(0.05),
	models.StyleBalanced:   decimal.NewFromFloat(0.15),
	models.StyleAggressive: decimal.NewFromFloat(0.25),
}

// Verdict bucket split of the single-race bankroll, per risk style.
var bucketPercent = map[models.RiskStyle]map[models.Verdict]decimal.Decimal{
	models.StyleSafe: {
		models.VerdictBet:     decimal.NewFromFloat(0.60),
		models.VerdictCaution: decimal.NewFromFloat(0.25),
		models.VerdictPass:    decimal.NewFromFloat(0.15),
	},
	models.StyleBalanced: {
		models.VerdictBet:     decimal.NewFromFloat(0.50),
		models.VerdictCaution: decimal.NewFromFloat(0.20),
		models.VerdictPass:    decimal.NewFromFloat(0.30),
	},
	models.StyleAggressive: {
		models.VerdictBet:     decimal.NewFromFloat(0.40),
		models.VerdictCaution: decimal.NewFromFloat(0.30),
		models.VerdictPass:    decimal.NewFromFloat(0.30),
	},
}

// Redistribution precedence for the share of an empty verdict bucket.
var verdictPrecedence = []models.Verdict{models.VerdictBet, models.VerdictCaution, models.VerdictPass}

// Plan is a complete day allocation. Sum of race budgets plus the
// multi-race reserve equals the total bankroll exactly.
type Plan struct {
	RiskStyle          models.RiskStyle        `json:"risk_style"`
	TotalBankroll      float64                 `json:"total_bankroll"`
	MultiRaceReserve   float64                 `json:"multi_race_reserve"`
	SingleRaceBankroll float64                 `json:"single_race_bankroll"`
	Allocations        []models.RaceAllocation `json:"allocations"`
}

// Allocator builds and rebalances day plans.
type Allocator struct {
	cfg    *config.AllocationConfig
	logger *logrus.Logger
}

// New creates an allocator.
func New(cfg *config.AllocationConfig, logger *logrus.Logger) *Allocator {
	return &Allocator{cfg: cfg, logger: logger}
}

// Build distributes totalBankroll across the card. Races must carry
// their verdicts; the allocator never recomputes them.
func (a *Allocator) Build(totalBankroll float64, style models.RiskStyle, races []models.RaceCardEntry) (*Plan, error) {
	if totalBankroll <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if len(races) == 0 {
		return nil, fmt.Errorf("day plan requires at least one race")
	}
	reservePct, ok := reservePercent[style]
	if !ok {
		return nil, fmt.Errorf("unknown risk style %q", style)
	}

	total := decimal.NewFromFloat(totalBankroll)
	reserve := total.Mul(reservePct).Round(2)
	single := total.Sub(reserve)

	// Buckets hold card indices, not race numbers: two tracks on one card
	// can share a race number.
	byVerdict := make(map[models.Verdict][]int)
	for i, race := range races {
		byVerdict[race.Verdict] = append(byVerdict[race.Verdict], i)
	}

	shares := effectiveShares(style, byVerdict)

	increment := decimal.NewFromFloat(a.cfg.RoundIncrement)
	minimum := decimal.NewFromFloat(a.cfg.MinimumPerRace)

	budgets := make([]decimal.Decimal, len(races))
	for verdict, share := range shares {
		bucket := byVerdict[verdict]
		if len(bucket) == 0 {
			continue
		}
		bucketAmount := single.Mul(share)
		perRace := roundToIncrement(bucketAmount.Div(decimal.NewFromInt(int64(len(bucket)))), increment)
		if perRace.LessThan(minimum) {
			perRace = minimum
		}
		for _, i := range bucket {
			budgets[i] = perRace
		}
	}

	allocations := make([]models.RaceAllocation, 0, len(races))
	for i, race := range races {
		allocations = append(allocations, models.RaceAllocation{
			RaceNumber:      race.RaceNumber,
			TrackName:       race.TrackName,
			Verdict:         race.Verdict,
			ValuePlay:       race.ValuePlay,
			Edge:            race.Edge,
			AllocatedBudget: decimalToFloat(budgets[i]),
		})
	}

	a.resolveRemainder(allocations, single)

	plan := &Plan{
		RiskStyle:          style,
		TotalBankroll:      totalBankroll,
		MultiRaceReserve:   decimalToFloat(reserve),
		SingleRaceBankroll: decimalToFloat(single),
		Allocations:        allocations,
	}

	a.logger.WithFields(logrus.Fields{
		"total":    totalBankroll,
		"style":    style,
		"races":    len(races),
		"reserve":  plan.MultiRaceReserve,
		"per_race": len(allocations),
	}).Info("Day plan built")

	return plan, nil
}

// effectiveShares returns the bucket percentages with any empty bucket's
// share redistributed by fixed precedence: BET first, then CAUTION,
// then PASS.
func effectiveShares(style models.RiskStyle, byVerdict map[models.Verdict][]int) map[models.Verdict]decimal.Decimal {
	shares := make(map[models.Verdict]decimal.Decimal, 3)
	orphaned := decimal.Zero
	for verdict, pct := range bucketPercent[style] {
		if len(byVerdict[verdict]) == 0 {
			orphaned = orphaned.Add(pct)
			continue
		}
		shares[verdict] = pct
	}
	if orphaned.IsZero() {
		return shares
	}
	for _, verdict := range verdictPrecedence {
		if _, ok := shares[verdict]; ok {
			shares[verdict] = shares[verdict].Add(orphaned)
			break
		}
	}
	return shares
}

// resolveRemainder squares the allocation sum with the single-race
// bankroll by adjusting the highest-edge BET races first, in round
// increments, falling back through CAUTION and PASS.
func (a *Allocator) resolveRemainder(allocations []models.RaceAllocation, single decimal.Decimal) {
	increment := decimal.NewFromFloat(a.cfg.RoundIncrement)
	minimum := decimal.NewFromFloat(a.cfg.MinimumPerRace)

	remainder := single.Sub(sumBudgets(allocations))
	if remainder.IsZero() {
		return
	}

	targets := adjustmentOrder(allocations)
	if len(targets) == 0 {
		return
	}

	// Distribute whole increments cycling through the targets. A full
	// pass in which no target can give up an increment without breaching
	// the minimum means no further progress is possible; stop and let the
	// residual path below square the sum.
	for i, stalled := 0, 0; remainder.Abs().GreaterThanOrEqual(increment); i++ {
		idx := targets[i%len(targets)]
		current := decimal.NewFromFloat(allocations[idx].AllocatedBudget)
		if remainder.IsPositive() {
			allocations[idx].AllocatedBudget = decimalToFloat(current.Add(increment))
			remainder = remainder.Sub(increment)
			stalled = 0
			continue
		}
		next := current.Sub(increment)
		if next.LessThan(minimum) {
			stalled++
			if stalled >= len(targets) {
				break
			}
			continue
		}
		allocations[idx].AllocatedBudget = decimalToFloat(next)
		remainder = remainder.Add(increment)
		stalled = 0
	}

	// Residual smaller than one increment lands on the first target so
	// the exact-sum invariant holds.
	if !remainder.IsZero() {
		idx := targets[0]
		current := decimal.NewFromFloat(allocations[idx].AllocatedBudget)
		allocations[idx].AllocatedBudget = decimalToFloat(current.Add(remainder))
	}
}

// adjustmentOrder lists allocation indices in remainder-resolution order:
// BET races by edge descending, then CAUTION, then PASS.
func adjustmentOrder(allocations []models.RaceAllocation) []int {
	rank := func(v models.Verdict) int {
		for i, candidate := range verdictPrecedence {
			if candidate == v {
				return i
			}
		}
		return len(verdictPrecedence)
	}
	indices := make([]int, 0, len(allocations))
	for i := range allocations {
		indices = append(indices, i)
	}
	sort.SliceStable(indices, func(x, y int) bool {
		ax, ay := allocations[indices[x]], allocations[indices[y]]
		if rank(ax.Verdict) != rank(ay.Verdict) {
			return rank(ax.Verdict) < rank(ay.Verdict)
		}
		return ax.Edge > ay.Edge
	})
	return indices
}

func sumBudgets(allocations []models.RaceAllocation) decimal.Decimal {
	sum := decimal.Zero
	for _, alloc := range allocations {
		sum = sum.Add(decimal.NewFromFloat(alloc.AllocatedBudget))
	}
	return sum
}

func roundToIncrement(amount, increment decimal.Decimal) decimal.Decimal {
	if increment.IsZero() {
		return amount
	}
	return amount.Div(increment).Round(0).Mul(increment)
}

func decimalToFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
