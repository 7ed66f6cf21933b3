package allocator

import (
	"io"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/trackside/internal/config"
	"github.com/yourusername/trackside/internal/models"
)

func testAllocator() *Allocator {
	cfg := config.DefaultAllocationConfig()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(&cfg, log)
}

func card(bet, caution, pass int) []models.RaceCardEntry {
	var races []models.RaceCardEntry
	number := 1
	add := func(verdict models.Verdict, count int, baseEdge float64) {
		for i := 0; i < count; i++ {
			races = append(races, models.RaceCardEntry{
				RaceNumber: number,
				TrackName:  "Keeneland",
				Verdict:    verdict,
				Edge:       baseEdge - float64(i),
			})
			number++
		}
	}
	add(models.VerdictBet, bet, 30)
	add(models.VerdictCaution, caution, 10)
	add(models.VerdictPass, pass, 2)
	return races
}

func sumAllocations(plan *Plan) float64 {
	sum := 0.0
	for _, a := range plan.Allocations {
		sum += a.AllocatedBudget
	}
	return sum
}

func TestBuildExactSumInvariant(t *testing.T) {
	alloc := testAllocator()

	plan, err := alloc.Build(500, models.StyleBalanced, card(5, 3, 2))
	require.NoError(t, err)

	assert.InDelta(t, 75.0, plan.MultiRaceReserve, 1e-9)  // 15% reserve
	assert.InDelta(t, 425.0, plan.SingleRaceBankroll, 1e-9)
	assert.InDelta(t, plan.SingleRaceBankroll, sumAllocations(plan), 1e-9)
	assert.InDelta(t, plan.TotalBankroll, sumAllocations(plan)+plan.MultiRaceReserve, 1e-9)
}

func TestBuildReservePerStyle(t *testing.T) {
	alloc := testAllocator()
	races := card(3, 3, 3)

	tests := []struct {
		style   models.RiskStyle
		reserve float64
	}{
		{models.StyleSafe, 25},        // 5% of 500
		{models.StyleBalanced, 75},    // 15%
		{models.StyleAggressive, 125}, // 25%
	}
	for _, tt := range tests {
		plan, err := alloc.Build(500, tt.style, races)
		require.NoError(t, err)
		assert.InDelta(t, tt.reserve, plan.MultiRaceReserve, 1e-9, "style %s", tt.style)
		assert.InDelta(t, plan.SingleRaceBankroll, sumAllocations(plan), 1e-9, "style %s", tt.style)
	}
}

func TestBuildBetRacesGetTheMost(t *testing.T) {
	alloc := testAllocator()

	plan, err := alloc.Build(1000, models.StyleSafe, card(3, 3, 3))
	require.NoError(t, err)

	perVerdict := map[models.Verdict]float64{}
	for _, a := range plan.Allocations {
		if a.AllocatedBudget > perVerdict[a.Verdict] {
			perVerdict[a.Verdict] = a.AllocatedBudget
		}
	}
	assert.Greater(t, perVerdict[models.VerdictBet], perVerdict[models.VerdictCaution])
	assert.Greater(t, perVerdict[models.VerdictCaution], perVerdict[models.VerdictPass])
}

func TestBuildRoundingAndMinimum(t *testing.T) {
	alloc := testAllocator()
	cfg := config.DefaultAllocationConfig()

	plan, err := alloc.Build(500, models.StyleBalanced, card(5, 3, 2))
	require.NoError(t, err)

	nonIncrement := 0
	for _, a := range plan.Allocations {
		assert.GreaterOrEqual(t, a.AllocatedBudget, cfg.MinimumPerRace)
		if remainder := math.Mod(a.AllocatedBudget, cfg.RoundIncrement); remainder > 1e-9 && cfg.RoundIncrement-remainder > 1e-9 {
			nonIncrement++
		}
	}
	// At most one race absorbs a sub-increment residual.
	assert.LessOrEqual(t, nonIncrement, 1)
}

func TestBuildTerminatesWhenMinimumBlocksReduction(t *testing.T) {
	// A minimum that is not a multiple of the increment can leave every
	// race with headroom smaller than one increment. The remainder loop
	// must still terminate, with the residual squaring the sum.
	cfg := config.DefaultAllocationConfig()
	cfg.MinimumPerRace = 12
	cfg.RoundIncrement = 5
	log := logrus.New()
	log.SetOutput(io.Discard)
	alloc := New(&cfg, log)

	// Single-race pool $25 across two BET races: each rounds to $15,
	// overshooting by $5, and neither can drop to $10 under a $12 minimum.
	plan, err := alloc.Build(29.41, models.StyleBalanced, card(2, 0, 0))
	require.NoError(t, err)
	assert.InDelta(t, plan.SingleRaceBankroll, sumAllocations(plan), 1e-9)
}

func TestBuildKeepsDuplicateRaceNumbersDistinct(t *testing.T) {
	alloc := testAllocator()

	// Two tracks can run the same race number on one card.
	races := []models.RaceCardEntry{
		{RaceNumber: 1, TrackName: "Keeneland", Verdict: models.VerdictBet, Edge: 30},
		{RaceNumber: 1, TrackName: "Saratoga", Verdict: models.VerdictPass, Edge: 1},
	}
	plan, err := alloc.Build(500, models.StyleBalanced, races)
	require.NoError(t, err)

	assert.InDelta(t, plan.SingleRaceBankroll, sumAllocations(plan), 1e-9)
	assert.Greater(t, plan.Allocations[0].AllocatedBudget, plan.Allocations[1].AllocatedBudget,
		"BET entry must keep its own budget, not the PASS entry's")
}

func TestBuildEmptyBucketRedistributesToBet(t *testing.T) {
	alloc := testAllocator()

	// No CAUTION or PASS races: their shares fold into BET and the whole
	// single-race bankroll still lands on the card.
	plan, err := alloc.Build(500, models.StyleBalanced, card(4, 0, 0))
	require.NoError(t, err)
	assert.InDelta(t, plan.SingleRaceBankroll, sumAllocations(plan), 1e-9)
}

func TestBuildEmptyBucketPrecedenceFallsThrough(t *testing.T) {
	alloc := testAllocator()

	// Only PASS races exist, so BET and CAUTION shares fall all the way
	// through to PASS.
	plan, err := alloc.Build(500, models.StyleBalanced, card(0, 0, 4))
	require.NoError(t, err)
	assert.InDelta(t, plan.SingleRaceBankroll, sumAllocations(plan), 1e-9)
}

func TestBuildRejectsBadInput(t *testing.T) {
	alloc := testAllocator()

	_, err := alloc.Build(0, models.StyleBalanced, card(2, 2, 2))
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	_, err = alloc.Build(-100, models.StyleBalanced, card(2, 2, 2))
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	_, err = alloc.Build(500, models.StyleBalanced, nil)
	assert.Error(t, err)

	_, err = alloc.Build(500, models.RiskStyle("reckless"), card(2, 2, 2))
	assert.Error(t, err)
}

func TestApplyOverrideIncreaseDrainsPassFirst(t *testing.T) {
	alloc := testAllocator()
	plan, err := alloc.Build(500, models.StyleBalanced, card(2, 2, 2))
	require.NoError(t, err)

	target := plan.Allocations[0] // highest-edge BET race
	require.Equal(t, models.VerdictBet, target.Verdict)

	updated, err := alloc.ApplyOverride(plan, target.RaceNumber, target.AllocatedBudget+50)
	require.NoError(t, err)

	// Exact sum preserved.
	assert.InDelta(t, sumAllocations(plan), sumAllocations(updated), 1e-9)

	// The other BET race is never raided.
	assert.Equal(t, plan.Allocations[1].AllocatedBudget, updated.Allocations[1].AllocatedBudget)

	// PASS races gave up budget before CAUTION.
	passBefore, passAfter := 0.0, 0.0
	for i := range plan.Allocations {
		if plan.Allocations[i].Verdict == models.VerdictPass {
			passBefore += plan.Allocations[i].AllocatedBudget
			passAfter += updated.Allocations[i].AllocatedBudget
		}
	}
	assert.Less(t, passAfter, passBefore)

	// Original plan untouched.
	assert.Equal(t, target.AllocatedBudget, plan.Allocations[0].AllocatedBudget)
}

func TestApplyOverrideDecreaseRedistributes(t *testing.T) {
	alloc := testAllocator()
	plan, err := alloc.Build(500, models.StyleBalanced, card(2, 2, 2))
	require.NoError(t, err)

	target := plan.Allocations[0]
	updated, err := alloc.ApplyOverride(plan, target.RaceNumber, target.AllocatedBudget-50)
	require.NoError(t, err)

	assert.InDelta(t, sumAllocations(plan), sumAllocations(updated), 1e-9)
	assert.InDelta(t, target.AllocatedBudget-50, updated.Allocations[0].AllocatedBudget, 1e-9)

	// BET races other than the target keep their budgets.
	assert.Equal(t, plan.Allocations[1].AllocatedBudget, updated.Allocations[1].AllocatedBudget)
}

func TestApplyOverrideNotApplicable(t *testing.T) {
	alloc := testAllocator()
	cfg := config.DefaultAllocationConfig()
	plan, err := alloc.Build(500, models.StyleBalanced, card(2, 2, 2))
	require.NoError(t, err)

	// Demand more than the non-BET races can surrender.
	target := plan.Allocations[0]
	updated, err := alloc.ApplyOverride(plan, target.RaceNumber, plan.SingleRaceBankroll)
	assert.ErrorIs(t, err, models.ErrOverrideNotApplicable)
	require.NotNil(t, updated)

	// The partial plan shows every donor squeezed to the minimum.
	for i, a := range updated.Allocations {
		if plan.Allocations[i].Verdict == models.VerdictBet {
			continue
		}
		assert.InDelta(t, cfg.MinimumPerRace, a.AllocatedBudget, 1e-9)
	}

	// Original plan untouched.
	assert.InDelta(t, 425.0, sumAllocations(plan), 1e-9)
}

func TestApplyOverrideEdgeCases(t *testing.T) {
	alloc := testAllocator()
	plan, err := alloc.Build(500, models.StyleBalanced, card(2, 2, 2))
	require.NoError(t, err)

	_, err = alloc.ApplyOverride(plan, 99, 50)
	assert.ErrorIs(t, err, models.ErrRaceNotInPlan)

	_, err = alloc.ApplyOverride(plan, plan.Allocations[0].RaceNumber, -10)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	// Zero delta is a no-op.
	same, err := alloc.ApplyOverride(plan, plan.Allocations[0].RaceNumber, plan.Allocations[0].AllocatedBudget)
	require.NoError(t, err)
	assert.Equal(t, plan.Allocations, same.Allocations)
}
