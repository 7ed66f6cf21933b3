package wager

import "github.com/yourusername/trackside/internal/models"

// Payout heuristics. Exotic payouts approximate the win-odds parlay of
// the selected horses scaled down by a family factor that stands in for
// pool takeout and public-combination overlap. Place and show prices use
// the standard fraction-of-win-odds rules of thumb. These are estimation
// heuristics, not pool math; keep them stable so candidate EV ordering
// stays comparable across generations.
const (
	placeOddsFactor = 0.4
	showOddsFactor  = 0.2

	exactaFactor     = 0.65
	quinellaFactor   = 0.5
	trifectaFactor   = 0.5
	superfectaFactor = 0.4

	straightMinFactor = 0.8
	straightMaxFactor = 1.25
	exoticMinFactor   = 0.5
	exoticMaxFactor   = 2.0
)

// estimatePayout bounds the return of a winning ticket at base-unit
// stake. For boxes and keys the estimate prices the single ordering that
// hits, so it is directly comparable with the straight families.
func estimatePayout(field models.Field, family models.WagerFamily, indices []int, baseUnit float64) models.PayoutEstimate {
	switch family {
	case models.WagerWin:
		return straightEstimate(baseUnit * (field[indices[0]].DecimalOdds + 1))
	case models.WagerPlace:
		return straightEstimate(baseUnit * (field[indices[0]].DecimalOdds*placeOddsFactor + 1))
	case models.WagerShow:
		return straightEstimate(baseUnit * (field[indices[0]].DecimalOdds*showOddsFactor + 1))
	default:
		return exoticEstimate(field, family, indices, baseUnit)
	}
}

func straightEstimate(likely float64) models.PayoutEstimate {
	return models.PayoutEstimate{
		Min:    likely * straightMinFactor,
		Likely: likely,
		Max:    likely * straightMaxFactor,
	}
}

func exoticEstimate(field models.Field, family models.WagerFamily, indices []int, baseUnit float64) models.PayoutEstimate {
	// Key candidates carry the key plus the whole with set; price the
	// parlay over the horses a winning ordering actually uses.
	horses := indices
	switch family {
	case models.WagerTrifectaKey:
		horses = keyedHorses(indices, 3)
	case models.WagerSuperfectaKey:
		horses = keyedHorses(indices, 4)
	}

	parlay := baseUnit
	for _, idx := range horses {
		parlay *= field[idx].DecimalOdds + 1
	}

	likely := parlay * familyFactor(family)
	return models.PayoutEstimate{
		Min:    likely * exoticMinFactor,
		Likely: likely,
		Max:    likely * exoticMaxFactor,
	}
}

// keyedHorses picks the key plus the best-ranked tail of the with set,
// the most probable winning ordering for the estimate.
func keyedHorses(indices []int, total int) []int {
	if len(indices) <= total {
		return indices
	}
	return indices[:total]
}

func familyFactor(family models.WagerFamily) float64 {
	switch family {
	case models.WagerExacta, models.WagerExactaBox:
		return exactaFactor
	case models.WagerQuinella:
		return quinellaFactor
	case models.WagerTrifecta, models.WagerTrifectaBox, models.WagerTrifectaKey:
		return trifectaFactor
	case models.WagerSuperfecta, models.WagerSuperfectaBox, models.WagerSuperfectaKey:
		return superfectaFactor
	default:
		return 1
	}
}
