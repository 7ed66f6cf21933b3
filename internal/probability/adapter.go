// Package probability converts externally scored fields into normalized
// win/place/show probabilities and implied-odds edge. Stateless per race.
//
// Finish-order probabilities use the sequential share-of-remaining-score
// heuristic: the chance a horse fills the next position is its score
// divided by the total score of the horses still unplaced. This is a
// deliberate simplification kept for behavioral parity with the
// handicapping model that feeds this engine.
package probability

import (
	"math"

	"github.com/yourusername/trackside/internal/models"
)

// WinProbability returns the normalized win probability for the entry at
// the given field index: its score share of the field total.
func WinProbability(field models.Field, index int) float64 {
	total := field.TotalScore()
	if total <= 0 || index < 0 || index >= len(field) {
		return 0
	}
	return field[index].BaseScore / total
}

// ConditionalOrderProbability returns the probability that the given
// field indices finish in exactly the given order, by conditional
// multiplication over the shrinking remainder of the field.
func ConditionalOrderProbability(field models.Field, order []int) float64 {
	remaining := field.TotalScore()
	if remaining <= 0 {
		return 0
	}
	prob := 1.0
	for _, idx := range order {
		if idx < 0 || idx >= len(field) || remaining <= 0 {
			return 0
		}
		prob *= field[idx].BaseScore / remaining
		remaining -= field[idx].BaseScore
	}
	return prob
}

// PlaceProbability returns the probability the entry finishes first or
// second.
func PlaceProbability(field models.Field, index int) float64 {
	return topNProbability(field, index, 2)
}

// ShowProbability returns the probability the entry finishes in the top
// three.
func ShowProbability(field models.Field, index int) float64 {
	return topNProbability(field, index, 3)
}

// topNProbability sums P(entry lands in position p) for p in [1..n],
// conditioning each position on every arrangement of better finishers.
func topNProbability(field models.Field, index int, n int) float64 {
	if index < 0 || index >= len(field) {
		return 0
	}
	if n >= len(field) {
		return 1
	}

	others := make([]int, 0, len(field)-1)
	for i := range field {
		if i != index {
			others = append(others, i)
		}
	}

	total := WinProbability(field, index)
	// Position p (0-based): sum over ordered selections of p other
	// horses ahead of ours.
	for p := 1; p < n; p++ {
		total += sumOrderedPrefix(field, others, index, p)
	}
	return math.Min(1, total)
}

func sumOrderedPrefix(field models.Field, others []int, index int, depth int) float64 {
	sum := 0.0
	var walk func(prefix []int, used map[int]bool)
	walk = func(prefix []int, used map[int]bool) {
		if len(prefix) == depth {
			order := append(append([]int(nil), prefix...), index)
			sum += ConditionalOrderProbability(field, order)
			return
		}
		for _, o := range others {
			if used[o] {
				continue
			}
			used[o] = true
			walk(append(prefix, o), used)
			used[o] = false
		}
	}
	walk(nil, make(map[int]bool))
	return sum
}

// ImpliedProbability converts net decimal odds into the win probability
// the public price implies. Odds of 4.0 (4-1) imply 1/5 = 20%.
func ImpliedProbability(decimalOdds float64) float64 {
	if decimalOdds < 0 {
		return 0
	}
	return 1.0 / (decimalOdds + 1.0)
}

// Overlay returns the percentage by which the model probability exceeds
// the odds-implied probability. Positive values indicate value.
func Overlay(field models.Field, index int) float64 {
	if index < 0 || index >= len(field) {
		return 0
	}
	implied := ImpliedProbability(field[index].DecimalOdds)
	if implied <= 0 {
		return 0
	}
	model := WinProbability(field, index)
	return (model - implied) / implied * 100
}
