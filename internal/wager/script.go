package wager

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yourusername/trackside/internal/models"
)

// WindowScript renders a candidate into the literal phrase spoken at a
// pari-mutuel window. Program numbers only, never field indices.
func WindowScript(c models.Candidate) string {
	unit := formatDollars(scriptUnit(c))

	switch c.Family {
	case models.WagerWin, models.WagerPlace, models.WagerShow:
		return fmt.Sprintf("%s %s on number %d", unit, c.Family, c.ProgramNumbers[0])
	case models.WagerExacta:
		return fmt.Sprintf("%s EXACTA, %d over %d", unit, c.ProgramNumbers[0], c.ProgramNumbers[1])
	case models.WagerQuinella:
		return fmt.Sprintf("%s QUINELLA, %s", unit, joinSorted(c.ProgramNumbers))
	case models.WagerExactaBox:
		return fmt.Sprintf("%s EXACTA BOX, %s", unit, joinSorted(c.ProgramNumbers))
	case models.WagerTrifecta:
		return fmt.Sprintf("%s TRIFECTA, %s", unit, joinOrdered(c.ProgramNumbers))
	case models.WagerTrifectaBox:
		return fmt.Sprintf("%s TRIFECTA BOX, %s", unit, joinSorted(c.ProgramNumbers))
	case models.WagerTrifectaKey:
		return fmt.Sprintf("%s TRIFECTA KEY, %d over %s", unit, c.ProgramNumbers[0], joinSorted(c.ProgramNumbers[1:]))
	case models.WagerSuperfecta:
		return fmt.Sprintf("%s SUPERFECTA, %s", unit, joinOrdered(c.ProgramNumbers))
	case models.WagerSuperfectaBox:
		return fmt.Sprintf("%s SUPERFECTA BOX, %s", unit, joinSorted(c.ProgramNumbers))
	case models.WagerSuperfectaKey:
		return fmt.Sprintf("%s SUPERFECTA KEY, %d over %s", unit, c.ProgramNumbers[0], joinSorted(c.ProgramNumbers[1:]))
	default:
		return fmt.Sprintf("%s %s, %s", unit, c.Family, joinOrdered(c.ProgramNumbers))
	}
}

// scriptUnit is the per-combination base amount the clerk hears.
// A quinella is quoted at its full (single-unit) cost.
func scriptUnit(c models.Candidate) float64 {
	if c.Family == models.WagerQuinella || c.CombinationsCovered == 0 {
		return c.StakeCost
	}
	return c.StakeCost / float64(c.CombinationsCovered)
}

func formatDollars(amount float64) string {
	if amount == float64(int64(amount)) {
		return fmt.Sprintf("$%d", int64(amount))
	}
	return fmt.Sprintf("$%.2f", amount)
}

func joinOrdered(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "-")
}

func joinSorted(numbers []int) string {
	sorted := append([]int(nil), numbers...)
	sort.Ints(sorted)
	return joinOrdered(sorted)
}
