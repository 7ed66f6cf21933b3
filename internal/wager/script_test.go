package wager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/trackside/internal/models"
)

func TestWindowScriptStraights(t *testing.T) {
	tests := []struct {
		family models.WagerFamily
		want   string
	}{
		{models.WagerWin, "$1 WIN on number 9"},
		{models.WagerPlace, "$1 PLACE on number 9"},
		{models.WagerShow, "$1 SHOW on number 9"},
	}
	for _, tt := range tests {
		c := models.Candidate{
			Family:              tt.family,
			ProgramNumbers:      []int{9},
			StakeCost:           1,
			CombinationsCovered: 1,
		}
		assert.Equal(t, tt.want, WindowScript(c))
	}
}

func TestWindowScriptExacta(t *testing.T) {
	c := models.Candidate{
		Family:              models.WagerExacta,
		ProgramNumbers:      []int{4, 7},
		StakeCost:           1,
		CombinationsCovered: 1,
	}
	assert.Equal(t, "$1 EXACTA, 4 over 7", WindowScript(c))
}

func TestWindowScriptQuinellaQuotesFullCost(t *testing.T) {
	// Two combinations for a single unit; the clerk hears the full cost.
	c := models.Candidate{
		Family:              models.WagerQuinella,
		ProgramNumbers:      []int{7, 4},
		StakeCost:           1,
		CombinationsCovered: 2,
	}
	assert.Equal(t, "$1 QUINELLA, 4-7", WindowScript(c))
}

func TestWindowScriptBoxesSortProgramNumbers(t *testing.T) {
	c := models.Candidate{
		Family:              models.WagerExactaBox,
		ProgramNumbers:      []int{7, 4},
		StakeCost:           2,
		CombinationsCovered: 2,
	}
	assert.Equal(t, "$1 EXACTA BOX, 4-7", WindowScript(c))

	c = models.Candidate{
		Family:              models.WagerTrifectaBox,
		ProgramNumbers:      []int{7, 3, 5},
		StakeCost:           6,
		CombinationsCovered: 6,
	}
	assert.Equal(t, "$1 TRIFECTA BOX, 3-5-7", WindowScript(c))

	c = models.Candidate{
		Family:              models.WagerSuperfectaBox,
		ProgramNumbers:      []int{8, 2, 6, 4},
		StakeCost:           24,
		CombinationsCovered: 24,
	}
	assert.Equal(t, "$1 SUPERFECTA BOX, 2-4-6-8", WindowScript(c))
}

func TestWindowScriptStraightOrderPreserved(t *testing.T) {
	c := models.Candidate{
		Family:              models.WagerTrifecta,
		ProgramNumbers:      []int{5, 3, 7},
		StakeCost:           1,
		CombinationsCovered: 1,
	}
	assert.Equal(t, "$1 TRIFECTA, 5-3-7", WindowScript(c))

	c = models.Candidate{
		Family:              models.WagerSuperfecta,
		ProgramNumbers:      []int{9, 1, 4, 2},
		StakeCost:           1,
		CombinationsCovered: 1,
	}
	assert.Equal(t, "$1 SUPERFECTA, 9-1-4-2", WindowScript(c))
}

func TestWindowScriptKeys(t *testing.T) {
	c := models.Candidate{
		Family:              models.WagerTrifectaKey,
		ProgramNumbers:      []int{4, 7, 2, 5},
		StakeCost:           12,
		CombinationsCovered: 12,
	}
	assert.Equal(t, "$1 TRIFECTA KEY, 4 over 2-5-7", WindowScript(c))

	c = models.Candidate{
		Family:              models.WagerSuperfectaKey,
		ProgramNumbers:      []int{1, 8, 3, 6, 2},
		StakeCost:           60,
		CombinationsCovered: 60,
	}
	assert.Equal(t, "$1 SUPERFECTA KEY, 1 over 2-3-6-8", WindowScript(c))
}

func TestWindowScriptFractionalUnit(t *testing.T) {
	c := models.Candidate{
		Family:              models.WagerTrifectaBox,
		ProgramNumbers:      []int{1, 2, 3},
		StakeCost:           3,
		CombinationsCovered: 6,
	}
	assert.Equal(t, "$0.50 TRIFECTA BOX, 1-2-3", WindowScript(c))
}
