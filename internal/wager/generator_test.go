package wager

import (
	"io"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/trackside/internal/combin"
	"github.com/yourusername/trackside/internal/config"
	"github.com/yourusername/trackside/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testGenerator(mutate func(*config.EngineConfig)) *Generator {
	cfg := config.DefaultEngineConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	return NewGenerator(&cfg, testLogger())
}

// noFloorGenerator disables the EV floor so enumeration counts are exact.
func noFloorGenerator() *Generator {
	return testGenerator(func(cfg *config.EngineConfig) {
		cfg.EVFloor = -1e18
	})
}

func testField(n int) models.Field {
	names := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf", "Hotel"}
	odds := []float64{1.5, 3.0, 5.0, 8.0, 12.0, 15.0, 20.0, 30.0}
	field := make(models.Field, 0, n)
	for i := 0; i < n; i++ {
		field = append(field, models.FieldEntry{
			Index:         i,
			ProgramNumber: i + 1,
			Name:          names[i%len(names)],
			BaseScore:     float64(100 - 10*i),
			DecimalOdds:   odds[i%len(odds)],
			Rank:          i + 1,
		})
	}
	return field
}

func countFamily(candidates []models.Candidate, family models.WagerFamily) int {
	count := 0
	for _, c := range candidates {
		if c.Family == family {
			count++
		}
	}
	return count
}

func TestGenerateEmptyField(t *testing.T) {
	gen := testGenerator(nil)
	_, err := gen.Generate(models.Field{})
	assert.ErrorIs(t, err, models.ErrEmptyField)
}

func TestGenerateOneHorsePassVerdict(t *testing.T) {
	gen := testGenerator(func(cfg *config.EngineConfig) {
		cfg.OneHorsePolicy = config.OneHorsePassVerdict
	})

	result, err := gen.Generate(testField(1))
	require.NoError(t, err)
	require.NotNil(t, result.ForcedVerdict)
	assert.Equal(t, models.VerdictPass, *result.ForcedVerdict)
	assert.Empty(t, result.Candidates)
}

func TestGenerateOneHorseDisableExotics(t *testing.T) {
	gen := testGenerator(nil) // default policy is disable_exotics

	result, err := gen.Generate(testField(1))
	require.NoError(t, err)
	require.Nil(t, result.ForcedVerdict)

	assert.Len(t, result.Candidates, 3)
	for _, c := range result.Candidates {
		assert.False(t, c.Family.IsExotic(), "one-horse field must not produce %s", c.Family)
	}
}

func TestGenerateBoxCounts(t *testing.T) {
	for _, n := range []int{4, 5, 6, 8} {
		gen := noFloorGenerator()
		result, err := gen.Generate(testField(n))
		require.NoError(t, err)

		wantTri := int(combin.Combinations(n, 3))
		assert.Equal(t, wantTri, countFamily(result.Candidates, models.WagerTrifectaBox), "trifecta boxes for n=%d", n)

		wantSuper := int(combin.Combinations(n, 4))
		assert.Equal(t, wantSuper, countFamily(result.Candidates, models.WagerSuperfectaBox), "superfecta boxes for n=%d", n)

		wantPairs := int(combin.Combinations(n, 2))
		assert.Equal(t, wantPairs, countFamily(result.Candidates, models.WagerQuinella), "quinellas for n=%d", n)
		assert.Equal(t, wantPairs, countFamily(result.Candidates, models.WagerExactaBox), "exacta boxes for n=%d", n)
	}
}

func TestGenerateBoxCosts(t *testing.T) {
	gen := noFloorGenerator()
	result, err := gen.Generate(testField(6))
	require.NoError(t, err)

	baseUnit := config.DefaultEngineConfig().BaseUnit
	for _, c := range result.Candidates {
		switch c.Family {
		case models.WagerTrifectaBox:
			assert.Equal(t, 6*baseUnit, c.StakeCost)
			assert.Equal(t, 6, c.CombinationsCovered)
		case models.WagerSuperfectaBox:
			assert.Equal(t, 24*baseUnit, c.StakeCost)
			assert.Equal(t, 24, c.CombinationsCovered)
		case models.WagerQuinella:
			// Both orders covered for a single unit.
			assert.Equal(t, baseUnit, c.StakeCost)
			assert.Equal(t, 2, c.CombinationsCovered)
		case models.WagerExactaBox:
			assert.Equal(t, 2*baseUnit, c.StakeCost)
		}
	}
}

func TestGenerateStraightDepthCapsPermutations(t *testing.T) {
	gen := noFloorGenerator() // straight depth 6
	result, err := gen.Generate(testField(8))
	require.NoError(t, err)

	// Straight exactas enumerate the top six only: P(6,2) = 30.
	assert.Equal(t, 30, countFamily(result.Candidates, models.WagerExacta))
	// Trifectas: P(6,3) = 120.
	assert.Equal(t, 120, countFamily(result.Candidates, models.WagerTrifecta))
}

func TestGenerateKeyedCandidates(t *testing.T) {
	gen := noFloorGenerator()
	result, err := gen.Generate(testField(8))
	require.NoError(t, err)

	// One key candidate per key horse down to the configured depth.
	keyDepth := config.DefaultEngineConfig().KeyHorseDepth
	assert.Equal(t, keyDepth, countFamily(result.Candidates, models.WagerTrifectaKey))
	assert.Equal(t, keyDepth, countFamily(result.Candidates, models.WagerSuperfectaKey))

	for _, c := range result.Candidates {
		switch c.Family {
		case models.WagerTrifectaKey:
			// Key over a with set of four: P(4,2) = 12 orderings.
			assert.Equal(t, 12, c.CombinationsCovered)
		case models.WagerSuperfectaKey:
			// Key over a with set of five: P(5,3) = 60 orderings.
			assert.Equal(t, 60, c.CombinationsCovered)
		}
	}
}

func TestGenerateExpectedValueIdentity(t *testing.T) {
	gen := noFloorGenerator()
	result, err := gen.Generate(testField(7))
	require.NoError(t, err)
	require.NotEmpty(t, result.Candidates)

	for _, c := range result.Candidates {
		want := c.HitProbability/100*c.EstimatedPayout.Likely - c.StakeCost
		assert.InDelta(t, want, c.ExpectedValue, 1e-9, "EV identity for %s %v", c.Family, c.ProgramNumbers)
		assert.Greater(t, c.HitProbability, 0.0)
		assert.LessOrEqual(t, c.HitProbability, 100.0)
		assert.LessOrEqual(t, c.EstimatedPayout.Min, c.EstimatedPayout.Likely)
		assert.LessOrEqual(t, c.EstimatedPayout.Likely, c.EstimatedPayout.Max)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	gen := testGenerator(nil)
	field := testField(6)

	first, err := gen.Generate(field)
	require.NoError(t, err)
	second, err := gen.Generate(field)
	require.NoError(t, err)

	assert.True(t, reflect.DeepEqual(first, second), "identical inputs must yield identical candidate sets")
}

func TestGenerateEVFloorKeepsTargetCount(t *testing.T) {
	// A brutal floor would drop everything; the generator must fall back
	// to the full set rather than starve the ranker.
	gen := testGenerator(func(cfg *config.EngineConfig) {
		cfg.EVFloor = 1e9
	})

	result, err := gen.Generate(testField(6))
	require.NoError(t, err)
	assert.NotEmpty(t, result.Candidates)
}

func TestGenerateMinimumFieldPerFamily(t *testing.T) {
	gen := noFloorGenerator()

	// Two horses: no three- or four-horse families.
	result, err := gen.Generate(testField(2))
	require.NoError(t, err)
	assert.Zero(t, countFamily(result.Candidates, models.WagerTrifectaBox))
	assert.Zero(t, countFamily(result.Candidates, models.WagerSuperfectaBox))
	assert.Equal(t, 1, countFamily(result.Candidates, models.WagerQuinella))

	// Four horses: exactly one superfecta box.
	result, err = gen.Generate(testField(4))
	require.NoError(t, err)
	assert.Equal(t, 1, countFamily(result.Candidates, models.WagerSuperfectaBox))
}

func TestBoxProbabilityExceedsStraight(t *testing.T) {
	gen := noFloorGenerator()
	field := testField(5)

	straight, err := gen.Generate(field)
	require.NoError(t, err)

	var exacta, box *models.Candidate
	for i := range straight.Candidates {
		c := &straight.Candidates[i]
		if c.Family == models.WagerExacta && c.HorseIndices[0] == 0 && c.HorseIndices[1] == 1 {
			exacta = c
		}
		if c.Family == models.WagerExactaBox && c.HorseIndices[0] == 0 && c.HorseIndices[1] == 1 {
			box = c
		}
	}
	require.NotNil(t, exacta)
	require.NotNil(t, box)
	assert.Greater(t, box.HitProbability, exacta.HitProbability)
}
