package service

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/trackside/internal/config"
	"github.com/yourusername/trackside/internal/models"
)

func testEngine(mutate func(*config.EngineConfig)) *Engine {
	cfg := config.DefaultEngineConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewEngine(&cfg, log)
}

// evenField builds a four-horse field with equal scores, so each horse
// models at 25% to win. firstOdds controls the overlay on horse one:
// odds 3.0 imply exactly 25%, anything longer is an overlay.
func evenField(firstOdds float64) models.Field {
	names := []string{"Night Auditor", "Copper Kettle", "Stage Whisper", "Borrowed Time"}
	field := make(models.Field, 4)
	for i := range field {
		field[i] = models.FieldEntry{
			Index:         i,
			ProgramNumber: i + 1,
			Name:          names[i],
			BaseScore:     25,
			DecimalOdds:   3.0,
			Rank:          i + 1,
		}
	}
	field[0].DecimalOdds = firstOdds
	return field
}

func TestAnalyzeRaceBetVerdict(t *testing.T) {
	engine := testEngine(nil)

	// Odds 4.0 imply 20% against a 25% model: a 25% overlay, and the win
	// bet on horse one carries positive expected value.
	analysis, err := engine.AnalyzeRace("Keeneland", 3, evenField(4.0))
	require.NoError(t, err)

	assert.Equal(t, models.VerdictBet, analysis.Verdict)
	assert.InDelta(t, 25.0, analysis.BestOverlay, 1e-9)
	require.NotNil(t, analysis.ValuePlay)
	assert.Contains(t, *analysis.ValuePlay, "Night Auditor")
	assert.Contains(t, *analysis.ValuePlay, "#1")
	assert.NotEmpty(t, analysis.Recommendations)
	assert.Equal(t, "Keeneland", analysis.TrackName)
	assert.Equal(t, 3, analysis.RaceNumber)
}

func TestAnalyzeRaceCautionVerdict(t *testing.T) {
	engine := testEngine(nil)

	// Odds 3.4 imply 22.7% against a 25% model: a 10% overlay, under the
	// bet threshold but over the caution threshold.
	analysis, err := engine.AnalyzeRace("Keeneland", 5, evenField(3.4))
	require.NoError(t, err)

	assert.Equal(t, models.VerdictCaution, analysis.Verdict)
	assert.InDelta(t, 10.0, analysis.BestOverlay, 1e-9)
	assert.Nil(t, analysis.ValuePlay, "value play is only named on a bet verdict")
}

func TestAnalyzeRacePassVerdict(t *testing.T) {
	engine := testEngine(nil)

	// Every horse is priced exactly at its model probability.
	analysis, err := engine.AnalyzeRace("Keeneland", 7, evenField(3.0))
	require.NoError(t, err)

	assert.Equal(t, models.VerdictPass, analysis.Verdict)
	assert.Zero(t, analysis.BestOverlay)
	assert.Nil(t, analysis.ValuePlay)
}

func TestAnalyzeRaceEmptyField(t *testing.T) {
	engine := testEngine(nil)

	_, err := engine.AnalyzeRace("Keeneland", 1, models.Field{})
	assert.ErrorIs(t, err, models.ErrEmptyField)
}

func TestAnalyzeRaceOneHorsePassPolicy(t *testing.T) {
	engine := testEngine(func(cfg *config.EngineConfig) {
		cfg.OneHorsePolicy = config.OneHorsePassVerdict
	})

	analysis, err := engine.AnalyzeRace("Keeneland", 9, evenField(4.0)[:1])
	require.NoError(t, err)

	assert.Equal(t, models.VerdictPass, analysis.Verdict)
	assert.Empty(t, analysis.Recommendations)
}

func TestAnalyzeRaceMemoizes(t *testing.T) {
	engine := testEngine(nil)
	field := evenField(4.0)

	first, err := engine.AnalyzeRace("Keeneland", 3, field)
	require.NoError(t, err)
	second, err := engine.AnalyzeRace("Keeneland", 3, field)
	require.NoError(t, err)

	assert.Same(t, first, second, "identical inputs must hit the cache")

	// A different race number misses.
	third, err := engine.AnalyzeRace("Keeneland", 4, field)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestFingerprintFieldStability(t *testing.T) {
	field := evenField(4.0)

	a := FingerprintField("Keeneland", 3, field)
	b := FingerprintField("Keeneland", 3, evenField(4.0))
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, FingerprintField("Saratoga", 3, field))
	assert.NotEqual(t, a, FingerprintField("Keeneland", 4, field))

	scratched := evenField(4.0)[:3]
	assert.NotEqual(t, a, FingerprintField("Keeneland", 3, scratched))
}

func TestRecommendationCacheStats(t *testing.T) {
	cache := NewRecommendationCache(time.Minute, 16)

	assert.Nil(t, cache.Get("missing"))

	cache.Set("key", &RaceAnalysis{TrackName: "Keeneland"})
	require.NotNil(t, cache.Get("key"))

	hits, misses, ratio := cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.InDelta(t, 0.5, ratio, 1e-9)

	cache.Clear()
	assert.Nil(t, cache.Get("key"))
}
