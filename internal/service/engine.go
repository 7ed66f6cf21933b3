package service

import (
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/trackside/internal/config"
	"github.com/yourusername/trackside/internal/metrics"
	"github.com/yourusername/trackside/internal/models"
	"github.com/yourusername/trackside/internal/probability"
	"github.com/yourusername/trackside/internal/ranker"
	"github.com/yourusername/trackside/internal/wager"
)

// RaceAnalysis is the engine's full output for one race.
type RaceAnalysis struct {
	TrackName       string                        `json:"track_name"`
	RaceNumber      int                           `json:"race_number"`
	Verdict         models.Verdict                `json:"verdict"`
	BestOverlay     float64                       `json:"best_overlay"`
	ValuePlay       *string                       `json:"value_play,omitempty"`
	Recommendations []models.RankedRecommendation `json:"recommendations"`
	GeneratedAt     time.Time                     `json:"generated_at"`
}

// Engine ties the probability adapter, candidate generator and ranker
// into a single synchronous entry point. Stateless apart from the
// memoization cache; safe to call repeatedly with the same inputs.
type Engine struct {
	cfg       *config.EngineConfig
	generator *wager.Generator
	ranker    *ranker.Ranker
	cache     *RecommendationCache
	logger    *logrus.Logger
}

// NewEngine creates the wagering engine.
func NewEngine(cfg *config.EngineConfig, logger *logrus.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		generator: wager.NewGenerator(cfg, logger),
		ranker:    ranker.New(cfg, logger),
		cache:     NewRecommendationCache(time.Duration(cfg.CacheTTLSeconds)*time.Second, cfg.CacheMaxSize),
		logger:    logger,
	}
}

// AnalyzeRace produces the ranked recommendation list and verdict for a
// scored field. The field must be rank-sorted with scratches removed.
func (e *Engine) AnalyzeRace(track string, raceNumber int, field models.Field) (*RaceAnalysis, error) {
	key := FingerprintField(track, raceNumber, field)
	if cached := e.cache.Get(key); cached != nil {
		return cached, nil
	}

	started := time.Now()
	result, err := e.generator.Generate(field)
	if err != nil {
		return nil, err
	}
	metrics.GenerationDuration.Observe(time.Since(started).Seconds())
	metrics.CandidatesGeneratedTotal.Add(float64(len(result.Candidates)))

	analysis := &RaceAnalysis{
		TrackName:   track,
		RaceNumber:  raceNumber,
		BestOverlay: bestOverlay(field),
		GeneratedAt: time.Now().UTC(),
	}

	if result.ForcedVerdict != nil {
		analysis.Verdict = *result.ForcedVerdict
	} else {
		analysis.Recommendations = e.ranker.Rank(result.Candidates)
		analysis.Verdict = e.verdict(analysis.BestOverlay, analysis.Recommendations)
	}

	if analysis.Verdict == models.VerdictBet {
		analysis.ValuePlay = valuePlay(field)
	}

	metrics.RecommendationsServedTotal.Inc()
	e.recordVerdictMetric(analysis)
	e.cache.Set(key, analysis)

	e.logger.WithFields(logrus.Fields{
		"track":           track,
		"race":            raceNumber,
		"field_size":      len(field),
		"verdict":         analysis.Verdict,
		"best_overlay":    analysis.BestOverlay,
		"recommendations": len(analysis.Recommendations),
	}).Info("Race analyzed")

	return analysis, nil
}

// verdict classifies the race from its best overlay and whether any
// recommended play carries positive expected value.
func (e *Engine) verdict(bestOverlay float64, recommendations []models.RankedRecommendation) models.Verdict {
	positiveEV := false
	for _, rec := range recommendations {
		if rec.ExpectedValue > 0 {
			positiveEV = true
			break
		}
	}

	switch {
	case bestOverlay >= e.cfg.BetVerdictOverlay && positiveEV:
		return models.VerdictBet
	case bestOverlay >= e.cfg.CautionVerdictOverlay:
		return models.VerdictCaution
	default:
		return models.VerdictPass
	}
}

func (e *Engine) recordVerdictMetric(analysis *RaceAnalysis) {
	value := 0.0
	switch analysis.Verdict {
	case models.VerdictBet:
		value = 1
	case models.VerdictCaution:
		value = 0.5
	}
	metrics.VerdictsByRace.WithLabelValues(analysis.TrackName, itoa(analysis.RaceNumber)).Set(value)
}

// bestOverlay finds the largest model-over-implied edge in the field.
func bestOverlay(field models.Field) float64 {
	best := 0.0
	for i := range field {
		if overlay := probability.Overlay(field, i); overlay > best {
			best = overlay
		}
	}
	return best
}

// valuePlay names the horse carrying the best overlay.
func valuePlay(field models.Field) *string {
	bestIdx := -1
	best := 0.0
	for i := range field {
		if overlay := probability.Overlay(field, i); overlay > best {
			best = overlay
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return nil
	}
	play := field[bestIdx].Name + " (#" + itoa(field[bestIdx].ProgramNumber) + ")"
	return &play
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
