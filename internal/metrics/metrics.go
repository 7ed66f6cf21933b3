// Package metrics provides the centralized Prometheus registry for the
// wagering engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	CandidatesGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trackside",
		Name:      "candidates_generated_total",
		Help:      "Total number of wager candidates generated",
	})
	RecommendationsServedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trackside",
		Name:      "recommendations_served_total",
		Help:      "Total number of ranked recommendation lists served",
	})
	BetsPlacedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trackside",
		Name:      "bets_placed_total",
		Help:      "Total number of bets recorded in session ledgers",
	})
	BetsWonTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trackside",
		Name:      "bets_won_total",
		Help:      "Total number of winning bets recorded",
	})
	BetsLostTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trackside",
		Name:      "bets_lost_total",
		Help:      "Total number of losing bets recorded",
	})
	DayPlansBuiltTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trackside",
		Name:      "day_plans_built_total",
		Help:      "Total number of day allocation plans built",
	})
)

// Gauge metrics
var (
	CurrentBankroll = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trackside",
		Name:      "current_bankroll",
		Help:      "Current session bankroll in currency units",
	})
	RecommendationCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trackside",
		Name:      "recommendation_cache_hit_ratio",
		Help:      "Hit ratio of the race recommendation cache",
	})
	VerdictsByRace = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "trackside",
		Name:      "race_verdict",
		Help:      "Latest verdict per analyzed race (1=BET, 0.5=CAUTION, 0=PASS)",
	}, []string{"track", "race"})
)

// Histogram metrics
var (
	GenerationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trackside",
		Name:      "generation_duration_seconds",
		Help:      "Duration of full-field candidate generation in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(CandidatesGeneratedTotal)
		registry.MustRegister(RecommendationsServedTotal)
		registry.MustRegister(BetsPlacedTotal)
		registry.MustRegister(BetsWonTotal)
		registry.MustRegister(BetsLostTotal)
		registry.MustRegister(DayPlansBuiltTotal)

		registry.MustRegister(CurrentBankroll)
		registry.MustRegister(RecommendationCacheHitRatio)
		registry.MustRegister(VerdictsByRace)

		registry.MustRegister(GenerationDuration)
	})
	return registry
}

// Handler returns an HTTP handler that serves the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(InitRegistry(), promhttp.HandlerOpts{})
}
