// Package service orchestrates the wagering engine: probability adapter,
// candidate generator, ranker and formatter behind one entry point.
package service

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/yourusername/trackside/internal/metrics"
	"github.com/yourusername/trackside/internal/models"
)

// RecommendationCache memoizes race analyses keyed by field fingerprint.
// Generation is deterministic, so a fingerprint hit is always valid for
// the TTL window.
type RecommendationCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewRecommendationCache creates a bounded TTL cache.
func NewRecommendationCache(ttl time.Duration, maxSize int) *RecommendationCache {
	return &RecommendationCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// FingerprintField produces a stable cache key for a race analysis call.
func FingerprintField(track string, raceNumber int, field models.Field) string {
	payload, _ := json.Marshal(struct {
		Track string       `json:"track"`
		Race  int          `json:"race"`
		Field models.Field `json:"field"`
	}{track, raceNumber, field})
	hash := sha256.Sum256(payload)
	return fmt.Sprintf("%x", hash)
}

// Get retrieves a cached analysis.
func (rc *RecommendationCache) Get(key string) *RaceAnalysis {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if cached, found := rc.cache.Get(key); found {
		rc.hitCount++
		rc.updateMetrics()
		if analysis, ok := cached.(*RaceAnalysis); ok {
			return analysis
		}
	}

	rc.missCount++
	rc.updateMetrics()
	return nil
}

// Set stores an analysis.
func (rc *RecommendationCache) Set(key string, analysis *RaceAnalysis) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.cache.ItemCount() >= rc.maxSize {
		rc.cache.DeleteExpired()
	}
	rc.cache.Set(key, analysis, rc.ttl)
}

// Clear flushes the cache and resets counters.
func (rc *RecommendationCache) Clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.cache.Flush()
	rc.hitCount = 0
	rc.missCount = 0
}

// Stats returns cache hit statistics.
func (rc *RecommendationCache) Stats() (hits, misses uint64, ratio float64) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.statsLocked()
}

func (rc *RecommendationCache) statsLocked() (hits, misses uint64, ratio float64) {
	hits = rc.hitCount
	misses = rc.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

func (rc *RecommendationCache) updateMetrics() {
	_, _, ratio := rc.statsLocked()
	metrics.RecommendationCacheHitRatio.Set(ratio)
}
