// Package ranker selects the top-K wager candidates by expected value
// while guaranteeing minimum representation from each risk tier.
package ranker

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/trackside/internal/config"
	"github.com/yourusername/trackside/internal/models"
	"github.com/yourusername/trackside/internal/wager"
)

// Ranker applies the diversity-constrained selection.
type Ranker struct {
	cfg    *config.EngineConfig
	logger *logrus.Logger
}

// New creates a ranker.
func New(cfg *config.EngineConfig, logger *logrus.Logger) *Ranker {
	return &Ranker{cfg: cfg, logger: logger}
}

// Rank produces min(K, available) recommendations, EV-descending, with
// at least MinPerTier entries from each tier that has any eligible
// candidate and no repeated (family, horse set) selection.
func (r *Ranker) Rank(candidates []models.Candidate) []models.RankedRecommendation {
	unique := dedupe(candidates)
	sortByEV(unique)

	k := r.cfg.TargetCount
	if len(unique) < k {
		k = len(unique)
	}

	selected := make([]models.Candidate, 0, k)
	selectedKeys := make(map[string]bool)

	// Seed with the top candidates by raw EV.
	seed := r.cfg.SeedCount
	if seed > len(unique) {
		seed = len(unique)
	}
	if seed > k {
		seed = k
	}
	for _, c := range unique[:seed] {
		selected = append(selected, c)
		selectedKeys[c.SelectionKey()] = true
	}

	// Top up each under-represented tier from its own EV-sorted list.
	byTier := splitByTier(unique)
	for _, tier := range []models.RiskTier{models.TierConservative, models.TierModerate, models.TierAggressive} {
		pool := byTier[tier]
		if len(pool) == 0 {
			continue
		}
		have := countTier(selected, tier)
		for _, c := range pool {
			if have >= r.cfg.MinPerTier || len(selected) >= k {
				break
			}
			if selectedKeys[c.SelectionKey()] {
				continue
			}
			selected = append(selected, c)
			selectedKeys[c.SelectionKey()] = true
			have++
		}
	}

	// Backfill remaining slots from the global EV-sorted list.
	for _, c := range unique {
		if len(selected) >= k {
			break
		}
		if selectedKeys[c.SelectionKey()] {
			continue
		}
		selected = append(selected, c)
		selectedKeys[c.SelectionKey()] = true
	}

	sortByEV(selected)

	recommendations := make([]models.RankedRecommendation, len(selected))
	for i, c := range selected {
		tier := models.TierFor(c.HitProbability)
		recommendations[i] = models.RankedRecommendation{
			Candidate:    c,
			Rank:         i + 1,
			RiskTier:     tier,
			WindowScript: wager.WindowScript(c),
			Rationale:    rationale(c, tier),
		}
	}

	r.logger.WithFields(logrus.Fields{
		"candidates":   len(candidates),
		"unique":       len(unique),
		"recommended":  len(recommendations),
		"conservative": countTier(selected, models.TierConservative),
		"moderate":     countTier(selected, models.TierModerate),
		"aggressive":   countTier(selected, models.TierAggressive),
	}).Debug("Ranking complete")

	return recommendations
}

// dedupe keeps the best-EV candidate per (family, horse set) selection.
func dedupe(candidates []models.Candidate) []models.Candidate {
	best := make(map[string]models.Candidate)
	order := make([]string, 0, len(candidates))
	for _, c := range candidates {
		key := c.SelectionKey()
		existing, seen := best[key]
		if !seen {
			order = append(order, key)
			best[key] = c
			continue
		}
		if c.ExpectedValue > existing.ExpectedValue {
			best[key] = c
		}
	}
	out := make([]models.Candidate, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

func splitByTier(candidates []models.Candidate) map[models.RiskTier][]models.Candidate {
	byTier := make(map[models.RiskTier][]models.Candidate)
	for _, c := range candidates {
		tier := models.TierFor(c.HitProbability)
		byTier[tier] = append(byTier[tier], c)
	}
	return byTier
}

func countTier(candidates []models.Candidate, tier models.RiskTier) int {
	count := 0
	for _, c := range candidates {
		if models.TierFor(c.HitProbability) == tier {
			count++
		}
	}
	return count
}

// sortByEV sorts EV-descending with a deterministic tiebreak so identical
// inputs always produce identical output order.
func sortByEV(candidates []models.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].ExpectedValue != candidates[j].ExpectedValue {
			return candidates[i].ExpectedValue > candidates[j].ExpectedValue
		}
		return candidates[i].SelectionKey() < candidates[j].SelectionKey()
	})
}

func rationale(c models.Candidate, tier models.RiskTier) string {
	return fmt.Sprintf("%s play: %.1f%% hit chance, likely payout $%.2f on a $%.2f ticket (EV %+.2f)",
		tierLabel(tier), c.HitProbability, c.EstimatedPayout.Likely, c.StakeCost, c.ExpectedValue)
}

func tierLabel(tier models.RiskTier) string {
	switch tier {
	case models.TierConservative:
		return "Conservative"
	case models.TierModerate:
		return "Moderate"
	default:
		return "Aggressive"
	}
}
