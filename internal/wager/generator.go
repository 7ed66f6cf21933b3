// Package wager enumerates every legal wager combination for a scored
// field, pricing each with a hit probability, stake cost, payout estimate
// and expected value.
package wager

import (
	"github.com/sirupsen/logrus"
	"github.com/yourusername/trackside/internal/combin"
	"github.com/yourusername/trackside/internal/config"
	"github.com/yourusername/trackside/internal/models"
	"github.com/yourusername/trackside/internal/probability"
)

// Result is the outcome of one generation pass. ForcedVerdict is set
// only when the one-horse policy short-circuits generation.
type Result struct {
	Candidates    []models.Candidate
	ForcedVerdict *models.Verdict
}

// Generator produces wager candidates for a race field.
// Pure and re-entrant: identical inputs yield identical candidate sets.
type Generator struct {
	cfg    *config.EngineConfig
	logger *logrus.Logger
}

// NewGenerator creates a candidate generator.
func NewGenerator(cfg *config.EngineConfig, logger *logrus.Logger) *Generator {
	return &Generator{cfg: cfg, logger: logger}
}

// Generate enumerates every legal candidate for every wager family whose
// minimum field size is met. The field must be rank-sorted (best first)
// with scratches already removed.
func (g *Generator) Generate(field models.Field) (Result, error) {
	if len(field) == 0 {
		return Result{}, models.ErrEmptyField
	}

	if len(field) == 1 && g.cfg.OneHorsePolicy == config.OneHorsePassVerdict {
		verdict := models.VerdictPass
		g.logger.WithField("field_size", 1).Debug("One-horse field, signaling pass verdict")
		return Result{ForcedVerdict: &verdict}, nil
	}

	var candidates []models.Candidate
	candidates = append(candidates, g.straightSingles(field)...)
	candidates = append(candidates, g.twoHorse(field)...)
	candidates = append(candidates, g.threeHorse(field)...)
	candidates = append(candidates, g.fourHorse(field)...)

	kept := g.applyEVFloor(candidates)

	g.logger.WithFields(logrus.Fields{
		"field_size": len(field),
		"generated":  len(candidates),
		"kept":       len(kept),
	}).Debug("Candidate generation complete")

	return Result{Candidates: kept}, nil
}

// applyEVFloor drops candidates below the configured expected-value
// floor, unless doing so would leave fewer than the ranking target; in
// that case every candidate is retained.
func (g *Generator) applyEVFloor(candidates []models.Candidate) []models.Candidate {
	kept := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.ExpectedValue >= g.cfg.EVFloor {
			kept = append(kept, c)
		}
	}
	if len(kept) < g.cfg.TargetCount {
		return candidates
	}
	return kept
}

func (g *Generator) straightSingles(field models.Field) []models.Candidate {
	var out []models.Candidate
	for i := range field {
		winProb := probability.WinProbability(field, i)
		out = append(out,
			g.build(field, models.WagerWin, []int{i}, 1, winProb),
			g.build(field, models.WagerPlace, []int{i}, 1, probability.PlaceProbability(field, i)),
			g.build(field, models.WagerShow, []int{i}, 1, probability.ShowProbability(field, i)),
		)
	}
	return out
}

func (g *Generator) twoHorse(field models.Field) []models.Candidate {
	n := len(field)
	if n < 2 {
		return nil
	}
	var out []models.Candidate

	// Straight exactas over the rank-capped head of the field.
	depth := g.straightDepth(n)
	it := combin.NewPermutationIterator(depth, 2)
	for order, ok := it.Next(); ok; order, ok = it.Next() {
		prob := probability.ConditionalOrderProbability(field, order)
		out = append(out, g.build(field, models.WagerExacta, order, 1, prob))
	}

	// Quinellas and exacta boxes over every unordered pair.
	pairs := combin.NewCombinationIterator(n, 2)
	for pair, ok := pairs.Next(); ok; pair, ok = pairs.Next() {
		prob := g.boxProbability(field, pair)
		out = append(out, g.build(field, models.WagerQuinella, pair, 2, prob))
		out = append(out, g.build(field, models.WagerExactaBox, pair, 2, prob))
	}
	return out
}

func (g *Generator) threeHorse(field models.Field) []models.Candidate {
	n := len(field)
	if n < 3 {
		return nil
	}
	var out []models.Candidate

	depth := g.straightDepth(n)
	it := combin.NewPermutationIterator(depth, 3)
	for order, ok := it.Next(); ok; order, ok = it.Next() {
		prob := probability.ConditionalOrderProbability(field, order)
		out = append(out, g.build(field, models.WagerTrifecta, order, 1, prob))
	}

	triples := combin.NewCombinationIterator(n, 3)
	for triple, ok := triples.Next(); ok; triple, ok = triples.Next() {
		prob := g.boxProbability(field, triple)
		out = append(out, g.build(field, models.WagerTrifectaBox, triple, 6, prob))
	}

	out = append(out, g.keyed(field, models.WagerTrifectaKey, 2)...)
	return out
}

func (g *Generator) fourHorse(field models.Field) []models.Candidate {
	n := len(field)
	if n < 4 {
		return nil
	}
	var out []models.Candidate

	depth := g.straightDepth(n)
	if depth >= 4 {
		it := combin.NewPermutationIterator(depth, 4)
		for order, ok := it.Next(); ok; order, ok = it.Next() {
			prob := probability.ConditionalOrderProbability(field, order)
			out = append(out, g.build(field, models.WagerSuperfecta, order, 1, prob))
		}
	}

	quads := combin.NewCombinationIterator(n, 4)
	for quad, ok := quads.Next(); ok; quad, ok = quads.Next() {
		prob := g.boxProbability(field, quad)
		out = append(out, g.build(field, models.WagerSuperfectaBox, quad, 24, prob))
	}

	out = append(out, g.keyed(field, models.WagerSuperfectaKey, 3)...)
	return out
}

// keyed builds key candidates: one fixed key horse on top, combined with
// every ordering of tailSize horses drawn from a rank-capped "with" set.
// The with set is bounded to keep the combinatorics interactive.
func (g *Generator) keyed(field models.Field, family models.WagerFamily, tailSize int) []models.Candidate {
	n := len(field)
	withLimit := g.cfg.KeyWithLimit
	if family == models.WagerSuperfectaKey {
		withLimit++
	}

	var out []models.Candidate
	keyDepth := g.cfg.KeyHorseDepth
	if keyDepth > n {
		keyDepth = n
	}

	for key := 0; key < keyDepth; key++ {
		with := make([]int, 0, withLimit)
		for i := 0; i < n && len(with) < withLimit; i++ {
			if i != key {
				with = append(with, i)
			}
		}
		if len(with) < tailSize {
			continue
		}

		covered := 0
		prob := 0.0
		tails := combin.NewPermutationIterator(len(with), tailSize)
		for tail, ok := tails.Next(); ok; tail, ok = tails.Next() {
			order := make([]int, 0, tailSize+1)
			order = append(order, key)
			for _, t := range tail {
				order = append(order, with[t])
			}
			prob += probability.ConditionalOrderProbability(field, order)
			covered++
		}

		indices := append([]int{key}, with...)
		out = append(out, g.build(field, family, indices, covered, prob))
	}
	return out
}

// boxProbability sums the conditional order probability over every valid
// ordering of the boxed subset.
func (g *Generator) boxProbability(field models.Field, subset []int) float64 {
	prob := 0.0
	for _, order := range combin.Orderings(subset) {
		prob += probability.ConditionalOrderProbability(field, order)
	}
	return prob
}

// build assembles a candidate from its selection and raw probability.
func (g *Generator) build(field models.Field, family models.WagerFamily, indices []int, covered int, prob float64) models.Candidate {
	cost := g.cfg.BaseUnit * float64(covered)
	if family == models.WagerQuinella {
		// A quinella covers both orders for a single base unit.
		cost = g.cfg.BaseUnit
	}
	hitPct := prob * 100

	payout := estimatePayout(field, family, indices, g.cfg.BaseUnit)
	ev := hitPct/100*payout.Likely - cost

	return models.Candidate{
		Family:              family,
		HorseIndices:        append([]int(nil), indices...),
		ProgramNumbers:      field.ProgramNumbers(indices),
		StakeCost:           cost,
		CombinationsCovered: covered,
		HitProbability:      hitPct,
		EstimatedPayout:     payout,
		ExpectedValue:       ev,
	}
}

// straightDepth caps straight permutation enumeration to the best-ranked
// head of the field.
func (g *Generator) straightDepth(n int) int {
	if n < g.cfg.StraightDepth {
		return n
	}
	return g.cfg.StraightDepth
}
