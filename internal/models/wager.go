package models

import (
	"fmt"
	"sort"
	"strings"
)

// WagerFamily identifies a pari-mutuel wager type offered at the window.
type WagerFamily string

const (
	WagerWin           WagerFamily = "WIN"
	WagerPlace         WagerFamily = "PLACE"
	WagerShow          WagerFamily = "SHOW"
	WagerExacta        WagerFamily = "EXACTA"
	WagerExactaBox     WagerFamily = "EXACTA_BOX"
	WagerQuinella      WagerFamily = "QUINELLA"
	WagerTrifecta      WagerFamily = "TRIFECTA"
	WagerTrifectaBox   WagerFamily = "TRIFECTA_BOX"
	WagerTrifectaKey   WagerFamily = "TRIFECTA_KEY"
	WagerSuperfecta    WagerFamily = "SUPERFECTA"
	WagerSuperfectaBox WagerFamily = "SUPERFECTA_BOX"
	WagerSuperfectaKey WagerFamily = "SUPERFECTA_KEY"
)

// MinFieldSize returns the smallest field the family can be offered on.
func (w WagerFamily) MinFieldSize() int {
	switch w {
	case WagerWin, WagerPlace, WagerShow:
		return 1
	case WagerExacta, WagerExactaBox, WagerQuinella:
		return 2
	case WagerTrifecta, WagerTrifectaBox, WagerTrifectaKey:
		return 3
	case WagerSuperfecta, WagerSuperfectaBox, WagerSuperfectaKey:
		return 4
	default:
		return 1
	}
}

// IsExotic reports whether the family involves more than one horse.
func (w WagerFamily) IsExotic() bool {
	return w.MinFieldSize() > 1
}

// PayoutEstimate bounds the expected return of a winning ticket.
type PayoutEstimate struct {
	Min    float64 `json:"min"`
	Likely float64 `json:"likely"`
	Max    float64 `json:"max"`
}

// Candidate is a single legal wager combination with its economics.
// Immutable once computed; a fresh set is produced per generation call.
type Candidate struct {
	Family              WagerFamily    `json:"family"`
	HorseIndices        []int          `json:"horse_indices"` // field indices, position order for straights
	ProgramNumbers      []int          `json:"program_numbers"`
	StakeCost           float64        `json:"stake_cost"`
	CombinationsCovered int            `json:"combinations_covered"`
	HitProbability      float64        `json:"hit_probability"` // 0-100
	EstimatedPayout     PayoutEstimate `json:"estimated_payout"`
	ExpectedValue       float64        `json:"expected_value"`
}

// SelectionKey returns the dedupe key: family plus the order-insensitive
// horse set. Two candidates with the same key cover the same selection.
func (c Candidate) SelectionKey() string {
	sorted := append([]int(nil), c.HorseIndices...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, idx := range sorted {
		parts[i] = fmt.Sprintf("%d", idx)
	}
	return string(c.Family) + ":" + strings.Join(parts, "-")
}

// RiskTier buckets candidates by hit probability.
type RiskTier string

const (
	TierConservative RiskTier = "conservative" // hit probability > 15%
	TierModerate     RiskTier = "moderate"     // 5% - 15%
	TierAggressive   RiskTier = "aggressive"   // < 5%
)

// TierFor classifies a hit probability (0-100) into a risk tier.
func TierFor(hitProbability float64) RiskTier {
	switch {
	case hitProbability > 15:
		return TierConservative
	case hitProbability >= 5:
		return TierModerate
	default:
		return TierAggressive
	}
}

// RankedRecommendation is a candidate enriched by the ranker.
type RankedRecommendation struct {
	Candidate
	Rank         int      `json:"rank"`
	RiskTier     RiskTier `json:"risk_tier"`
	WindowScript string   `json:"window_script"`
	Rationale    string   `json:"rationale"`
}
