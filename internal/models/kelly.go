package models

// KellyResult captures the outcome of a Kelly criterion evaluation.
// Pure value object; invalid input yields ShouldBet=false, never an error.
type KellyResult struct {
	Probability             float64 `json:"probability"`
	DecimalOdds             float64 `json:"decimal_odds"`
	Bankroll                float64 `json:"bankroll"`
	RawKellyFraction        float64 `json:"raw_kelly_fraction"`
	FractionalKellyFraction float64 `json:"fractional_kelly_fraction"`
	ShouldBet               bool    `json:"should_bet"`
	IsPositiveEV            bool    `json:"is_positive_ev"`
}

// SizedBet converts a Kelly fraction into a bounded dollar amount.
type SizedBet struct {
	RawDollarAmount    float64 `json:"raw_dollar_amount"`
	BoundedFinalAmount float64 `json:"bounded_final_amount"`
	CappedByMaxPercent bool    `json:"capped_by_max_percent"`
}
