package models

// FieldEntry represents a single active horse in a scored race field.
// Entries arrive from the scoring subsystem already ranked; scratched
// horses are excluded before the field reaches this engine.
type FieldEntry struct {
	Index               int     `json:"index"`
	ProgramNumber       int     `json:"program_number" validate:"required,gt=0"`
	Name                string  `json:"name" validate:"required"`
	BaseScore           float64 `json:"base_score" validate:"gte=0"`
	DecimalOdds         float64 `json:"decimal_odds" validate:"gte=0"` // net odds, 4.0 means 4-1
	ModelWinProbability float64 `json:"model_win_probability"`
	Rank                int     `json:"rank"`
}

// Field is a rank-sorted slice of active entries for one race.
type Field []FieldEntry

// TotalScore sums the base scores across the field.
func (f Field) TotalScore() float64 {
	total := 0.0
	for _, e := range f {
		total += e.BaseScore
	}
	return total
}

// Size returns the number of active horses.
func (f Field) Size() int {
	return len(f)
}

// ProgramNumbers maps field indices to program numbers.
func (f Field) ProgramNumbers(indices []int) []int {
	numbers := make([]int, len(indices))
	for i, idx := range indices {
		numbers[i] = f[idx].ProgramNumber
	}
	return numbers
}
