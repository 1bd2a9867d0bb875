package domain

import "time"

// Grade is the letter authenticity grade of a product.
type Grade string

const (
	GradeA             Grade = "A"
	GradeB             Grade = "B"
	GradeC             Grade = "C"
	GradeD             Grade = "D"
	GradeF             Grade = "F"
	GradeNotApplicable Grade = "N/A"
)

// Rank orders grades from A (1) to F (5). N/A ranks 0.
func (g Grade) Rank() int {
	switch g {
	case GradeA:
		return 1
	case GradeB:
		return 2
	case GradeC:
		return 3
	case GradeD:
		return 4
	case GradeF:
		return 5
	default:
		return 0
	}
}

// AggregateMetrics summarises a batch of verdicts. Pointer fields are nil
// when the value is undefined for the batch.
type AggregateMetrics struct {
	TotalReviews     int      `json:"total_reviews"`
	FakeCount        int      `json:"fake_count"`
	GenuineCount     int      `json:"genuine_count"`
	FakePercentage   *float64 `json:"fake_percentage"`
	OriginalRating   *float64 `json:"original_rating"`
	AdjustedRating   *float64 `json:"adjusted_rating"`
	RatingDifference *float64 `json:"rating_difference"`
	Grade            Grade    `json:"grade"`
	GradeDescription string   `json:"grade_description"`
}

// PatternInsight counts how often a suspicious pattern appeared among fake reviews.
type PatternInsight struct {
	Code        ReasonCode `json:"code"`
	Description string     `json:"description"`
	Frequency   int        `json:"frequency"`
}

// RatingDistribution is a 1..5 star histogram split by label.
type RatingDistribution struct {
	Genuine [5]int `json:"genuine"`
	Fake    [5]int `json:"fake"`
}

// StoredAnalysis is the persisted summary of a finished analysis.
type StoredAnalysis struct {
	AnalysisID   string           `json:"analysis_id"`
	ProductID    string           `json:"product_id"`
	AnalyzedAt   time.Time        `json:"analyzed_at"`
	Metrics      AggregateMetrics `json:"metrics"`
	Patterns     []PatternInsight `json:"patterns"`
	Summary      string           `json:"summary"`
	Degraded     bool             `json:"degraded"`
	ModelVersion string           `json:"model_version,omitempty"`
	Verdicts     []Verdict        `json:"verdicts"`
}
