package domain

import "time"

// Label is the binary authenticity decision for one review.
type Label string

const (
	LabelGenuine Label = "genuine"
	LabelFake    Label = "fake"
)

// ScoreSource tells which scorer produced a sub-score.
type ScoreSource string

const (
	SourceRule  ScoreSource = "rule"
	SourceModel ScoreSource = "model"
)

// ReasonCode identifies a triggered heuristic check.
type ReasonCode string

// RawReview is one scraped review record as received from a source.
type RawReview struct {
	ID           string `json:"review_id,omitempty"`
	ReviewerName string `json:"reviewer_name,omitempty"`
	Rating       int    `json:"rating"`
	Title        string `json:"title,omitempty"`
	Body         string `json:"text"`
	Date         string `json:"date,omitempty"`
	Verified     bool   `json:"verified_purchase"`
	HelpfulVotes int    `json:"helpful_votes,omitempty"`
	ProductTitle string `json:"product_title,omitempty"`
	ProductImage string `json:"product_image,omitempty"`
}

// FeatureVector holds every signal extracted from a single review.
type FeatureVector struct {
	ReviewID string
	Rating   int
	Verified bool

	Text   string
	Title  string
	Tokens []string

	WordCount     int
	CharCount     int
	SentenceCount int
	TooShort      bool
	Detailed      bool
	Generic       bool

	Specificity       float64
	SpecificTermCount int

	Sentiment      float64
	RatingMismatch bool

	PromoPhraseCount      int
	MarketingPatternCount int
	Marketing             bool
	ExcessivePositivity   bool

	ExcessivePunctuation bool
	ExcessiveCaps        bool
	MaxWordRepetition    int
	RepetitiveWords      bool
	ExtremeRating        bool

	NearDuplicate  bool
	DuplicateCount int
}

// Reason is a triggered rule together with its contribution.
type Reason struct {
	Code   ReasonCode
	Weight float64
}

// SubScore is the output of either the rule scorer or the learned classifier.
type SubScore struct {
	Value       float64
	Source      ScoreSource
	Reasons     []Reason
	Mitigations []ReasonCode
	Available   bool
}

// Verdict is the final per-review decision. It is never mutated after creation.
type Verdict struct {
	ReviewID    string       `json:"review_id"`
	Label       Label        `json:"label"`
	Confidence  float64      `json:"confidence"`
	Reasons     []string     `json:"reasons"`
	ReasonCodes []ReasonCode `json:"reason_codes"`
	Highlights  []string     `json:"highlights,omitempty"`
	RuleScore   float64      `json:"rule_score"`
	ModelScore  *float64     `json:"model_score"`
	RuleOnly    bool         `json:"rule_only"`
}

// IsFake reports whether the verdict labels the review as fake.
func (v Verdict) IsFake() bool {
	return v.Label == LabelFake
}

// AnnotatedReview pairs a review with its verdict for presentation.
type AnnotatedReview struct {
	Review  RawReview `json:"review"`
	Verdict Verdict   `json:"verdict"`
}

// AnalysisResult is everything produced for one batch of reviews.
type AnalysisResult struct {
	AnalysisID   string             `json:"analysis_id"`
	ProductID    string             `json:"product_id"`
	AnalyzedAt   time.Time          `json:"analyzed_at"`
	Metrics      AggregateMetrics   `json:"metrics"`
	Patterns     []PatternInsight   `json:"patterns"`
	Distribution RatingDistribution `json:"rating_distribution"`
	Summary      string             `json:"summary"`
	Reviews      []AnnotatedReview  `json:"reviews"`
	Degraded     bool               `json:"degraded"`
	ModelVersion string             `json:"model_version,omitempty"`
}
