// Package hybrid blends rule and model sub-scores into a final verdict.
package hybrid

import (
	"sort"

	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/rules"
)

// Defaults for the blend.
const (
	DefaultRuleWeight        = 0.4
	DefaultModelWeight       = 0.6
	DefaultDecisionThreshold = 0.5
	DefaultMaxReasons        = 5

	// ModelOnlyReason explains a fake verdict that no heuristic accounts for.
	ModelOnlyReason = "Flagged by pattern-based detection"
	// ConsistentSentiment is shown for genuine reviews whose tone matches the rating.
	ConsistentSentiment = "Sentiment consistent with rating"
	// NoSuspiciousPatterns is shown for genuine reviews with no triggered rule.
	NoSuspiciousPatterns = "No suspicious patterns detected"
	verifiedHighlight    = "Verified purchase"
)

// Config tunes the blend. Weights are normalised to sum to 1.
type Config struct {
	RuleWeight        float64
	ModelWeight       float64
	DecisionThreshold float64
	MaxReasons        int
}

// DefaultConfig returns the stock blend.
func DefaultConfig() Config {
	return Config{
		RuleWeight:        DefaultRuleWeight,
		ModelWeight:       DefaultModelWeight,
		DecisionThreshold: DefaultDecisionThreshold,
		MaxReasons:        DefaultMaxReasons,
	}
}

// Scorer combines sub-scores. It is stateless apart from its configuration.
type Scorer struct {
	ruleWeight  float64
	modelWeight float64
	threshold   float64
	maxReasons  int
}

// NewScorer normalises the configuration and falls back to defaults for invalid values.
func NewScorer(cfg Config) *Scorer {
	rw, mw := cfg.RuleWeight, cfg.ModelWeight
	if rw < 0 || mw < 0 || rw+mw <= 0 {
		rw, mw = DefaultRuleWeight, DefaultModelWeight
	}
	sum := rw + mw

	threshold := cfg.DecisionThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultDecisionThreshold
	}

	maxReasons := cfg.MaxReasons
	if maxReasons <= 0 {
		maxReasons = DefaultMaxReasons
	}

	return &Scorer{
		ruleWeight:  rw / sum,
		modelWeight: mw / sum,
		threshold:   threshold,
		maxReasons:  maxReasons,
	}
}

// Threshold returns the decision threshold in use.
func (s *Scorer) Threshold() float64 {
	return s.threshold
}

// Combine produces the verdict for one review. When the model sub-score is
// unavailable its weight moves to the rule score, so confidence equals the
// rule value.
func (s *Scorer) Combine(reviewID string, fv domain.FeatureVector, rule, model domain.SubScore) domain.Verdict {
	v := domain.Verdict{
		ReviewID:  reviewID,
		RuleScore: rule.Value,
	}

	if model.Available {
		mv := model.Value
		v.ModelScore = &mv
		v.Confidence = clamp01(s.ruleWeight*rule.Value + s.modelWeight*model.Value)
	} else {
		v.RuleOnly = true
		v.Confidence = clamp01(rule.Value)
	}

	v.Label = domain.LabelGenuine
	if v.Confidence >= s.threshold {
		v.Label = domain.LabelFake
	}

	v.ReasonCodes, v.Reasons = s.rankReasons(rule.Reasons)
	if v.Label == domain.LabelFake && len(v.Reasons) == 0 {
		v.Reasons = []string{ModelOnlyReason}
	}
	if v.Label == domain.LabelGenuine {
		v.Highlights = highlights(fv, rule)
	}

	return v
}

// rankReasons orders triggered rules by weight, highest first, keeping table
// order for ties, then deduplicates display strings and applies the cap.
func (s *Scorer) rankReasons(reasons []domain.Reason) ([]domain.ReasonCode, []string) {
	ranked := append([]domain.Reason(nil), reasons...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Weight > ranked[j].Weight
	})

	codes := make([]domain.ReasonCode, 0, len(ranked))
	texts := make([]string, 0, len(ranked))
	seen := map[string]bool{}
	for _, r := range ranked {
		text := rules.Describe(r.Code)
		if seen[text] {
			continue
		}
		seen[text] = true
		codes = append(codes, r.Code)
		texts = append(texts, text)
		if len(texts) == s.maxReasons {
			break
		}
	}
	return codes, texts
}

func highlights(fv domain.FeatureVector, rule domain.SubScore) []string {
	var out []string
	if fv.Verified {
		out = append(out, verifiedHighlight)
	}
	for _, code := range rule.Mitigations {
		out = append(out, rules.Describe(code))
	}
	if !fv.RatingMismatch && fv.Sentiment != 0 {
		out = append(out, ConsistentSentiment)
	}
	if len(rule.Reasons) == 0 {
		out = append(out, NoSuspiciousPatterns)
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
