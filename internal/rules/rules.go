// Package rules scores a feature vector against a table of weighted heuristics.
package rules

import (
	"math"

	"ReviewScanner/internal/domain"
)

// Reason codes emitted by the default table.
const (
	CodeUnverified        domain.ReasonCode = "unverified_purchase"
	CodeShortGeneric      domain.ReasonCode = "short_generic"
	CodeVeryShort         domain.ReasonCode = "very_short"
	CodePromoHeavy        domain.ReasonCode = "promo_phrases_heavy"
	CodePromo             domain.ReasonCode = "promo_phrases"
	CodeMarketing         domain.ReasonCode = "marketing_language"
	CodeExcessivePositive domain.ReasonCode = "excessive_positivity"
	CodeMismatch          domain.ReasonCode = "rating_sentiment_mismatch"
	CodeExtremeVague      domain.ReasonCode = "extreme_low_specificity"
	CodePunctuation       domain.ReasonCode = "excessive_punctuation"
	CodeCaps              domain.ReasonCode = "excessive_caps"
	CodeRepetitive        domain.ReasonCode = "repetitive_words"
	CodeNearDuplicate     domain.ReasonCode = "near_duplicate"

	CodeVerifiedDetailed domain.ReasonCode = "verified_detailed"
	CodeHighSpecificity  domain.ReasonCode = "high_specificity"
	CodeBalancedRating   domain.ReasonCode = "balanced_rating"
)

// Thresholds referenced by rule predicates.
const (
	DefaultLowSpecificity   = 0.25
	promoHeavyMin           = 4
	promoMin                = 2
	highSpecificityMinTerms = 5
)

// Rule is one row of the scoring table. Negative weights mark mitigating signals.
type Rule struct {
	Code   domain.ReasonCode
	Weight float64
	Match  func(fv domain.FeatureVector) bool
}

// Config toggles rules and tunes predicate thresholds.
type Config struct {
	Disabled       []domain.ReasonCode
	LowSpecificity float64
	Weights        map[domain.ReasonCode]float64
}

// DefaultTable returns the stock rule table in evaluation order.
func DefaultTable(lowSpecificity float64) []Rule {
	if lowSpecificity <= 0 {
		lowSpecificity = DefaultLowSpecificity
	}
	return []Rule{
		{CodeUnverified, 0.25, func(fv domain.FeatureVector) bool { return !fv.Verified }},
		{CodeShortGeneric, 0.20, func(fv domain.FeatureVector) bool { return fv.TooShort && fv.Generic }},
		{CodeVeryShort, 0.10, func(fv domain.FeatureVector) bool { return fv.TooShort && !fv.Generic }},
		{CodePromoHeavy, 0.25, func(fv domain.FeatureVector) bool { return fv.PromoPhraseCount >= promoHeavyMin }},
		{CodePromo, 0.10, func(fv domain.FeatureVector) bool {
			return fv.PromoPhraseCount >= promoMin && fv.PromoPhraseCount < promoHeavyMin
		}},
		{CodeMarketing, 0.15, func(fv domain.FeatureVector) bool { return fv.Marketing }},
		{CodeExcessivePositive, 0.20, func(fv domain.FeatureVector) bool { return fv.ExcessivePositivity }},
		{CodeMismatch, 0.15, func(fv domain.FeatureVector) bool { return fv.RatingMismatch }},
		{CodeExtremeVague, 0.15, func(fv domain.FeatureVector) bool {
			return fv.ExtremeRating && fv.Specificity < lowSpecificity
		}},
		{CodePunctuation, 0.10, func(fv domain.FeatureVector) bool { return fv.ExcessivePunctuation }},
		{CodeCaps, 0.10, func(fv domain.FeatureVector) bool { return fv.ExcessiveCaps }},
		{CodeRepetitive, 0.10, func(fv domain.FeatureVector) bool { return fv.RepetitiveWords }},
		{CodeNearDuplicate, 0.30, func(fv domain.FeatureVector) bool { return fv.NearDuplicate }},

		{CodeVerifiedDetailed, -0.20, func(fv domain.FeatureVector) bool { return fv.Verified && fv.Detailed }},
		{CodeHighSpecificity, -0.15, func(fv domain.FeatureVector) bool {
			return fv.SpecificTermCount >= highSpecificityMinTerms
		}},
		{CodeBalancedRating, -0.10, func(fv domain.FeatureVector) bool { return !fv.ExtremeRating }},
	}
}

// Scorer evaluates a rule table. It holds no mutable state.
type Scorer struct {
	table []Rule
}

// NewScorer builds the default table, drops disabled rules and applies weight overrides.
func NewScorer(cfg Config) *Scorer {
	disabled := make(map[domain.ReasonCode]bool, len(cfg.Disabled))
	for _, code := range cfg.Disabled {
		disabled[code] = true
	}

	var table []Rule
	for _, rule := range DefaultTable(cfg.LowSpecificity) {
		if disabled[rule.Code] {
			continue
		}
		if w, ok := cfg.Weights[rule.Code]; ok {
			rule.Weight = w
		}
		table = append(table, rule)
	}
	return NewScorerWithTable(table)
}

// NewScorerWithTable uses the given table verbatim.
func NewScorerWithTable(table []Rule) *Scorer {
	return &Scorer{table: table}
}

// Table returns a copy of the active rules.
func (s *Scorer) Table() []Rule {
	return append([]Rule(nil), s.table...)
}

// Score sums the weights of all triggered rules and clamps the total to [0, 1].
// Every triggered positive rule is reported even when the score saturates.
func (s *Scorer) Score(fv domain.FeatureVector) domain.SubScore {
	out := domain.SubScore{Source: domain.SourceRule, Available: true}

	var total float64
	for _, rule := range s.table {
		if rule.Match == nil || !rule.Match(fv) {
			continue
		}
		total += rule.Weight
		if rule.Weight > 0 {
			out.Reasons = append(out.Reasons, domain.Reason{Code: rule.Code, Weight: rule.Weight})
		} else {
			out.Mitigations = append(out.Mitigations, rule.Code)
		}
	}

	out.Value = math.Max(0, math.Min(1, total))
	return out
}
