package rules

import (
	"testing"

	"ReviewScanner/internal/domain"
)

func codes(score domain.SubScore) []domain.ReasonCode {
	out := make([]domain.ReasonCode, len(score.Reasons))
	for i, r := range score.Reasons {
		out[i] = r.Code
	}
	return out
}

func TestScoreSaturatesButKeepsReasons(t *testing.T) {
	t.Parallel()

	fv := domain.FeatureVector{
		Rating:               5,
		ExtremeRating:        true,
		TooShort:             true,
		Generic:              true,
		PromoPhraseCount:     5,
		Marketing:            true,
		ExcessivePositivity:  true,
		ExcessivePunctuation: true,
		ExcessiveCaps:        true,
		NearDuplicate:        true,
	}

	score := NewScorer(Config{}).Score(fv)
	if score.Value != 1 {
		t.Fatalf("expected clamped score 1, got %v", score.Value)
	}

	want := []domain.ReasonCode{
		CodeUnverified, CodeShortGeneric, CodePromoHeavy, CodeMarketing, CodeExcessivePositive,
		CodeExtremeVague, CodePunctuation, CodeCaps, CodeNearDuplicate,
	}
	got := codes(score)
	if len(got) != len(want) {
		t.Fatalf("expected %d reasons, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("reason %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestScoreClampsAtZero(t *testing.T) {
	t.Parallel()

	fv := domain.FeatureVector{
		Rating:            4,
		Verified:          true,
		Detailed:          true,
		SpecificTermCount: 7,
		Specificity:       0.8,
	}

	score := NewScorer(Config{}).Score(fv)
	if score.Value != 0 {
		t.Fatalf("expected 0, got %v", score.Value)
	}
	if len(score.Reasons) != 0 {
		t.Fatalf("expected no reasons, got %v", codes(score))
	}
	if len(score.Mitigations) != 3 {
		t.Fatalf("expected 3 mitigations, got %v", score.Mitigations)
	}
}

func TestDisabledRule(t *testing.T) {
	t.Parallel()

	fv := domain.FeatureVector{Rating: 3, Verified: false}

	enabled := NewScorer(Config{}).Score(fv)
	disabled := NewScorer(Config{Disabled: []domain.ReasonCode{CodeUnverified}}).Score(fv)

	if enabled.Value <= disabled.Value {
		t.Fatalf("disabling a rule must lower the score: %v vs %v", enabled.Value, disabled.Value)
	}
	for _, c := range codes(disabled) {
		if c == CodeUnverified {
			t.Fatalf("disabled rule still reported")
		}
	}
}

func TestWeightOverride(t *testing.T) {
	t.Parallel()

	fv := domain.FeatureVector{Rating: 5, ExtremeRating: true, Specificity: 1, Verified: false}
	score := NewScorer(Config{Weights: map[domain.ReasonCode]float64{CodeUnverified: 0.4}}).Score(fv)
	if score.Value != 0.4 {
		t.Fatalf("expected overridden weight 0.4, got %v", score.Value)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	if Describe(CodeMismatch) != "Rating doesn't match review sentiment" {
		t.Fatalf("unexpected description %q", Describe(CodeMismatch))
	}
	if Describe("unknown_code") != "unknown_code" {
		t.Fatalf("unknown codes must fall back to the code itself")
	}
	if Order(CodeUnverified) != 0 || Order("unknown_code") != -1 {
		t.Fatalf("unexpected order values")
	}
}
