package hybrid

import (
	"math"
	"testing"

	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/rules"
)

func ruleScore(value float64, reasons ...domain.Reason) domain.SubScore {
	return domain.SubScore{Value: value, Source: domain.SourceRule, Available: true, Reasons: reasons}
}

func modelScore(value float64) domain.SubScore {
	return domain.SubScore{Value: value, Source: domain.SourceModel, Available: true}
}

func TestRuleOnlyWhenModelUnavailable(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultConfig())
	v := s.Combine("r1", domain.FeatureVector{}, ruleScore(0.35), domain.SubScore{Source: domain.SourceModel})

	if v.Confidence != 0.35 {
		t.Fatalf("expected confidence to equal rule score, got %v", v.Confidence)
	}
	if !v.RuleOnly || v.ModelScore != nil {
		t.Fatalf("expected rule-only verdict, got %+v", v)
	}
	if v.Label != domain.LabelGenuine {
		t.Fatalf("expected genuine, got %s", v.Label)
	}
}

func TestThresholdIsInclusive(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultConfig())
	unavailable := domain.SubScore{Source: domain.SourceModel}

	at := s.Combine("a", domain.FeatureVector{}, ruleScore(0.5, domain.Reason{Code: rules.CodeUnverified, Weight: 0.25}), unavailable)
	if at.Label != domain.LabelFake {
		t.Fatalf("confidence equal to threshold must be fake")
	}

	below := s.Combine("b", domain.FeatureVector{}, ruleScore(0.49), unavailable)
	if below.Label != domain.LabelGenuine {
		t.Fatalf("confidence below threshold must be genuine")
	}
}

func TestWeightedBlend(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultConfig())

	ruleHeavy := s.Combine("a", domain.FeatureVector{}, ruleScore(1, domain.Reason{Code: rules.CodeUnverified, Weight: 0.25}), modelScore(0))
	if math.Abs(ruleHeavy.Confidence-0.4) > 1e-9 || ruleHeavy.Label != domain.LabelGenuine {
		t.Fatalf("expected 0.4 genuine, got %v %s", ruleHeavy.Confidence, ruleHeavy.Label)
	}

	modelHeavy := s.Combine("b", domain.FeatureVector{}, ruleScore(0), modelScore(1))
	if math.Abs(modelHeavy.Confidence-0.6) > 1e-9 || modelHeavy.Label != domain.LabelFake {
		t.Fatalf("expected 0.6 fake, got %v %s", modelHeavy.Confidence, modelHeavy.Label)
	}
	if len(modelHeavy.Reasons) != 1 || modelHeavy.Reasons[0] != ModelOnlyReason {
		t.Fatalf("expected model-only reason, got %v", modelHeavy.Reasons)
	}
	if modelHeavy.ModelScore == nil || *modelHeavy.ModelScore != 1 {
		t.Fatalf("model score not recorded")
	}
}

func TestWeightsAreNormalised(t *testing.T) {
	t.Parallel()

	s := NewScorer(Config{RuleWeight: 2, ModelWeight: 3})
	v := s.Combine("a", domain.FeatureVector{}, ruleScore(1), modelScore(0))
	if math.Abs(v.Confidence-0.4) > 1e-9 {
		t.Fatalf("expected normalised 0.4, got %v", v.Confidence)
	}
}

func TestReasonsRankedAndCapped(t *testing.T) {
	t.Parallel()

	s := NewScorer(Config{MaxReasons: 3})
	rule := ruleScore(1,
		domain.Reason{Code: rules.CodePunctuation, Weight: 0.10},
		domain.Reason{Code: rules.CodeNearDuplicate, Weight: 0.30},
		domain.Reason{Code: rules.CodeUnverified, Weight: 0.25},
		domain.Reason{Code: rules.CodeMarketing, Weight: 0.15},
		domain.Reason{Code: rules.CodeShortGeneric, Weight: 0.20},
		domain.Reason{Code: rules.CodeNearDuplicate, Weight: 0.30},
	)

	v := s.Combine("a", domain.FeatureVector{}, rule, domain.SubScore{})
	want := []domain.ReasonCode{rules.CodeNearDuplicate, rules.CodeUnverified, rules.CodeShortGeneric}
	if len(v.ReasonCodes) != len(want) {
		t.Fatalf("expected %d reasons, got %v", len(want), v.ReasonCodes)
	}
	for i := range want {
		if v.ReasonCodes[i] != want[i] {
			t.Fatalf("reason %d: expected %s, got %s", i, want[i], v.ReasonCodes[i])
		}
		if v.Reasons[i] != rules.Describe(want[i]) {
			t.Fatalf("reason %d: unexpected text %q", i, v.Reasons[i])
		}
	}
}

func TestGenuineHighlights(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultConfig())
	rule := domain.SubScore{
		Source:      domain.SourceRule,
		Available:   true,
		Mitigations: []domain.ReasonCode{rules.CodeVerifiedDetailed},
	}
	fv := domain.FeatureVector{Verified: true, Sentiment: 0.6}

	v := s.Combine("a", fv, rule, domain.SubScore{})
	want := []string{"Verified purchase", rules.Describe(rules.CodeVerifiedDetailed), ConsistentSentiment, NoSuspiciousPatterns}
	if len(v.Highlights) != len(want) {
		t.Fatalf("expected highlights %v, got %v", want, v.Highlights)
	}
	for i := range want {
		if v.Highlights[i] != want[i] {
			t.Fatalf("highlight %d: expected %q, got %q", i, want[i], v.Highlights[i])
		}
	}
}
