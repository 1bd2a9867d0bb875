package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/rules"
)

func batch(fake, genuine int, fakeRating, genuineRating int) ([]domain.RawReview, []domain.Verdict) {
	var raws []domain.RawReview
	var verdicts []domain.Verdict
	for i := 0; i < fake; i++ {
		raws = append(raws, domain.RawReview{Rating: fakeRating})
		verdicts = append(verdicts, domain.Verdict{Label: domain.LabelFake, ReasonCodes: []domain.ReasonCode{rules.CodeUnverified}})
	}
	for i := 0; i < genuine; i++ {
		raws = append(raws, domain.RawReview{Rating: genuineRating})
		verdicts = append(verdicts, domain.Verdict{Label: domain.LabelGenuine})
	}
	return raws, verdicts
}

func TestGradeBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		fake, total int
		want        domain.Grade
	}{
		{0, 20, domain.GradeA},
		{1, 21, domain.GradeA},
		{1, 20, domain.GradeB},
		{3, 20, domain.GradeC},
		{2, 20, domain.GradeB},
		{6, 20, domain.GradeD},
		{5, 20, domain.GradeC},
		{10, 20, domain.GradeF},
		{9, 20, domain.GradeD},
		{20, 20, domain.GradeF},
		{0, 0, domain.GradeNotApplicable},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFor(tt.fake, tt.total), "fake=%d total=%d", tt.fake, tt.total)
	}
}

func TestEmptyBatch(t *testing.T) {
	t.Parallel()

	report := Aggregate(nil, nil, false)
	m := report.Metrics

	assert.Equal(t, 0, m.TotalReviews)
	assert.Nil(t, m.FakePercentage)
	assert.Nil(t, m.OriginalRating)
	assert.Nil(t, m.AdjustedRating)
	assert.Nil(t, m.RatingDifference)
	assert.Equal(t, domain.GradeNotApplicable, m.Grade)
	assert.Equal(t, EmptySummary, report.Summary)
	assert.Empty(t, report.Patterns)
}

func TestAllFakeHasNoAdjustedRating(t *testing.T) {
	t.Parallel()

	raws, verdicts := batch(4, 0, 5, 0)
	m := Metrics(raws, verdicts)

	require.NotNil(t, m.FakePercentage)
	assert.Equal(t, 100.0, *m.FakePercentage)
	require.NotNil(t, m.OriginalRating)
	assert.Equal(t, 5.0, *m.OriginalRating)
	assert.Nil(t, m.AdjustedRating)
	assert.Nil(t, m.RatingDifference)
	assert.Equal(t, domain.GradeF, m.Grade)
}

func TestRatingAdjustment(t *testing.T) {
	t.Parallel()

	raws, verdicts := batch(3, 17, 5, 3)
	m := Metrics(raws, verdicts)

	assert.Equal(t, 20, m.FakeCount+m.GenuineCount)
	assert.Equal(t, 15.0, *m.FakePercentage)
	assert.Equal(t, domain.GradeC, m.Grade)
	assert.InDelta(t, 3.3, *m.OriginalRating, 1e-9)
	assert.InDelta(t, 3.0, *m.AdjustedRating, 1e-9)
	assert.InDelta(t, 0.3, *m.RatingDifference, 1e-9)
}

func TestFakePercentageRounding(t *testing.T) {
	t.Parallel()

	raws, verdicts := batch(1, 2, 5, 4)
	m := Metrics(raws, verdicts)
	assert.Equal(t, 33.3, *m.FakePercentage)
}

func TestPatternsSortedByFrequency(t *testing.T) {
	t.Parallel()

	verdicts := []domain.Verdict{
		{Label: domain.LabelFake, ReasonCodes: []domain.ReasonCode{rules.CodeNearDuplicate, rules.CodeUnverified}},
		{Label: domain.LabelFake, ReasonCodes: []domain.ReasonCode{rules.CodeNearDuplicate, rules.CodeCaps}},
		{Label: domain.LabelFake, ReasonCodes: []domain.ReasonCode{rules.CodeNearDuplicate, rules.CodeUnverified}},
		{Label: domain.LabelGenuine, ReasonCodes: []domain.ReasonCode{rules.CodeCaps, rules.CodeCaps}},
	}

	patterns := Patterns(verdicts)
	require.Len(t, patterns, 3)
	assert.Equal(t, rules.CodeNearDuplicate, patterns[0].Code)
	assert.Equal(t, 3, patterns[0].Frequency)
	assert.Equal(t, rules.CodeUnverified, patterns[1].Code)
	assert.Equal(t, 2, patterns[1].Frequency)
	assert.Equal(t, rules.CodeCaps, patterns[2].Code)
	assert.Equal(t, 1, patterns[2].Frequency)
}

func TestDistribution(t *testing.T) {
	t.Parallel()

	raws, verdicts := batch(2, 3, 5, 4)
	d := Distribution(raws, verdicts)
	assert.Equal(t, [5]int{0, 0, 0, 0, 2}, d.Fake)
	assert.Equal(t, [5]int{0, 0, 0, 3, 0}, d.Genuine)
}

func TestSummaryIsDeterministic(t *testing.T) {
	t.Parallel()

	raws, verdicts := batch(6, 14, 5, 3)
	first := Aggregate(raws, verdicts, true)
	second := Aggregate(raws, verdicts, true)

	assert.Equal(t, first.Summary, second.Summary)
	assert.Contains(t, first.Summary, "Analyzed 20 reviews: 6 (30.0%) flagged as likely fake, 14 appear genuine.")
	assert.Contains(t, first.Summary, "Recommendation: ")
	assert.Contains(t, first.Summary, "Note: the learned classifier was unavailable, so scoring used heuristics only.")
	assert.NotContains(t, Aggregate(raws, verdicts, false).Summary, "classifier was unavailable")
	assert.Contains(t, first.Summary, "lowers the average rating from 3.60 to 3.00")
}
