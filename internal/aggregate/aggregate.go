// Package aggregate reduces a batch of verdicts to product-level metrics.
package aggregate

import (
	"math"
	"sort"

	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/rules"
)

// Grade boundaries in percent of fake reviews. Each bound is inclusive on the
// lower side: exactly 5% is B, exactly 50% is F.
const (
	GradeBMinPercent = 5
	GradeCMinPercent = 15
	GradeDMinPercent = 30
	GradeFMinPercent = 50
)

var gradeDescriptions = map[domain.Grade]string{
	domain.GradeA:             "Excellent authenticity - Very few suspicious reviews detected",
	domain.GradeB:             "Good authenticity - Minor concerns with some reviews",
	domain.GradeC:             "Moderate authenticity concerns - 15-30% suspicious reviews detected",
	domain.GradeD:             "Significant authenticity issues - Many suspicious reviews detected",
	domain.GradeF:             "Poor authenticity - Majority of reviews appear suspicious",
	domain.GradeNotApplicable: "No reviews available for analysis",
}

// Report is the aggregator output for one batch.
type Report struct {
	Metrics      domain.AggregateMetrics
	Patterns     []domain.PatternInsight
	Distribution domain.RatingDistribution
	Summary      string
}

// Aggregate computes metrics for verdicts aligned index-by-index with reviews.
// Reviews must already carry clamped ratings. degraded only changes the summary text.
func Aggregate(reviews []domain.RawReview, verdicts []domain.Verdict, degraded bool) Report {
	metrics := Metrics(reviews, verdicts)
	patterns := Patterns(verdicts)
	return Report{
		Metrics:      metrics,
		Patterns:     patterns,
		Distribution: Distribution(reviews, verdicts),
		Summary:      Summarize(metrics, patterns, degraded),
	}
}

// Metrics computes counts, ratings and the grade.
func Metrics(reviews []domain.RawReview, verdicts []domain.Verdict) domain.AggregateMetrics {
	total := len(verdicts)
	m := domain.AggregateMetrics{TotalReviews: total}
	if total == 0 {
		m.Grade = domain.GradeNotApplicable
		m.GradeDescription = gradeDescriptions[domain.GradeNotApplicable]
		return m
	}

	var allSum, genuineSum int
	for i, v := range verdicts {
		rating := 0
		if i < len(reviews) {
			rating = reviews[i].Rating
		}
		allSum += rating
		if v.IsFake() {
			m.FakeCount++
		} else {
			m.GenuineCount++
			genuineSum += rating
		}
	}

	m.FakePercentage = ptr(round(float64(m.FakeCount)*100/float64(total), 1))

	original := float64(allSum) / float64(total)
	m.OriginalRating = ptr(round(original, 2))
	if m.GenuineCount > 0 {
		adjusted := float64(genuineSum) / float64(m.GenuineCount)
		m.AdjustedRating = ptr(round(adjusted, 2))
		m.RatingDifference = ptr(round(original-adjusted, 2))
	}

	m.Grade = GradeFor(m.FakeCount, total)
	m.GradeDescription = gradeDescriptions[m.Grade]
	return m
}

// GradeFor maps a fake count to a letter grade using integer arithmetic so
// boundaries are exact.
func GradeFor(fake, total int) domain.Grade {
	if total <= 0 {
		return domain.GradeNotApplicable
	}
	scaled := fake * 100
	switch {
	case scaled < GradeBMinPercent*total:
		return domain.GradeA
	case scaled < GradeCMinPercent*total:
		return domain.GradeB
	case scaled < GradeDMinPercent*total:
		return domain.GradeC
	case scaled < GradeFMinPercent*total:
		return domain.GradeD
	default:
		return domain.GradeF
	}
}

// GradeDescription returns the human readable meaning of a grade.
func GradeDescription(g domain.Grade) string {
	return gradeDescriptions[g]
}

// Patterns counts reason codes among fake verdicts, most frequent first.
// Ties keep the rule table order so output is deterministic.
func Patterns(verdicts []domain.Verdict) []domain.PatternInsight {
	counts := map[domain.ReasonCode]int{}
	for _, v := range verdicts {
		if !v.IsFake() {
			continue
		}
		for _, code := range v.ReasonCodes {
			counts[code]++
		}
	}

	out := make([]domain.PatternInsight, 0, len(counts))
	for code, n := range counts {
		out = append(out, domain.PatternInsight{
			Code:        code,
			Description: rules.PatternDescription(code),
			Frequency:   n,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		oi, oj := rules.Order(out[i].Code), rules.Order(out[j].Code)
		if oi != oj {
			return oi < oj
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// Distribution builds the per-star histogram split by label.
func Distribution(reviews []domain.RawReview, verdicts []domain.Verdict) domain.RatingDistribution {
	var d domain.RatingDistribution
	for i, v := range verdicts {
		if i >= len(reviews) {
			break
		}
		star := reviews[i].Rating
		if star < 1 || star > 5 {
			continue
		}
		if v.IsFake() {
			d.Fake[star-1]++
		} else {
			d.Genuine[star-1]++
		}
	}
	return d
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func ptr(v float64) *float64 {
	return &v
}
