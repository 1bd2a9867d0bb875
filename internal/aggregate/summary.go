package aggregate

import (
	"fmt"
	"strings"

	"ReviewScanner/internal/domain"
)

// EmptySummary is the summary for a batch with no reviews.
const EmptySummary = "No reviews were available for analysis."

const (
	maxSummaryPatterns  = 3
	notableRatingImpact = 0.3
	degradedNote        = "Note: the learned classifier was unavailable, so scoring used heuristics only."
)

var tones = map[domain.Grade]string{
	domain.GradeA: "This product's reviews appear highly trustworthy.",
	domain.GradeB: "This product's reviews appear mostly trustworthy.",
	domain.GradeC: "This product's reviews show moderate signs of manipulation.",
	domain.GradeD: "This product's reviews show significant signs of manipulation.",
	domain.GradeF: "This product's reviews appear heavily manipulated.",
}

var recommendations = map[domain.Grade]string{
	domain.GradeA: "Reviews can be relied on when evaluating this product.",
	domain.GradeB: "Reviews are mostly reliable; read the detailed ones first.",
	domain.GradeC: "Read reviews critically and favour verified, detailed ones.",
	domain.GradeD: "Treat the star rating with caution and rely on verified reviews.",
	domain.GradeF: "Do not rely on these reviews; look for independent sources.",
}

// Summarize renders the fixed summary template. The same inputs always yield
// the same text.
func Summarize(m domain.AggregateMetrics, patterns []domain.PatternInsight, degraded bool) string {
	if m.TotalReviews == 0 {
		return EmptySummary
	}

	lines := []string{tones[m.Grade]}

	pct := 0.0
	if m.FakePercentage != nil {
		pct = *m.FakePercentage
	}
	lines = append(lines, fmt.Sprintf("Analyzed %d reviews: %d (%.1f%%) flagged as likely fake, %d appear genuine.",
		m.TotalReviews, m.FakeCount, pct, m.GenuineCount))

	if line := ratingImpact(m); line != "" {
		lines = append(lines, line)
	}

	if len(patterns) > 0 {
		top := patterns
		if len(top) > maxSummaryPatterns {
			top = top[:maxSummaryPatterns]
		}
		parts := make([]string, len(top))
		for i, p := range top {
			parts[i] = fmt.Sprintf("%s (%d)", strings.ToLower(p.Description), p.Frequency)
		}
		lines = append(lines, "Most common suspicious patterns: "+strings.Join(parts, ", ")+".")
	}

	lines = append(lines, "Recommendation: "+recommendations[m.Grade])
	if degraded {
		lines = append(lines, degradedNote)
	}
	return strings.Join(lines, "\n")
}

func ratingImpact(m domain.AggregateMetrics) string {
	if m.AdjustedRating == nil || m.OriginalRating == nil {
		return "No reviews were judged genuine, so no adjusted rating is available."
	}
	diff := 0.0
	if m.RatingDifference != nil {
		diff = *m.RatingDifference
	}
	switch {
	case diff > notableRatingImpact:
		return fmt.Sprintf("Removing suspicious reviews lowers the average rating from %.2f to %.2f.", *m.OriginalRating, *m.AdjustedRating)
	case diff > 0:
		return fmt.Sprintf("Suspicious reviews inflate the average rating slightly (%.2f vs %.2f adjusted).", *m.OriginalRating, *m.AdjustedRating)
	case diff < 0:
		return fmt.Sprintf("Suspicious reviews pull the average rating down (%.2f vs %.2f adjusted).", *m.OriginalRating, *m.AdjustedRating)
	default:
		return ""
	}
}
