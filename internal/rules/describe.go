package rules

import "ReviewScanner/internal/domain"

type description struct {
	reason  string
	pattern string
}

var descriptions = map[domain.ReasonCode]description{
	CodeUnverified:        {"Unverified purchase", "Reviews posted without a verified purchase"},
	CodeShortGeneric:      {"Very short and generic review", "Very short reviews with generic praise"},
	CodeVeryShort:         {"Very short review", "Reviews too short to describe real use"},
	CodePromoHeavy:        {"Heavy use of promotional phrases", "Reviews stacked with stock promotional phrases"},
	CodePromo:             {"Contains multiple promotional phrases", "Reviews repeating stock praise phrases"},
	CodeMarketing:         {"Contains marketing language", "Reviews containing promotional or marketing language"},
	CodeExcessivePositive: {"Excessive positivity without specifics", "Reviews with excessive positive language and no specifics"},
	CodeMismatch:          {"Rating doesn't match review sentiment", "Star ratings that contradict the review text"},
	CodeExtremeVague:      {"Extreme rating with little specific detail", "Extreme ratings backed by vague text"},
	CodePunctuation:       {"Excessive punctuation usage", "Excessive exclamation or question marks"},
	CodeCaps:              {"Excessive use of capital letters", "Excessive use of capital letters"},
	CodeRepetitive:        {"Repetitive word usage", "Reviews repeating the same words"},
	CodeNearDuplicate:     {"Nearly identical to other reviews in this batch", "Near-identical reviews posted for the same product"},

	CodeVerifiedDetailed: {"Detailed review with specific information", ""},
	CodeHighSpecificity:  {"Contains specific product details", ""},
	CodeBalancedRating:   {"Balanced rating (not extreme)", ""},
}

// Describe returns the display string for a reason code.
func Describe(code domain.ReasonCode) string {
	if d, ok := descriptions[code]; ok {
		return d.reason
	}
	return string(code)
}

// PatternDescription returns the batch-level wording used in pattern summaries.
func PatternDescription(code domain.ReasonCode) string {
	if d, ok := descriptions[code]; ok && d.pattern != "" {
		return d.pattern
	}
	return Describe(code)
}

// Order returns the position of code in the default table, or -1.
func Order(code domain.ReasonCode) int {
	for i, rule := range defaultOrder {
		if rule == code {
			return i
		}
	}
	return -1
}

var defaultOrder = func() []domain.ReasonCode {
	table := DefaultTable(DefaultLowSpecificity)
	codes := make([]domain.ReasonCode, len(table))
	for i, rule := range table {
		codes[i] = rule.Code
	}
	return codes
}()
