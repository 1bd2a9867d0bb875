package preprocess

import (
	"html"
	"strings"
	"unicode"
)

// Clean strips markup, links and e-mail addresses and collapses whitespace.
// Casing is preserved.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	out := htmlTagExpr.ReplaceAllString(text, " ")
	out = html.UnescapeString(out)
	out = urlExpr.ReplaceAllString(out, " ")
	out = emailExpr.ReplaceAllString(out, " ")
	out = whitespaceExpr.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// Tokenize lower-cases text and splits it into runs of letters, digits and
// inner apostrophes.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '’'
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, "’", "'")
		f = strings.Trim(f, "'")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// ClampRating forces a star rating into 1..5. Zero means "not provided" and maps to
// the neutral 3.
func ClampRating(rating int) int {
	switch {
	case rating == 0:
		return 3
	case rating < 1:
		return 1
	case rating > 5:
		return 5
	default:
		return rating
	}
}

func countSentences(text string) int {
	count := 0
	for _, part := range sentenceEndExpr.Split(text, -1) {
		if strings.IndexFunc(part, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}) >= 0 {
			count++
		}
	}
	return count
}

func hasDigit(token string) bool {
	return strings.IndexFunc(token, unicode.IsDigit) >= 0
}
