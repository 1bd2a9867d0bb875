// Package asin extracts Amazon product identifiers from URLs or raw input.
package asin

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	pathExprs = []*regexp.Regexp{
		regexp.MustCompile(`/DP/([A-Z0-9]{10})(?:[/?#]|$)`),
		regexp.MustCompile(`/GP/PRODUCT/([A-Z0-9]{10})(?:[/?#]|$)`),
		regexp.MustCompile(`/PRODUCT-REVIEWS/([A-Z0-9]{10})(?:[/?#]|$)`),
		regexp.MustCompile(`/PRODUCT/([A-Z0-9]{10})(?:[/?#]|$)`),
	}
	bareExpr = regexp.MustCompile(`^[A-Z0-9]{10}$`)
)

// Extract returns the ASIN contained in input. Known path shapes (/dp/,
// /gp/product/, /product-reviews/, /product/) win over a generic ten character
// path segment, which is only accepted when it looks like an ASIN.
func Extract(input string) (string, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", false
	}
	if decoded, err := url.PathUnescape(s); err == nil {
		s = decoded
	}
	s = strings.ToUpper(s)

	if bareExpr.MatchString(s) {
		return s, true
	}

	for _, expr := range pathExprs {
		if m := expr.FindStringSubmatch(s); m != nil {
			return m[1], true
		}
	}

	segments := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '?' || r == '#' || r == '&'
	})
	for _, seg := range segments[min(1, len(segments)):] {
		if bareExpr.MatchString(seg) && plausible(seg) {
			return seg, true
		}
	}
	return "", false
}

// IsURL reports whether input looks like a link rather than a bare identifier.
func IsURL(input string) bool {
	s := strings.ToLower(strings.TrimSpace(input))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.Contains(s, "amazon.")
}

// plausible filters generic path segments: ASINs start with B or are ISBN-10 digits.
func plausible(candidate string) bool {
	if strings.HasPrefix(candidate, "B") {
		return true
	}
	return strings.IndexFunc(candidate, func(r rune) bool { return r < '0' || r > '9' }) < 0
}
