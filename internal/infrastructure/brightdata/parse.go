package brightdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"ReviewScanner/internal/domain"
)

const anonymousReviewer = "Anonymous"

var numberExpr = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

var (
	textKeys     = []string{"review_text", "text", "body", "content", "review"}
	titleKeys    = []string{"review_header", "review_title", "title", "headline"}
	ratingKeys   = []string{"rating", "stars", "review_rating", "star_rating"}
	authorKeys   = []string{"author_name", "reviewer_name", "author", "name", "reviewer"}
	idKeys       = []string{"review_id", "id"}
	dateKeys     = []string{"review_posted_date", "date", "review_date"}
	verifiedKeys = []string{"is_verified", "verified_purchase", "verified"}
	helpfulKeys  = []string{"helpful_count", "helpful_votes", "helpful"}
	productKeys  = []string{"product_name", "product_title"}
	imageKeys    = []string{"product_image", "image", "image_url"}
)

// ParseReviews standardises a dataset response. Accepted shapes are a bare
// list of reviews, an object wrapping them under "reviews" or "data", and
// product records carrying their own "reviews" list.
func ParseReviews(raw []byte) ([]domain.RawReview, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var out []domain.RawReview
	collect(doc, nil, &out)
	return out, nil
}

func collect(node any, product map[string]any, out *[]domain.RawReview) {
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			collect(item, product, out)
		}
	case map[string]any:
		if nested, ok := v["reviews"].([]any); ok {
			collect(nested, v, out)
			return
		}
		if nested, ok := v["data"]; ok {
			collect(nested, product, out)
			return
		}
		if review, ok := standardize(v, product); ok {
			*out = append(*out, review)
		}
	}
}

// standardize maps one record with any of the known field spellings. Records
// with neither text nor rating are skipped.
func standardize(m map[string]any, product map[string]any) (domain.RawReview, bool) {
	text := firstString(m, textKeys...)
	rating, hasRating := parseRating(first(m, ratingKeys...))
	if text == "" && !hasRating {
		return domain.RawReview{}, false
	}

	review := domain.RawReview{
		ID:           firstString(m, idKeys...),
		ReviewerName: firstString(m, authorKeys...),
		Rating:       rating,
		Title:        firstString(m, titleKeys...),
		Body:         text,
		Date:         firstString(m, dateKeys...),
		Verified:     parseBool(first(m, verifiedKeys...)),
		HelpfulVotes: parseInt(first(m, helpfulKeys...)),
		ProductTitle: firstString(m, productKeys...),
		ProductImage: firstString(m, imageKeys...),
	}
	if review.ReviewerName == "" {
		review.ReviewerName = anonymousReviewer
	}
	if product != nil {
		if review.ProductTitle == "" {
			review.ProductTitle = firstString(product, "product_name", "product_title", "title")
		}
		if review.ProductImage == "" {
			review.ProductImage = firstString(product, imageKeys...)
		}
	}
	return review, true
}

func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return v
		}
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	switch v := first(m, keys...).(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// parseRating accepts numbers and strings such as "4.0 out of 5 stars".
func parseRating(v any) (int, bool) {
	var f float64
	switch x := v.(type) {
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		match := numberExpr.FindString(x)
		if match == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	return int(math.Round(f)), true
}

func parseBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		return s == "true" || s == "yes" || s == "1" || strings.Contains(s, "verified purchase")
	case json.Number:
		return x.String() != "0"
	default:
		return false
	}
}

func parseInt(v any) int {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n)
		}
		if f, err := x.Float64(); err == nil {
			return int(f)
		}
	case string:
		s := strings.ToLower(x)
		if strings.HasPrefix(strings.TrimSpace(s), "one ") {
			return 1
		}
		digits := numberExpr.FindString(strings.ReplaceAll(s, ",", ""))
		if n, err := strconv.Atoi(digits); err == nil {
			return n
		}
	}
	return 0
}

// snapshotID returns the snapshot identifier from an asynchronous trigger response.
func snapshotID(body []byte) string {
	var resp struct {
		SnapshotID string `json:"snapshot_id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	return resp.SnapshotID
}

func stillRunning(body []byte) bool {
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return false
	}
	return resp.Status == "running" || resp.Status == "building" || resp.Status == "collecting"
}
