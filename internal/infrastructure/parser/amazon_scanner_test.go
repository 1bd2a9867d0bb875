package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ReviewScanner/internal/domain"
)

const reviewPage = `
<html><body>
  <a data-hook="product-link">Stainless   Kettle 1.7L</a>
  <div data-hook="cr-product-image"><img src="https://img.example/kettle.jpg"></div>
  <div id="R1ABC" data-hook="review">
    <span class="a-profile-name">Dana</span>
    <i data-hook="review-star-rating"><span class="a-icon-alt">4.0 out of 5 stars</span></i>
    <a data-hook="review-title"><i class="a-icon"><span class="a-icon-alt">4.0 out of 5 stars</span></i><span>Quiet and fast</span></a>
    <span data-hook="review-date">Reviewed in the United States on March 3, 2025</span>
    <span data-hook="avp-badge">Verified Purchase</span>
    <span data-hook="review-body"><span>Boils a full pot
      in four minutes.</span></span>
    <span data-hook="helpful-vote-statement">1,204 people found this helpful</span>
  </div>
  <div id="R2DEF" data-hook="review">
    <i data-hook="cmps-review-star-rating"><span>1.0 out of 5 stars</span></i>
    <span data-hook="review-body">Leaked after a week.</span>
    <span data-hook="helpful-vote-statement">One person found this helpful</span>
  </div>
  <div data-hook="review"><span class="a-profile-name">Ghost</span></div>
</body></html>`

func TestParseHTMLReviews(t *testing.T) {
	t.Parallel()

	doc, err := ParseHTML([]byte(reviewPage), "text/html; charset=utf-8")
	if err != nil {
		t.Fatalf("ParseHTML error: %v", err)
	}

	reviews := ParseDocument(doc)
	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(reviews))
	}

	first := reviews[0]
	if first.ID != "R1ABC" || first.Rating != 4 || !first.Verified || first.ReviewerName != "Dana" {
		t.Fatalf("unexpected first review: %+v", first)
	}
	if first.Title != "Quiet and fast" {
		t.Fatalf("unexpected title: %q", first.Title)
	}
	if first.Body != "Boils a full pot in four minutes." {
		t.Fatalf("unexpected body: %q", first.Body)
	}
	if first.HelpfulVotes != 1204 {
		t.Fatalf("unexpected helpful votes: %d", first.HelpfulVotes)
	}
	if first.ProductTitle != "Stainless Kettle 1.7L" || first.ProductImage != "https://img.example/kettle.jpg" {
		t.Fatalf("unexpected product fields: %q %q", first.ProductTitle, first.ProductImage)
	}

	second := reviews[1]
	if second.Rating != 1 || second.Verified || second.ReviewerName != "Anonymous" || second.HelpfulVotes != 1 {
		t.Fatalf("unexpected second review: %+v", second)
	}
}

func TestParseHTMLDecodesCharset(t *testing.T) {
	t.Parallel()

	// "Très bien" in ISO-8859-1
	page := []byte("<div data-hook=\"review\"><span data-hook=\"review-body\">Tr\xe8s bien</span></div>")
	doc, err := ParseHTML(page, "text/html; charset=iso-8859-1")
	if err != nil {
		t.Fatalf("ParseHTML error: %v", err)
	}
	reviews := ParseDocument(doc)
	if len(reviews) != 1 || reviews[0].Body != "Très bien" {
		t.Fatalf("unexpected decode result: %+v", reviews)
	}
}

func TestAmazonScannerFetchReviews(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/product-reviews/B0TESTKTL1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if !strings.Contains(r.Header.Get("User-Agent"), "Mozilla") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(reviewPage))
	}))
	defer server.Close()

	sc := NewAmazonScanner(server.Client(), server.URL)
	reviews, err := sc.FetchReviews(context.Background(), domain.ProductRef{ASIN: "B0TESTKTL1"})
	if err != nil {
		t.Fatalf("FetchReviews error: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(reviews))
	}

	if _, err := sc.FetchReviews(context.Background(), domain.ProductRef{ASIN: "B0MISSING1"}); err == nil {
		t.Fatalf("expected error for missing page")
	}
}

func TestParseHelpful(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"":                                0,
		"One person found this helpful":   1,
		"12 people found this helpful":    12,
		"2,310 people found this helpful": 2310,
		"Helpful":                         0,
	}
	for in, want := range cases {
		if got := parseHelpful(in); got != want {
			t.Fatalf("parseHelpful(%q) = %d, want %d", in, got, want)
		}
	}
}
