package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"ReviewScanner/internal/domain"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	maxPageBytes     = 8 << 20
)

var (
	ratingExpr  = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*out of`)
	helpfulExpr = regexp.MustCompile(`(\d[\d,]*)\s+(?:people|person)`)
	spaceExpr   = regexp.MustCompile(`\s+`)
)

// AmazonScanner downloads the product review page and extracts the review blocks.
type AmazonScanner struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// NewAmazonScanner wires an HTTP client; baseURL overrides the product review
// endpoint and is mainly used by tests.
func NewAmazonScanner(client *http.Client, baseURL string) *AmazonScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &AmazonScanner{client: client, baseURL: strings.TrimSuffix(baseURL, "/"), userAgent: DefaultUserAgent}
}

// Name identifies the strategy inside the registry.
func (a *AmazonScanner) Name() string {
	return "html"
}

// FetchReviews returns every review found on the first review page of the product.
func (a *AmazonScanner) FetchReviews(ctx context.Context, product domain.ProductRef) ([]domain.RawReview, error) {
	if product.ASIN == "" {
		return nil, fmt.Errorf("product asin is required")
	}

	pageURL := product.ReviewsURL()
	if a.baseURL != "" {
		pageURL = a.baseURL + "/product-reviews/" + product.ASIN
	}

	doc, err := a.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", product.ASIN, err)
	}
	return ParseDocument(doc), nil
}

func (a *AmazonScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("review page returned %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return ParseHTML(data, resp.Header.Get("Content-Type"))
}

// ParseHTML decodes the page to UTF-8 using the declared or sniffed charset
// and builds a goquery document.
func ParseHTML(data []byte, contentType string) (*goquery.Document, error) {
	enc, _, _ := charset.DetermineEncoding(data, contentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		utf8data = data
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(utf8data))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// ParseDocument extracts all review blocks from a product review page.
func ParseDocument(doc *goquery.Document) []domain.RawReview {
	productTitle := clean(doc.Find(`[data-hook=product-link]`).First().Text())
	if productTitle == "" {
		productTitle = clean(doc.Find("#productTitle").First().Text())
	}
	productImage := doc.Find(`[data-hook=cr-product-image] img, #landingImage`).First().AttrOr("src", "")

	var reviews []domain.RawReview
	doc.Find(`[data-hook=review]`).Each(func(_ int, s *goquery.Selection) {
		review, ok := parseEntry(s)
		if !ok {
			return
		}
		review.ProductTitle = productTitle
		review.ProductImage = productImage
		reviews = append(reviews, review)
	})
	return reviews
}

func parseEntry(s *goquery.Selection) (domain.RawReview, bool) {
	body := clean(s.Find(`[data-hook=review-body]`).First().Text())

	ratingText := s.Find(`i[data-hook=review-star-rating], i[data-hook=cmps-review-star-rating]`).First().Text()
	rating, hasRating := parseStars(ratingText)
	if body == "" && !hasRating {
		return domain.RawReview{}, false
	}

	title := s.Find(`[data-hook=review-title]`).First()
	// the title anchor repeats the star text inside a hidden span
	title.Find("i, .a-icon-alt").Remove()

	reviewer := clean(s.Find(".a-profile-name").First().Text())
	if reviewer == "" {
		reviewer = "Anonymous"
	}

	id, _ := s.Attr("id")
	return domain.RawReview{
		ID:           strings.TrimSpace(id),
		ReviewerName: reviewer,
		Rating:       rating,
		Title:        clean(title.Text()),
		Body:         body,
		Date:         clean(s.Find(`[data-hook=review-date]`).First().Text()),
		Verified:     s.Find(`[data-hook=avp-badge]`).Length() > 0,
		HelpfulVotes: parseHelpful(s.Find(`[data-hook=helpful-vote-statement]`).First().Text()),
	}, true
}

func parseStars(text string) (int, bool) {
	match := ratingExpr.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return int(f + 0.5), true
}

func parseHelpful(text string) int {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return 0
	}
	if strings.HasPrefix(text, "one ") {
		return 1
	}
	match := helpfulExpr.FindStringSubmatch(text)
	if match == nil {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(match[1], ",", ""))
	if err != nil {
		return 0
	}
	return n
}

func clean(s string) string {
	return strings.TrimSpace(spaceExpr.ReplaceAllString(s, " "))
}
