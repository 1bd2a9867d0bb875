// Package browser renders review pages in headless Chrome for sites that
// build their review list with JavaScript.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/infrastructure/parser"
)

const (
	DefaultTimeout = 45 * time.Second
	reviewSelector = `[data-hook=review]`
)

// Config tunes the headless browser.
type Config struct {
	Timeout   time.Duration
	UserAgent string
	// BaseURL replaces the public review endpoint, e.g. for a local mirror.
	BaseURL string
}

// Scanner fetches rendered review pages with chromedp and parses them with
// the shared HTML parser.
type Scanner struct {
	cfg    Config
	logger *slog.Logger
}

// NewScanner applies defaults to cfg.
func NewScanner(cfg Config, logger *slog.Logger) *Scanner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = parser.DefaultUserAgent
	}
	return &Scanner{cfg: cfg, logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *Scanner) Name() string {
	return "browser"
}

// FetchReviews starts a fresh browser per call, waits for the first review
// block and returns the parsed page.
func (s *Scanner) FetchReviews(ctx context.Context, product domain.ProductRef) ([]domain.RawReview, error) {
	if product.ASIN == "" {
		return nil, fmt.Errorf("product asin is required")
	}
	pageURL := product.ReviewsURL()
	if s.cfg.BaseURL != "" {
		pageURL = s.cfg.BaseURL + "/product-reviews/" + product.ASIN
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(s.cfg.UserAgent),
		chromedp.WindowSize(1280, 900),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(s.logf))
	defer cancelBrowser()
	runCtx, cancelRun := context.WithTimeout(browserCtx, s.cfg.Timeout)
	defer cancelRun()

	s.debug("render review page", "url", pageURL)

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(reviewSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", pageURL, err)
	}

	doc, err := parser.ParseHTML([]byte(html), "text/html; charset=utf-8")
	if err != nil {
		return nil, err
	}
	reviews := parser.ParseDocument(doc)
	s.debug("rendered reviews parsed", "asin", product.ASIN, "count", len(reviews))
	return reviews, nil
}

func (s *Scanner) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(fmt.Sprintf(format, args...), "component", "chromedp")
	}
}

func (s *Scanner) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
