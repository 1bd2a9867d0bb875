// Package brightdata fetches product reviews through the Bright Data dataset API.
package brightdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/ports"
)

const (
	DefaultEndpoint     = "https://api.brightdata.com/datasets/v3"
	DefaultPollInterval = 3 * time.Second
	DefaultMaxPolls     = 60
	DefaultMaxAttempts  = 3
	DefaultTimeout      = 60 * time.Second
)

// Config describes how to reach the dataset API.
type Config struct {
	Endpoint     string
	Token        string
	DatasetID    string
	Timeout      time.Duration
	PollInterval time.Duration
	MaxPolls     int
	MaxAttempts  int
}

// StatusError is returned for non-success HTTP responses.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected status %s: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("unexpected status %s", e.Status)
}

// Client triggers dataset collections and waits for their snapshots.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

var _ ports.ReviewSource = (*Client)(nil)

// NewClient creates a reusable HTTP client; zero config fields take defaults.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = DefaultMaxPolls
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

// Name identifies the strategy inside the scanner registry.
func (c *Client) Name() string {
	return "brightdata"
}

// FetchReviews triggers a collection for the product page and returns the
// standardised reviews, polling the snapshot when the API answers asynchronously.
func (c *Client) FetchReviews(ctx context.Context, product domain.ProductRef) ([]domain.RawReview, error) {
	if c.cfg.Token == "" || c.cfg.DatasetID == "" {
		return nil, fmt.Errorf("bright data client misconfigured: token and dataset id are required")
	}

	query := url.Values{}
	query.Set("dataset_id", c.cfg.DatasetID)
	query.Set("notify", "false")
	query.Set("include_errors", "true")
	query.Set("format", "json")

	payload := []map[string]string{{"url": product.CanonicalURL()}}

	code, body, err := c.do(ctx, http.MethodPost, "/scrape?"+query.Encode(), payload)
	if err != nil {
		return nil, fmt.Errorf("trigger collection: %w", err)
	}

	if snapshot := snapshotID(body); snapshot != "" || code == http.StatusAccepted {
		if snapshot == "" {
			return nil, fmt.Errorf("collection accepted without snapshot id")
		}
		body, err = c.waitSnapshot(ctx, snapshot)
		if err != nil {
			return nil, err
		}
	}

	reviews, err := ParseReviews(body)
	if err != nil {
		return nil, fmt.Errorf("parse reviews: %w", err)
	}
	c.debug("bright data reviews fetched", "asin", product.ASIN, "count", len(reviews))
	return reviews, nil
}

func (c *Client) waitSnapshot(ctx context.Context, id string) ([]byte, error) {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	path := "/snapshot/" + url.PathEscape(id) + "?format=json"
	for attempt := 1; attempt <= c.cfg.MaxPolls; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		code, body, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, fmt.Errorf("poll snapshot %s: %w", id, err)
		}
		if code == http.StatusAccepted || stillRunning(body) {
			c.debug("snapshot not ready", "snapshot", id, "attempt", attempt)
			continue
		}
		return body, nil
	}
	return nil, fmt.Errorf("snapshot %s not ready after %d polls", id, c.cfg.MaxPolls)
}

// do performs one request with retries and returns status code and body.
func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal payload: %w", err)
		}
	}

	type response struct {
		code int
		body []byte
	}

	retryer := retry.New[response](retry.Config{
		MaxAttempts:   c.cfg.MaxAttempts,
		InitialDelay:  200 * time.Millisecond,
		BackoffPolicy: retry.BackoffExponential,
	})

	resp, err := retryer.Do(ctx, func(ctx context.Context) (response, error) {
		code, data, err := c.send(ctx, method, path, body)
		return response{code: code, body: data}, err
	})
	if err != nil {
		return 0, nil, err
	}
	return resp.code, resp.body, nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.Endpoint+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("do request: %w", err)
	}

	data, err := io.ReadAll(resp.Body)
	closeErr := resp.Body.Close()
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	if closeErr != nil {
		return 0, nil, fmt.Errorf("close response body: %w", closeErr)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return resp.StatusCode, nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: truncate(string(data), 200)}
	}
	return resp.StatusCode, data, nil
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
