package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/filmcast/internal/metrics"
)

const (
	endpointCategory = "categorymembers"
	endpointSections = "sections"
	endpointWikitext = "wikitext"
)

// DefaultBaseURL is the English Wikipedia action API.
const DefaultBaseURL = "https://en.wikipedia.org/w/api.php"

// Config controls the API client.
type Config struct {
	BaseURL   string
	UserAgent string
	// Timeout bounds each attempt; zero disables the per-request deadline.
	Timeout time.Duration
}

// Client issues typed requests against the action API.
type Client struct {
	cfg     Config
	fetcher Fetcher
	retry   RetryPolicy
	logger  *zap.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewClient builds a Client. A nil retry policy disables retries.
func NewClient(cfg Config, fetcher Fetcher, retry RetryPolicy, logger *zap.Logger) (*Client, error) {
	if fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		return nil, errors.New("user agent is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if retry == nil {
		retry = NewExponentialRetryPolicy(0, 0, 0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:     cfg,
		fetcher: fetcher,
		retry:   retry,
		logger:  logger,
		sleep:   sleepContext,
	}, nil
}

// CategoryMembers fetches one page of a category listing.
func (c *Client) CategoryMembers(ctx context.Context, query CategoryQuery) (CategoryPage, error) {
	var resp categoryResponse
	if err := c.get(ctx, endpointCategory, query.Values(), &resp); err != nil {
		return CategoryPage{}, err
	}
	page, err := resp.page()
	if err != nil {
		metrics.ObserveMalformed(endpointCategory)
		return CategoryPage{}, err
	}
	return page, nil
}

// Sections fetches the section outline of a page.
func (c *Client) Sections(ctx context.Context, page string) ([]Section, error) {
	var resp sectionsResponse
	if err := c.get(ctx, endpointSections, sectionsValues(page), &resp); err != nil {
		return nil, err
	}
	sections, err := resp.sections()
	if err != nil {
		metrics.ObserveMalformed(endpointSections)
		return nil, err
	}
	return sections, nil
}

// SectionWikitext fetches the raw wikitext of one section of a page.
func (c *Client) SectionWikitext(ctx context.Context, page string, section SectionIndex) (string, error) {
	var resp wikitextResponse
	if err := c.get(ctx, endpointWikitext, wikitextValues(page, section), &resp); err != nil {
		return "", err
	}
	text, err := resp.text()
	if err != nil {
		metrics.ObserveMalformed(endpointWikitext)
		return "", err
	}
	return text, nil
}

func (c *Client) get(ctx context.Context, endpoint string, values url.Values, out any) error {
	target := c.cfg.BaseURL + "?" + values.Encode()
	for attempt := 0; ; attempt++ {
		body, err := c.fetch(ctx, endpoint, target)
		if err == nil {
			if err := json.Unmarshal(body, out); err != nil {
				metrics.ObserveMalformed(endpoint)
				return &MalformedResponseError{Endpoint: endpoint, Err: err}
			}
			return nil
		}
		if ctx.Err() != nil || !c.retry.ShouldRetry(err, attempt) {
			return err
		}
		wait := c.retry.Backoff(attempt)
		metrics.ObserveRetry(endpoint)
		c.logger.Warn("api request failed; retrying",
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
		if err := c.sleep(ctx, wait); err != nil {
			return fmt.Errorf("%s retry wait: %w", endpoint, err)
		}
	}
}

func (c *Client) fetch(ctx context.Context, endpoint, target string) ([]byte, error) {
	reqCtx := ctx
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.fetcher.Fetch(reqCtx, FetchRequest{
		URL:     target,
		Headers: http.Header{"User-Agent": {c.cfg.UserAgent}},
	})
	elapsed := time.Since(start)
	if err != nil {
		metrics.ObserveAPIRequest(endpoint, metrics.OutcomeTransport, elapsed)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s request: %w", endpoint, ctx.Err())
		}
		return nil, &NetworkError{Endpoint: endpoint, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveAPIRequest(endpoint, metrics.OutcomeHTTPError, elapsed)
		return nil, &NetworkError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}
	metrics.ObserveAPIRequest(endpoint, metrics.OutcomeOK, elapsed)
	c.logger.Debug("api request",
		zap.String("endpoint", endpoint),
		zap.String("url", target),
		zap.Int("bytes", len(resp.Body)),
		zap.Duration("dur", elapsed),
	)
	return resp.Body, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
