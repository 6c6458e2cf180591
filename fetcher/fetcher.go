// ABOUTME: This file implements the polite HTTP fetcher used by every scraper
// ABOUTME: Browser-like UA, hard per-request timeout, one retry on transient failures, per-host pacing
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"cienaga/domain"
	"cienaga/retry"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config carries the fetcher knobs; zero values fall back to the
// defaults the venues tolerate well.
type Config struct {
	UserAgent     string
	Timeout       time.Duration
	RetryDelay    time.Duration
	RespectRobots bool
}

// Client is a polite GET client. It sends no cookies and performs no
// authentication.
type Client struct {
	http      *http.Client
	limiter   *HostLimiter
	robots    *robotsCache
	retrier   *retry.Retrier
	userAgent string
	logger    *slog.Logger
}

func New(cfg Config, limiter *HostLimiter, logger *slog.Logger) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	client := &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		limiter:   limiter,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}

	if cfg.RespectRobots {
		client.robots = newRobotsCache(client.http, cfg.UserAgent)
	}

	client.retrier = retry.New(
		retry.Config{MaxAttempts: 2, Delay: cfg.RetryDelay},
		func(err error) bool { return errors.Is(err, domain.ErrTransientFetch) },
		logger,
	)

	return client
}

// Fetch GETs the URL and returns the body. A 404 yields (nil, nil); 4xx
// responses and robots exclusions surface as ErrItemSkipped without a
// retry; network errors, timeouts and 5xx responses are retried exactly
// once and then surface as ErrTransientFetch.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported url %q", domain.ErrInvalidInput, rawURL)
	}

	if c.robots != nil && !c.robots.allowed(ctx, parsed) {
		c.logger.InfoContext(ctx, "skipping url disallowed by robots.txt", "url", rawURL)
		return nil, fmt.Errorf("%w: disallowed by robots.txt", domain.ErrItemSkipped)
	}

	var body []byte

	err = c.retrier.Do(ctx, func() error {
		if waitErr := c.limiter.Wait(ctx, parsed.Hostname()); waitErr != nil {
			return fmt.Errorf("%w: %v", domain.ErrTransientFetch, waitErr)
		}

		var attemptErr error
		body, attemptErr = c.get(ctx, rawURL)
		return attemptErr
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransientFetch, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.logger.InfoContext(ctx, "page not found", "url", rawURL)
		return nil, nil
	case resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d from %s", domain.ErrTransientFetch, resp.StatusCode, rawURL)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: status %d from %s", domain.ErrItemSkipped, resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrTransientFetch, err)
	}

	return body, nil
}
