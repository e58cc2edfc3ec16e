// Package media downloads pronunciation audio referenced by vocabulary items.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// ErrTooLarge is returned when a response exceeds the configured size cap.
var ErrTooLarge = errors.New("media exceeds size limit")

// Config holds fetcher settings.
type Config struct {
	Timeout    time.Duration
	MaxBytes   int64
	RetryDelay time.Duration
}

// Fetcher retrieves audio over HTTP(S) with a single retry on 5xx or
// network errors.
type Fetcher struct {
	httpClient *http.Client
	maxBytes   int64
	retryDelay time.Duration
	log        *slog.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(logger *slog.Logger, cfg Config) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxBytes:   cfg.MaxBytes,
		retryDelay: cfg.RetryDelay,
		log:        logger.With("adapter", "media"),
	}
}

// Fetch downloads rawURL and returns the body.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("media: parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("media: unsupported scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("media: create request: %w", err)
	}

	resp, err := f.doWithRetry(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("media: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media: unexpected status %d", resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("media: read body: %w", err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, ErrTooLarge
	}

	f.log.DebugContext(ctx, "media fetched",
		slog.String("host", u.Host),
		slog.Int("bytes", len(data)),
	)
	return data, nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (f *Fetcher) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := f.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	f.log.WarnContext(ctx, "media retry", slog.String("host", req.URL.Host), slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(f.retryDelay):
	}

	return f.httpClient.Do(req)
}
