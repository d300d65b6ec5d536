// Package fetch retrieves source pages for instances created from a URL.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
)

// DefaultMaxBody caps fetched pages at 10MB, matching the DOM parser limit.
const DefaultMaxBody = 10 * 1024 * 1024

// Fetcher downloads HTML pages with retries and a size cap.
type Fetcher struct {
	client  *resty.Client
	maxBody int64
}

// Config tunes the fetcher.
type Config struct {
	Timeout    time.Duration
	RetryCount int
	MaxBody    int64
	UserAgent  string
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:    15 * time.Second,
		RetryCount: 2,
		MaxBody:    DefaultMaxBody,
		UserAgent:  "minimapd/1.0",
	}
}

// New creates a fetcher.
func New(cfg Config) *Fetcher {
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = DefaultMaxBody
	}
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("User-Agent", cfg.UserAgent)
	return &Fetcher{client: client, maxBody: cfg.MaxBody}
}

// Page fetches a URL and returns its HTML. Non-HTML responses and oversized
// bodies are rejected.
func (f *Fetcher) Page(ctx context.Context, url string) (string, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode())
	}

	body := resp.Body()
	if int64(len(body)) > f.maxBody {
		return "", fmt.Errorf("fetch %s: body exceeds %d bytes", url, f.maxBody)
	}

	mtype := mimetype.Detect(body)
	if !mtype.Is("text/html") && !mtype.Is("application/xhtml+xml") {
		return "", fmt.Errorf("fetch %s: not an HTML page (%s)", url, mtype.String())
	}
	return string(body), nil
}
