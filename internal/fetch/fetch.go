// Package fetch pulls candidate content items from feeds, web pages, and
// video channels. Fetchers skip bad items and failed sources instead of
// failing a batch; deduplication happens at the store's insert path.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"ai-news-digest/internal/model"
)

const userAgent = "ai-news-digest/1.0"

// FeedSource describes one syndication feed to poll.
type FeedSource struct {
	Name string
	URL  string
}

// ChannelSource describes one video channel to poll.
type ChannelSource struct {
	Name      string
	ChannelID string
}

// ScrapeSource describes one ad-hoc page to scrape.
type ScrapeSource struct {
	Name string
	URL  string
}

// Inserter is the slice of the content store fetchers need.
type Inserter interface {
	InsertIfAbsent(ctx context.Context, item model.ContentItem) (model.ContentItem, bool, error)
}

type httpStatusError struct {
	status int
	url    string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("fetch: %s returned status %d", e.url, e.status)
}

// getWithRetry performs an idempotent GET with exponential backoff: three
// attempts total, intervals growing from 2s and capped at 10s. Client errors
// (4xx) are not retried.
func getWithRetry(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 2 * time.Second
	policy.MaxInterval = 10 * time.Second

	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(&httpStatusError{status: resp.StatusCode, url: url})
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &httpStatusError{status: resp.StatusCode, url: url}
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, 2), ctx))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
