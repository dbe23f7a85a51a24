package fetcher

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
)

// CollyFetcher loads pages over plain HTTP. It only sees server-rendered
// markup, so it suits static mirrors and saved pages rather than the live
// site.
type CollyFetcher struct {
	collector *colly.Collector
}

// NewCollyFetcher creates a CollyFetcher that sends at most one request at
// a time, waiting delay between requests to the same host
func NewCollyFetcher(userAgent string, delay time.Duration) *CollyFetcher {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
	)

	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       delay,
	}); err != nil {
		log.Printf("Warning: Failed to set rate limit: %v\n", err)
	}

	return &CollyFetcher{
		collector: c,
	}
}

// Fetch implements the Fetcher interface
func (cf *CollyFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := url.ParseRequestURI(pageURL); err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", pageURL, err)
	}

	c := cf.collector.Clone()

	var body string
	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(pageURL); err != nil {
		return "", fmt.Errorf("failed to visit %s: %w", pageURL, err)
	}
	c.Wait()

	if fetchErr != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", pageURL, fetchErr)
	}
	return body, nil
}

// Close is a no-op; colly holds no long-lived resources
func (cf *CollyFetcher) Close() error {
	return nil
}
