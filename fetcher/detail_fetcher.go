package fetcher

import (
	"context"
	"fmt"
	"time"

	"openreview-ratings/scraper"
)

// DetailFetcher loads discussion pages in a browser, reusing a single tab
// for every URL
type DetailFetcher struct {
	opener      scraper.PageOpener
	page        scraper.Page
	settleDelay time.Duration
}

// NewDetailFetcher creates a DetailFetcher on top of an open browser
func NewDetailFetcher(opener scraper.PageOpener, settleDelay time.Duration) *DetailFetcher {
	return &DetailFetcher{
		opener:      opener,
		settleDelay: settleDelay,
	}
}

// Fetch navigates to the URL, lets client-side rendering finish and returns
// the rendered HTML
func (df *DetailFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if df.page == nil {
		page, err := df.opener.OpenPage()
		if err != nil {
			return "", err
		}
		df.page = page
	}

	if err := df.page.Navigate(ctx, url); err != nil {
		return "", err
	}

	if err := df.page.Settle(ctx, df.settleDelay); err != nil {
		return "", err
	}

	html, err := df.page.HTML(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}
	return html, nil
}

// Close closes the tab if one was opened
func (df *DetailFetcher) Close() error {
	if df.page == nil {
		return nil
	}
	err := df.page.Close()
	df.page = nil
	return err
}
