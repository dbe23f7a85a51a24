package scraper

import (
	"context"
	"time"
)

// Page is the browser surface the collector and extractor depend on
type Page interface {
	// Navigate loads the URL and waits until the page is ready
	Navigate(ctx context.Context, url string) error
	// Settle waits for content rendered after an interaction
	Settle(ctx context.Context, delay time.Duration) error
	// WaitElement waits for an element matching selector, up to timeout
	WaitElement(ctx context.Context, selector string, timeout time.Duration) error
	// Click clicks the first element matching selector
	Click(ctx context.Context, selector string) error
	// Eval runs a JS function in page context and decodes the result into out
	Eval(ctx context.Context, js string, out interface{}, args ...interface{}) error
	// HTML returns the full rendered markup
	HTML(ctx context.Context) (string, error)
	Close() error
}

// PageOpener opens browser pages. It is satisfied by *Browser through
// BrowserSession and by fakes in tests.
type PageOpener interface {
	OpenPage() (Page, error)
	Close() error
}

// BrowserSession adapts a Browser to PageOpener and applies page settings
type BrowserSession struct {
	*Browser
	StableTimeout time.Duration
}

// OpenPage opens a new tab
func (s *BrowserSession) OpenPage() (Page, error) {
	page, err := s.NewPage()
	if err != nil {
		return nil, err
	}
	page.SetStableTimeout(s.StableTimeout)
	return page, nil
}
