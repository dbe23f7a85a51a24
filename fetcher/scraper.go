package fetcher

import "context"

// Fetcher interface defines the contract for loading detail page markup
type Fetcher interface {
	// Fetch loads the page at url and returns its markup
	Fetch(ctx context.Context, url string) (string, error)
	// Close releases the resources held by the fetcher
	Close() error
}
