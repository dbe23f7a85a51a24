package scraper

import (
	"context"
	"fmt"
	"log"

	"openreview-ratings/config"
	"openreview-ratings/models"
	"openreview-ratings/parser"
)

const countElementsJS = `(sel) => document.querySelectorAll(sel).length`

const pageLinksJS = `() => ({
	origin: window.location.origin,
	hrefs: Array.from(document.querySelectorAll('a')).map(a => a.href),
})`

type pageLinks struct {
	Origin string   `json:"origin"`
	Hrefs  []string `json:"hrefs"`
}

// ProgressTracker receives progress updates while pages are walked
type ProgressTracker interface {
	Start(message string, total int)
	Increment()
	Done()
}

type noProgress struct{}

func (noProgress) Start(string, int) {}
func (noProgress) Increment()        {}
func (noProgress) Done()             {}

// LinkCollector walks the numbered pagination of a venue listing and
// gathers the discussion page links from every page
type LinkCollector struct {
	cfg      config.CollectorConfig
	filter   *parser.LinkFilter
	progress ProgressTracker
}

// NewLinkCollector creates a LinkCollector
func NewLinkCollector(cfg config.CollectorConfig) *LinkCollector {
	return &LinkCollector{
		cfg:      cfg,
		filter:   parser.NewLinkFilter(cfg.LinkPrefix, cfg.ExcludePattern),
		progress: noProgress{},
	}
}

// WithProgress sets the progress tracker used while paginating
func (lc *LinkCollector) WithProgress(p ProgressTracker) *LinkCollector {
	if p != nil {
		lc.progress = p
	}
	return lc
}

// Collect returns the distinct paper URLs found on the listing, in the order
// they were first seen. Pagination failures are logged and the links
// gathered so far are returned; only a failure to load the listing itself
// or a cancelled context is reported as an error.
func (lc *LinkCollector) Collect(ctx context.Context, opener PageOpener, listingURL string) ([]models.PaperURL, error) {
	page, err := opener.OpenPage()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Printf("Warning: Failed to close listing page: %v\n", err)
		}
	}()

	if err := page.Navigate(ctx, listingURL); err != nil {
		return nil, fmt.Errorf("failed to load listing page %s: %w", listingURL, err)
	}

	links := models.NewLinkSet()
	if err := lc.paginate(ctx, page, links); err != nil {
		if ctx.Err() != nil {
			return links.Slice(), ctx.Err()
		}
		log.Printf("Warning: Pagination stopped early: %v\n", err)
	}

	log.Printf("Collected %d paper links\n", links.Len())
	return links.Slice(), nil
}

func (lc *LinkCollector) paginate(ctx context.Context, page Page, links *models.LinkSet) error {
	if err := page.WaitElement(ctx, lc.cfg.PaginationSelector, lc.cfg.PaginationTimeout); err != nil {
		return fmt.Errorf("pagination control not found: %w", err)
	}

	var numberOfPages int
	if err := page.Eval(ctx, countElementsJS, &numberOfPages, lc.cfg.PageItemSelector); err != nil {
		return fmt.Errorf("failed to count pages: %w", err)
	}
	log.Printf("Number of pages found: %d\n", numberOfPages)

	lc.progress.Start("Listing pages", numberOfPages)
	defer lc.progress.Done()

	for i := 1; i <= numberOfPages; i++ {
		lc.progress.Increment()

		selector := fmt.Sprintf(lc.cfg.PageLinkSelector, i+lc.cfg.PageLinkOffset)
		if err := page.Click(ctx, selector); err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}
		if err := page.Settle(ctx, lc.cfg.SettleDelay); err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}

		found, err := lc.pageLinks(ctx, page)
		if err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}
		added := links.AddAll(found)
		log.Printf("Page %d/%d: %d links, %d new\n", i, numberOfPages, len(found), added)
	}

	return nil
}

func (lc *LinkCollector) pageLinks(ctx context.Context, page Page) ([]models.PaperURL, error) {
	var result pageLinks
	if err := page.Eval(ctx, pageLinksJS, &result); err != nil {
		return nil, fmt.Errorf("failed to read links: %w", err)
	}
	return lc.filter.Filter(result.Origin, result.Hrefs), nil
}
