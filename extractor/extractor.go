package extractor

import (
	"context"
	"fmt"
	"log"
	"time"

	"openreview-ratings/fetcher"
	"openreview-ratings/models"
	"openreview-ratings/parser"
)

// ProgressTracker receives progress updates while papers are processed
type ProgressTracker interface {
	Start(message string, total int)
	Increment()
	Done()
}

type noProgress struct{}

func (noProgress) Start(string, int) {}
func (noProgress) Increment()        {}
func (noProgress) Done()             {}

// Extractor loads every discussion page in turn and records its ratings
type Extractor struct {
	fetcher   fetcher.Fetcher
	parser    *parser.RatingParser
	pageDelay time.Duration
	progress  ProgressTracker
}

// NewExtractor creates an Extractor. pageDelay is waited after each page.
func NewExtractor(f fetcher.Fetcher, p *parser.RatingParser, pageDelay time.Duration) *Extractor {
	return &Extractor{
		fetcher:   f,
		parser:    p,
		pageDelay: pageDelay,
		progress:  noProgress{},
	}
}

// WithProgress sets the progress tracker
func (e *Extractor) WithProgress(p ProgressTracker) *Extractor {
	if p != nil {
		e.progress = p
	}
	return e
}

// Extract processes the URLs sequentially. The first page that cannot be
// loaded aborts the whole run.
func (e *Extractor) Extract(ctx context.Context, urls []models.PaperURL) (models.Ratings, error) {
	result := make(models.Ratings, len(urls))

	log.Printf("Number of pages to process: %d\n", len(urls))
	e.progress.Start("Discussion pages", len(urls))
	defer e.progress.Done()

	for _, u := range urls {
		e.progress.Increment()

		record, err := e.ExtractOne(ctx, u)
		if err != nil {
			return result, err
		}
		result[u] = record

		if err := wait(ctx, e.pageDelay); err != nil {
			return result, err
		}
	}

	return result, nil
}

// ExtractOne fetches a single discussion page and parses its ratings
func (e *Extractor) ExtractOne(ctx context.Context, u models.PaperURL) (models.RatingRecord, error) {
	markup, err := e.fetcher.Fetch(ctx, string(u))
	if err != nil {
		return models.RatingRecord{}, fmt.Errorf("failed to load %s: %w", u, err)
	}

	record := models.NewRatingRecord(e.parser.ParseRatings(markup))
	if len(record.Ratings) == 0 {
		log.Printf("Warning: No ratings found on %s\n", u)
	}
	return record, nil
}

func wait(ctx context.Context, d time.Duration) error {
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
