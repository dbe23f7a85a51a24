package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"openreview-ratings/config"
	"openreview-ratings/extractor"
	"openreview-ratings/fetcher"
	"openreview-ratings/filter"
	"openreview-ratings/models"
	"openreview-ratings/notify"
	"openreview-ratings/parser"
	"openreview-ratings/report"
	"openreview-ratings/scraper"
	"openreview-ratings/sheets"
	"openreview-ratings/stats"
	"openreview-ratings/venue"
)

// BrowserFactory starts a browser for one phase of a run
type BrowserFactory func(cfg config.BrowserConfig, stableTimeout time.Duration) (scraper.PageOpener, error)

// RunStore records run history
type RunStore interface {
	CreateRun(ctx context.Context, venue, listingURL string) (int64, error)
	SaveRatings(ctx context.Context, runID int64, ratings models.Ratings) error
	FinishRun(ctx context.Context, runID int64, papersCount int, averageRating, reviewerAverage float64) error
	FailRun(ctx context.Context, runID int64, runErr error) error
}

// SheetExporter writes a run to a new spreadsheet tab
type SheetExporter interface {
	CreateSheetAndWriteRatings(ctx context.Context, sheetName, listingURL string, ratings models.Ratings, summary []string) (string, int64, error)
	SheetURL(sheetID int64) string
}

// Progress is drawn while links are collected and pages are processed
type Progress interface {
	Start(message string, total int)
	Increment()
	Done()
}

// Result describes a finished run
type Result struct {
	Venue       string
	ListingURL  string
	Links       []models.PaperURL
	Ratings     models.Ratings
	Summary     stats.Summary
	TopPapers   []filter.RankedPaper
	RatingsPath string
	SummaryPath string
	SheetName   string
	SheetURL    string
	RunID       int64
}

// Pipeline runs link collection, extraction, aggregation and the outputs
// one after another
type Pipeline struct {
	cfg         *config.Config
	openBrowser BrowserFactory
	newFetcher  func(cfg config.ExtractorConfig) fetcher.Fetcher
	progress    Progress
	out         io.Writer

	store    RunStore
	sheets   SheetExporter
	notifier notify.Notifier
}

// New creates a Pipeline that launches Chromium with go-rod
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		openBrowser: LaunchBrowser,
		newFetcher: func(ec config.ExtractorConfig) fetcher.Fetcher {
			return fetcher.NewCollyFetcher(ec.UserAgent, 0)
		},
		out: os.Stdout,
	}
}

// LaunchBrowser is the default BrowserFactory
func LaunchBrowser(cfg config.BrowserConfig, stableTimeout time.Duration) (scraper.PageOpener, error) {
	b, err := scraper.NewBrowser(cfg)
	if err != nil {
		return nil, err
	}
	return &scraper.BrowserSession{Browser: b, StableTimeout: stableTimeout}, nil
}

// WithBrowserFactory replaces how browsers are started
func (p *Pipeline) WithBrowserFactory(f BrowserFactory) *Pipeline {
	p.openBrowser = f
	return p
}

// WithStaticFetcher replaces the fetcher used by the static engine
func (p *Pipeline) WithStaticFetcher(f func(cfg config.ExtractorConfig) fetcher.Fetcher) *Pipeline {
	p.newFetcher = f
	return p
}

// WithProgress draws progress bars for both phases
func (p *Pipeline) WithProgress(progress Progress) *Pipeline {
	p.progress = progress
	return p
}

// WithOutput sets where the console tables are printed
func (p *Pipeline) WithOutput(w io.Writer) *Pipeline {
	p.out = w
	return p
}

// WithStore enables run history
func (p *Pipeline) WithStore(s RunStore) *Pipeline {
	p.store = s
	return p
}

// WithSheets enables the spreadsheet export
func (p *Pipeline) WithSheets(s SheetExporter) *Pipeline {
	p.sheets = s
	return p
}

// WithNotifier enables run notifications
func (p *Pipeline) WithNotifier(n notify.Notifier) *Pipeline {
	p.notifier = n
	return p
}

// Run scrapes the venue listing and writes every configured output.
// Scraping and file errors fail the run; history, sheets and notification
// errors are only logged.
func (p *Pipeline) Run(ctx context.Context, listingURL, venueName string) (*Result, error) {
	listing, err := venue.ParseListingURL(listingURL)
	if err != nil {
		return nil, err
	}
	if venueName == "" {
		return nil, fmt.Errorf("venue name is empty")
	}

	result := &Result{Venue: venueName, ListingURL: listing.URL}
	log.Printf("Scraping %s (%s)\n", venueName, listing.Label)

	p.startRun(ctx, result)

	if err := p.scrape(ctx, result); err != nil {
		p.failRun(result, err)
		return result, err
	}

	result.Summary = stats.Compute(result.Ratings)
	result.TopPapers = filter.NewFilter(&p.cfg.Filters).ApplyFilters(result.Ratings)

	if err := p.writeFiles(result); err != nil {
		p.failRun(result, err)
		return result, err
	}

	report.PrintSummary(p.out, venueName, result.Summary)
	report.PrintTopPapers(p.out, result.TopPapers)

	p.finishRun(ctx, result)
	p.exportSheet(ctx, result)
	message := notify.FormatRunMessage(venueName, listing.URL, report.SummaryLines(result.Summary))
	if result.SheetURL != "" {
		message += "\n\nView spreadsheet: " + result.SheetURL
	}
	p.notify(ctx, message)

	return result, nil
}

func (p *Pipeline) scrape(ctx context.Context, result *Result) error {
	links, err := p.collect(ctx, result.ListingURL)
	if err != nil {
		return err
	}
	result.Links = links

	ratings, err := p.extract(ctx, links)
	result.Ratings = ratings
	return err
}

// collect runs the link collection phase in its own browser
func (p *Pipeline) collect(ctx context.Context, listingURL string) ([]models.PaperURL, error) {
	opener, err := p.openBrowser(p.cfg.Browser, p.cfg.Collector.StableTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	defer closeQuietly("browser", opener)

	collector := scraper.NewLinkCollector(p.cfg.Collector)
	if p.progress != nil {
		collector.WithProgress(p.progress)
	}
	return collector.Collect(ctx, opener, listingURL)
}

// extract runs the extraction phase with the configured engine
func (p *Pipeline) extract(ctx context.Context, links []models.PaperURL) (models.Ratings, error) {
	if len(links) == 0 {
		log.Println("Warning: No paper links collected, nothing to extract")
		return models.Ratings{}, nil
	}
	ec := p.cfg.Extractor

	var f fetcher.Fetcher
	switch ec.Engine {
	case config.EngineStatic:
		f = p.newFetcher(ec)
	default:
		opener, err := p.openBrowser(p.cfg.Browser, ec.StableTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		defer closeQuietly("browser", opener)
		f = fetcher.NewDetailFetcher(opener, ec.SettleDelay)
	}
	defer closeQuietly("fetcher", f)

	e := extractor.NewExtractor(f, parser.NewRatingParser(ec.Label, ec.SnippetLength), ec.PageDelay)
	if p.progress != nil {
		e.WithProgress(p.progress)
	}
	return e.Extract(ctx, links)
}

func (p *Pipeline) writeFiles(result *Result) error {
	dir := p.cfg.Output.Dir

	result.RatingsPath = report.RatingsPath(dir, result.Venue)
	if err := report.WriteRatings(result.RatingsPath, result.Ratings); err != nil {
		return err
	}
	log.Printf("Results saved in %s\n", result.RatingsPath)

	result.SummaryPath = report.SummaryPath(dir, result.Venue)
	if err := report.WriteSummary(result.SummaryPath, result.Venue, result.Summary); err != nil {
		return err
	}
	log.Printf("Summary saved in %s\n", result.SummaryPath)
	return nil
}

func (p *Pipeline) startRun(ctx context.Context, result *Result) {
	if p.store == nil {
		return
	}
	id, err := p.store.CreateRun(ctx, result.Venue, result.ListingURL)
	if err != nil {
		log.Printf("Warning: Failed to record run: %v\n", err)
		return
	}
	result.RunID = id
}

func (p *Pipeline) finishRun(ctx context.Context, result *Result) {
	if p.store == nil || result.RunID == 0 {
		return
	}
	if err := p.store.SaveRatings(ctx, result.RunID, result.Ratings); err != nil {
		log.Printf("Warning: Failed to save ratings for run %d: %v\n", result.RunID, err)
	}
	s := result.Summary
	if err := p.store.FinishRun(ctx, result.RunID, s.Papers, s.AverageRating, s.ReviewerAverage); err != nil {
		log.Printf("Warning: Failed to finish run %d: %v\n", result.RunID, err)
	}
}

// failRun records and announces a failed run. It uses a fresh context so a
// cancelled run can still be marked as failed.
func (p *Pipeline) failRun(result *Result, runErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if p.store != nil && result.RunID != 0 {
		if err := p.store.FailRun(ctx, result.RunID, runErr); err != nil {
			log.Printf("Warning: Failed to mark run %d as failed: %v\n", result.RunID, err)
		}
	}
	p.notify(ctx, notify.FormatFailureMessage(result.Venue, runErr))
}

func (p *Pipeline) exportSheet(ctx context.Context, result *Result) {
	if p.sheets == nil {
		return
	}
	name := sheets.SheetName(result.Venue, time.Now())
	lines := append([]string{report.SummaryHeader(result.Venue)}, report.SummaryLines(result.Summary)...)
	sheetName, sheetID, err := p.sheets.CreateSheetAndWriteRatings(ctx, name, result.ListingURL, result.Ratings, lines)
	if err != nil {
		log.Printf("Warning: Failed to write to Google Sheets: %v\n", err)
		return
	}
	result.SheetName = sheetName
	result.SheetURL = p.sheets.SheetURL(sheetID)
}

func (p *Pipeline) notify(ctx context.Context, text string) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Notify(ctx, text); err != nil {
		log.Printf("Warning: Failed to send notification: %v\n", err)
	}
}

func closeQuietly(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Printf("Warning: Failed to close %s: %v\n", name, err)
	}
}
