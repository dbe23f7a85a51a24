package report

import (
	"io"

	"openreview-ratings/filter"
	"openreview-ratings/models"
	"openreview-ratings/stats"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// PrintSummary renders the summary as a two-column table
func PrintSummary(w io.Writer, venueName string, s stats.Summary) {
	t := newTable(w)
	t.SetTitle(SummaryHeader(venueName))
	t.AppendHeader(table.Row{"Metric", "Value"})

	t.AppendRow(table.Row{"Papers processed", s.Papers})
	t.AppendRow(table.Row{"Average rating of all papers", models.FormatRating(s.AverageRating)})
	t.AppendRow(table.Row{"Average rating given by reviewers", models.FormatRating(s.ReviewerAverage)})
	t.AppendRow(table.Row{"Papers above average", s.AboveAverage})
	t.AppendRow(table.Row{"Papers above reviewer average", s.AboveReviewerAvg})
	t.AppendSeparator()
	for _, b := range s.Histogram {
		t.AppendRow(table.Row{"Rating between " + b.Label(), b.Count})
	}
	if s.PapersWithoutScores > 0 {
		t.AppendSeparator()
		t.AppendRow(table.Row{"Papers without ratings", s.PapersWithoutScores})
	}

	t.Render()
}

// PrintTopPapers renders the ranked papers, one row each
func PrintTopPapers(w io.Writer, papers []filter.RankedPaper) {
	if len(papers) == 0 {
		return
	}

	t := newTable(w)
	t.SetTitle("Top papers")
	t.AppendHeader(table.Row{"#", "Average", "Reviews", "URL"})
	for i, p := range papers {
		t.AppendRow(table.Row{i + 1, models.FormatRating(p.AverageRating), p.Reviews, string(p.URL)})
	}
	t.Render()
}
