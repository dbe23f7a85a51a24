package report

import (
	"fmt"
	"strings"

	"openreview-ratings/models"
	"openreview-ratings/stats"
)

// SummaryHeader returns the first line of the summary report
func SummaryHeader(venueName string) string {
	return fmt.Sprintf("----- OpenReview SUMMARY - %s -----", venueName)
}

// SummaryLines returns the nine summary lines without the header
func SummaryLines(s stats.Summary) []string {
	avg := models.FormatRating(s.AverageRating)
	reviewerAvg := models.FormatRating(s.ReviewerAverage)

	lines := []string{
		fmt.Sprintf("Number of papers processed: %d", s.Papers),
		fmt.Sprintf("Average rating of all papers: %s", avg),
		fmt.Sprintf("Average rating given by reviewers: %s", reviewerAvg),
		fmt.Sprintf("Number of papers with rating above average (>%s): %d", avg, s.AboveAverage),
		fmt.Sprintf("Number of papers with rating above average given by reviewers (>%s): %d", reviewerAvg, s.AboveReviewerAvg),
	}
	for _, b := range s.Histogram {
		lines = append(lines, fmt.Sprintf("Number of papers with rating between %s: %d", b.Label(), b.Count))
	}
	return lines
}

// FormatSummary renders the header and summary lines, one per line
func FormatSummary(venueName string, s stats.Summary) string {
	var sb strings.Builder
	sb.WriteString(SummaryHeader(venueName))
	sb.WriteString("\n")
	for _, line := range SummaryLines(s) {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}
