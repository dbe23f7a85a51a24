package parser

import (
	"regexp"
	"strconv"
	"strings"

	"openreview-ratings/models"

	"github.com/PuerkitoBio/goquery"
)

// DefaultLabel is the text that precedes a reviewer score in the markup
const DefaultLabel = "Preliminary Rating"

// DefaultSnippetLength is how many characters after the label are inspected
const DefaultSnippetLength = 100

var numberRegex = regexp.MustCompile(`\d+\.?\d*`)

// RatingParser extracts reviewer scores from discussion page markup
type RatingParser struct {
	label         string
	snippetLength int
}

// NewRatingParser creates a RatingParser, falling back to the defaults for
// an empty label or a non-positive snippet length
func NewRatingParser(label string, snippetLength int) *RatingParser {
	if label == "" {
		label = DefaultLabel
	}
	if snippetLength <= 0 {
		snippetLength = DefaultSnippetLength
	}
	return &RatingParser{label: label, snippetLength: snippetLength}
}

// ParseRatings scans the markup for every occurrence of the label.
// Each rating is rendered twice on the page, so only the even-indexed
// occurrences (0, 2, 4, ...) are read.
func (rp *RatingParser) ParseRatings(markup string) []models.Score {
	scores := []models.Score{}
	matchIndex := 0
	start := 0

	for {
		idx := strings.Index(markup[start:], rp.label)
		if idx == -1 {
			break
		}
		start += idx + len(rp.label)

		if matchIndex%2 == 0 {
			snippet := firstLine(prefixRunes(markup[start:], rp.snippetLength))
			scores = append(scores, ExtractNumber(TextContent(snippet)))
		}
		matchIndex++
	}

	return scores
}

// CountLabels returns how many times the label occurs in the markup
func (rp *RatingParser) CountLabels(markup string) int {
	return strings.Count(markup, rp.label)
}

// ExtractNumber returns the first integer or decimal in the text.
// The score is not Found when the text has no digits.
func ExtractNumber(text string) models.Score {
	match := numberRegex.FindString(text)
	if match == "" {
		return models.Score{}
	}
	value, err := strconv.ParseFloat(strings.TrimSuffix(match, "."), 64)
	if err != nil {
		return models.Score{}
	}
	return models.NewScore(value)
}

// TextContent strips tags from an HTML fragment and returns its text
func TextContent(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return doc.Text()
}

// prefixRunes returns at most n runes from the start of s
func prefixRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx != -1 {
		return s[:idx]
	}
	return s
}
