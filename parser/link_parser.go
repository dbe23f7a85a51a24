package parser

import (
	"net/url"
	"strings"

	"openreview-ratings/models"
)

// DefaultLinkPrefix is the path every discussion page lives under
const DefaultLinkPrefix = "/forum"

// DefaultExcludePattern marks links to individual notes inside a forum
const DefaultExcludePattern = "/forum?noteId"

// LinkFilter keeps only hrefs that point at paper discussion pages
type LinkFilter struct {
	prefix  string
	exclude string
}

// NewLinkFilter creates a LinkFilter with the given path prefix and
// exclusion pattern
func NewLinkFilter(prefix, exclude string) *LinkFilter {
	if prefix == "" {
		prefix = DefaultLinkPrefix
	}
	return &LinkFilter{prefix: prefix, exclude: exclude}
}

// Filter returns the hrefs that start with origin+prefix and do not contain
// the exclusion pattern, in their original order
func (lf *LinkFilter) Filter(origin string, hrefs []string) []models.PaperURL {
	want := strings.TrimSuffix(origin, "/") + lf.prefix
	var links []models.PaperURL
	for _, href := range hrefs {
		href = strings.TrimSpace(href)
		if !strings.HasPrefix(href, want) {
			continue
		}
		if lf.exclude != "" && strings.Contains(href, lf.exclude) {
			continue
		}
		links = append(links, models.PaperURL(href))
	}
	return links
}

// Origin returns scheme://host for a page URL, or "" if it cannot be parsed
func Origin(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
