package venue

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// ListingURL is a validated venue listing page
type ListingURL struct {
	URL   string
	Label string // e.g. "ICLR.cc/2024/Conference"
}

// ParseListingURL checks that urlStr is an absolute http(s) URL and derives
// a display label from its id query parameter.
func ParseListingURL(urlStr string) (ListingURL, error) {
	urlStr = strings.TrimSpace(urlStr)
	if urlStr == "" {
		return ListingURL{}, fmt.Errorf("listing URL is empty")
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return ListingURL{}, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return ListingURL{}, fmt.Errorf("unsupported URL scheme %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return ListingURL{}, fmt.Errorf("listing URL has no host: %s", urlStr)
	}

	return ListingURL{URL: urlStr, Label: ExtractVenueLabel(urlStr)}, nil
}

// ExtractVenueLabel returns the id query parameter of a listing URL, or the
// host when there is none
func ExtractVenueLabel(urlStr string) string {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}

	if id := parsedURL.Query().Get("id"); id != "" {
		return id
	}
	return parsedURL.Host
}

// Slug turns a venue name into a string that is safe to use in file names.
// Letters, digits, '-', '_' and '.' are kept; everything else becomes '_'.
func Slug(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '.':
			b.WriteRune(r)
			lastUnderscore = false
		case r == '_' || !lastUnderscore:
			b.WriteRune('_')
			lastUnderscore = true
		}
	}

	slug := strings.Trim(b.String(), "_.")
	if slug == "" {
		return "venue"
	}
	return slug
}
