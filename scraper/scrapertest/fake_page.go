// Package scrapertest provides an in-memory scraper.Page for tests.
package scrapertest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"openreview-ratings/scraper"
)

// FakeSite describes the pages a FakePage can serve
type FakeSite struct {
	// Origin is returned as window.location.origin
	Origin string
	// Markup maps a URL to the HTML returned after navigating to it
	Markup map[string]string
	// PageLinks holds the anchor hrefs visible on each listing page, 1-based
	PageLinks map[int][]string
	// PageItems is the value returned when counting pagination items
	PageItems int
	// HasPagination controls whether WaitElement finds the pagination control
	HasPagination bool
	// ClickSelectors maps a click selector to the listing page it shows
	ClickSelectors map[string]int
	// NavigateErr fails Navigate for the listed URLs
	NavigateErr map[string]error
}

// FakePage is a scraper.Page backed by a FakeSite
type FakePage struct {
	Site *FakeSite

	CurrentURL  string
	CurrentPage int
	Visited     []string
	Clicks      []string
	Closed      bool
}

var _ scraper.Page = (*FakePage)(nil)

func (p *FakePage) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := p.Site.NavigateErr[url]; ok {
		return err
	}
	p.CurrentURL = url
	p.CurrentPage = 0
	p.Visited = append(p.Visited, url)
	return nil
}

func (p *FakePage) Settle(ctx context.Context, delay time.Duration) error {
	return ctx.Err()
}

func (p *FakePage) WaitElement(ctx context.Context, selector string, timeout time.Duration) error {
	if strings.Contains(selector, "pagination") && !p.Site.HasPagination {
		return fmt.Errorf("element %q not found within %v", selector, timeout)
	}
	return nil
}

func (p *FakePage) Click(ctx context.Context, selector string) error {
	page, ok := p.Site.ClickSelectors[selector]
	if !ok {
		return fmt.Errorf("element %q not found", selector)
	}
	p.Clicks = append(p.Clicks, selector)
	p.CurrentPage = page
	return nil
}

func (p *FakePage) Eval(ctx context.Context, js string, out interface{}, args ...interface{}) error {
	var result interface{}
	switch {
	case strings.Contains(js, ".length"):
		result = p.Site.PageItems
	case strings.Contains(js, "hrefs"):
		result = map[string]interface{}{
			"origin": p.Site.Origin,
			"hrefs":  p.Site.PageLinks[p.CurrentPage],
		}
	default:
		return errors.New("unsupported script")
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (p *FakePage) HTML(ctx context.Context) (string, error) {
	markup, ok := p.Site.Markup[p.CurrentURL]
	if !ok {
		return "", fmt.Errorf("no markup for %s", p.CurrentURL)
	}
	return markup, nil
}

func (p *FakePage) Close() error {
	p.Closed = true
	return nil
}

// FakeOpener hands out FakePages for a FakeSite
type FakeOpener struct {
	Site    *FakeSite
	Pages   []*FakePage
	OpenErr error
	Closed  bool
}

var _ scraper.PageOpener = (*FakeOpener)(nil)

func (o *FakeOpener) OpenPage() (scraper.Page, error) {
	if o.OpenErr != nil {
		return nil, o.OpenErr
	}
	page := &FakePage{Site: o.Site}
	o.Pages = append(o.Pages, page)
	return page, nil
}

func (o *FakeOpener) Close() error {
	o.Closed = true
	return nil
}
