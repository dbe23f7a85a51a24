package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"openreview-ratings/config"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Browser owns a headless Chromium process driven by rod
type Browser struct {
	browser *rod.Browser
}

// NewBrowser launches Chromium according to the browser config
func NewBrowser(cfg config.BrowserConfig) (*Browser, error) {
	userDataDir := cfg.DataDir
	if dir := os.Getenv("OPENREVIEW_DATA_DIR"); dir != "" {
		userDataDir = dir
	}
	if userDataDir != "" {
		if err := os.MkdirAll(userDataDir, 0755); err != nil {
			log.Printf("Warning: Failed to create browser data directory %s: %v\n", userDataDir, err)
			userDataDir = ""
		}
	}

	l := launcher.New().
		Headless(cfg.Headless).
		Set("disable-blink-features", "AutomationControlled").
		NoSandbox(cfg.NoSandbox).
		Leakless(false).
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-extensions").
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-breakpad").
		Set("disable-default-apps").
		Set("disable-hang-monitor").
		Set("disable-popup-blocking").
		Set("disable-sync").
		Set("disable-translate").
		Set("mute-audio").
		Set("use-mock-keychain").
		Set("disable-features", "TranslateUI,BlinkGenPropertyTrees")

	if userDataDir != "" {
		l = l.UserDataDir(userDataDir)
	}

	if bin := findChrome(cfg.Bin); bin != "" {
		l = l.Bin(bin)
	}

	browserURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w\n\nNote: On Linux, you may need to install Chromium:\n  apt-get update && apt-get install -y chromium", err)
	}

	browser := rod.New().ControlURL(browserURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &Browser{browser: browser}, nil
}

// findChrome returns the configured binary or the first system Chrome found.
// An empty result lets rod download its own Chromium.
func findChrome(configured string) string {
	if configured != "" {
		return configured
	}

	candidates := []string{
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/snap/bin/chromium",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	}
	if username := os.Getenv("USERNAME"); username != "" {
		candidates = append(candidates, `C:\Users\`+username+`\AppData\Local\Google\Chrome\Application\chrome.exe`)
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// NewPage opens a blank tab
func (b *Browser) NewPage() (*RodPage, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return &RodPage{page: page, stableTimeout: 10 * time.Second}, nil
}

// Close closes the browser
func (b *Browser) Close() error {
	if b.browser != nil {
		return b.browser.Close()
	}
	return nil
}

// RodPage implements Page on top of a rod tab
type RodPage struct {
	page          *rod.Page
	stableTimeout time.Duration
}

// SetStableTimeout bounds how long Navigate and Settle wait for the DOM
// to stop changing
func (rp *RodPage) SetStableTimeout(d time.Duration) {
	if d > 0 {
		rp.stableTimeout = d
	}
}

// Navigate loads the URL and waits for the load event and a stable DOM
func (rp *RodPage) Navigate(ctx context.Context, url string) error {
	page := rp.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for page load: %w", err)
	}
	rp.waitStable(ctx)
	return nil
}

// Settle sleeps for the delay and then waits for the DOM to stabilize
func (rp *RodPage) Settle(ctx context.Context, delay time.Duration) error {
	if err := sleep(ctx, delay); err != nil {
		return err
	}
	rp.waitStable(ctx)
	return nil
}

func (rp *RodPage) waitStable(ctx context.Context) {
	if err := rp.page.Context(ctx).Timeout(rp.stableTimeout).WaitStable(500 * time.Millisecond); err != nil {
		log.Printf("Warning: Page did not stabilize within %v, continuing anyway: %v\n", rp.stableTimeout, err)
	}
}

// WaitElement waits until an element matches the selector
func (rp *RodPage) WaitElement(ctx context.Context, selector string, timeout time.Duration) error {
	if _, err := rp.page.Context(ctx).Timeout(timeout).Element(selector); err != nil {
		return fmt.Errorf("element %q not found within %v: %w", selector, timeout, err)
	}
	return nil
}

// Click clicks the first element matching the selector
func (rp *RodPage) Click(ctx context.Context, selector string) error {
	el, err := rp.page.Context(ctx).Timeout(rp.stableTimeout).Element(selector)
	if err != nil {
		return fmt.Errorf("element %q not found: %w", selector, err)
	}
	if err := el.ScrollIntoView(); err != nil {
		log.Printf("Warning: Failed to scroll %q into view: %v\n", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click %q: %w", selector, err)
	}
	return nil
}

// Eval runs a JS function in the page and decodes its return value into out
func (rp *RodPage) Eval(ctx context.Context, js string, out interface{}, args ...interface{}) error {
	obj, err := rp.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return fmt.Errorf("failed to evaluate script: %w", err)
	}
	if out == nil {
		return nil
	}
	raw, err := obj.Value.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode script result: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode script result: %w", err)
	}
	return nil
}

// HTML returns the full rendered markup
func (rp *RodPage) HTML(ctx context.Context) (string, error) {
	html, err := rp.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

// Close closes the tab
func (rp *RodPage) Close() error {
	return rp.page.Close()
}

func sleep(ctx context.Context, d time.Duration) error {
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
