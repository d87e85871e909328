package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"mspro-labs/dining-buddy/internal/config"
	"mspro-labs/dining-buddy/internal/models"
)

// BrowserSource loads the feeds through a stealth headless browser, for when
// the dining API rejects plain clients.
type BrowserSource struct {
	locationsURL string
	menuURL      string
	timeout      time.Duration
	browser      *rod.Browser
}

// NewBrowserSource launches the headless browser. Call Close when done.
func NewBrowserSource(cfg *config.SiteConfig) (*BrowserSource, error) {
	logger.Println("Launching headless browser...")
	browser, err := launchBrowser()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	return &BrowserSource{
		locationsURL: cfg.LocationsURL,
		menuURL:      cfg.MenuURL,
		timeout:      cfg.RequestTimeout,
		browser:      browser,
	}, nil
}

// Close shuts the browser down.
func (s *BrowserSource) Close() error {
	return s.browser.Close()
}

func (s *BrowserSource) FetchLocations(ctx context.Context) ([]models.Location, error) {
	body, err := s.fetchText(ctx, s.locationsURL)
	if err != nil {
		return nil, err
	}
	return DecodeLocations([]byte(body))
}

func (s *BrowserSource) FetchMenu(ctx context.Context, locationID string) (models.RawFeed, error) {
	body, err := s.fetchText(ctx, MenuURL(s.menuURL, locationID))
	if err != nil {
		return nil, &FetchError{LocationID: locationID, Err: err}
	}
	feed, err := DecodeFeed([]byte(body))
	if err != nil {
		return nil, &FetchError{LocationID: locationID, Err: err}
	}
	return feed, nil
}

func launchBrowser() (*rod.Browser, error) {
	l := launcher.New().Headless(true).NoSandbox(true)
	u, err := l.Launch()
	if err != nil {
		return nil, err
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, err
	}
	return browser, nil
}

// fetchText navigates to target and returns the rendered body text, which for
// a JSON endpoint is the payload itself.
func (s *BrowserSource) fetchText(ctx context.Context, target string) (text string, err error) {
	page, err := stealth.Page(s.browser)
	if err != nil {
		return "", err
	}
	defer page.Close()

	defer func() {
		if r := recover(); r != nil {
			logger.Printf("Panic in fetchText: %v", r)
			err = fmt.Errorf("browser fetch %s: %v", target, r)
		}
	}()

	page = page.Context(ctx).Timeout(s.timeout)

	logger.Printf("Navigating to: %s", target)
	if err := page.Navigate(target); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	body, err := page.Element("body")
	if err != nil {
		return "", err
	}
	return body.Text()
}
