package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"mspro-labs/dining-buddy/internal/config"
	"mspro-labs/dining-buddy/internal/models"
)

// HTTPDoer is the subset of *http.Client used by HTTPSource.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPSource loads the dining feeds with plain GET requests.
type HTTPSource struct {
	locationsURL string
	menuURL      string
	client       HTTPDoer
}

// NewHTTPSource builds a source for cfg. A nil client gets a default one using
// the configured request timeout.
func NewHTTPSource(cfg *config.SiteConfig, client HTTPDoer) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: cfg.RequestTimeout}
	}
	return &HTTPSource{
		locationsURL: cfg.LocationsURL,
		menuURL:      cfg.MenuURL,
		client:       client,
	}
}

func (s *HTTPSource) FetchLocations(ctx context.Context) ([]models.Location, error) {
	body, err := s.get(ctx, s.locationsURL)
	if err != nil {
		return nil, err
	}
	return DecodeLocations(body)
}

func (s *HTTPSource) FetchMenu(ctx context.Context, locationID string) (models.RawFeed, error) {
	body, err := s.get(ctx, MenuURL(s.menuURL, locationID))
	if err != nil {
		return nil, &FetchError{LocationID: locationID, Err: err}
	}
	feed, err := DecodeFeed(body)
	if err != nil {
		return nil, &FetchError{LocationID: locationID, Err: err}
	}
	return feed, nil
}

func (s *HTTPSource) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: status %d", target, resp.StatusCode)
	}
	logger.Printf("GET %s (%d bytes, %s)", target, len(body), time.Since(start).Round(time.Millisecond))
	return body, nil
}

// MenuURL appends the location id as the tid query parameter.
func MenuURL(base, locationID string) string {
	params := url.Values{"tid": {locationID}}
	return base + "?" + params.Encode()
}
