package scraper

import (
	"fmt"

	"mspro-labs/dining-buddy/internal/config"
)

// NewSource picks the source for cfg.FetchMode. The returned close func
// releases the browser, if one was launched.
func NewSource(cfg *config.SiteConfig) (Source, func() error, error) {
	switch cfg.FetchMode {
	case config.FetchHTTP:
		return NewHTTPSource(cfg, nil), func() error { return nil }, nil
	case config.FetchBrowser:
		src, err := NewBrowserSource(cfg)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown fetch_mode %q", cfg.FetchMode)
	}
}
