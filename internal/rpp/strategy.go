package rpp

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/lukman83/rakurank/internal/models"
)

// Canonical listing URL pattern: host/{shopID}/{itemCode}.
var canonicalItemURL = regexp.MustCompile(`item\.rakuten\.co\.jp/([^/]+)/([^/?]+)`)

// Strategy extracts sponsored placements from one fetched search page.
//
// ok reports whether the strategy could authoritatively read the page: an
// (empty, true) result means "this page really has no ads" and stops the
// chain, while (empty, false) hands the page to the next strategy. Ranks in
// the returned snapshots are page-local positions; the resolver globalizes
// them.
type Strategy interface {
	Name() string
	Extract(html string, page int) (ads []models.AdSnapshot, ok bool, err error)
}

// PageSource fetches the rendered HTML of one search results page.
type PageSource interface {
	FetchPage(ctx context.Context, keyword string, page int) (string, error)
}

// StatusError reports a non-200 page response. The resolver treats it as
// "no ads this page" rather than a transport failure.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return "unexpected page status " + strconv.Itoa(e.Code)
}

// Scraper drives the ordered extraction chain over fetched search pages.
type Scraper struct {
	source     PageSource
	strategies []Strategy
	logger     *slog.Logger
}

// NewScraper creates a scraper with the full strategy chain: embedded page
// state, then linked-data markup, then heuristic markup scanning.
func NewScraper(source PageSource) *Scraper {
	return &Scraper{
		source: source,
		strategies: []Strategy{
			&initialStateStrategy{},
			&jsonLDStrategy{},
			&markupStrategy{},
		},
		logger: slog.Default().With("component", "rpp"),
	}
}

// NewScraperWithStrategies creates a scraper with a custom chain.
func NewScraperWithStrategies(source PageSource, strategies []Strategy) *Scraper {
	return &Scraper{source: source, strategies: strategies, logger: slog.Default().With("component", "rpp")}
}

// ScrapePage fetches one search page and runs the strategy chain, first
// authoritative answer wins. A non-200 page degrades to zero ads; only a
// transport-level failure is returned as an error.
func (s *Scraper) ScrapePage(ctx context.Context, keyword string, page int) ([]models.AdSnapshot, error) {
	html, err := s.source.FetchPage(ctx, keyword, page)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			s.logger.Warn("page fetch degraded", "keyword", keyword, "page", page, "status", statusErr.Code)
			return nil, nil
		}
		return nil, err
	}

	for _, strat := range s.strategies {
		ads, ok, err := strat.Extract(html, page)
		if err != nil {
			s.logger.Debug("strategy failed", "strategy", strat.Name(), "page", page, "error", err)
			continue
		}
		if ok {
			s.logger.Debug("strategy matched", "strategy", strat.Name(), "page", page, "ads", len(ads))
			return ads, nil
		}
	}
	return nil, nil
}

// splitShopItem extracts shop id and item code from a canonical listing URL.
func splitShopItem(rawURL string) (shopID, itemCode string) {
	m := canonicalItemURL.FindStringSubmatch(rawURL)
	if m == nil {
		return "", ""
	}
	return m[1], m[2]
}
