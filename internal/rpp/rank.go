package rpp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/lukman83/rakurank/internal/models"
	"github.com/lukman83/rakurank/internal/ui"
)

// PageScraper yields the sponsored placements of one search page.
type PageScraper interface {
	ScrapePage(ctx context.Context, keyword string, page int) ([]models.AdSnapshot, error)
}

// Target identifies the advertiser being tracked across sponsored slots.
type Target struct {
	ShopID  string
	ItemURL string
}

// Matches reports whether the placement belongs to the target shop. Shop
// identifiers in scraped placements are noisy, so matching is loose: a
// case-insensitive substring hit on the seller fields, or URL containment in
// either direction.
func (t Target) Matches(ad models.AdSnapshot) bool {
	shopID := strings.ToLower(strings.TrimSpace(t.ShopID))
	if shopID != "" {
		if strings.Contains(strings.ToLower(ad.ShopID), shopID) {
			return true
		}
		if strings.Contains(strings.ToLower(ad.ShopName), shopID) {
			return true
		}
	}
	targetURL := strings.TrimSpace(t.ItemURL)
	if targetURL != "" && ad.URL != "" {
		if strings.Contains(ad.URL, targetURL) || strings.Contains(targetURL, ad.URL) {
			return true
		}
	}
	return false
}

// Resolution is the outcome of one sponsored-rank check. Rank stays nil when
// the target never appeared within the rank ceiling. Success is false only
// when the page transport itself failed; Ads then holds whatever was
// collected before the failure.
type Resolution struct {
	Rank         *int
	Ads          []models.AdSnapshot
	PagesChecked int
	Success      bool
}

// RankResolver walks sponsored placements page by page and assigns global
// ranks until the ceiling is reached.
type RankResolver struct {
	scraper PageScraper
	limiter *rate.Limiter
	ceiling int
	logger  *slog.Logger
}

// NewRankResolver creates a resolver that paces page fetches at least
// interval apart and stops ranking beyond ceiling placements.
func NewRankResolver(scraper PageScraper, ceiling int, interval time.Duration) *RankResolver {
	return &RankResolver{
		scraper: scraper,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		ceiling: ceiling,
		logger:  slog.Default().With("component", "rpp.rank"),
	}
}

// Resolve checks up to maxPages of sponsored placements for the target.
//
// Placements are numbered globally in page order starting at 1. A page with
// zero placements ends the walk, as does filling the rank ceiling. Transport
// failure returns the partial resolution with Success=false alongside the
// error so callers can both record the failure and keep what was seen.
func (r *RankResolver) Resolve(ctx context.Context, phrase string, target Target, maxPages int) (Resolution, error) {
	res := Resolution{Success: true}
	now := time.Now()
	rank := 1

	for page := 1; page <= maxPages; page++ {
		if err := r.limiter.Wait(ctx); err != nil {
			res.Success = false
			return res, err
		}
		ui.ReportProgress(ctx, fmt.Sprintf("広告ページ %d/%d を確認中", page, maxPages))

		ads, err := r.scraper.ScrapePage(ctx, phrase, page)
		if err != nil {
			r.logger.Error("ad page fetch failed", "keyword", phrase, "page", page, "error", err)
			res.Success = false
			return res, fmt.Errorf("fetch ad page %d: %w", page, err)
		}
		res.PagesChecked = page

		if len(ads) == 0 {
			r.logger.Debug("no sponsored placements, stopping", "keyword", phrase, "page", page)
			break
		}

		ceilingHit := false
		for _, ad := range ads {
			if rank > r.ceiling {
				ceilingHit = true
				break
			}
			ad.Rank = rank
			ad.CollectedAt = now
			if res.Rank == nil && target.Matches(ad) {
				ad.IsTarget = true
				matched := rank
				res.Rank = &matched
			}
			res.Ads = append(res.Ads, ad)
			rank++
		}
		if ceilingHit {
			break
		}
	}

	if res.Rank != nil {
		r.logger.Info("sponsored rank found", "keyword", phrase, "rank", *res.Rank, "pages", res.PagesChecked)
	} else {
		r.logger.Info("sponsored rank not found", "keyword", phrase, "ads", len(res.Ads), "pages", res.PagesChecked)
	}
	return res, nil
}
