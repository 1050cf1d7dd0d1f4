package ichiba

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lukman83/rakurank/internal/models"
	"github.com/lukman83/rakurank/internal/ui"
)

// PageFetcher fetches one page of search results.
type PageFetcher interface {
	SearchPage(ctx context.Context, keyword string, page, pageSize int) (models.PageResult, error)
}

// NameResolver resolves category and tag ids to display names.
type NameResolver interface {
	GenreName(ctx context.Context, genreID string) string
	TagNames(ctx context.Context, tagIDs []string, genreHint string) map[string]string
}

// Target identifies the merchant's own listing. ShopID is required;
// ItemCode and ItemURL are optional extra predicates.
type Target struct {
	ShopID   string
	ItemCode string
	ItemURL  string
}

// Matches reports whether a search result item is the target listing.
func (t Target) Matches(item models.PageItem) bool {
	if t.ShopID != "" && item.ShopID == t.ShopID {
		return true
	}
	if t.ItemCode != "" && item.ItemCode == t.ItemCode {
		return true
	}
	if t.ItemURL != "" && item.URL == t.ItemURL {
		return true
	}
	return false
}

// Resolution is the outcome of one organic rank resolution.
type Resolution struct {
	Rank          *int // nil when the target was not found
	Snapshots     []models.ListingSnapshot
	ReportedTotal int
	PagesChecked  int
}

// RankResolver walks paginated search results looking for the target
// listing while capturing the first topLimit listings as competitor
// snapshots.
type RankResolver struct {
	fetcher  PageFetcher
	names    NameResolver // nil disables genre/tag name lookups
	pageSize int
	topLimit int
	logger   *slog.Logger
}

// NewRankResolver creates a resolver. topLimit is the competitor snapshot
// cap (a business threshold, not a structural limit).
func NewRankResolver(fetcher PageFetcher, names NameResolver, pageSize, topLimit int) *RankResolver {
	if pageSize <= 0 {
		pageSize = 30
	}
	if topLimit <= 0 {
		topLimit = 10
	}
	return &RankResolver{
		fetcher:  fetcher,
		names:    names,
		pageSize: pageSize,
		topLimit: topLimit,
		logger:   slog.Default().With("component", "rank"),
	}
}

// Resolve scans up to maxPages of results for phrase. The returned rank is
// the smallest global position at which the target matched; it is tracked
// independently of the snapshot list, so a rank may exist with no matching
// snapshot once the snapshot cap has filled. Resolution ends once the cap is
// reached; only top-of-feed competitive context is retained per run.
func (r *RankResolver) Resolve(ctx context.Context, phrase string, target Target, maxPages int) (Resolution, error) {
	if maxPages <= 0 {
		maxPages = 10
	}

	var res Resolution
	for page := 1; page <= maxPages; page++ {
		ui.ReportProgress(ctx, fmt.Sprintf("Scanning page %d for %q...", page, phrase))

		pageResult, err := r.fetcher.SearchPage(ctx, phrase, page, r.pageSize)
		if err != nil {
			return res, err
		}
		res.PagesChecked = page
		if page == 1 {
			res.ReportedTotal = pageResult.ReportedTotal
		}
		if len(pageResult.Items) == 0 {
			r.logger.Info("no items returned, stopping", "phrase", phrase, "page", page)
			break
		}

		for idx, item := range pageResult.Items {
			position := (page-1)*r.pageSize + idx + 1
			isTarget := target.Matches(item)

			if isTarget && (res.Rank == nil || position < *res.Rank) {
				rank := position
				res.Rank = &rank
				r.logger.Info("target matched", "phrase", phrase, "rank", position)
			}

			if len(res.Snapshots) < r.topLimit {
				res.Snapshots = append(res.Snapshots, r.buildSnapshot(ctx, item, position, isTarget))
			}
		}

		// Snapshot cap reached: stop the whole resolution, found or not.
		// The rest of the current page was still scanned for the target, so
		// a rank can exist beyond the last retained snapshot.
		if len(res.Snapshots) >= r.topLimit {
			return res, nil
		}

		// A short page is the last page of the result set.
		if len(pageResult.Items) < r.pageSize {
			break
		}
	}
	return res, nil
}

func (r *RankResolver) buildSnapshot(ctx context.Context, item models.PageItem, rank int, isTarget bool) models.ListingSnapshot {
	snap := models.ListingSnapshot{
		Rank:          rank,
		Name:          item.Name,
		Catchcopy:     item.Catchcopy,
		URL:           item.URL,
		ItemCode:      item.ItemCode,
		ShopName:      item.ShopName,
		ShopID:        item.ShopID,
		Price:         item.Price,
		ReviewCount:   item.ReviewCount,
		ReviewAverage: item.ReviewAverage,
		ImageURL:      item.ImageURL,
		PointRate:     item.PointRate,
		GenreID:       item.GenreID,
		GenreName:     item.GenreID, // raw id unless the lookup improves it
		TagIDs:        item.TagIDs,
		Description:   item.Caption,
		IsTarget:      isTarget,
		CollectedAt:   time.Now(),
	}
	if r.names != nil {
		if item.GenreID != "" {
			snap.GenreName = r.names.GenreName(ctx, item.GenreID)
		}
		if len(item.TagIDs) > 0 {
			names := r.names.TagNames(ctx, item.TagIDs, item.GenreID)
			snap.TagNames = make([]string, len(item.TagIDs))
			for i, id := range item.TagIDs {
				if name, ok := names[id]; ok && name != "" {
					snap.TagNames[i] = name
				} else {
					snap.TagNames[i] = id
				}
			}
		}
	}
	return snap
}
