package ichiba

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lukman83/rakurank/internal/models"
)

// fakeFetcher serves canned pages keyed by page number. Missing pages come
// back empty, like the real client does on upstream failure.
type fakeFetcher struct {
	pages map[int]models.PageResult
	err   error
	calls []int
}

func (f *fakeFetcher) SearchPage(ctx context.Context, keyword string, page, pageSize int) (models.PageResult, error) {
	f.calls = append(f.calls, page)
	if f.err != nil {
		return models.PageResult{}, f.err
	}
	return f.pages[page], nil
}

func makeItems(page, count int, targetShop string, targetPos int) []models.PageItem {
	items := make([]models.PageItem, count)
	for i := range items {
		global := (page-1)*30 + i + 1
		shop := fmt.Sprintf("shop%03d", global)
		if global == targetPos {
			shop = targetShop
		}
		items[i] = models.PageItem{
			Name:   fmt.Sprintf("商品 %d", global),
			URL:    fmt.Sprintf("https://item.rakuten.co.jp/%s/item%d/", shop, global),
			ShopID: shop,
			Price:  1000 + global,
		}
	}
	return items
}

func TestResolveFindsTargetOnFirstPage(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int]models.PageResult{
		1: {Items: makeItems(1, 30, "stepmarket", 7), ReportedTotal: 248},
	}}
	resolver := NewRankResolver(fetcher, nil, 30, 10)

	res, err := resolver.Resolve(context.Background(), "ペットブランケット", Target{ShopID: "stepmarket"}, 10)
	require.NoError(t, err)
	require.NotNil(t, res.Rank)
	require.Equal(t, 7, *res.Rank)
	require.Len(t, res.Snapshots, 10)
	require.Equal(t, 248, res.ReportedTotal)
	require.Equal(t, 1, res.PagesChecked)
	require.True(t, res.Snapshots[6].IsTarget)

	// The snapshot cap ends the walk after page 1.
	require.Equal(t, []int{1}, fetcher.calls)
}

func TestResolveSnapshotRanksAreSequential(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int]models.PageResult{
		1: {Items: makeItems(1, 30, "stepmarket", 7), ReportedTotal: 248},
	}}
	resolver := NewRankResolver(fetcher, nil, 30, 10)

	res, err := resolver.Resolve(context.Background(), "ペットブランケット", Target{ShopID: "stepmarket"}, 10)
	require.NoError(t, err)
	for i, snap := range res.Snapshots {
		require.Equal(t, i+1, snap.Rank)
	}
}

func TestResolveTargetBeyondSnapshotCap(t *testing.T) {
	// The target sits at position 15: past the retained top 10, but still on
	// the scanned page, so the rank must be reported without a matching
	// snapshot.
	fetcher := &fakeFetcher{pages: map[int]models.PageResult{
		1: {Items: makeItems(1, 30, "stepmarket", 15), ReportedTotal: 90},
	}}
	resolver := NewRankResolver(fetcher, nil, 30, 10)

	res, err := resolver.Resolve(context.Background(), "毛布", Target{ShopID: "stepmarket"}, 10)
	require.NoError(t, err)
	require.NotNil(t, res.Rank)
	require.Equal(t, 15, *res.Rank)
	require.Len(t, res.Snapshots, 10)
	for _, snap := range res.Snapshots {
		require.False(t, snap.IsTarget)
	}
}

func TestResolveTargetOnLaterPage(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int]models.PageResult{
		1: {Items: makeItems(1, 30, "stepmarket", 37), ReportedTotal: 120},
		2: {Items: makeItems(2, 30, "stepmarket", 37)},
	}}
	// topLimit above one page so pagination continues
	resolver := NewRankResolver(fetcher, nil, 30, 40)

	res, err := resolver.Resolve(context.Background(), "毛布", Target{ShopID: "stepmarket"}, 10)
	require.NoError(t, err)
	require.NotNil(t, res.Rank)
	require.Equal(t, 37, *res.Rank)
	require.Equal(t, []int{1, 2}, fetcher.calls)
}

func TestResolveNotFound(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int]models.PageResult{
		1: {Items: makeItems(1, 30, "", 0), ReportedTotal: 31},
		2: {Items: makeItems(2, 4, "", 0)},
	}}
	resolver := NewRankResolver(fetcher, nil, 30, 40)

	res, err := resolver.Resolve(context.Background(), "毛布", Target{ShopID: "nosuchshop"}, 10)
	require.NoError(t, err)
	require.Nil(t, res.Rank)
	// A short page is the last page; no page 3 fetch.
	require.Equal(t, []int{1, 2}, fetcher.calls)
	require.Equal(t, 2, res.PagesChecked)
}

func TestResolveStopsOnEmptyPage(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int]models.PageResult{
		1: {Items: makeItems(1, 30, "", 0), ReportedTotal: 30},
	}}
	resolver := NewRankResolver(fetcher, nil, 30, 40)

	res, err := resolver.Resolve(context.Background(), "毛布", Target{ShopID: "x"}, 10)
	require.NoError(t, err)
	require.Nil(t, res.Rank)
	require.Equal(t, []int{1}, fetcher.calls)
	require.Equal(t, 1, res.PagesChecked)
}

func TestResolveReportedTotalFromFirstPageOnly(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int]models.PageResult{
		1: {Items: makeItems(1, 30, "", 0), ReportedTotal: 500},
		2: {Items: makeItems(2, 30, "", 0), ReportedTotal: 999},
		3: {Items: makeItems(3, 10, "", 0)},
	}}
	resolver := NewRankResolver(fetcher, nil, 30, 100)

	res, err := resolver.Resolve(context.Background(), "毛布", Target{ShopID: "x"}, 10)
	require.NoError(t, err)
	require.Equal(t, 500, res.ReportedTotal)
}

func TestResolvePropagatesFetchError(t *testing.T) {
	wantErr := errors.New("context canceled")
	fetcher := &fakeFetcher{err: wantErr}
	resolver := NewRankResolver(fetcher, nil, 30, 10)

	_, err := resolver.Resolve(context.Background(), "毛布", Target{ShopID: "x"}, 10)
	require.ErrorIs(t, err, wantErr)
}

func TestTargetMatches(t *testing.T) {
	item := models.PageItem{
		ShopID:   "stepmarket",
		ItemCode: "stepmarket:10000123",
		URL:      "https://item.rakuten.co.jp/stepmarket/blanket-01/",
	}

	require.True(t, Target{ShopID: "stepmarket"}.Matches(item))
	require.True(t, Target{ItemCode: "stepmarket:10000123"}.Matches(item))
	require.True(t, Target{ItemURL: "https://item.rakuten.co.jp/stepmarket/blanket-01/"}.Matches(item))

	require.False(t, Target{ShopID: "othershop"}.Matches(item))
	require.False(t, Target{ItemCode: "othershop:1"}.Matches(item))
	require.False(t, Target{}.Matches(item))
}
