package rpp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lukman83/rakurank/internal/models"
)

type fakeScraper struct {
	pages map[int][]models.AdSnapshot
	err   error
	errOn int
	calls []int
}

func (f *fakeScraper) ScrapePage(ctx context.Context, keyword string, page int) ([]models.AdSnapshot, error) {
	f.calls = append(f.calls, page)
	if f.err != nil && (f.errOn == 0 || f.errOn == page) {
		return nil, f.err
	}
	return f.pages[page], nil
}

func pageAds(page, count int, targetShop string, targetPos int) []models.AdSnapshot {
	ads := make([]models.AdSnapshot, count)
	for i := range ads {
		shop := fmt.Sprintf("shop%02d", i+1)
		if i+1 == targetPos {
			shop = targetShop
		}
		ads[i] = models.AdSnapshot{
			Name:           fmt.Sprintf("広告 %d-%d", page, i+1),
			URL:            fmt.Sprintf("https://item.rakuten.co.jp/%s/item%d/", shop, i+1),
			ShopID:         shop,
			ShopName:       shop,
			PageNumber:     page,
			PositionOnPage: i + 1,
		}
	}
	return ads
}

func TestAdResolveFindsTarget(t *testing.T) {
	scraper := &fakeScraper{pages: map[int][]models.AdSnapshot{
		1: pageAds(1, 5, "stepmarket", 3),
	}}
	resolver := NewRankResolver(scraper, 15, time.Millisecond)

	res, err := resolver.Resolve(context.Background(), "ペット ブランケット", Target{ShopID: "stepmarket"}, 3)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotNil(t, res.Rank)
	require.Equal(t, 3, *res.Rank)
	require.Len(t, res.Ads, 5)
	require.True(t, res.Ads[2].IsTarget)
	require.Equal(t, 3, res.Ads[2].Rank)
}

func TestAdResolveGlobalRanksAcrossPages(t *testing.T) {
	scraper := &fakeScraper{pages: map[int][]models.AdSnapshot{
		1: pageAds(1, 5, "", 0),
		2: pageAds(2, 4, "stepmarket", 2),
	}}
	resolver := NewRankResolver(scraper, 15, time.Millisecond)

	res, err := resolver.Resolve(context.Background(), "毛布", Target{ShopID: "stepmarket"}, 3)
	require.NoError(t, err)
	require.NotNil(t, res.Rank)
	// 5 placements on page 1, target is the 2nd of page 2.
	require.Equal(t, 7, *res.Rank)
	for i, ad := range res.Ads {
		require.Equal(t, i+1, ad.Rank)
	}
}

func TestAdResolveStopsAtCeiling(t *testing.T) {
	scraper := &fakeScraper{pages: map[int][]models.AdSnapshot{
		1: pageAds(1, 10, "", 0),
		2: pageAds(2, 10, "", 0),
		3: pageAds(3, 10, "", 0),
	}}
	resolver := NewRankResolver(scraper, 15, time.Millisecond)

	res, err := resolver.Resolve(context.Background(), "毛布", Target{ShopID: "x"}, 3)
	require.NoError(t, err)
	require.Nil(t, res.Rank)
	require.Len(t, res.Ads, 15)
	require.Equal(t, 15, res.Ads[len(res.Ads)-1].Rank)
	// Page 3 is never fetched once the ceiling fills on page 2.
	require.Equal(t, []int{1, 2}, scraper.calls)
}

func TestAdResolveStopsOnEmptyPage(t *testing.T) {
	scraper := &fakeScraper{pages: map[int][]models.AdSnapshot{
		1: pageAds(1, 4, "", 0),
	}}
	resolver := NewRankResolver(scraper, 15, time.Millisecond)

	res, err := resolver.Resolve(context.Background(), "毛布", Target{ShopID: "x"}, 3)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, scraper.calls)
	require.Equal(t, 2, res.PagesChecked)
	require.Len(t, res.Ads, 4)
}

func TestAdResolveTransportFailureKeepsPartial(t *testing.T) {
	scraper := &fakeScraper{
		pages: map[int][]models.AdSnapshot{1: pageAds(1, 3, "", 0)},
		err:   errors.New("connection reset"),
		errOn: 2,
	}
	resolver := NewRankResolver(scraper, 15, time.Millisecond)

	res, err := resolver.Resolve(context.Background(), "毛布", Target{ShopID: "x"}, 3)
	require.Error(t, err)
	require.False(t, res.Success)
	require.Len(t, res.Ads, 3)
}

func TestAdTargetMatching(t *testing.T) {
	ad := models.AdSnapshot{
		ShopID:   "stepmarket",
		ShopName: "STEPMARKET 楽天市場店",
		URL:      "https://item.rakuten.co.jp/stepmarket/blanket-01/",
	}

	// Case-insensitive substring on the seller fields.
	require.True(t, Target{ShopID: "StepMarket"}.Matches(ad))
	require.True(t, Target{ShopID: "step"}.Matches(ad))
	// URL containment in either direction.
	require.True(t, Target{ItemURL: "https://item.rakuten.co.jp/stepmarket/blanket-01/"}.Matches(ad))
	require.True(t, Target{ItemURL: "https://item.rakuten.co.jp/stepmarket/blanket-01/?scid=af"}.Matches(ad))

	require.False(t, Target{ShopID: "othershop"}.Matches(ad))
	require.False(t, Target{}.Matches(ad))
}
