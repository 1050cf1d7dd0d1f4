package rpp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func statePage(stateJSON string) string {
	return `<!DOCTYPE html><html><head>
<script>window.__INITIAL_STATE__ = ` + stateJSON + `;</script>
</head><body><div id="root"></div></body></html>`
}

const rppStateJSON = `{
	"data": {
		"ichibaSearch": {
			"items": [
				{
					"name": "ペット用ブランケット 洗える",
					"subtitle": "ふわふわ素材",
					"originalItemUrl": "https://item.rakuten.co.jp/shopA/blanket-01/",
					"price": 1980,
					"shop": {"urlCode": "shopA"},
					"itemOptions": {"cpc": {"type": "grp07rpp"}},
					"images": [{"url": "https://img.example/1.jpg"}]
				},
				{
					"name": "猫ベッド",
					"originalItemUrl": "https://item.rakuten.co.jp/shopB/bed-01/",
					"price": 2980,
					"shop": {"urlCode": "shopB"}
				},
				{
					"name": "すべてのジャンル",
					"originalItemUrl": "https://item.rakuten.co.jp/shopC/x/",
					"itemOptions": {"cpc": {"type": "grp07rpp"}}
				}
			]
		}
	}
}`

func TestInitialStateExtractsSponsoredOnly(t *testing.T) {
	strat := &initialStateStrategy{}
	ads, ok, err := strat.Extract(statePage(rppStateJSON), 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, ads, 1)

	ad := ads[0]
	require.Equal(t, "ペット用ブランケット 洗える", ad.Name)
	require.Equal(t, "ふわふわ素材", ad.Catchcopy)
	require.Equal(t, "shopA", ad.ShopID)
	require.Equal(t, "shopA", ad.ShopName)
	require.Equal(t, "blanket-01", ad.ItemCode)
	require.NotNil(t, ad.Price)
	require.Equal(t, 1980, *ad.Price)
	require.Equal(t, "https://img.example/1.jpg", ad.ImageURL)
	require.Equal(t, 1, ad.PageNumber)
	require.Equal(t, 1, ad.PositionOnPage)
}

func TestInitialStateAuthoritativeWhenNoAds(t *testing.T) {
	// Organic-only state: the blob is readable, so the answer is an
	// authoritative empty set, not a fallthrough to the next tier.
	state := `{"data":{"ichibaSearch":{"items":[
		{"name":"猫ベッド","originalItemUrl":"https://item.rakuten.co.jp/shopB/bed-01/","price":2980}
	]}}}`
	strat := &initialStateStrategy{}
	ads, ok, err := strat.Extract(statePage(state), 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, ads)
}

func TestInitialStateNotHandledWithoutBlob(t *testing.T) {
	strat := &initialStateStrategy{}
	_, ok, err := strat.Extract(`<html><body><p>plain page</p></body></html>`, 1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInitialStateFallbackItemSearch(t *testing.T) {
	// Items moved away from the stable path; the bounded-depth search finds
	// them under a listing-shaped key.
	state := `{"searchData":{"results":[
		{"name":"ペット用ブランケット",
		 "originalItemUrl":"https://item.rakuten.co.jp/shopA/blanket-01/",
		 "price":1980,
		 "itemOptions":{"cpc":{"type":"grp07rpp"}}}
	]}}`
	strat := &initialStateStrategy{}
	ads, ok, err := strat.Extract(statePage(state), 2)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, ads, 1)
	require.Equal(t, "shopA", ads[0].ShopID)
	require.Equal(t, 2, ads[0].PageNumber)
}

func TestInitialStateTrailingStatementIgnored(t *testing.T) {
	page := `<html><head><script>
window.__INITIAL_STATE__ = {"data":{"ichibaSearch":{"items":[
	{"name":"毛布","originalItemUrl":"https://item.rakuten.co.jp/shopA/m1/","price":500,"itemOptions":{"cpc":{"type":"grp07rpp"}}}
]}}};
window.__OTHER__ = {"x":1};
</script></head><body></body></html>`
	strat := &initialStateStrategy{}
	ads, ok, err := strat.Extract(page, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, ads, 1)
}

func TestSplitShopItem(t *testing.T) {
	shop, item := splitShopItem("https://item.rakuten.co.jp/stepmarket/blanket-01/?s=4&scid=af")
	require.Equal(t, "stepmarket", shop)
	require.Equal(t, "blanket-01", item)

	shop, item = splitShopItem("https://example.com/not-a-listing")
	require.Empty(t, shop)
	require.Empty(t, item)
}
