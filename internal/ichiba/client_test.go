package ichiba

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const searchPayload = `{
	"count": 248,
	"Items": [
		{"Item": {
			"itemName": "ペット用ブランケット",
			"catchcopy": "ふわふわ",
			"itemUrl": "https://item.rakuten.co.jp/stepmarket/blanket-01/",
			"itemCode": "stepmarket:10000123",
			"shopName": "ステップマーケット",
			"shopCode": "stepmarket",
			"itemPrice": "1980",
			"reviewCount": 12,
			"reviewAverage": "4.5",
			"mediumImageUrls": [{"imageUrl": "https://thumbnail.image.rakuten.co.jp/img.jpg?_ex=128x128"}],
			"pointRate": 2,
			"genreId": "508985",
			"tagIds": [1000123, 1000456],
			"itemCaption": "あったかブランケットです"
		}}
	]
}`

func TestSearchPageParsesItems(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"keyword":       r.URL.Query().Get("keyword"),
			"applicationId": r.URL.Query().Get("applicationId"),
			"page":          r.URL.Query().Get("page"),
			"hits":          r.URL.Query().Get("hits"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchPayload))
	}))
	defer server.Close()

	client := NewClient("test-app-id", server.URL, server.Client(), time.Millisecond)
	result, err := client.SearchPage(context.Background(), "ペット ブランケット l", 1, 30)
	require.NoError(t, err)

	require.Equal(t, "ペット ブランケット Lサイズ", gotQuery["keyword"])
	require.Equal(t, "test-app-id", gotQuery["applicationId"])
	require.Equal(t, "1", gotQuery["page"])
	require.Equal(t, "30", gotQuery["hits"])

	require.Equal(t, 248, result.ReportedTotal)
	require.Len(t, result.Items, 1)

	item := result.Items[0]
	require.Equal(t, "ペット用ブランケット", item.Name)
	require.Equal(t, "stepmarket", item.ShopID)
	require.Equal(t, 1980, item.Price)
	require.Equal(t, 4.5, item.ReviewAverage)
	require.Equal(t, []string{"1000123", "1000456"}, item.TagIDs)
	// The size parameter is stripped for the stored copy.
	require.Equal(t, "https://thumbnail.image.rakuten.co.jp/img.jpg", item.ImageURL)
}

func TestSearchPageEmptyOnClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"wrong_parameter"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient("test-app-id", server.URL, server.Client(), time.Millisecond)
	result, err := client.SearchPage(context.Background(), "ペット", 1, 30)
	require.NoError(t, err)
	require.Empty(t, result.Items)
	require.Zero(t, result.ReportedTotal)
}

func TestSearchPageEmptyOnMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := NewClient("test-app-id", server.URL, server.Client(), time.Millisecond)
	result, err := client.SearchPage(context.Background(), "ペット", 1, 30)
	require.NoError(t, err)
	require.Empty(t, result.Items)
}

func TestSearchPageEmptyOnNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient("test-app-id", server.URL, http.DefaultClient, time.Millisecond)
	result, err := client.SearchPage(context.Background(), "ペット", 1, 30)
	require.NoError(t, err)
	require.Empty(t, result.Items)
}

func TestSearchPageIgnoresTotalAfterFirstPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchPayload))
	}))
	defer server.Close()

	client := NewClient("test-app-id", server.URL, server.Client(), time.Millisecond)
	result, err := client.SearchPage(context.Background(), "ペット", 2, 30)
	require.NoError(t, err)
	require.Zero(t, result.ReportedTotal)
	require.Len(t, result.Items, 1)
}

func TestReportedTotalPrecedence(t *testing.T) {
	cases := []struct {
		name string
		resp searchResponse
		want int
	}{
		{"count wins", searchResponse{Count: 10, Hits: 20, TotalCount: 30, PageCount: 4}, 10},
		{"hits next", searchResponse{Hits: 20, TotalCount: 30, PageCount: 4}, 20},
		{"totalCount next", searchResponse{TotalCount: 30, PageCount: 4}, 30},
		{"pageCount estimate", searchResponse{PageCount: 4}, 120},
		{"all absent", searchResponse{}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.resp.reportedTotal(30))
		})
	}
}
