package ichiba

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenreNameCachesLookups(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "508985", r.URL.Query().Get("genreId"))
		w.Write([]byte(`{"current":{"genreId":508985,"genreName":"ペット用品"}}`))
	}))
	defer server.Close()

	resolver := NewGenreTagResolver("app", server.URL, server.URL, server.Client(), time.Millisecond)
	ctx := context.Background()

	require.Equal(t, "ペット用品", resolver.GenreName(ctx, "508985"))
	require.Equal(t, "ペット用品", resolver.GenreName(ctx, "508985"))
	require.Equal(t, int32(1), calls.Load())
}

func TestGenreNameFallsBackToID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	resolver := NewGenreTagResolver("app", server.URL, server.URL, server.Client(), time.Millisecond)
	require.Equal(t, "508985", resolver.GenreName(context.Background(), "508985"))
	require.Equal(t, "", resolver.GenreName(context.Background(), ""))
}

func TestTagNamesBatchesAndFallsBack(t *testing.T) {
	var gotTagIDs []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTagIDs = append(gotTagIDs, r.URL.Query().Get("tagId"))
		w.Write([]byte(`{"tagGroups":[{"tags":[
			{"tagId":1000123,"tagName":"洗える"},
			{"tagId":1000456,"tagName":"小型犬"}
		]}]}`))
	}))
	defer server.Close()

	resolver := NewGenreTagResolver("app", server.URL, server.URL, server.Client(), time.Millisecond)
	names := resolver.TagNames(context.Background(), []string{"1000123", "1000456", "9999999"}, "508985")

	require.Equal(t, []string{"1000123,1000456,9999999"}, gotTagIDs)
	require.Equal(t, "洗える", names["1000123"])
	require.Equal(t, "小型犬", names["1000456"])
	// Unknown ids resolve to themselves.
	require.Equal(t, "9999999", names["9999999"])
}

func TestTagNamesCachePerGenreHint(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"tags":[{"tagId":1000123,"tagName":"洗える"}]}`))
	}))
	defer server.Close()

	resolver := NewGenreTagResolver("app", server.URL, server.URL, server.Client(), time.Millisecond)
	ctx := context.Background()

	resolver.TagNames(ctx, []string{"1000123"}, "508985")
	resolver.TagNames(ctx, []string{"1000123"}, "508985")
	require.Equal(t, int32(1), calls.Load())

	// A different genre hint is a different cache entry.
	resolver.TagNames(ctx, []string{"1000123"}, "100316")
	require.Equal(t, int32(2), calls.Load())
}

func TestTagNamesCapsBatchAtTen(t *testing.T) {
	var gotTagIDs string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTagIDs = r.URL.Query().Get("tagId")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ids := make([]string, 14)
	for i := range ids {
		ids[i] = string(rune('a' + i))
	}

	resolver := NewGenreTagResolver("app", server.URL, server.URL, server.Client(), time.Millisecond)
	names := resolver.TagNames(context.Background(), ids, "")

	require.Len(t, names, 10)
	require.Equal(t, "a,b,c,d,e,f,g,h,i,j", gotTagIDs)
}

func TestTagNamesRetriesOnceAfterRateLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("waits out the rate-limit backoff")
	}

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"tags":[{"tagId":1000123,"tagName":"洗える"}]}`))
	}))
	defer server.Close()

	resolver := NewGenreTagResolver("app", server.URL, server.URL, server.Client(), time.Millisecond)
	names := resolver.TagNames(context.Background(), []string{"1000123"}, "")

	require.Equal(t, int32(2), calls.Load())
	require.Equal(t, "洗える", names["1000123"])
}
