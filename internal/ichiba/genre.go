package ichiba

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lukman83/rakurank/internal/httputil"
	"golang.org/x/time/rate"
)

// tagBatchSize is the upstream's per-call limit on tag ids.
const tagBatchSize = 10

// GenreTagResolver performs best-effort category and tag name lookups with
// an in-process cache. Lookups never fail: when the upstream is unreachable,
// rate-limited past one retry, or the id is unknown, the id itself is
// returned as the display name.
type GenreTagResolver struct {
	appID      string
	genreURL   string
	tagURL     string
	httpClient *http.Client
	limiter    *rate.Limiter // paces tag batches

	mu         sync.Mutex
	genreCache map[string]string
	tagCache   map[string]string // keyed id or id+"_"+genreHint
}

// NewGenreTagResolver creates a resolver with an empty cache. Construct one
// per process (or per test) — the cache is unbounded for process lifetime.
func NewGenreTagResolver(appID, genreURL, tagURL string, httpClient *http.Client, batchInterval time.Duration) *GenreTagResolver {
	if httpClient == nil {
		httpClient = httputil.NewHTTPClient(nil, 10*time.Second)
	}
	if batchInterval <= 0 {
		batchInterval = 1500 * time.Millisecond
	}
	return &GenreTagResolver{
		appID:      appID,
		genreURL:   genreURL,
		tagURL:     tagURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(batchInterval), 1),
		genreCache: make(map[string]string),
		tagCache:   make(map[string]string),
	}
}

// GenreName resolves a category id to its display name.
func (r *GenreTagResolver) GenreName(ctx context.Context, genreID string) string {
	if genreID == "" {
		return ""
	}
	r.mu.Lock()
	if name, ok := r.genreCache[genreID]; ok {
		r.mu.Unlock()
		return name
	}
	r.mu.Unlock()

	q := url.Values{}
	q.Set("format", "json")
	q.Set("applicationId", r.appID)
	q.Set("genreId", genreID)

	body, status, err := r.get(ctx, r.genreURL+"?"+q.Encode())
	if err != nil || status != http.StatusOK {
		slog.Debug("genre lookup failed", "genre_id", genreID, "status", status, "error", err)
		return genreID
	}

	var payload struct {
		Current struct {
			GenreName string `json:"genreName"`
		} `json:"current"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Current.GenreName == "" {
		return genreID
	}

	r.mu.Lock()
	r.genreCache[genreID] = payload.Current.GenreName
	r.mu.Unlock()
	return payload.Current.GenreName
}

// TagNames resolves tag ids to display names, batching up to ten ids per
// upstream call. genreHint scopes cache entries; ids that cannot be
// resolved map to themselves.
func (r *GenreTagResolver) TagNames(ctx context.Context, tagIDs []string, genreHint string) map[string]string {
	result := make(map[string]string, len(tagIDs))
	if len(tagIDs) == 0 {
		return result
	}
	if len(tagIDs) > tagBatchSize {
		tagIDs = tagIDs[:tagBatchSize]
	}

	var uncached []string
	r.mu.Lock()
	for _, id := range tagIDs {
		if id == "" {
			continue
		}
		if name, ok := r.tagCache[tagCacheKey(id, genreHint)]; ok {
			result[id] = name
		} else {
			uncached = append(uncached, id)
		}
	}
	r.mu.Unlock()

	for start := 0; start < len(uncached); start += tagBatchSize {
		end := min(start+tagBatchSize, len(uncached))
		batch := uncached[start:end]
		names := r.fetchTagBatch(ctx, batch)
		r.mu.Lock()
		for _, id := range batch {
			name, ok := names[id]
			if !ok || name == "" {
				name = id
			}
			r.tagCache[tagCacheKey(id, genreHint)] = name
			result[id] = name
		}
		r.mu.Unlock()
	}
	return result
}

func (r *GenreTagResolver) fetchTagBatch(ctx context.Context, tagIDs []string) map[string]string {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("applicationId", r.appID)
	q.Set("tagId", strings.Join(tagIDs, ","))
	reqURL := r.tagURL + "?" + q.Encode()

	body, status, err := r.get(ctx, reqURL)
	if status == http.StatusTooManyRequests {
		// One retry after backing off; give up after that.
		slog.Warn("tag lookup rate limited, retrying once", "tag_ids", tagIDs)
		select {
		case <-time.After(3 * time.Second):
		case <-ctx.Done():
			return nil
		}
		body, status, err = r.get(ctx, reqURL)
	}
	if err != nil || status != http.StatusOK {
		slog.Debug("tag lookup failed", "tag_ids", tagIDs, "status", status, "error", err)
		return nil
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.Debug("tag payload decode failed", "error", err)
		return nil
	}

	// The tag payload's nesting varies across API generations; collect every
	// object carrying both tagId and tagName wherever it sits.
	names := make(map[string]string)
	collectTags(payload, 0, names)
	return names
}

// collectTags walks the decoded payload to a bounded depth gathering
// tagId→tagName pairs.
func collectTags(node any, depth int, out map[string]string) {
	if depth > 6 {
		return
	}
	switch v := node.(type) {
	case map[string]any:
		id, idOK := v["tagId"]
		name, nameOK := v["tagName"].(string)
		if idOK && nameOK && name != "" {
			out[jsonScalarString(id)] = name
			return
		}
		for _, child := range v {
			collectTags(child, depth+1, out)
		}
	case []any:
		for _, child := range v {
			collectTags(child, depth+1, out)
		}
	}
}

func jsonScalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

func (r *GenreTagResolver) get(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}
	for k, v := range httputil.APIHeaders() {
		req.Header[k] = v
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func tagCacheKey(id, genreHint string) string {
	if genreHint == "" {
		return id
	}
	return id + "_" + genreHint
}
