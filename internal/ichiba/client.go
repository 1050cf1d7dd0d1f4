package ichiba

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lukman83/rakurank/internal/httputil"
	"github.com/lukman83/rakurank/internal/models"
	"golang.org/x/time/rate"
)

// Client calls the keyed product-search API. Calls to SearchPage are paced
// at least one interval apart (first call immediate).
type Client struct {
	appID      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a search API client. interval is the minimum spacing
// between consecutive page fetches.
func NewClient(appID, baseURL string, httpClient *http.Client, interval time.Duration) *Client {
	if httpClient == nil {
		httpClient = httputil.NewHTTPClient(nil, 30*time.Second)
	}
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Client{
		appID:      appID,
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		logger:     slog.Default().With("component", "ichiba"),
	}
}

// searchResponse mirrors the relevant fields of the search API payload.
// Different API generations report the result-set size under different
// names; reportedTotal resolves them in precedence order.
type searchResponse struct {
	Count      int `json:"count"`
	Hits       int `json:"hits"`
	TotalCount int `json:"totalCount"`
	PageCount  int `json:"pageCount"`
	Items      []struct {
		Item wireItem `json:"Item"`
	} `json:"Items"`
}

func (r *searchResponse) reportedTotal(pageSize int) int {
	switch {
	case r.Count > 0:
		return r.Count
	case r.Hits > 0:
		return r.Hits
	case r.TotalCount > 0:
		return r.TotalCount
	default:
		return r.PageCount * pageSize
	}
}

type wireItem struct {
	ItemName      string      `json:"itemName"`
	Catchcopy     string      `json:"catchcopy"`
	ItemURL       string      `json:"itemUrl"`
	ItemCode      string      `json:"itemCode"`
	ShopName      string      `json:"shopName"`
	ShopCode      string      `json:"shopCode"`
	ItemPrice     json.Number `json:"itemPrice"`
	ReviewCount   int         `json:"reviewCount"`
	ReviewAverage json.Number `json:"reviewAverage"`
	ImageURLs     []struct {
		ImageURL string `json:"imageUrl"`
	} `json:"mediumImageUrls"`
	PointRate   int           `json:"pointRate"`
	GenreID     string        `json:"genreId"`
	TagIDs      []json.Number `json:"tagIds"`
	ItemCaption string        `json:"itemCaption"`
}

// SearchPage fetches one page of search results. Upstream failures (4xx,
// network errors, malformed payloads) degrade to an empty PageResult so
// callers treat them as "stop paginating", never as a hard error. The
// returned error is non-nil only when ctx is cancelled.
func (c *Client) SearchPage(ctx context.Context, keyword string, page, pageSize int) (models.PageResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return models.PageResult{}, err
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("keyword", SanitizeKeyword(keyword))
	q.Set("applicationId", c.appID)
	q.Set("page", strconv.Itoa(page))
	q.Set("hits", strconv.Itoa(pageSize))
	q.Set("sort", "standard")
	q.Set("imageFlag", "1")
	q.Set("availability", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return models.PageResult{}, err
	}
	for k, v := range httputil.APIHeaders() {
		req.Header[k] = v
	}

	resp, err := httputil.DoWithRetry(c.httpClient, req, 1)
	if err != nil {
		if ctx.Err() != nil {
			return models.PageResult{}, ctx.Err()
		}
		c.logger.Error("search request failed", "keyword", keyword, "page", page, "error", err)
		return models.PageResult{}, nil
	}
	defer resp.Body.Close()

	body, err := httputil.ReadBody(resp)
	if err != nil {
		c.logger.Error("search body read failed", "keyword", keyword, "page", page, "error", err)
		return models.PageResult{}, nil
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("search returned non-200", "keyword", keyword, "page", page,
			"status", resp.StatusCode, "body", truncateForLog(body))
		return models.PageResult{}, nil
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Error("search payload decode failed", "keyword", keyword, "page", page, "error", err)
		return models.PageResult{}, nil
	}

	result := models.PageResult{Items: make([]models.PageItem, 0, len(payload.Items))}
	// Only the first page carries an authoritative result-set count.
	if page == 1 {
		result.ReportedTotal = payload.reportedTotal(pageSize)
	}
	for _, wrapped := range payload.Items {
		result.Items = append(result.Items, toPageItem(wrapped.Item))
	}
	return result, nil
}

func toPageItem(w wireItem) models.PageItem {
	item := models.PageItem{
		Name:        w.ItemName,
		Catchcopy:   w.Catchcopy,
		URL:         w.ItemURL,
		ItemCode:    w.ItemCode,
		ShopName:    w.ShopName,
		ShopID:      w.ShopCode,
		ReviewCount: w.ReviewCount,
		PointRate:   w.PointRate,
		GenreID:     w.GenreID,
		Caption:     w.ItemCaption,
	}
	if p, err := w.ItemPrice.Int64(); err == nil {
		item.Price = int(p)
	}
	if avg, err := w.ReviewAverage.Float64(); err == nil {
		item.ReviewAverage = avg
	}
	if len(w.ImageURLs) > 0 {
		item.ImageURL = NormalizeImageURL(w.ImageURLs[0].ImageURL, "original")
	}
	for _, id := range w.TagIDs {
		item.TagIDs = append(item.TagIDs, id.String())
	}
	return item
}

func truncateForLog(body []byte) string {
	const max = 300
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
