package rpp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lukman83/rakurank/internal/httputil"
)

// StaticSource fetches search pages over plain HTTP. Good enough whenever the
// server still embeds its state blob for non-JS clients.
type StaticSource struct {
	baseURL string
	client  *http.Client
}

func NewStaticSource(baseURL string, client *http.Client) *StaticSource {
	return &StaticSource{baseURL: baseURL, client: client}
}

func (s *StaticSource) FetchPage(ctx context.Context, keyword string, page int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchPageURL(s.baseURL, keyword, page), nil)
	if err != nil {
		return "", fmt.Errorf("build page request: %w", err)
	}
	for key, values := range httputil.BrowserHeaders() {
		req.Header[key] = values
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch search page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode}
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return "", fmt.Errorf("read search page: %w", err)
	}
	return string(body), nil
}

// searchPageURL builds the mall search URL: keyword as a path segment,
// pagination via the p query parameter from page 2 on.
func searchPageURL(baseURL, keyword string, page int) string {
	u := baseURL + "/" + url.PathEscape(keyword) + "/"
	if page > 1 {
		u += "?p=" + strconv.Itoa(page)
	}
	return u
}
