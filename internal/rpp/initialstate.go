package rpp

import (
	"encoding/json"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/lukman83/rakurank/internal/models"
)

const (
	initialStateMarker = "window.__INITIAL_STATE__"
	rppAdType          = "grp07rpp"

	// Placeholder rows the embedded state mixes in with real listings.
	placeholderName = "すべてのジャンル"

	// How deep the fallback item-list search descends into the state tree.
	maxStateDepth = 5
)

// Candidate key names for the item list, most specific first.
var itemListKeys = []string{"items", "products", "itemList", "results"}

// initialStateStrategy reads the JSON state blob the search page embeds for
// its own client-side rendering. It is the only tier that can tell sponsored
// placements apart from organic ones, so when the blob is present its answer
// is authoritative even when empty.
type initialStateStrategy struct{}

func (s *initialStateStrategy) Name() string { return "initial-state" }

func (s *initialStateStrategy) Extract(page string, pageNum int) ([]models.AdSnapshot, bool, error) {
	raw, found := extractInitialState(page)
	if !found {
		return nil, false, nil
	}

	var state map[string]any
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, false, err
	}

	items, found := locateItems(state)
	if !found {
		// Blob parsed but carries no recognizable listing data. Treat as
		// unreadable so the positional tiers get a chance.
		return nil, false, nil
	}

	var ads []models.AdSnapshot
	for _, item := range items {
		if !isRPPAd(item) {
			continue
		}
		ad, ok := adFromStateItem(item)
		if !ok {
			continue
		}
		ad.PageNumber = pageNum
		ad.PositionOnPage = len(ads) + 1
		ad.Rank = ad.PositionOnPage
		ads = append(ads, ad)
	}
	return ads, true, nil
}

// extractInitialState pulls the JSON text assigned to the state global out of
// the page's script elements.
func extractInitialState(page string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", false
	}

	var script string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "script" {
			if n.FirstChild != nil && strings.Contains(n.FirstChild.Data, initialStateMarker) {
				script = n.FirstChild.Data
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	if !walk(doc) {
		return "", false
	}

	idx := strings.Index(script, initialStateMarker)
	rest := script[idx+len(initialStateMarker):]
	eq := strings.Index(rest, "=")
	if eq < 0 {
		return "", false
	}
	rest = strings.TrimSpace(rest[eq+1:])

	// The assignment runs to the end of the statement. Balance braces so a
	// trailing "};" or further statements do not poison the decode.
	end := balancedJSONEnd(rest)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// balancedJSONEnd returns the index one past the closing brace of the JSON
// object starting at the front of s, or -1 when s does not open an object.
func balancedJSONEnd(s string) int {
	if len(s) == 0 || s[0] != '{' {
		return -1
	}
	depth := 0
	inStr := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// locateItems finds the listing array inside the state tree. The stable path
// is tried first; when the page team moves things around, a bounded-depth
// search over keys that look listing-shaped takes over.
func locateItems(state map[string]any) ([]map[string]any, bool) {
	if data, ok := state["data"].(map[string]any); ok {
		if search, ok := data["ichibaSearch"].(map[string]any); ok {
			if items, ok := asItemList(search["items"]); ok {
				return items, true
			}
		}
	}
	return findItemList(state, 0)
}

func findItemList(node any, depth int) ([]map[string]any, bool) {
	if depth > maxStateDepth {
		return nil, false
	}
	obj, ok := node.(map[string]any)
	if !ok {
		return nil, false
	}
	for _, key := range itemListKeys {
		if items, ok := asItemList(obj[key]); ok {
			return items, true
		}
	}
	for key, child := range obj {
		lower := strings.ToLower(key)
		if !strings.Contains(lower, "item") && !strings.Contains(lower, "product") && !strings.Contains(lower, "search") && !strings.Contains(lower, "data") {
			continue
		}
		if items, ok := findItemList(child, depth+1); ok {
			return items, true
		}
	}
	return nil, false
}

// asItemList accepts a candidate only when it is a non-empty array of objects
// that carry listing-shaped fields.
func asItemList(v any) ([]map[string]any, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return nil, false
	}
	items := make([]map[string]any, 0, len(arr))
	shaped := false
	for _, elem := range arr {
		obj, ok := elem.(map[string]any)
		if !ok {
			return nil, false
		}
		if hasListingShape(obj) {
			shaped = true
		}
		items = append(items, obj)
	}
	if !shaped {
		return nil, false
	}
	return items, true
}

func hasListingShape(obj map[string]any) bool {
	for _, key := range []string{"name", "itemid", "itemId", "price", "itemOptions"} {
		if _, ok := obj[key]; ok {
			return true
		}
	}
	return false
}

func isRPPAd(item map[string]any) bool {
	opts, ok := item["itemOptions"].(map[string]any)
	if !ok {
		return false
	}
	cpc, ok := opts["cpc"].(map[string]any)
	if !ok {
		return false
	}
	adType, _ := cpc["type"].(string)
	return adType == rppAdType
}

func adFromStateItem(item map[string]any) (models.AdSnapshot, bool) {
	name := stateString(item["name"])
	if name == "" || name == placeholderName {
		return models.AdSnapshot{}, false
	}

	ad := models.AdSnapshot{
		Name:      name,
		Catchcopy: stateString(item["subtitle"]),
		URL:       stateString(item["originalItemUrl"]),
	}
	if ad.URL == "" {
		ad.URL = stateString(item["itemUrl"])
	}

	if shop, ok := item["shop"].(map[string]any); ok {
		if code := stateString(shop["urlCode"]); code != "" {
			ad.ShopID = code
			ad.ShopName = code
		}
	}
	if ad.ShopID == "" {
		ad.ShopID, ad.ItemCode = splitShopItem(ad.URL)
		ad.ShopName = ad.ShopID
	} else {
		_, ad.ItemCode = splitShopItem(ad.URL)
	}

	if price, ok := stateInt(item["price"]); ok {
		ad.Price = &price
	}
	if images, ok := item["images"].([]any); ok && len(images) > 0 {
		if img, ok := images[0].(map[string]any); ok {
			ad.ImageURL = stateString(img["url"])
		}
	}
	return ad, true
}

func stateString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func stateInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		cleaned := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, n)
		out, err := strconv.Atoi(cleaned)
		if err != nil {
			return 0, false
		}
		return out, true
	}
	return 0, false
}
