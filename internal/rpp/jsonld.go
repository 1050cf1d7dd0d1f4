package rpp

import (
	"encoding/json"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/lukman83/rakurank/internal/models"
)

// jsonLDStrategy reads the structured-data ItemList blocks search pages ship
// for crawlers. Linked data carries no sponsorship marker, so this tier only
// runs when the embedded state is unreadable and reports every listed item
// positionally.
type jsonLDStrategy struct{}

func (s *jsonLDStrategy) Name() string { return "json-ld" }

type ldListElement struct {
	Type     string  `json:"@type"`
	Position int     `json:"position"`
	Item     *ldItem `json:"item"`
	// Some pages inline the item fields on the element itself.
	Name string `json:"name"`
	URL  string `json:"url"`
}

type ldItem struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Image  any    `json:"image"`
	Offers struct {
		Price json.Number `json:"price"`
	} `json:"offers"`
}

type ldItemList struct {
	Type     string          `json:"@type"`
	Elements []ldListElement `json:"itemListElement"`
}

func (s *jsonLDStrategy) Extract(page string, pageNum int) ([]models.AdSnapshot, bool, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, false, err
	}

	var ads []models.AdSnapshot
	for _, block := range linkedDataBlocks(doc) {
		var list ldItemList
		if err := json.Unmarshal([]byte(block), &list); err != nil {
			continue
		}
		if list.Type != "ItemList" {
			continue
		}
		elems := list.Elements
		sort.SliceStable(elems, func(i, j int) bool { return elems[i].Position < elems[j].Position })
		for _, elem := range elems {
			ad, ok := adFromLDElement(elem)
			if !ok {
				continue
			}
			ad.PageNumber = pageNum
			ad.PositionOnPage = len(ads) + 1
			ad.Rank = ad.PositionOnPage
			ads = append(ads, ad)
		}
	}
	return ads, len(ads) > 0, nil
}

func adFromLDElement(elem ldListElement) (models.AdSnapshot, bool) {
	name := strings.TrimSpace(elem.Name)
	rawURL := strings.TrimSpace(elem.URL)
	var ad models.AdSnapshot

	if elem.Item != nil {
		if name == "" {
			name = strings.TrimSpace(elem.Item.Name)
		}
		if rawURL == "" {
			rawURL = strings.TrimSpace(elem.Item.URL)
		}
		if price, err := elem.Item.Offers.Price.Int64(); err == nil && price > 0 {
			p := int(price)
			ad.Price = &p
		}
		ad.ImageURL = ldImageURL(elem.Item.Image)
	}
	if name == "" {
		return models.AdSnapshot{}, false
	}

	ad.Name = name
	ad.URL = rawURL
	ad.ShopID, ad.ItemCode = splitShopItem(rawURL)
	ad.ShopName = ad.ShopID
	return ad, true
}

// ldImageURL tolerates image being a string, a list, or an ImageObject.
func ldImageURL(v any) string {
	switch img := v.(type) {
	case string:
		return img
	case []any:
		if len(img) > 0 {
			return ldImageURL(img[0])
		}
	case map[string]any:
		if u, ok := img["url"].(string); ok {
			return u
		}
	}
	return ""
}

func linkedDataBlocks(doc *html.Node) []string {
	var blocks []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" && scriptType(n) == "application/ld+json" {
			if n.FirstChild != nil {
				blocks = append(blocks, n.FirstChild.Data)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return blocks
}

func scriptType(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Key == "type" {
			return strings.ToLower(strings.TrimSpace(attr.Val))
		}
	}
	return ""
}
