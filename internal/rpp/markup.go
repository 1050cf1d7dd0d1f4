package rpp

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lukman83/rakurank/internal/models"
)

var (
	adLabelText = regexp.MustCompile(`\[PR\]|広告|スポンサー|(?i)\bAd\b`)
	priceDigits = regexp.MustCompile(`[0-9,]+`)

	// Ad-ish class tokens need boundaries: "price" must not count as "pr".
	adClass = regexp.MustCompile(`(?i)(?:^|[\s_-])(?:ad|pr|rpp|sponsored?)(?:$|[\s_-])`)
)

// markupStrategy is the last-resort tier: scan rendered markup for
// containers that advertise themselves as sponsored. Always authoritative,
// since nothing runs after it.
type markupStrategy struct{}

func (s *markupStrategy) Name() string { return "markup" }

func (s *markupStrategy) Extract(page string, pageNum int) ([]models.AdSnapshot, bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, false, err
	}

	var ads []models.AdSnapshot
	seen := map[string]bool{}

	add := func(ad models.AdSnapshot) {
		key := ad.URL
		if key == "" {
			key = ad.Name
		}
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		ad.PageNumber = pageNum
		ad.PositionOnPage = len(ads) + 1
		ad.Rank = ad.PositionOnPage
		ads = append(ads, ad)
	}

	// Tagged title links first: anchors whose visible text carries the ad
	// label are the most reliable markup signal.
	doc.Find("a").Each(func(_ int, link *goquery.Selection) {
		if !adLabelText.MatchString(link.Text()) {
			return
		}
		if !classContains(link, "title", "link", "item", "product") {
			return
		}
		if ad, ok := adFromMarkup(link.Closest("div, li"), link); ok {
			add(ad)
		}
	})

	// Then result containers flagged as ads by class or by a label element.
	doc.Find("div, li").Each(func(_ int, sel *goquery.Selection) {
		if !classContains(sel, "searchresult", "product", "item") {
			return
		}
		flagged := hasAdClass(sel)
		if !flagged {
			sel.Find("span, div, p").EachWithBreak(func(_ int, label *goquery.Selection) bool {
				if adLabelText.MatchString(label.Text()) || hasAdClass(label) {
					flagged = true
					return false
				}
				return true
			})
		}
		if !flagged {
			return
		}
		if ad, ok := adFromMarkup(sel, nil); ok {
			add(ad)
		}
	})

	return ads, true, nil
}

// adFromMarkup pulls listing fields out of a result container. link, when
// given, is the anchor that flagged the container.
func adFromMarkup(container *goquery.Selection, link *goquery.Selection) (models.AdSnapshot, bool) {
	if container == nil || container.Length() == 0 {
		if link == nil {
			return models.AdSnapshot{}, false
		}
		container = link
	}

	title := link
	if title == nil || title.Length() == 0 {
		title = firstMatch(container, "a", "title", "name", "product")
		if title == nil {
			title = container.Find("a").First()
		}
	}
	if title == nil || title.Length() == 0 {
		return models.AdSnapshot{}, false
	}

	name := strings.TrimSpace(adLabelText.ReplaceAllString(title.Text(), ""))
	if name == "" {
		return models.AdSnapshot{}, false
	}

	href, _ := title.Attr("href")
	ad := models.AdSnapshot{
		Name: name,
		URL:  absoluteURL(href),
	}
	ad.ShopID, ad.ItemCode = splitShopItem(ad.URL)

	if priceSel := firstMatch(container, "span, div", "price", "yen"); priceSel != nil {
		if digits := priceDigits.FindString(priceSel.Text()); digits != "" {
			if p, err := strconv.Atoi(strings.ReplaceAll(digits, ",", "")); err == nil {
				ad.Price = &p
			}
		}
	}
	if shopSel := firstMatch(container, "span, div, a", "shop", "store", "seller"); shopSel != nil {
		ad.ShopName = strings.TrimSpace(shopSel.Text())
	}
	if ad.ShopName == "" {
		ad.ShopName = ad.ShopID
	}
	if catchSel := firstMatch(container, "span, div", "catch", "description", "subtitle"); catchSel != nil {
		ad.Catchcopy = strings.TrimSpace(catchSel.Text())
	}
	if img := container.Find("img").First(); img.Length() > 0 {
		src, ok := img.Attr("src")
		if !ok || src == "" {
			src, _ = img.Attr("data-src")
		}
		ad.ImageURL = src
	}
	return ad, true
}

// firstMatch returns the first element matching selector whose class contains
// one of the fragments, or nil.
func firstMatch(container *goquery.Selection, selector string, fragments ...string) *goquery.Selection {
	var found *goquery.Selection
	container.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if classContains(sel, fragments...) {
			found = sel
			return false
		}
		return true
	})
	return found
}

func hasAdClass(sel *goquery.Selection) bool {
	class, _ := sel.Attr("class")
	return adClass.MatchString(class)
}

func classContains(sel *goquery.Selection, fragments ...string) bool {
	class, _ := sel.Attr("class")
	class = strings.ToLower(class)
	for _, frag := range fragments {
		if strings.Contains(class, frag) {
			return true
		}
	}
	return false
}

func absoluteURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return href
	}
	base := url.URL{Scheme: "https", Host: "search.rakuten.co.jp"}
	return base.ResolveReference(u).String()
}
