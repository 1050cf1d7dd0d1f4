package models

import "time"

// Variant distinguishes organic search tracking from sponsored (RPP) tracking.
type Variant string

const (
	VariantOrganic Variant = "organic"
	VariantRPP     Variant = "rpp"
)

// Keyword is a tracked search phrase bound to one shop. Phrase and ShopID are
// fixed after creation; only Active may be toggled.
type Keyword struct {
	ID        int64     `json:"id"`
	Phrase    string    `json:"phrase"`
	ShopID    string    `json:"shop_id"`
	ItemCode  string    `json:"item_code,omitempty"` // optional target listing id
	ItemURL   string    `json:"item_url,omitempty"`  // optional target listing URL
	Variant   Variant   `json:"variant"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PageItem is one listing as returned by the product-search API.
type PageItem struct {
	Name          string   `json:"name"`
	Catchcopy     string   `json:"catchcopy,omitempty"`
	URL           string   `json:"url"`
	ItemCode      string   `json:"item_code,omitempty"`
	ShopName      string   `json:"shop_name,omitempty"`
	ShopID        string   `json:"shop_id,omitempty"`
	Price         int      `json:"price,omitempty"`
	ReviewCount   int      `json:"review_count,omitempty"`
	ReviewAverage float64  `json:"review_average,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
	PointRate     int      `json:"point_rate,omitempty"`
	GenreID       string   `json:"genre_id,omitempty"`
	TagIDs        []string `json:"tag_ids,omitempty"`
	Caption       string   `json:"caption,omitempty"` // long-form description
}

// PageResult is one fetched page of search results. ReportedTotal is only
// meaningful on the first page; later pages carry zero.
type PageResult struct {
	Items         []PageItem `json:"items"`
	ReportedTotal int        `json:"reported_total"`
}

// RankResult is one organic rank resolution attempt. Rank is nil when the
// target was not found within the scanned pages.
type RankResult struct {
	ID             int64             `json:"id"`
	KeywordID      int64             `json:"keyword_id"`
	Rank           *int              `json:"rank"`
	TotalSnapshots int               `json:"total_snapshots"`
	ReportedTotal  int               `json:"reported_total"`
	Found          bool              `json:"found"`
	ErrorMessage   string            `json:"error_message,omitempty"`
	Memo           string            `json:"memo,omitempty"`
	CheckedAt      time.Time         `json:"checked_at"`
	Snapshots      []ListingSnapshot `json:"snapshots,omitempty"`
}

// ListingSnapshot captures one listing at one position of one resolution run.
// Ranks are 1-based, strictly increasing and unique within a result.
type ListingSnapshot struct {
	ID            int64     `json:"id"`
	ResultID      int64     `json:"result_id"`
	Rank          int       `json:"rank"`
	Name          string    `json:"name"`
	Catchcopy     string    `json:"catchcopy,omitempty"`
	URL           string    `json:"url"`
	ItemCode      string    `json:"item_code,omitempty"`
	ShopName      string    `json:"shop_name,omitempty"`
	ShopID        string    `json:"shop_id,omitempty"`
	Price         int       `json:"price,omitempty"`
	ReviewCount   int       `json:"review_count,omitempty"`
	ReviewAverage float64   `json:"review_average,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	PointRate     int       `json:"point_rate,omitempty"`
	GenreID       string    `json:"genre_id,omitempty"`
	GenreName     string    `json:"genre_name,omitempty"`
	TagIDs        []string  `json:"tag_ids,omitempty"`
	TagNames      []string  `json:"tag_names,omitempty"`
	Description   string    `json:"description,omitempty"`
	IsTarget      bool      `json:"is_target"`
	CollectedAt   time.Time `json:"collected_at"`
}

// AdResult is one sponsored-placement resolution attempt.
type AdResult struct {
	ID           int64        `json:"id"`
	KeywordID    int64        `json:"keyword_id"`
	Rank         *int         `json:"rank"`
	TotalAds     int          `json:"total_ads"`
	PagesChecked int          `json:"pages_checked"`
	Found        bool         `json:"found"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Memo         string       `json:"memo,omitempty"`
	CheckedAt    time.Time    `json:"checked_at"`
	Ads          []AdSnapshot `json:"ads,omitempty"`
}

// AdSnapshot captures one sponsored placement. Rank is the cross-page global
// ad rank; PositionOnPage is the placement's ordinal within its page.
type AdSnapshot struct {
	ID             int64     `json:"id"`
	ResultID       int64     `json:"result_id"`
	Rank           int       `json:"rank"`
	Name           string    `json:"name"`
	Catchcopy      string    `json:"catchcopy,omitempty"`
	URL            string    `json:"url"`
	ItemCode       string    `json:"item_code,omitempty"`
	ShopName       string    `json:"shop_name,omitempty"`
	ShopID         string    `json:"shop_id,omitempty"`
	Price          *int      `json:"price,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	BidEstimate    *int      `json:"bid_estimate,omitempty"`
	PageNumber     int       `json:"page_number"`
	PositionOnPage int       `json:"position_on_page"`
	IsTarget       bool      `json:"is_target"`
	CollectedAt    time.Time `json:"collected_at"`
}

// ExecutionLog records timing and outcome of one search invocation.
type ExecutionLog struct {
	ID           int64     `json:"id"`
	Variant      Variant   `json:"variant"`
	Keyword      string    `json:"keyword"`
	DurationMS   int64     `json:"duration_ms"`
	PagesChecked int       `json:"pages_checked"`
	ItemsFound   int       `json:"items_found"`
	Success      bool      `json:"success"`
	ErrorDetails string    `json:"error_details,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// BulkLog records one bulk run across many keywords.
type BulkLog struct {
	ID         int64     `json:"id"`
	Variant    Variant   `json:"variant"`
	Keywords   int       `json:"keywords"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	DurationMS int64     `json:"duration_ms"`
	Completed  bool      `json:"completed"`
	ExecutedAt time.Time `json:"executed_at"`
}
