// Package export renders stored checks as CSV for spreadsheet analysis.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/lukman83/rakurank/internal/ichiba"
	"github.com/lukman83/rakurank/internal/models"
)

var snapshotHeader = []string{
	"rank", "name", "catchcopy", "shop_name", "shop_id", "item_code", "url",
	"price", "review_count", "review_average", "point_rate",
	"genre_id", "genre_name", "tag_names",
	"kw_name_count", "kw_catchcopy_count", "kw_description_count", "kw_total_count", "kw_detail",
	"is_target", "collected_at",
}

// WriteSnapshots writes the competitor snapshots of one organic check, one
// row per listing, with keyword-frequency columns computed against phrase.
func WriteSnapshots(w io.Writer, phrase string, snapshots []models.ListingSnapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(snapshotHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, snap := range snapshots {
		freq := ichiba.KeywordFrequency(phrase, snap.Name, snap.Catchcopy, snap.Description)
		row := []string{
			strconv.Itoa(snap.Rank),
			snap.Name,
			snap.Catchcopy,
			snap.ShopName,
			snap.ShopID,
			snap.ItemCode,
			snap.URL,
			strconv.Itoa(snap.Price),
			strconv.Itoa(snap.ReviewCount),
			strconv.FormatFloat(snap.ReviewAverage, 'f', -1, 64),
			strconv.Itoa(snap.PointRate),
			snap.GenreID,
			snap.GenreName,
			strings.Join(snap.TagNames, " / "),
			strconv.Itoa(freq.NameCount),
			strconv.Itoa(freq.CatchcopyCount),
			strconv.Itoa(freq.DescriptionCount),
			strconv.Itoa(freq.TotalCount),
			freq.DetailString(),
			flag(snap.IsTarget),
			timestamp(snap.CollectedAt),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

var adHeader = []string{
	"rank", "page", "position_on_page", "name", "catchcopy", "shop_name", "shop_id",
	"item_code", "url", "price", "is_target", "collected_at",
}

// WriteAds writes the placements of one sponsored check, one row per ad.
func WriteAds(w io.Writer, ads []models.AdSnapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(adHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, ad := range ads {
		row := []string{
			strconv.Itoa(ad.Rank),
			strconv.Itoa(ad.PageNumber),
			strconv.Itoa(ad.PositionOnPage),
			ad.Name,
			ad.Catchcopy,
			ad.ShopName,
			ad.ShopID,
			ad.ItemCode,
			ad.URL,
			optionalInt(ad.Price),
			flag(ad.IsTarget),
			timestamp(ad.CollectedAt),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

var historyHeader = []string{
	"checked_at", "rank", "found", "reported_total", "snapshots", "error", "memo",
}

// WriteHistory writes one keyword's rank history, newest first as stored.
func WriteHistory(w io.Writer, results []models.RankResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(historyHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, result := range results {
		row := []string{
			timestamp(result.CheckedAt),
			optionalInt(result.Rank),
			flag(result.Found),
			strconv.Itoa(result.ReportedTotal),
			strconv.Itoa(result.TotalSnapshots),
			result.ErrorMessage,
			result.Memo,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
