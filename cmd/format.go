package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/lukman83/rakurank/internal/models"
)

// printRankResult prints one organic check in a human-friendly layout.
func printRankResult(kw models.Keyword, result models.RankResult) {
	fmt.Fprintf(os.Stdout, "Keyword: %q  Shop: %s\n", kw.Phrase, kw.ShopID)
	if result.Rank != nil {
		page := (*result.Rank-1)/cfg.PageSize + 1
		fmt.Fprintf(os.Stdout, "Rank: %d (page %d)\n", *result.Rank, page)
	} else {
		fmt.Fprintf(os.Stdout, "Rank: not found within %d pages\n", cfg.MaxPages)
	}
	if result.ReportedTotal > 0 {
		fmt.Fprintf(os.Stdout, "Listings reported: %d\n", result.ReportedTotal)
	}
	if result.ErrorMessage != "" {
		fmt.Fprintf(os.Stdout, "Error: %s\n", result.ErrorMessage)
	}

	if len(result.Snapshots) > 0 {
		fmt.Fprintf(os.Stdout, "\nTop %d listings:\n", len(result.Snapshots))
		for _, snap := range result.Snapshots {
			marker := "  "
			if snap.IsTarget {
				marker = "* "
			}
			fmt.Fprintf(os.Stdout, " %s%2d. %s\n", marker, snap.Rank, truncate(snap.Name, 60))
			line := fmt.Sprintf("      %s yen | %s", formatPrice(snap.Price), snap.ShopName)
			if snap.GenreName != "" {
				line += " | " + snap.GenreName
			}
			fmt.Fprintln(os.Stdout, line)
		}
	}
}

// printAdResult prints one sponsored check.
func printAdResult(kw models.Keyword, result models.AdResult) {
	fmt.Fprintf(os.Stdout, "Keyword: %q  Shop: %s\n", kw.Phrase, kw.ShopID)
	if result.Rank != nil {
		fmt.Fprintf(os.Stdout, "Ad rank: %d\n", *result.Rank)
	} else {
		fmt.Fprintf(os.Stdout, "Ad rank: not found in top %d placements\n", cfg.AdRankCeiling)
	}
	fmt.Fprintf(os.Stdout, "Placements seen: %d across %d pages\n", result.TotalAds, result.PagesChecked)
	if result.ErrorMessage != "" {
		fmt.Fprintf(os.Stdout, "Error: %s\n", result.ErrorMessage)
	}

	for _, ad := range result.Ads {
		marker := "  "
		if ad.IsTarget {
			marker = "* "
		}
		fmt.Fprintf(os.Stdout, " %s%2d. [PR] %s\n", marker, ad.Rank, truncate(ad.Name, 60))
		line := "      " + ad.ShopName
		if ad.Price != nil {
			line += fmt.Sprintf(" | %s yen", formatPrice(*ad.Price))
		}
		line += fmt.Sprintf(" | page %d", ad.PageNumber)
		fmt.Fprintln(os.Stdout, line)
	}
}

func printKeywordsTable(keywords []models.Keyword) {
	if len(keywords) == 0 {
		fmt.Fprintln(os.Stdout, "No keywords registered.")
		return
	}
	for _, kw := range keywords {
		state := " "
		if !kw.Active {
			state = "paused"
		}
		fmt.Fprintf(os.Stdout, " %3d. %-30s shop=%s %s\n", kw.ID, truncate(kw.Phrase, 30), kw.ShopID, state)
	}
}

func printHistoryTable(kw models.Keyword, results []models.RankResult) {
	fmt.Fprintf(os.Stdout, "History for %q (shop %s):\n", kw.Phrase, kw.ShopID)
	if len(results) == 0 {
		fmt.Fprintln(os.Stdout, "No checks recorded.")
		return
	}
	for _, result := range results {
		rank := "-"
		if result.Rank != nil {
			rank = fmt.Sprintf("%d", *result.Rank)
		}
		line := fmt.Sprintf(" %s  rank=%-4s total=%d", result.CheckedAt.Format("2006-01-02 15:04"), rank, result.ReportedTotal)
		if result.ErrorMessage != "" {
			line += "  error=" + truncate(result.ErrorMessage, 40)
		}
		fmt.Fprintln(os.Stdout, line)
	}
}

func printAdHistoryTable(kw models.Keyword, results []models.AdResult) {
	fmt.Fprintf(os.Stdout, "Ad history for %q (shop %s):\n", kw.Phrase, kw.ShopID)
	if len(results) == 0 {
		fmt.Fprintln(os.Stdout, "No checks recorded.")
		return
	}
	for _, result := range results {
		rank := "-"
		if result.Rank != nil {
			rank = fmt.Sprintf("%d", *result.Rank)
		}
		line := fmt.Sprintf(" %s  rank=%-4s ads=%d pages=%d", result.CheckedAt.Format("2006-01-02 15:04"), rank, result.TotalAds, result.PagesChecked)
		if result.ErrorMessage != "" {
			line += "  error=" + truncate(result.ErrorMessage, 40)
		}
		fmt.Fprintln(os.Stdout, line)
	}
}

// formatPrice formats a yen amount as "1,234,567".
func formatPrice(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return strings.Join(parts, ",")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
