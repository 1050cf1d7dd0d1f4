package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lukman83/rakurank/internal/export"
	"github.com/lukman83/rakurank/internal/models"
)

var exportCmd = &cobra.Command{
	Use:   "export [keyword-id]",
	Short: "Export stored checks as CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().String("out", "", "Output file (default stdout)")
	exportCmd.Flags().Int64("result", 0, "Export snapshots of one result id instead of the history")
	exportCmd.Flags().Int("limit", 100, "History entries to export")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	kw, err := loadKeywordArg(st, args[0])
	if err != nil {
		return err
	}

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("out"); path != "" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	ctx := context.Background()
	resultID, _ := cmd.Flags().GetInt64("result")
	limit, _ := cmd.Flags().GetInt("limit")

	if resultID != 0 {
		if kw.Variant == models.VariantRPP {
			result, err := st.GetAdResult(ctx, resultID)
			if err != nil {
				return err
			}
			return export.WriteAds(out, result.Ads)
		}
		result, err := st.GetRankResult(ctx, resultID)
		if err != nil {
			return err
		}
		return export.WriteSnapshots(out, kw.Phrase, result.Snapshots)
	}

	if kw.Variant == models.VariantRPP {
		return fmt.Errorf("history export is organic-only; use --result for sponsored checks")
	}
	results, err := st.RankHistory(ctx, kw.ID, limit)
	if err != nil {
		return err
	}
	return export.WriteHistory(out, results)
}
