package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/lukman83/rakurank/internal/models"
)

var historyCmd = &cobra.Command{
	Use:   "history [keyword-id]",
	Short: "Show recent checks for a keyword",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 30, "Entries to show")
	historyCmd.Flags().String("format", "table", "Output format: table, json")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	kw, err := loadKeywordArg(st, args[0])
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	ctx := context.Background()
	if kw.Variant == models.VariantRPP {
		results, err := st.AdHistory(ctx, kw.ID, limit)
		if err != nil {
			return err
		}
		if format == "json" {
			return printJSON(results)
		}
		printAdHistoryTable(kw, results)
		return nil
	}

	results, err := st.RankHistory(ctx, kw.ID, limit)
	if err != nil {
		return err
	}
	if format == "json" {
		return printJSON(results)
	}
	printHistoryTable(kw, results)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
