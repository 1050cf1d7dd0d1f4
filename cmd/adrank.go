package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lukman83/rakurank/internal/models"
	"github.com/lukman83/rakurank/internal/ui"
)

var adrankCmd = &cobra.Command{
	Use:   "adrank [keyword-id]",
	Short: "Check the sponsored (RPP) placement rank for a tracked keyword",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAdRank,
}

func init() {
	adrankCmd.Flags().String("phrase", "", "Ad-hoc phrase (registers the keyword if new)")
	adrankCmd.Flags().String("shop", "", "Target shop id for an ad-hoc phrase")
	adrankCmd.Flags().String("item-code", "", "Target listing item code for an ad-hoc phrase")
	adrankCmd.Flags().String("format", "table", "Output format: table, json")
	rootCmd.AddCommand(adrankCmd)
}

func runAdRank(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	kw, err := resolveCheckTarget(cmd, args, st, models.VariantRPP)
	if err != nil {
		return err
	}

	run := buildRunner(st)
	spin := ui.NewSpinner()
	spin.Start(fmt.Sprintf("Checking ad rank for %q...", kw.Phrase))
	ctx := ui.WithProgress(context.Background(), spin.Update)
	result, err := run.CheckSponsored(ctx, kw)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("ad rank check failed: %w", err)
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result)
	default:
		printAdResult(kw, result)
	}
	return nil
}
