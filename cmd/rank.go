package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lukman83/rakurank/internal/models"
	"github.com/lukman83/rakurank/internal/store"
	"github.com/lukman83/rakurank/internal/ui"
)

var rankCmd = &cobra.Command{
	Use:   "rank [keyword-id]",
	Short: "Check the organic search rank for a tracked keyword",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRank,
}

func init() {
	rankCmd.Flags().String("phrase", "", "Ad-hoc phrase (registers the keyword if new)")
	rankCmd.Flags().String("shop", "", "Target shop id for an ad-hoc phrase")
	rankCmd.Flags().String("item-code", "", "Target listing item code for an ad-hoc phrase")
	rankCmd.Flags().String("format", "table", "Output format: table, json")
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	if err := requireAppID(); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	kw, err := resolveCheckTarget(cmd, args, st, models.VariantOrganic)
	if err != nil {
		return err
	}

	run := buildRunner(st)
	spin := ui.NewSpinner()
	spin.Start(fmt.Sprintf("Checking rank for %q...", kw.Phrase))
	ctx := ui.WithProgress(context.Background(), spin.Update)
	result, err := run.CheckOrganic(ctx, kw)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("rank check failed: %w", err)
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result)
	default:
		printRankResult(kw, result)
	}
	return nil
}

// resolveCheckTarget loads the keyword by positional id, or upserts an ad-hoc
// phrase given via flags.
func resolveCheckTarget(cmd *cobra.Command, args []string, st *store.Store, variant models.Variant) (models.Keyword, error) {
	if len(args) == 1 {
		return loadKeywordArg(st, args[0])
	}

	phrase, _ := cmd.Flags().GetString("phrase")
	shop, _ := cmd.Flags().GetString("shop")
	if phrase == "" || shop == "" {
		return models.Keyword{}, fmt.Errorf("pass a keyword id, or both --phrase and --shop")
	}
	itemCode, _ := cmd.Flags().GetString("item-code")

	kw, err := st.AddKeyword(context.Background(), models.Keyword{
		Phrase:   phrase,
		ShopID:   shop,
		ItemCode: itemCode,
		Variant:  variant,
		Active:   true,
	})
	if err == nil {
		return kw, nil
	}

	// Already registered: reuse the stored row.
	existing, listErr := st.ListKeywords(context.Background(), variant, false)
	if listErr != nil {
		return models.Keyword{}, err
	}
	for _, candidate := range existing {
		if candidate.Phrase == phrase && candidate.ShopID == shop {
			return candidate, nil
		}
	}
	return models.Keyword{}, err
}
