package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lukman83/rakurank/internal/models"
)

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Check every active keyword of a variant",
	RunE:  runBulk,
}

func init() {
	bulkCmd.Flags().String("variant", "organic", "Tracking variant: organic, rpp")
	bulkCmd.Flags().Int("concurrency", 0, "Parallel checks (default from config)")
	rootCmd.AddCommand(bulkCmd)
}

func runBulk(cmd *cobra.Command, args []string) error {
	variant, err := parseVariant(cmd)
	if err != nil {
		return err
	}
	if variant == models.VariantOrganic {
		if err := requireAppID(); err != nil {
			return err
		}
	}

	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency <= 0 {
		concurrency = cfg.MaxConcurrent
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	run := buildRunner(st)
	summary, err := run.RunAll(context.Background(), variant, concurrency)
	if err != nil {
		return err
	}

	fmt.Printf("Checked %d keywords: %d ok, %d failed (%.1fs)\n",
		summary.Keywords, summary.Succeeded, summary.Failed,
		float64(summary.DurationMS)/1000)
	return nil
}
