package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete results and logs past their retention window",
	RunE:  runCleanup,
}

func init() {
	cleanupCmd.Flags().Int("result-days", 0, "Override result retention in days")
	cleanupCmd.Flags().Int("log-days", 0, "Override log retention in days")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	resultDays := cfg.ResultRetentionDays
	if v, _ := cmd.Flags().GetInt("result-days"); v > 0 {
		resultDays = v
	}
	logDays := cfg.LogRetentionDays
	if v, _ := cmd.Flags().GetInt("log-days"); v > 0 {
		logDays = v
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	now := time.Now()
	counts, err := st.Cleanup(context.Background(),
		now.AddDate(0, 0, -resultDays),
		now.AddDate(0, 0, -logDays))
	if err != nil {
		return err
	}

	fmt.Printf("Removed %d rank results, %d ad results (older than %d days)\n",
		counts.RankResults, counts.AdResults, resultDays)
	fmt.Printf("Removed %d execution logs, %d bulk logs (older than %d days)\n",
		counts.ExecutionLogs, counts.BulkLogs, logDays)
	return nil
}
