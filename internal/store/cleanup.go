package store

import (
	"context"
	"fmt"
	"time"
)

// CleanupCounts reports what one retention pass removed. Snapshot rows go
// with their results via cascade and are not counted separately.
type CleanupCounts struct {
	RankResults   int64
	AdResults     int64
	ExecutionLogs int64
	BulkLogs      int64
}

// Cleanup deletes rank results older than resultCutoff and logs older than
// logCutoff.
func (s *Store) Cleanup(ctx context.Context, resultCutoff, logCutoff time.Time) (CleanupCounts, error) {
	var counts CleanupCounts
	var err error

	if counts.RankResults, err = s.deleteBefore(ctx, "rank_results", "checked_at", resultCutoff); err != nil {
		return counts, err
	}
	if counts.AdResults, err = s.deleteBefore(ctx, "ad_results", "checked_at", resultCutoff); err != nil {
		return counts, err
	}
	if counts.ExecutionLogs, err = s.deleteBefore(ctx, "execution_logs", "created_at", logCutoff); err != nil {
		return counts, err
	}
	if counts.BulkLogs, err = s.deleteBefore(ctx, "bulk_logs", "executed_at", logCutoff); err != nil {
		return counts, err
	}
	return counts, nil
}

func (s *Store) deleteBefore(ctx context.Context, table, column string, cutoff time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE %s < ?`, table, column), toMillis(cutoff))
	if err != nil {
		return 0, fmt.Errorf("cleanup %s: %w", table, err)
	}
	return res.RowsAffected()
}
