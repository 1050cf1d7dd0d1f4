package store

import (
	"context"
	"fmt"

	"github.com/lukman83/rakurank/internal/models"
)

// InsertExecutionLog records the start of a run and returns its id so the
// outcome can be filled in afterwards.
func (s *Store) InsertExecutionLog(ctx context.Context, entry models.ExecutionLog) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO execution_logs (variant, keyword, duration_ms, pages_checked, items_found, success, error_details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(entry.Variant), entry.Keyword, entry.DurationMS, entry.PagesChecked,
		entry.ItemsFound, boolToInt(entry.Success), entry.ErrorDetails, toMillis(entry.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert execution log: %w", err)
	}
	return res.LastInsertId()
}

// UpdateExecutionLog fills in the outcome of a previously inserted run.
func (s *Store) UpdateExecutionLog(ctx context.Context, id int64, entry models.ExecutionLog) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE execution_logs SET duration_ms = ?, pages_checked = ?, items_found = ?, success = ?, error_details = ?
		WHERE id = ?`,
		entry.DurationMS, entry.PagesChecked, entry.ItemsFound,
		boolToInt(entry.Success), entry.ErrorDetails, id)
	if err != nil {
		return fmt.Errorf("update execution log: %w", err)
	}
	return requireRow(res)
}

// ExecutionHistory returns recent runs, newest first.
func (s *Store) ExecutionHistory(ctx context.Context, limit int) ([]models.ExecutionLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, variant, keyword, duration_ms, pages_checked, items_found, success, error_details, created_at
		FROM execution_logs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("execution history: %w", err)
	}
	defer rows.Close()

	var entries []models.ExecutionLog
	for rows.Next() {
		var entry models.ExecutionLog
		var variant string
		var success int
		var created int64
		if err := rows.Scan(&entry.ID, &variant, &entry.Keyword, &entry.DurationMS,
			&entry.PagesChecked, &entry.ItemsFound, &success, &entry.ErrorDetails, &created); err != nil {
			return nil, fmt.Errorf("scan execution log: %w", err)
		}
		entry.Variant = models.Variant(variant)
		entry.Success = success != 0
		entry.CreatedAt = fromMillis(created)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// InsertBulkLog records one bulk run summary.
func (s *Store) InsertBulkLog(ctx context.Context, entry models.BulkLog) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO bulk_logs (variant, keywords, succeeded, failed, duration_ms, completed, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(entry.Variant), entry.Keywords, entry.Succeeded, entry.Failed,
		entry.DurationMS, boolToInt(entry.Completed), toMillis(entry.ExecutedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert bulk log: %w", err)
	}
	return res.LastInsertId()
}
