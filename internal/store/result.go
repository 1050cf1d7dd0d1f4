package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lukman83/rakurank/internal/models"
)

// SaveRankResult persists one organic check with its snapshots in a single
// transaction and returns the stored result ids.
func (s *Store) SaveRankResult(ctx context.Context, result models.RankResult) (models.RankResult, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.RankResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO rank_results (keyword_id, rank, total_snapshots, reported_total, found, error_message, memo, checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.KeywordID, result.Rank, result.TotalSnapshots, result.ReportedTotal,
		boolToInt(result.Found), result.ErrorMessage, result.Memo, toMillis(result.CheckedAt),
	)
	if err != nil {
		return models.RankResult{}, fmt.Errorf("insert rank result: %w", err)
	}
	result.ID, err = res.LastInsertId()
	if err != nil {
		return models.RankResult{}, fmt.Errorf("rank result id: %w", err)
	}

	for i := range result.Snapshots {
		snap := &result.Snapshots[i]
		snap.ResultID = result.ID
		res, err := tx.ExecContext(ctx,
			`INSERT INTO listing_snapshots (result_id, rank, name, catchcopy, url, item_code,
			shop_name, shop_id, price, review_count, review_average, image_url, point_rate,
			genre_id, genre_name, tag_ids, tag_names, description, is_target, collected_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			snap.ResultID, snap.Rank, snap.Name, snap.Catchcopy, snap.URL, snap.ItemCode,
			snap.ShopName, snap.ShopID, snap.Price, snap.ReviewCount, snap.ReviewAverage,
			snap.ImageURL, snap.PointRate, snap.GenreID, snap.GenreName,
			encodeStrings(snap.TagIDs), encodeStrings(snap.TagNames), snap.Description,
			boolToInt(snap.IsTarget), toMillis(snap.CollectedAt),
		)
		if err != nil {
			return models.RankResult{}, fmt.Errorf("insert listing snapshot: %w", err)
		}
		if snap.ID, err = res.LastInsertId(); err != nil {
			return models.RankResult{}, fmt.Errorf("listing snapshot id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.RankResult{}, fmt.Errorf("commit rank result: %w", err)
	}
	return result, nil
}

// RankHistory returns the latest checks for a keyword, newest first, without
// snapshots.
func (s *Store) RankHistory(ctx context.Context, keywordID int64, limit int) ([]models.RankResult, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, keyword_id, rank, total_snapshots, reported_total, found, error_message, memo, checked_at
		FROM rank_results WHERE keyword_id = ?
		ORDER BY checked_at DESC LIMIT ?`, keywordID, limit)
	if err != nil {
		return nil, fmt.Errorf("rank history: %w", err)
	}
	defer rows.Close()

	var results []models.RankResult
	for rows.Next() {
		result, err := scanRankResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// GetRankResult loads one check with its snapshots.
func (s *Store) GetRankResult(ctx context.Context, id int64) (models.RankResult, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, keyword_id, rank, total_snapshots, reported_total, found, error_message, memo, checked_at
		FROM rank_results WHERE id = ?`, id)
	result, err := scanRankResult(row)
	if err != nil {
		return models.RankResult{}, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, result_id, rank, name, catchcopy, url, item_code, shop_name, shop_id,
		price, review_count, review_average, image_url, point_rate, genre_id, genre_name,
		tag_ids, tag_names, description, is_target, collected_at
		FROM listing_snapshots WHERE result_id = ? ORDER BY rank`, id)
	if err != nil {
		return models.RankResult{}, fmt.Errorf("load snapshots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var snap models.ListingSnapshot
		var tagIDs, tagNames string
		var isTarget int
		var collected int64
		if err := rows.Scan(&snap.ID, &snap.ResultID, &snap.Rank, &snap.Name, &snap.Catchcopy,
			&snap.URL, &snap.ItemCode, &snap.ShopName, &snap.ShopID, &snap.Price,
			&snap.ReviewCount, &snap.ReviewAverage, &snap.ImageURL, &snap.PointRate,
			&snap.GenreID, &snap.GenreName, &tagIDs, &tagNames, &snap.Description,
			&isTarget, &collected); err != nil {
			return models.RankResult{}, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.TagIDs = decodeStrings(tagIDs)
		snap.TagNames = decodeStrings(tagNames)
		snap.IsTarget = isTarget != 0
		snap.CollectedAt = fromMillis(collected)
		result.Snapshots = append(result.Snapshots, snap)
	}
	return result, rows.Err()
}

// SetResultMemo attaches a free-text note to a stored check.
func (s *Store) SetResultMemo(ctx context.Context, id int64, memo string) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE rank_results SET memo = ? WHERE id = ?`, memo, id)
	if err != nil {
		return fmt.Errorf("update memo: %w", err)
	}
	return requireRow(res)
}

func scanRankResult(row rowScanner) (models.RankResult, error) {
	var result models.RankResult
	var rank sql.NullInt64
	var found int
	var checked int64
	err := row.Scan(&result.ID, &result.KeywordID, &rank, &result.TotalSnapshots,
		&result.ReportedTotal, &found, &result.ErrorMessage, &result.Memo, &checked)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RankResult{}, ErrNotFound
	}
	if err != nil {
		return models.RankResult{}, fmt.Errorf("scan rank result: %w", err)
	}
	if rank.Valid {
		r := int(rank.Int64)
		result.Rank = &r
	}
	result.Found = found != 0
	result.CheckedAt = fromMillis(checked)
	return result, nil
}
