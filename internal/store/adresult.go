package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lukman83/rakurank/internal/models"
)

// SaveAdResult persists one sponsored check with its placements in a single
// transaction.
func (s *Store) SaveAdResult(ctx context.Context, result models.AdResult) (models.AdResult, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.AdResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO ad_results (keyword_id, rank, total_ads, pages_checked, found, error_message, memo, checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.KeywordID, result.Rank, result.TotalAds, result.PagesChecked,
		boolToInt(result.Found), result.ErrorMessage, result.Memo, toMillis(result.CheckedAt),
	)
	if err != nil {
		return models.AdResult{}, fmt.Errorf("insert ad result: %w", err)
	}
	result.ID, err = res.LastInsertId()
	if err != nil {
		return models.AdResult{}, fmt.Errorf("ad result id: %w", err)
	}

	for i := range result.Ads {
		ad := &result.Ads[i]
		ad.ResultID = result.ID
		res, err := tx.ExecContext(ctx,
			`INSERT INTO ad_snapshots (result_id, rank, name, catchcopy, url, item_code,
			shop_name, shop_id, price, image_url, bid_estimate, page_number, position_on_page,
			is_target, collected_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ad.ResultID, ad.Rank, ad.Name, ad.Catchcopy, ad.URL, ad.ItemCode,
			ad.ShopName, ad.ShopID, ad.Price, ad.ImageURL, ad.BidEstimate,
			ad.PageNumber, ad.PositionOnPage, boolToInt(ad.IsTarget), toMillis(ad.CollectedAt),
		)
		if err != nil {
			return models.AdResult{}, fmt.Errorf("insert ad snapshot: %w", err)
		}
		if ad.ID, err = res.LastInsertId(); err != nil {
			return models.AdResult{}, fmt.Errorf("ad snapshot id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.AdResult{}, fmt.Errorf("commit ad result: %w", err)
	}
	return result, nil
}

// AdHistory returns the latest sponsored checks for a keyword, newest first,
// without placements.
func (s *Store) AdHistory(ctx context.Context, keywordID int64, limit int) ([]models.AdResult, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, keyword_id, rank, total_ads, pages_checked, found, error_message, memo, checked_at
		FROM ad_results WHERE keyword_id = ?
		ORDER BY checked_at DESC LIMIT ?`, keywordID, limit)
	if err != nil {
		return nil, fmt.Errorf("ad history: %w", err)
	}
	defer rows.Close()

	var results []models.AdResult
	for rows.Next() {
		result, err := scanAdResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// GetAdResult loads one sponsored check with its placements.
func (s *Store) GetAdResult(ctx context.Context, id int64) (models.AdResult, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, keyword_id, rank, total_ads, pages_checked, found, error_message, memo, checked_at
		FROM ad_results WHERE id = ?`, id)
	result, err := scanAdResult(row)
	if err != nil {
		return models.AdResult{}, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, result_id, rank, name, catchcopy, url, item_code, shop_name, shop_id,
		price, image_url, bid_estimate, page_number, position_on_page, is_target, collected_at
		FROM ad_snapshots WHERE result_id = ? ORDER BY rank`, id)
	if err != nil {
		return models.AdResult{}, fmt.Errorf("load ad snapshots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ad models.AdSnapshot
		var price, bid sql.NullInt64
		var isTarget int
		var collected int64
		if err := rows.Scan(&ad.ID, &ad.ResultID, &ad.Rank, &ad.Name, &ad.Catchcopy,
			&ad.URL, &ad.ItemCode, &ad.ShopName, &ad.ShopID, &price, &ad.ImageURL,
			&bid, &ad.PageNumber, &ad.PositionOnPage, &isTarget, &collected); err != nil {
			return models.AdResult{}, fmt.Errorf("scan ad snapshot: %w", err)
		}
		if price.Valid {
			p := int(price.Int64)
			ad.Price = &p
		}
		if bid.Valid {
			b := int(bid.Int64)
			ad.BidEstimate = &b
		}
		ad.IsTarget = isTarget != 0
		ad.CollectedAt = fromMillis(collected)
		result.Ads = append(result.Ads, ad)
	}
	return result, rows.Err()
}

// SetAdResultMemo attaches a free-text note to a stored sponsored check.
func (s *Store) SetAdResultMemo(ctx context.Context, id int64, memo string) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE ad_results SET memo = ? WHERE id = ?`, memo, id)
	if err != nil {
		return fmt.Errorf("update ad memo: %w", err)
	}
	return requireRow(res)
}

func scanAdResult(row rowScanner) (models.AdResult, error) {
	var result models.AdResult
	var rank sql.NullInt64
	var found int
	var checked int64
	err := row.Scan(&result.ID, &result.KeywordID, &rank, &result.TotalAds,
		&result.PagesChecked, &found, &result.ErrorMessage, &result.Memo, &checked)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AdResult{}, ErrNotFound
	}
	if err != nil {
		return models.AdResult{}, fmt.Errorf("scan ad result: %w", err)
	}
	if rank.Valid {
		r := int(rank.Int64)
		result.Rank = &r
	}
	result.Found = found != 0
	result.CheckedAt = fromMillis(checked)
	return result, nil
}
