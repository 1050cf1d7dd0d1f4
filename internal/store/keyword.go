package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lukman83/rakurank/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

const keywordColumns = "id, phrase, shop_id, item_code, item_url, variant, active, created_at, updated_at"

// AddKeyword registers a phrase for tracking and returns it with its id. The
// phrase×shop×variant combination must be unique.
func (s *Store) AddKeyword(ctx context.Context, kw models.Keyword) (models.Keyword, error) {
	now := time.Now()
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO keywords (phrase, shop_id, item_code, item_url, variant, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		kw.Phrase, kw.ShopID, kw.ItemCode, kw.ItemURL, string(kw.Variant), boolToInt(kw.Active),
		toMillis(now), toMillis(now),
	)
	if err != nil {
		return models.Keyword{}, fmt.Errorf("insert keyword: %w", err)
	}
	kw.ID, err = res.LastInsertId()
	if err != nil {
		return models.Keyword{}, fmt.Errorf("keyword id: %w", err)
	}
	kw.CreatedAt = now
	kw.UpdatedAt = now
	return kw, nil
}

// GetKeyword fetches one keyword by id.
func (s *Store) GetKeyword(ctx context.Context, id int64) (models.Keyword, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+keywordColumns+` FROM keywords WHERE id = ?`, id)
	return scanKeyword(row)
}

// ListKeywords returns keywords for a variant, oldest first. activeOnly
// filters out paused ones.
func (s *Store) ListKeywords(ctx context.Context, variant models.Variant, activeOnly bool) ([]models.Keyword, error) {
	query := `SELECT ` + keywordColumns + ` FROM keywords WHERE variant = ?`
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY id`

	rows, err := s.DB.QueryContext(ctx, query, string(variant))
	if err != nil {
		return nil, fmt.Errorf("list keywords: %w", err)
	}
	defer rows.Close()

	var keywords []models.Keyword
	for rows.Next() {
		kw, err := scanKeyword(rows)
		if err != nil {
			return nil, err
		}
		keywords = append(keywords, kw)
	}
	return keywords, rows.Err()
}

// SetKeywordActive toggles tracking for a keyword.
func (s *Store) SetKeywordActive(ctx context.Context, id int64, active bool) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE keywords SET active = ?, updated_at = ? WHERE id = ?`,
		boolToInt(active), toMillis(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update keyword: %w", err)
	}
	return requireRow(res)
}

// DeleteKeyword removes a keyword; results and snapshots cascade.
func (s *Store) DeleteKeyword(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM keywords WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete keyword: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKeyword(row rowScanner) (models.Keyword, error) {
	var kw models.Keyword
	var variant string
	var active int
	var created, updated int64
	err := row.Scan(&kw.ID, &kw.Phrase, &kw.ShopID, &kw.ItemCode, &kw.ItemURL,
		&variant, &active, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Keyword{}, ErrNotFound
	}
	if err != nil {
		return models.Keyword{}, fmt.Errorf("scan keyword: %w", err)
	}
	kw.Variant = models.Variant(variant)
	kw.Active = active != 0
	kw.CreatedAt = fromMillis(created)
	kw.UpdatedAt = fromMillis(updated)
	return kw, nil
}
