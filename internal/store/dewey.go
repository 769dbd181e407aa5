package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"buyfly/internal/domain"
)

// SaveDewey upserts an item into the catalog by id. An existing row is
// fully overwritten; fields are never merged.
func (s *Store) SaveDewey(ctx context.Context, item *domain.ProductAnalysis) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal dewey item: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO dewey (id, label, data, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`, item.ID, item.IdentifiedProduct, string(data))
	if err != nil {
		return fmt.Errorf("save dewey item: %w", err)
	}
	return nil
}

// BulkSaveDewey upserts a batch in one transaction, used when
// mirroring the remote catalog.
func (s *Store) BulkSaveDewey(ctx context.Context, items []*domain.ProductAnalysis) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("bulk save dewey: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshal dewey item: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO dewey (id, label, data, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(id) DO UPDATE SET
				label = excluded.label,
				data = excluded.data,
				updated_at = CURRENT_TIMESTAMP
		`, item.ID, item.IdentifiedProduct, string(data))
		if err != nil {
			return fmt.Errorf("bulk save dewey: %w", err)
		}
	}
	return tx.Commit()
}

// GetDewey returns one catalog item by id, or ErrNotFound.
func (s *Store) GetDewey(ctx context.Context, id string) (*domain.ProductAnalysis, error) {
	var data string
	err := s.db.GetContext(ctx, &data, `SELECT data FROM dewey WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dewey item: %w", err)
	}
	return decodeAnalysis(data)
}

// ListDewey returns the catalog, most recently updated first.
func (s *Store) ListDewey(ctx context.Context) ([]*domain.ProductAnalysis, error) {
	var rows []string
	err := s.db.SelectContext(ctx, &rows, `SELECT data FROM dewey ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list dewey items: %w", err)
	}
	return decodeAnalyses(rows)
}

// SearchDewey returns catalog items whose identified-product label
// starts with prefix, case-insensitively.
func (s *Store) SearchDewey(ctx context.Context, prefix string) ([]*domain.ProductAnalysis, error) {
	var rows []string
	pattern := escapeLike(strings.ToLower(prefix)) + "%"
	err := s.db.SelectContext(ctx, &rows, `
		SELECT data FROM dewey WHERE LOWER(label) LIKE ? ESCAPE '\' ORDER BY LOWER(label)
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("search dewey items: %w", err)
	}
	return decodeAnalyses(rows)
}

// escapeLike neutralizes LIKE metacharacters so the prefix matches
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// DeleteDewey removes one catalog item.
func (s *Store) DeleteDewey(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM dewey WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete dewey item: %w", err)
	}
	return nil
}

// ClearDewey drops the whole catalog.
func (s *Store) ClearDewey(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM dewey`)
	if err != nil {
		return fmt.Errorf("clear dewey: %w", err)
	}
	return nil
}
