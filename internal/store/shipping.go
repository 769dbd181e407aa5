package store

import (
	"context"
	"encoding/json"
	"fmt"

	"buyfly/internal/domain"
)

// ReplaceShipping replaces the local shipping mirror with the remote
// active set.
func (s *Store) ReplaceShipping(ctx context.Context, items []domain.ShippingItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace shipping: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM shipping`); err != nil {
		return fmt.Errorf("replace shipping: %w", err)
	}
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshal shipping item: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO shipping (id, data) VALUES (?, ?)`, item.ID, string(data)); err != nil {
			return fmt.Errorf("replace shipping: %w", err)
		}
	}
	return tx.Commit()
}

// ListShipping returns the mirrored active set.
func (s *Store) ListShipping(ctx context.Context) ([]domain.ShippingItem, error) {
	var rows []string
	if err := s.db.SelectContext(ctx, &rows, `SELECT data FROM shipping ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list shipping: %w", err)
	}

	items := make([]domain.ShippingItem, 0, len(rows))
	for _, data := range rows {
		var item domain.ShippingItem
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			return nil, fmt.Errorf("decode shipping item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// RemoveShipped drops an item from the mirror once it is marked
// shipped remotely.
func (s *Store) RemoveShipped(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM shipping WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove shipped item: %w", err)
	}
	return nil
}
