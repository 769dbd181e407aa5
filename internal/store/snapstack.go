package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"buyfly/internal/domain"
)

// PutPending inserts or fully overwrites a pending item.
func (s *Store) PutPending(ctx context.Context, item *domain.ProductAnalysis) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal pending item: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snap_stack (id, label, data) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET label = excluded.label, data = excluded.data
	`, item.ID, item.IdentifiedProduct, string(data))
	if err != nil {
		return fmt.Errorf("put pending item: %w", err)
	}
	return nil
}

// GetPending returns the pending item with the given id, or ErrNotFound.
func (s *Store) GetPending(ctx context.Context, id string) (*domain.ProductAnalysis, error) {
	var data string
	err := s.db.GetContext(ctx, &data, `SELECT data FROM snap_stack WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pending item: %w", err)
	}
	return decodeAnalysis(data)
}

// ListPending returns all pending items in insertion order.
func (s *Store) ListPending(ctx context.Context) ([]*domain.ProductAnalysis, error) {
	var rows []string
	err := s.db.SelectContext(ctx, &rows, `SELECT data FROM snap_stack ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list pending items: %w", err)
	}
	return decodeAnalyses(rows)
}

// DeletePending removes one pending item. Deleting a missing id is not
// an error: a late result for a discarded item is simply ignored.
func (s *Store) DeletePending(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM snap_stack WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete pending item: %w", err)
	}
	return nil
}

// ClearPending drops the whole pending queue.
func (s *Store) ClearPending(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM snap_stack`)
	if err != nil {
		return fmt.Errorf("clear pending items: %w", err)
	}
	return nil
}

// AppendPhoto appends a photo reference to a pending item. Appending
// past the cap fails with ErrPhotoLimitExceeded and leaves the item
// unchanged. Appends within one session are strictly ordered.
func (s *Store) AppendPhoto(ctx context.Context, id, photoRef string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append photo: %w", err)
	}
	defer tx.Rollback()

	var data string
	err = tx.GetContext(ctx, &data, `SELECT data FROM snap_stack WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("append photo: %w", err)
	}

	item, err := decodeAnalysis(data)
	if err != nil {
		return err
	}
	if len(item.Photos) >= domain.MaxPhotos {
		return ErrPhotoLimitExceeded
	}
	item.Photos = append(item.Photos, photoRef)

	updated, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("append photo: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE snap_stack SET data = ? WHERE id = ?`, string(updated), id); err != nil {
		return fmt.Errorf("append photo: %w", err)
	}
	return tx.Commit()
}

func decodeAnalysis(data string) (*domain.ProductAnalysis, error) {
	var item domain.ProductAnalysis
	if err := json.Unmarshal([]byte(data), &item); err != nil {
		return nil, fmt.Errorf("decode stored item: %w", err)
	}
	return &item, nil
}

func decodeAnalyses(rows []string) ([]*domain.ProductAnalysis, error) {
	items := make([]*domain.ProductAnalysis, 0, len(rows))
	for _, data := range rows {
		item, err := decodeAnalysis(data)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
