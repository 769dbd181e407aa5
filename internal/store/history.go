package store

import (
	"context"
	"fmt"
	"time"

	"buyfly/internal/domain"
)

// AppendHistory appends one buy/fly decision to the log and evicts the
// oldest entries past the cap.
func (s *Store) AppendHistory(ctx context.Context, entry domain.HistoryEntry) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO history (id, label, classification, estimated_profit, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.ID, entry.Label, string(entry.Classification), entry.EstimatedProfit,
		entry.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM history WHERE seq NOT IN (
			SELECT seq FROM history ORDER BY seq DESC LIMIT ?
		)
	`, maxHistoryEntries)
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return tx.Commit()
}

// ListHistory returns retained entries, most recent first.
func (s *Store) ListHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, label, classification, estimated_profit, created_at
		FROM history ORDER BY seq DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Label, &e.Classification, &e.EstimatedProfit, &createdAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			e.CreatedAt = ts
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// ClearHistory empties the log.
func (s *Store) ClearHistory(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM history`)
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
