package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"buyfly/internal/domain"
)

// postgresDeweyRepository persists the catalog as JSONB rows keyed by
// id, with the label denormalized for search.
type postgresDeweyRepository struct {
	db *sql.DB
}

func NewPostgresDeweyRepository(db *sql.DB) DeweyRepository {
	return &postgresDeweyRepository{db: db}
}

func (r *postgresDeweyRepository) Upsert(ctx context.Context, item *domain.ProductAnalysis) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal dewey item: %w", err)
	}

	query := `
		INSERT INTO dewey_items (id, label, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET
			label = EXCLUDED.label,
			data = EXCLUDED.data,
			updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, item.ID, item.IdentifiedProduct, data); err != nil {
		return fmt.Errorf("failed to upsert dewey item: %w", err)
	}
	return nil
}

func (r *postgresDeweyRepository) FindByID(ctx context.Context, id string) (*domain.ProductAnalysis, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM dewey_items WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeweyItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find dewey item: %w", err)
	}

	var item domain.ProductAnalysis
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("decode dewey item: %w", err)
	}
	return &item, nil
}

func (r *postgresDeweyRepository) List(ctx context.Context) ([]*domain.ProductAnalysis, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT data FROM dewey_items ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list dewey items: %w", err)
	}
	defer rows.Close()

	items := []*domain.ProductAnalysis{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan dewey item: %w", err)
		}
		var item domain.ProductAnalysis
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, fmt.Errorf("decode dewey item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dewey items: %w", err)
	}
	return items, nil
}

type postgresShippingRepository struct {
	db *sql.DB
}

func NewPostgresShippingRepository(db *sql.DB) ShippingRepository {
	return &postgresShippingRepository{db: db}
}

func (r *postgresShippingRepository) List(ctx context.Context) ([]domain.ShippingItem, error) {
	query := `
		SELECT id, platform, item_name, sale_price, buyer_address, ship_by
		FROM shipping_items
		ORDER BY ship_by, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipping items: %w", err)
	}
	defer rows.Close()

	items := []domain.ShippingItem{}
	for rows.Next() {
		var item domain.ShippingItem
		if err := rows.Scan(&item.ID, &item.Platform, &item.ItemName, &item.SalePrice, &item.BuyerAddress, &item.ShipBy); err != nil {
			return nil, fmt.Errorf("failed to scan shipping item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shipping items: %w", err)
	}
	return items, nil
}

func (r *postgresShippingRepository) Remove(ctx context.Context, id string, platform domain.Platform) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM shipping_items WHERE id = $1 AND platform = $2`, id, string(platform))
	if err != nil {
		return fmt.Errorf("failed to remove shipping item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrShippingItemNotFound
	}
	return nil
}

type postgresSalesRepository struct {
	db *sql.DB
}

func NewPostgresSalesRepository(db *sql.DB) SalesRepository {
	return &postgresSalesRepository{db: db}
}

func (r *postgresSalesRepository) List(ctx context.Context) ([]domain.NearbySale, error) {
	query := `
		SELECT id, type, name, address, COALESCE(phone, ''), COALESCE(hours, ''), lat, lng
		FROM nearby_sales
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list nearby sales: %w", err)
	}
	defer rows.Close()

	sales := []domain.NearbySale{}
	for rows.Next() {
		var s domain.NearbySale
		if err := rows.Scan(&s.ID, &s.Type, &s.Name, &s.Address, &s.Phone, &s.Hours, &s.Lat, &s.Lng); err != nil {
			return nil, fmt.Errorf("failed to scan nearby sale: %w", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nearby sales: %w", err)
	}
	return sales, nil
}
