package repository

import (
	"context"
	"errors"

	"buyfly/internal/domain"
)

var (
	ErrShippingItemNotFound = errors.New("shipping item not found")
	ErrDeweyItemNotFound    = errors.New("dewey item not found")
)

// DeweyRepository stores the finalized item catalog. Upsert is
// last-writer-wins by id: a matching row is fully overwritten.
type DeweyRepository interface {
	Upsert(ctx context.Context, item *domain.ProductAnalysis) error
	FindByID(ctx context.Context, id string) (*domain.ProductAnalysis, error)
	List(ctx context.Context) ([]*domain.ProductAnalysis, error)
}

// ShippingRepository stores sales awaiting fulfillment. Remove drops
// an item once it has shipped and reports ErrShippingItemNotFound for
// unknown ids.
type ShippingRepository interface {
	List(ctx context.Context) ([]domain.ShippingItem, error)
	Remove(ctx context.Context, id string, platform domain.Platform) error
}

// SalesRepository stores discoverable nearby sale locations.
type SalesRepository interface {
	List(ctx context.Context) ([]domain.NearbySale, error)
}
