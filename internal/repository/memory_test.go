package repository

import (
	"context"
	"testing"

	"buyfly/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDeweyUpsertReplaces(t *testing.T) {
	repo := NewMemoryDeweyRepository()
	ctx := context.Background()

	first := &domain.ProductAnalysis{ID: "a1", IdentifiedProduct: "Lamp", Brand: "Acme"}
	require.NoError(t, repo.Upsert(ctx, first))

	second := &domain.ProductAnalysis{ID: "a1", IdentifiedProduct: "Desk Lamp"}
	require.NoError(t, repo.Upsert(ctx, second))

	got, err := repo.FindByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", got.IdentifiedProduct)
	assert.Empty(t, got.Brand, "second payload entirely replaces the first")

	items, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrDeweyItemNotFound)
}

func TestMemoryDeweyListOrdersByMostRecentUpdate(t *testing.T) {
	repo := NewMemoryDeweyRepository()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &domain.ProductAnalysis{ID: "a1", IdentifiedProduct: "Lamp"}))
	require.NoError(t, repo.Upsert(ctx, &domain.ProductAnalysis{ID: "a2", IdentifiedProduct: "Chair"}))
	require.NoError(t, repo.Upsert(ctx, &domain.ProductAnalysis{ID: "a3", IdentifiedProduct: "Rug"}))

	// Touching a1 again moves it to the front, like updated_at DESC.
	require.NoError(t, repo.Upsert(ctx, &domain.ProductAnalysis{ID: "a1", IdentifiedProduct: "Floor Lamp"}))

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "a1", items[0].ID)
	assert.Equal(t, "a3", items[1].ID)
	assert.Equal(t, "a2", items[2].ID)
}

func TestMemoryShippingRemove(t *testing.T) {
	repo := NewMemoryShippingRepository(
		domain.ShippingItem{ID: "s1", Platform: domain.PlatformEbay, ItemName: "Boots"},
		domain.ShippingItem{ID: "s2", Platform: domain.PlatformMercari, ItemName: "Hat"},
	)
	ctx := context.Background()

	require.NoError(t, repo.Remove(ctx, "s1", domain.PlatformEbay))

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "s2", items[0].ID)

	// Unknown id, and known id on the wrong platform, both miss.
	assert.ErrorIs(t, repo.Remove(ctx, "s1", domain.PlatformEbay), ErrShippingItemNotFound)
	assert.ErrorIs(t, repo.Remove(ctx, "s2", domain.PlatformEbay), ErrShippingItemNotFound)
}
