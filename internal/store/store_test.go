package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"buyfly/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "buyfly.db")
	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func testAnalysis(label string) *domain.ProductAnalysis {
	return &domain.ProductAnalysis{
		ID:                uuid.New().String(),
		IdentifiedProduct: label,
		Confidence:        0.7,
		Recommendation:    domain.Neutral,
		EstimatedProfit:   10,
		ComparablePrice:   40,
		ProfitMargin:      0.25,
		Quantity:          1,
		PurchasePrice:     5,
		CreatedAt:         time.Now().UTC(),
	}
}

func TestAppendPhotoCap(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	item := testAnalysis("Vintage Camera")
	require.NoError(t, s.PutPending(ctx, item))

	for i := 0; i < domain.MaxPhotos; i++ {
		require.NoError(t, s.AppendPhoto(ctx, item.ID, fmt.Sprintf("photo-%d", i)))
	}

	err := s.AppendPhoto(ctx, item.ID, "photo-26")
	assert.ErrorIs(t, err, ErrPhotoLimitExceeded)

	got, err := s.GetPending(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, got.Photos, domain.MaxPhotos, "rejected append must leave the item unchanged")
	assert.Equal(t, "photo-0", got.Photos[0], "append order is preserved")
	assert.Equal(t, fmt.Sprintf("photo-%d", domain.MaxPhotos-1), got.Photos[domain.MaxPhotos-1])
}

func TestAppendPhotoMissingItem(t *testing.T) {
	s, _ := openTestStore(t)
	err := s.AppendPhoto(context.Background(), "nope", "photo")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryEviction(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < maxHistoryEntries+5; i++ {
		require.NoError(t, s.AppendHistory(ctx, domain.HistoryEntry{
			ID:             fmt.Sprintf("entry-%03d", i),
			Label:          "item",
			Classification: domain.ClassBuy,
			CreatedAt:      time.Now().UTC(),
		}))
	}

	entries, err := s.ListHistory(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, maxHistoryEntries, "log never exceeds the cap")

	// Most recent first; the oldest five were evicted.
	assert.Equal(t, fmt.Sprintf("entry-%03d", maxHistoryEntries+4), entries[0].ID)
	assert.Equal(t, "entry-005", entries[len(entries)-1].ID)
}

func TestDeweyUpsertFullyReplaces(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	item := testAnalysis("Leather Jacket")
	item.Brand = "Acme"
	item.Keywords = []string{"leather", "jacket"}
	require.NoError(t, s.SaveDewey(ctx, item))

	replacement := testAnalysis("Denim Jacket")
	replacement.ID = item.ID
	// No brand, no keywords: the old values must not survive.
	require.NoError(t, s.SaveDewey(ctx, replacement))

	got, err := s.GetDewey(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Denim Jacket", got.IdentifiedProduct)
	assert.Empty(t, got.Brand, "upsert replaces, never merges")
	assert.Empty(t, got.Keywords)

	items, err := s.ListDewey(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestDeweyPrefixSearchIsCaseInsensitive(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	for _, label := range []string{"Nike Air Max", "nike dunk low", "Adidas Samba"} {
		require.NoError(t, s.SaveDewey(ctx, testAnalysis(label)))
	}

	hits, err := s.SearchDewey(ctx, "NIKE")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "Nike Air Max", hits[0].IdentifiedProduct)
	assert.Equal(t, "nike dunk low", hits[1].IdentifiedProduct)

	hits, err = s.SearchDewey(ctx, "air")
	require.NoError(t, err)
	assert.Empty(t, hits, "starts-with, not substring")
}

func TestDeweyPrefixSearchTreatsWildcardsLiterally(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	for _, label := range []string{"100% Wool Scarf", "100 Piece Puzzle", "A_B Cable", "AxB Poster"} {
		require.NoError(t, s.SaveDewey(ctx, testAnalysis(label)))
	}

	hits, err := s.SearchDewey(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, hits, 1, "%% is a literal character, not match-anything")
	assert.Equal(t, "100% Wool Scarf", hits[0].IdentifiedProduct)

	hits, err = s.SearchDewey(ctx, "A_B")
	require.NoError(t, err)
	require.Len(t, hits, 1, "_ is a literal character, not match-one")
	assert.Equal(t, "A_B Cable", hits[0].IdentifiedProduct)
}

func TestShippingMirror(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	items := []domain.ShippingItem{
		{ID: "s1", Platform: domain.PlatformEbay, ItemName: "Boots", SalePrice: 45},
		{ID: "s2", Platform: domain.PlatformPoshmark, ItemName: "Bag", SalePrice: 30},
	}
	require.NoError(t, s.ReplaceShipping(ctx, items))

	got, err := s.ListShipping(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, s.RemoveShipped(ctx, "s1"))
	got, err = s.ListShipping(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s2", got[0].ID)
}

func TestSettingsRoundTrip(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	value, err := s.GetSetting(ctx, SettingTheme)
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, s.SetSetting(ctx, SettingTheme, "dark"))
	require.NoError(t, s.SetSetting(ctx, SettingTheme, "light"))

	value, err = s.GetSetting(ctx, SettingTheme)
	require.NoError(t, err)
	assert.Equal(t, "light", value)
}

func TestDurabilityAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buyfly.db")
	ctx := context.Background()

	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)

	item := testAnalysis("Record Player")
	require.NoError(t, s.SaveDewey(ctx, item))
	require.NoError(t, s.PutPending(ctx, testAnalysis("Pending Lamp")))
	require.NoError(t, s.SetSetting(ctx, SettingAPIKey, "key-123"))
	require.NoError(t, s.Close())

	reopened, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetDewey(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Record Player", got.IdentifiedProduct)

	pending, err := reopened.ListPending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	key, err := reopened.GetSetting(ctx, SettingAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "key-123", key)
}

func TestGetMissing(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	_, err := s.GetDewey(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetPending(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing pending item is a no-op, not an error.
	assert.NoError(t, s.DeletePending(ctx, "missing"))
}
