package store

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/pos-terminal/internal/cart"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	logger := log.New(io.Discard, "", 0)

	s, err := Open(filepath.Join(t.TempDir(), "pos.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPreferences(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Unset key reads as empty.
	v, err := s.Preference(ctx, PrefWarehouse)
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, s.SetPreference(ctx, PrefWarehouse, "wh-1"))
	require.NoError(t, s.SetPreference(ctx, PrefWarehouse, "wh-2")) // upsert

	v, err = s.Preference(ctx, PrefWarehouse)
	require.NoError(t, err)
	assert.Equal(t, "wh-2", v)

	require.NoError(t, s.DeletePreference(ctx, PrefWarehouse))
	require.NoError(t, s.DeletePreference(ctx, PrefWarehouse)) // idempotent

	v, err = s.Preference(ctx, PrefWarehouse)
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestHeldSales(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := HeldSale{
		ID:              uuid.NewString(),
		CustomerID:      "c-1",
		DiscountPercent: decimal.RequireFromString("10"),
		TaxPercent:      decimal.RequireFromString("19"),
		Items: []cart.LineItem{
			{
				ProductID:      "p1",
				Name:           "Cable USB",
				SKU:            "CAB-01",
				Quantity:       decimal.RequireFromString("2"),
				UnitPrice:      decimal.RequireFromString("5.50"),
				AvailableStock: decimal.RequireFromString("12"),
			},
		},
		HeldAt: time.Now().Add(-time.Minute),
	}
	second := HeldSale{
		ID:              uuid.NewString(),
		DiscountPercent: decimal.Zero,
		TaxPercent:      decimal.Zero,
		Items:           []cart.LineItem{},
		HeldAt:          time.Now(),
	}

	require.NoError(t, s.AppendHeldSale(ctx, first))
	require.NoError(t, s.AppendHeldSale(ctx, second))

	held, err := s.HeldSales(ctx)
	require.NoError(t, err)
	require.Len(t, held, 2)

	// Oldest first.
	assert.Equal(t, first.ID, held[0].ID)
	assert.Equal(t, second.ID, held[1].ID)

	got := held[0]
	assert.Equal(t, "c-1", got.CustomerID)
	assert.True(t, got.DiscountPercent.Equal(first.DiscountPercent))
	assert.True(t, got.TaxPercent.Equal(first.TaxPercent))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "p1", got.Items[0].ProductID)
	assert.True(t, got.Items[0].UnitPrice.Equal(decimal.RequireFromString("5.50")))
}

func TestOpenIsIdempotent(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	path := filepath.Join(t.TempDir(), "pos.db")

	s, err := Open(path, logger)
	require.NoError(t, err)
	require.NoError(t, s.SetPreference(context.Background(), PrefPaymentMethod, "cash"))
	require.NoError(t, s.Close())

	// Reopening an existing file re-runs migrations as a no-op and keeps data.
	s, err = Open(path, logger)
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Preference(context.Background(), PrefPaymentMethod)
	require.NoError(t, err)
	assert.Equal(t, "cash", v)
}
