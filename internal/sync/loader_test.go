package sync

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dstrand/tally/internal/database"
	"github.com/dstrand/tally/internal/model"
	"github.com/dstrand/tally/internal/remote"
	"github.com/dstrand/tally/internal/store"
)

func setupLoader(t *testing.T, rs *stubRemote) (*Loader, *store.Stores) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewLoader(db, rs, logger), store.New(db)
}

func TestApplySnapshotOverwritesLocal(t *testing.T) {
	loader, st := setupLoader(t, &stubRemote{})

	// Stale local state that must not survive.
	require.NoError(t, st.Products.Put(model.Product{ID: "old", Name: "Stale", Price: 9}))
	require.NoError(t, st.Categories.Put(model.Category{ID: "old-cat", Name: "Stale"}))
	require.NoError(t, st.Sales.Put(model.Sale{ID: "old-sale", ProductName: "Stale", Quantity: 1, UnitPrice: 1, Total: 1, Date: "2024-01-01"}))

	snap := &remote.Snapshot{
		Products: []model.Product{
			{ID: "a", Name: "Coke", Price: 1.5, Quantity: 10},
			{ID: "b", Name: "Chips", Price: 2, Quantity: 5},
		},
		Categories: []model.Category{{ID: "c1", Name: "Drinks", Color: "#03a9f4"}},
		Sales:      []model.Sale{{ID: "s1", ProductName: "Coke", Quantity: 1, UnitPrice: 1.5, Total: 1.5, Date: "2024-06-01"}},
	}
	require.NoError(t, loader.Apply(snap))

	products, err := st.Products.List()
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "a", products[0].ID)
	assert.Equal(t, "b", products[1].ID)
	for _, p := range products {
		assert.True(t, p.Synced, "snapshot records arrive clean")
	}

	categories, _ := st.Categories.List()
	require.Len(t, categories, 1)
	assert.Equal(t, "Drinks", categories[0].Name)

	sales, _ := st.Sales.List()
	require.Len(t, sales, 1)
	assert.True(t, sales[0].Synced)
}

func TestRefreshFetchFailureKeepsLocal(t *testing.T) {
	loader, st := setupLoader(t, &stubRemote{snapshot: nil})

	require.NoError(t, st.Products.Put(model.Product{ID: "p1", Name: "Coke", Price: 1.5}))

	err := loader.Refresh(context.Background())
	require.Error(t, err)

	products, _ := st.Products.List()
	require.Len(t, products, 1, "local mirror must survive a failed pull")
}
