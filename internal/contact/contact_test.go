package contact

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/docstore"
)

type brokenStore struct {
	*docstore.MemoryStore
}

func (brokenStore) List(context.Context, string) ([]docstore.Document, error) {
	return nil, errors.New("unreachable")
}

func TestGet_Empty(t *testing.T) {
	info, err := NewService(docstore.NewMemoryStore()).Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, Info{}, info)
}

func TestUpdate_Missing(t *testing.T) {
	err := NewService(docstore.NewMemoryStore()).Update(context.Background(), Info{Mail: "hi@example.com"})
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestEnsureThenUpdate(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	svc := NewService(store)

	created, err := svc.Ensure(ctx, Info{Mail: "hello@shop.ma", Phone: "0600000000"})
	require.NoError(t, err)
	require.True(t, created)

	created, err = svc.Ensure(ctx, Info{Mail: "other@shop.ma"})
	require.NoError(t, err)
	require.False(t, created)

	require.NoError(t, svc.Update(ctx, Info{Instagram: "https://instagram.com/shop", Mail: "new@shop.ma"}))

	info, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, Info{Instagram: "https://instagram.com/shop", Mail: "new@shop.ma"}, info)

	docs, _ := store.List(ctx, Collection)
	require.Len(t, docs, 1)
}

func TestGet_StoreError(t *testing.T) {
	_, err := NewService(brokenStore{docstore.NewMemoryStore()}).Get(context.Background())
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotFound))
}
