package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeaturedCache_LoadOutlivesCaller(t *testing.T) {
	store := newMemoryCache()
	cache := NewFeaturedCache(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loads := 0
	got, err := cache.Get(ctx, func(ctx context.Context) ([]ProductResponse, error) {
		loads++
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return []ProductResponse{{Name: "Phone"}}, nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Phone", got[0].Name)
	assert.Equal(t, 1, store.sets)

	t.Run("later callers hit the cache", func(t *testing.T) {
		got, err := cache.Get(context.Background(), func(context.Context) ([]ProductResponse, error) {
			return nil, errors.New("loader should not run")
		})
		require.NoError(t, err)
		assert.Equal(t, "Phone", got[0].Name)
		assert.Equal(t, 1, loads)
	})
}
