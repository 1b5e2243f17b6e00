package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hsnnder/real-estatemvp/internal/cache"
	"github.com/Hsnnder/real-estatemvp/internal/models"
)

func TestRedisStore_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb, err := cache.ConnectRedis(addr, os.Getenv("REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	defer cache.DisconnectRedis(rdb)

	ctx := context.Background()
	store := cache.NewRedisStore(rdb)
	require.NoError(t, store.Clear(ctx))

	snap, err := store.Load(ctx, models.ViewAll)
	require.NoError(t, err)
	assert.Nil(t, snap)

	stored := cache.Snapshot{Listings: sample(), StoredAt: time.Now().UTC().Truncate(time.Millisecond)}
	require.NoError(t, store.Save(ctx, models.ViewAll, stored, time.Minute))

	snap, err = store.Load(ctx, models.ViewAll)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, stored.Listings, snap.Listings)
	assert.True(t, stored.StoredAt.Equal(snap.StoredAt))

	require.NoError(t, store.Clear(ctx))
	snap, err = store.Load(ctx, models.ViewAll)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestConnectRedis_EmptyAddressIsDisabled(t *testing.T) {
	rdb, err := cache.ConnectRedis("", "", 0)
	assert.NoError(t, err)
	assert.Nil(t, rdb)
	assert.NoError(t, cache.DisconnectRedis(nil))
}
