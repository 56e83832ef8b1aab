package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hackhub/pkg/redis"
)

func newTestSnapshotStore(t *testing.T) *RedisSnapshotStore {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient("redis://"+mr.Addr(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewRedisSnapshotStore(client)
}

func TestRedisSnapshotStoreRoundTrip(t *testing.T) {
	store := newTestSnapshotStore(t)
	ctx := context.Background()

	ranks := map[string]int{"t1": 1, "t2": 2}
	require.NoError(t, store.Put(ctx, "hack-1", "round-1", ranks))

	got, err := store.Get(ctx, "hack-1", "round-1")
	require.NoError(t, err)
	assert.Equal(t, ranks, got)
}

func TestRedisSnapshotStoreMiss(t *testing.T) {
	store := newTestSnapshotStore(t)

	got, err := store.Get(context.Background(), "hack-1", "overall")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisSnapshotStoreScopeIsolation(t *testing.T) {
	store := newTestSnapshotStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "hack-1", "round-1", map[string]int{"t1": 1}))
	require.NoError(t, store.Put(ctx, "hack-1", "overall", map[string]int{"t1": 3}))

	roundRanks, err := store.Get(ctx, "hack-1", "round-1")
	require.NoError(t, err)
	overallRanks, err := store.Get(ctx, "hack-1", "overall")
	require.NoError(t, err)

	assert.Equal(t, 1, roundRanks["t1"])
	assert.Equal(t, 3, overallRanks["t1"])
}

func TestMemorySnapshotStoreCopyIsolation(t *testing.T) {
	store := NewMemorySnapshotStore()
	ctx := context.Background()

	ranks := map[string]int{"t1": 1}
	require.NoError(t, store.Put(ctx, "hack-1", "overall", ranks))

	// mutating either side must not leak into the stored snapshot
	ranks["t1"] = 99
	got, err := store.Get(ctx, "hack-1", "overall")
	require.NoError(t, err)
	assert.Equal(t, 1, got["t1"])

	got["t1"] = 42
	again, err := store.Get(ctx, "hack-1", "overall")
	require.NoError(t, err)
	assert.Equal(t, 1, again["t1"])
}
