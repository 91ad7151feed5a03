package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumhub/yumhub-backend/pkg/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	return NewFromRedis(raw), mr
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("scope", "id"); got != "yh:idempotency:scope:id" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.CartKey("user-1"); got != "yh:cart:user-1" {
		t.Fatalf("unexpected cart key %s", got)
	}
	if got := client.CartKeyPattern(); got != "yh:cart:*" {
		t.Fatalf("unexpected cart pattern %s", got)
	}
	if got := client.QueueKey("refund_window"); got != "yh:queue:refund_window" {
		t.Fatalf("unexpected queue key %s", got)
	}
	if got := client.LockKey("cron"); got != "yh:lock:cron" {
		t.Fatalf("unexpected lock key %s", got)
	}
}

func TestUserIDFromCartKey(t *testing.T) {
	client := &Client{}

	got, err := client.UserIDFromCartKey(client.CartKey("8d7c"))
	require.NoError(t, err)
	assert.Equal(t, "8d7c", got)

	for _, bad := range []string{"cart:8d7c", "yh:cart:", "yh:queue:8d7c", "yh:cart:a:b"} {
		_, err := client.UserIDFromCartKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestGetSetExistsDel(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	exists, err := client.Exists(ctx, "yh:cart:u1")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = client.Get(ctx, "yh:cart:u1")
	assert.True(t, errors.Is(err, Nil))

	require.NoError(t, client.Set(ctx, "yh:cart:u1", "[]", 0))
	exists, err = client.Exists(ctx, "yh:cart:u1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, client.Del(ctx, "yh:cart:u1"))
	exists, err = client.Exists(ctx, "yh:cart:u1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSetHonorsTTL(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)

	require.NoError(t, client.Set(ctx, "k", "v", time.Minute))
	mr.FastForward(2 * time.Minute)

	exists, err := client.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSetNX(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	ok, err := client.SetNX(ctx, "lock", "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(ctx, "lock", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScanKeysMatchesPattern(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)

	for i := 0; i < 450; i++ {
		require.NoError(t, mr.Set(client.CartKey(fmt.Sprintf("user-%d", i)), "[]"))
	}
	require.NoError(t, mr.Set("yh:queue:other", "x"))

	keys, err := client.ScanKeys(ctx, client.CartKeyPattern())
	require.NoError(t, err)
	assert.Len(t, keys, 450)
	for _, key := range keys {
		assert.Contains(t, key, "yh:cart:")
	}
}

func TestSortedSetQueueOps(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)
	key := client.QueueKey("refund_window")

	require.NoError(t, client.ZAdd(ctx, key, 30, "late"))
	require.NoError(t, client.ZAdd(ctx, key, 10, "early"))
	require.NoError(t, client.ZAdd(ctx, key, 20, "middle"))

	due, err := client.ZRangeByScore(ctx, key, 20, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "middle"}, due)

	limited, err := client.ZRangeByScore(ctx, key, 100, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"early"}, limited)

	removed, err := client.ZRem(ctx, key, "early")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = client.ZRem(ctx, key, "early")
	require.NoError(t, err)
	assert.False(t, removed, "second claim of the same member must fail")

	rest, err := client.ZRangeByScore(ctx, key, 100, 10)
	require.NoError(t, err)
	sort.Strings(rest)
	assert.Equal(t, []string{"late", "middle"}, rest)
}

func TestUninitializedClientErrors(t *testing.T) {
	ctx := context.Background()
	client := &Client{}

	assert.Error(t, client.Ping(ctx))
	assert.Error(t, client.Set(ctx, "k", "v", 0))
	_, err := client.Exists(ctx, "k")
	assert.Error(t, err)
	_, err = client.ScanKeys(ctx, "*")
	assert.Error(t, err)
	assert.NoError(t, client.Close())
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	assert.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/3", PoolSize: 7})
	require.NoError(t, err)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6379", DB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
}
