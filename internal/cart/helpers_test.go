package cart

import (
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yumhub/yumhub-backend/internal/testdb"
	"github.com/yumhub/yumhub-backend/pkg/db"
	"github.com/yumhub/yumhub-backend/pkg/logger"
	"github.com/yumhub/yumhub-backend/pkg/redis"
)

type testEnv struct {
	svc   Service
	db    *gorm.DB
	cache *RedisCacheStore
	redis *redis.Client
	mr    *miniredis.Miniredis
}

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cart-test", Output: io.Discard})
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := testdb.Open(t)

	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	client := redis.NewFromRedis(raw)

	cache, err := NewRedisCacheStore(client, 0)
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Logger: newTestLogger(),
		DB:     db.NewFromGorm(conn),
		Repo:   NewRepository(conn),
		Cache:  cache,
	})
	require.NoError(t, err)

	return &testEnv{svc: svc, db: conn, cache: cache, redis: client, mr: mr}
}
