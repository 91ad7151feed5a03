package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yumhub/yumhub-backend/pkg/redis"
)

var (
	// ErrCacheMiss is returned by Read when the user has no cached snapshot.
	ErrCacheMiss = errors.New("cart cache miss")
	// ErrCacheUnavailable wraps every cache failure other than a miss.
	ErrCacheUnavailable = errors.New("cart cache unavailable")
)

// CacheStore holds one serialized snapshot per user.
type CacheStore interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
	Read(ctx context.Context, userID uuid.UUID) (Snapshot, error)
	Write(ctx context.Context, userID uuid.UUID, snapshot Snapshot) error
	Delete(ctx context.Context, userID uuid.UUID) error
	ListKeys(ctx context.Context) ([]string, error)
	KeyToUserID(key string) (uuid.UUID, error)
}

type cacheClient interface {
	Exists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
	CartKey(userID string) string
	CartKeyPattern() string
	UserIDFromCartKey(key string) (string, error)
}

// RedisCacheStore stores snapshots as JSON arrays under yh:cart:<userID>.
type RedisCacheStore struct {
	client cacheClient
	ttl    time.Duration
}

// NewRedisCacheStore builds the cache adapter. A zero ttl keeps snapshots until overwritten.
func NewRedisCacheStore(client cacheClient, ttl time.Duration) (*RedisCacheStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl < 0 {
		return nil, fmt.Errorf("cache ttl must not be negative")
	}
	return &RedisCacheStore{client: client, ttl: ttl}, nil
}

func (s *RedisCacheStore) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	ok, err := s.client.Exists(ctx, s.client.CartKey(userID.String()))
	if err != nil {
		return false, unavailable("exists", err)
	}
	return ok, nil
}

func (s *RedisCacheStore) Read(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	raw, err := s.client.Get(ctx, s.client.CartKey(userID.String()))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, unavailable("read", err)
	}
	var snapshot Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil, fmt.Errorf("decode cart snapshot for %s: %w", userID, err)
	}
	if snapshot == nil {
		snapshot = Snapshot{}
	}
	return snapshot, nil
}

// Write replaces the whole cached snapshot.
func (s *RedisCacheStore) Write(ctx context.Context, userID uuid.UUID, snapshot Snapshot) error {
	if snapshot == nil {
		snapshot = Snapshot{}
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode cart snapshot for %s: %w", userID, err)
	}
	if err := s.client.Set(ctx, s.client.CartKey(userID.String()), payload, s.ttl); err != nil {
		return unavailable("write", err)
	}
	return nil
}

func (s *RedisCacheStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, s.client.CartKey(userID.String())); err != nil {
		return unavailable("delete", err)
	}
	return nil
}

// ListKeys returns every cached cart key.
func (s *RedisCacheStore) ListKeys(ctx context.Context) ([]string, error) {
	keys, err := s.client.ScanKeys(ctx, s.client.CartKeyPattern())
	if err != nil {
		return nil, unavailable("scan", err)
	}
	return keys, nil
}

// KeyToUserID parses the user id out of a key returned by ListKeys.
func (s *RedisCacheStore) KeyToUserID(key string) (uuid.UUID, error) {
	raw, err := s.client.UserIDFromCartKey(key)
	if err != nil {
		return uuid.Nil, err
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("cart key %q: %w", key, err)
	}
	return userID, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrCacheUnavailable, op, err)
}
