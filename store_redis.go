package companionsdk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ──────────────────────────────────────────────
// Redis-backed state store
// ──────────────────────────────────────────────

// RedisStateStore implements StateStore on top of Redis. Keys are
// "{prefix}:state:{userID}".
type RedisStateStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	ctx    context.Context
}

// RedisStoreConfig configures the Redis store.
type RedisStoreConfig struct {
	Prefix string        // key prefix, default "companion"
	TTL    time.Duration // optional expiry for state blobs, 0 = no expiry
}

// NewRedisStateStore creates a StateStore backed by Redis. Works with
// Client, ClusterClient and Ring.
func NewRedisStateStore(client redis.UniversalClient, config ...RedisStoreConfig) *RedisStateStore {
	cfg := RedisStoreConfig{Prefix: "companion"}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "companion"
	}
	return &RedisStateStore{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
		ctx:    context.Background(),
	}
}

func (r *RedisStateStore) key(userID string) string {
	return fmt.Sprintf("%s:state:%s", r.prefix, userID)
}

func (r *RedisStateStore) Load(userID string) ([]byte, error) {
	val, err := r.client.Get(r.ctx, r.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis load %s: %w", userID, err)
	}
	return val, nil
}

func (r *RedisStateStore) Save(userID string, blob []byte) error {
	if err := r.client.Set(r.ctx, r.key(userID), blob, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis save %s: %w", userID, err)
	}
	return nil
}

func (r *RedisStateStore) Delete(userID string) error {
	if err := r.client.Del(r.ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", userID, err)
	}
	return nil
}

func (r *RedisStateStore) ListUsers() ([]string, error) {
	pattern := fmt.Sprintf("%s:state:*", r.prefix)
	keys, err := r.client.Keys(r.ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list users: %w", err)
	}
	cut := fmt.Sprintf("%s:state:", r.prefix)
	users := make([]string, 0, len(keys))
	for _, k := range keys {
		users = append(users, strings.TrimPrefix(k, cut))
	}
	return users, nil
}
