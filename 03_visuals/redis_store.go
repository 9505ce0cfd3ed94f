package visuals

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/go-redis/redis/v8"

	"reel-pipeline/types"
)

// RedisStore keeps the mapping in a redis hash, one field per image.
// HSET is atomic per field so parallel runs never clobber each other.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore connects lazily to addr, either host:port or a redis:// URL
func NewRedisStore(addr, key string) (*RedisStore, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		var err error
		if opts, err = redis.ParseURL(addr); err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
	}
	return NewRedisStoreWithClient(redis.NewClient(opts), key), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "reel:images"
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (r *RedisStore) Get(ctx context.Context, id string) (types.CacheEntry, bool, error) {
	raw, err := r.rdb.HGet(ctx, r.key, id).Result()
	if err == redis.Nil {
		return types.CacheEntry{}, false, nil
	}
	if err != nil {
		return types.CacheEntry{}, false, fmt.Errorf("redis hget: %w", err)
	}
	var e types.CacheEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return types.CacheEntry{}, false, fmt.Errorf("decode cache entry %s: %w", id, err)
	}
	e.ID = id
	return e, true, nil
}

func (r *RedisStore) Put(ctx context.Context, entry types.CacheEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("cache entry has no id")
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := r.rdb.HSet(ctx, r.key, entry.ID, payload).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (r *RedisStore) List(ctx context.Context) ([]types.CacheEntry, error) {
	all, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}
	out := make([]types.CacheEntry, 0, len(all))
	for id, raw := range all {
		var e types.CacheEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		e.ID = id
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Close releases the redis connection pool
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
