package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisConfig holds connection settings for the Redis content store.
type RedisConfig struct {
	Addrs     []string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisContentStore implements ContentStore on Redis. Every key is
// namespaced with KeyPrefix so several engines can share one server.
type RedisContentStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisClient creates a universal client and verifies connectivity.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (redis.UniversalClient, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("redis configuration error: at least one address is required")
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis %v: %w", cfg.Addrs, err)
	}
	return client, nil
}

// NewRedisContentStore wraps an existing client.
func NewRedisContentStore(client redis.UniversalClient, keyPrefix string) (*RedisContentStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	return &RedisContentStore{client: client, prefix: keyPrefix}, nil
}

func (r *RedisContentStore) key(k string) string {
	return r.prefix + k
}

func (r *RedisContentStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return val, nil
}

func (r *RedisContentStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (r *RedisContentStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// DeletePrefix scans for matching keys and deletes them one key per DEL,
// pipelined, so no command spans cluster hash slots. On a cluster every
// master is scanned.
func (r *RedisContentStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	match := r.key(prefix) + "*"

	cluster, ok := r.client.(*redis.ClusterClient)
	if !ok {
		n, err := deleteMatching(ctx, r.client, match)
		if err != nil {
			return n, fmt.Errorf("redis delete prefix %q: %w", prefix, err)
		}
		return n, nil
	}

	var (
		mu    sync.Mutex
		total int
	)
	err := cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
		n, err := deleteMatching(ctx, node, match)
		mu.Lock()
		total += n
		mu.Unlock()
		return err
	})
	if err != nil {
		return total, fmt.Errorf("redis delete prefix %q: %w", prefix, err)
	}
	return total, nil
}

const scanBatch = 200

func deleteMatching(ctx context.Context, c redis.Cmdable, match string) (int, error) {
	var keys []string
	iter := c.Scan(ctx, 0, match, scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scan: %w", err)
	}

	deleted := 0
	for batch := range slices.Chunk(keys, scanBatch) {
		pipe := c.Pipeline()
		cmds := make([]*redis.IntCmd, len(batch))
		for i, k := range batch {
			cmds[i] = pipe.Del(ctx, k)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return deleted, fmt.Errorf("del: %w", err)
		}
		for _, cmd := range cmds {
			deleted += int(cmd.Val())
		}
	}
	return deleted, nil
}

// Close releases the underlying client.
func (r *RedisContentStore) Close() error {
	return r.client.Close()
}
