package store

import (
	"context"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/errors"
)

// RedisStore keeps snapshots as JSON values under a shared key prefix, for
// boards served by multiple processes.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// DefaultRedisPrefix namespaces board keys inside a shared Redis database.
const DefaultRedisPrefix = "pegboard:"

// NewRedisStore connects to Redis and verifies the connection with a ping.
// An empty prefix falls back to DefaultRedisPrefix.
func NewRedisStore(ctx context.Context, opts *redis.Options, prefix string) (*RedisStore, error) {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to redis at %q", opts.Addr)
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, key string, snap board.Snapshot) error {
	if err := errors.ValidateStoreKey(key); err != nil {
		return err
	}
	data, err := board.MarshalSnapshot(snap)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "save %q", key)
	}
	return nil
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, key string) (board.Snapshot, bool, error) {
	if err := errors.ValidateStoreKey(key); err != nil {
		return board.Snapshot{}, false, err
	}
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err == redis.Nil {
		return board.Snapshot{}, false, nil
	}
	if err != nil {
		return board.Snapshot{}, false, errors.Wrap(errors.ErrCodeStore, err, "load %q", key)
	}
	snap, err := board.UnmarshalSnapshot(data)
	if err != nil {
		return board.Snapshot{}, false, err
	}
	return snap, true, nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := errors.ValidateStoreKey(key); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete %q", key)
	}
	return nil
}

// List implements Store. It scans rather than using KEYS so a large shared
// database is never blocked.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list store")
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements Store.
func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
