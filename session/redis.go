package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by a Redis server, for servers that
// share session state across instances. Expiration is delegated to
// Redis through per-key TTLs.
type RedisStore struct {
	// Options configures the underlying Redis client. When nil a
	// local server on the default port is used.
	Options *redis.Options

	// Prefix namespaces every key written by this store.
	Prefix string

	// TTL is the sliding age limit applied to every entry.
	TTL time.Duration

	rdb *redis.Client
}

// NewRedisStore creates a store around the given client options.
func NewRedisStore(options *redis.Options) *RedisStore {
	if options == nil {
		options = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	return &RedisStore{
		Options: options,
		Prefix:  "chainok:session",
		TTL:     30 * time.Minute,
	}
}

// WithPrefix sets the key prefix used by the store.
func (s *RedisStore) WithPrefix(prefix string) *RedisStore {
	s.Prefix = prefix
	return s
}

// WithTTL sets the sliding age limit applied to entries.
func (s *RedisStore) WithTTL(ttl time.Duration) *RedisStore {
	s.TTL = ttl
	return s
}

func (s *RedisStore) key(id string) string {
	return fmt.Sprintf("%s:%s", s.Prefix, id)
}

// Start connects to Redis and verifies the server answers.
func (s *RedisStore) Start(ctx context.Context) error {
	rdb := redis.NewClient(s.Options)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("session: connecting to redis: %w", err)
	}
	s.rdb = rdb
	return nil
}

// Stop closes the connection to Redis.
func (s *RedisStore) Stop(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

// Delete removes any entry for the given id.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, s.key(id)).Err()
}

// Exists returns true if the id is present in the store.
func (s *RedisStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Get retrieves the value for the given id, or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, id string) ([]byte, error) {
	val, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set saves or updates the value for the given id, renewing its TTL.
func (s *RedisStore) Set(ctx context.Context, id string,
	val []byte) error {
	return s.rdb.Set(ctx, s.key(id), val, s.TTL).Err()
}

// Touch renews the TTL of the entry identified by id. Returns
// ErrNotFound if the entry does not exist.
func (s *RedisStore) Touch(ctx context.Context, id string) error {
	ok, err := s.rdb.Expire(ctx, s.key(id), s.TTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Purge is a no-op for RedisStore, expiration is handled by the
// per-key TTLs.
func (s *RedisStore) Purge(ctx context.Context,
	maxAge time.Duration) error {
	return nil
}
