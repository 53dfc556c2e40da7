package scrollstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash holding offsets when no key is configured.
const DefaultRedisKey = "lazyroute:scroll"

// RedisConfig configures a Redis store.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string

	// Password authenticates the connection, if set.
	Password string

	// DB selects the logical database.
	DB int

	// Key is the hash that holds one field per location.
	// Default: DefaultRedisKey
	Key string

	// TTL expires the whole hash after the last write. Zero keeps it forever.
	TTL time.Duration
}

// Redis stores offsets in a Redis hash, so restored positions survive
// process restarts and are shared between instances.
type Redis struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, errors.New("scrollstore: redis address cannot be empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("scrollstore: connect to redis: %w", err)
	}
	return NewRedisWithClient(client, cfg.Key, cfg.TTL), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client redis.UniversalClient, key string, ttl time.Duration) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key, ttl: ttl}
}

// Save implements Store.
func (r *Redis) Save(ctx context.Context, location string, pos Position) error {
	if r.ttl <= 0 {
		return r.client.HSet(ctx, r.key, location, pos.String()).Err()
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.key, location, pos.String())
		pipe.Expire(ctx, r.key, r.ttl)
		return nil
	})
	return err
}

// Lookup implements Store.
func (r *Redis) Lookup(ctx context.Context, location string) (Position, bool, error) {
	v, err := r.client.HGet(ctx, r.key, location).Result()
	if errors.Is(err, redis.Nil) {
		return Position{}, false, nil
	}
	if err != nil {
		return Position{}, false, err
	}
	pos, err := ParsePosition(v)
	if err != nil {
		return Position{}, false, err
	}
	return pos, true, nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
