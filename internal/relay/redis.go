package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// Redis comparte el relay entre réplicas. La expiración la aplica redis
// (SET PX) y el pop es GETDEL, atómico del lado del servidor.
type Redis struct {
	client *rdb.Client
	prefix string
	ttl    time.Duration
}

var _ Relay = (*Redis)(nil)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

func NewRedis(cfg RedisConfig, ttl time.Duration) *Redis {
	client := rdb.NewClient(&rdb.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisWithClient(client, cfg.Prefix, ttl)
}

func NewRedisWithClient(client *rdb.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = "relay:"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }
func (r *Redis) Close() error                   { return r.client.Close() }

func (r *Redis) AddEntry(ctx context.Context, key string, payload []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := r.client.Set(ctx, r.prefix+key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("relay: redis set: %w", err)
	}
	return nil
}

func (r *Redis) PopEntry(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.GetDel(ctx, r.prefix+key).Bytes()
	if errors.Is(err, rdb.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("relay: redis getdel: %w", err)
	}
	return b, true, nil
}

// TryRemoveExpiredEntries no hace nada: redis expira las claves solo.
func (r *Redis) TryRemoveExpiredEntries(context.Context) (int, error) { return 0, nil }

func (r *Redis) EntriesCount(ctx context.Context) (int, error) {
	n := 0
	err := r.scan(ctx, func(keys []string) error {
		n += len(keys)
		return nil
	})
	return n, err
}

func (r *Redis) Clear(ctx context.Context) error {
	return r.scan(ctx, func(keys []string) error {
		return r.client.Del(ctx, keys...).Err()
	})
}

func (r *Redis) scan(ctx context.Context, fn func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("relay: redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
