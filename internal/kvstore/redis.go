package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log"

	lowimpl "github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "invoice-builder:"

type redisStore struct {
	internal *lowimpl.Client
	prefix   string
}

// OpenRedis connects to Redis. cfg.DSN may be a redis:// URL; otherwise
// host and port are used, with cfg.Database parsed as the db number.
func OpenRedis(ctx context.Context, cfg Config) (Store, error) {
	var opts *lowimpl.Options
	if cfg.DSN != "" {
		parsed, err := lowimpl.ParseURL(cfg.dsn())
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		port := cfg.Port
		if port == 0 {
			port = 6379
		}
		db := 0
		if cfg.Database != "" {
			if _, err := fmt.Sscanf(cfg.Database, "%d", &db); err != nil {
				return nil, fmt.Errorf("redis database %q: %w", cfg.Database, err)
			}
		}
		opts = &lowimpl.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Host, port),
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       db,
		}
	}

	client := lowimpl.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	log.Printf("[STORAGE] Connected to redis at %s", opts.Addr)

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &redisStore{internal: client, prefix: prefix}, nil
}

func (r *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.internal.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, lowimpl.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return val, true, nil
}

func (r *redisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.internal.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (r *redisStore) Close() error {
	return r.internal.Close()
}
