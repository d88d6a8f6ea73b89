// Package redis keeps the token pair in Redis so several checkout replicas
// can share one backend session.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by KV.
const DefaultPrefix = "washpay:"

type Config struct {
	Addr     string
	Password string
	DB       int

	// Prefix is prepended to every key. Defaults to DefaultPrefix.
	Prefix string

	// TTL expires entries that are not rewritten. Zero keeps them forever.
	TTL time.Duration
}

// KV implements the token side store on top of a Redis client.
type KV struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, cfg Config) (*KV, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:     10,
		MinIdleConns: 2,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewWithClient(client, cfg.Prefix, cfg.TTL), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, prefix string, ttl time.Duration) *KV {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &KV{client: client, prefix: prefix, ttl: ttl}
}

func (kv *KV) Get(ctx context.Context, key string) (string, error) {
	value, err := kv.client.Get(ctx, kv.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return value, err
}

func (kv *KV) Set(ctx context.Context, key, value string) error {
	return kv.client.Set(ctx, kv.prefix+key, value, kv.ttl).Err()
}

func (kv *KV) Delete(ctx context.Context, key string) error {
	return kv.client.Del(ctx, kv.prefix+key).Err()
}

// Ping checks the connection.
func (kv *KV) Ping(ctx context.Context) error {
	return kv.client.Ping(ctx).Err()
}

// Close releases the client's connections.
func (kv *KV) Close() error {
	return kv.client.Close()
}
