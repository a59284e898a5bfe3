package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores values as plain strings under a key prefix.
type Redis struct {
	Client *redis.Client
	prefix string
}

// NewRedisClient connects to redis with short timeouts.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
}

// NewRedis builds a store on a fresh client.
func NewRedis(addr, prefix string) *Redis {
	return NewRedisWithClient(NewRedisClient(addr), prefix)
}

// NewRedisWithClient builds a store sharing an existing client.
func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	return &Redis{Client: client, prefix: prefix}
}

// Get returns the value at prefix+key.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.Client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return v, err
}

// Set writes value without expiry.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.Client.Set(ctx, r.prefix+key, value, 0).Err()
}

// Delete removes prefix+key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.Client.Del(ctx, r.prefix+key).Err()
}

// Keys scans the prefix and strips it from the results.
func (r *Redis) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.Client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), r.prefix))
	}
	return keys, iter.Err()
}

// Ping verifies redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

// Close closes the client.
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
