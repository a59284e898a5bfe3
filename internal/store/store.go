// Package store provides the byte-level key-value backends behind the academy repository.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has never been written or was deleted.
var ErrNotFound = errors.New("store: key not found")

// KV is a flat key-value store of opaque values.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend     string
	BadgerDir   string
	SQLitePath  string
	DatabaseURL string
	RedisAddr   string
	RedisPrefix string
}

// Open creates the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (KV, error) {
	var (
		kv  KV
		err error
	)
	switch opts.Backend {
	case "memory":
		kv = NewMemory()
	case "badger", "":
		kv, err = NewBadger(opts.BadgerDir)
	case "sqlite":
		kv, err = NewSQLite(ctx, opts.SQLitePath)
	case "postgres":
		kv, err = NewPostgres(ctx, opts.DatabaseURL)
	case "redis":
		kv = NewRedis(opts.RedisAddr, opts.RedisPrefix)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", opts.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", opts.Backend, err)
	}
	return kv, nil
}
