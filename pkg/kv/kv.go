// Package kv provides the small key-value stores that hold tool effect
// expiry timestamps. The engine only needs get/set/delete on string keys,
// so any backend that can do that atomically per key is enough: a local
// bbolt file for the single-device client, or Redis when several
// processes share one player profile.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("kv: not found")

// Store is a string key-value store.
type Store interface {
	// Get returns the value of key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set writes value under key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendBolt  = "bolt"
	BackendRedis = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend   string
	Path      string // bolt file path
	RedisAddr string
	Namespace string // key prefix for shared backends
}

// Open returns the configured backend.
func Open(opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendBolt:
		return OpenBolt(opts.Path)
	case BackendRedis:
		return OpenRedis(opts.RedisAddr, opts.Namespace)
	default:
		return nil, fmt.Errorf("unknown kv backend %q", opts.Backend)
	}
}
