package kv

import (
	"context"
	"errors"
)

// Store is the client-local key-value storage used for session and cart
// snapshots. Values are opaque strings; callers own the serialization.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("kv: key not found")
