// Package kvstore keeps small per-user JSON documents such as favourite
// lists and recently used items.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no value is stored under the key.
var ErrNotFound = errors.New("kvstore: not found")

// Store persists JSON-encodable values per user and key.
type Store interface {
	// Load decodes the stored value into dst.
	Load(ctx context.Context, userID, key string, dst any) error
	Save(ctx context.Context, userID, key string, value any) error
	Delete(ctx context.Context, userID, key string) error
	// Atomic runs fn so that the loads and saves it makes through ctx are
	// not interleaved with another Atomic call on the same store.
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}
