package ports

import (
	"context"
)

// KVStore is the durable key-value store backing the cart. The cart lives
// under a single key and is overwritten wholesale on every mutation.
type KVStore interface {
	// Get returns the value stored under key.
	// MUST return types.ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
