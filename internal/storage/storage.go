// Package storage provides the key-value area used for the persisted session
// mirror and the snapshots of the dependent state containers.
package storage

import (
	"context"
)

// Store is a flat string key-value store. Deleting a missing key is not an error.
type Store interface {
	// Get returns the value stored under key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key.
	Delete(ctx context.Context, key string) error
}
