package localstore

import (
	"context"
	"errors"
)

var (
	ErrStorageClosed = errors.New("storage is closed")
)

// Storage is a string-keyed persistent item store. Values are opaque text.
type Storage interface {
	// GetItem returns the value for key and whether it was present.
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error
	Close() error
}
