// Package metadata persists small key/value records on the local device,
// such as the signed-in user.
package metadata

import (
	"context"
	"time"
)

// Record is a stored value with its last write time.
type Record struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

type Repository interface {
	// Get returns common.ErrNotFound when key is absent.
	Get(ctx context.Context, key string) (*Record, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]Record, error)
	Clear(ctx context.Context) error
}
