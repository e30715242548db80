// Package storage defines the key/value area settings are persisted in and
// ships memory and Badger backed implementations.
//
// An Area plays the part of the browser's synced extension storage: one key
// per storage name, opaque byte values, batch removal.
package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by areas used after Close.
var ErrClosed = errors.New("storage: area closed")

// Area persists opaque values under string keys.
type Area interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes every key. Missing keys are not an error.
	Remove(ctx context.Context, keys ...string) error
}
