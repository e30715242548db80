package storage

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerArea persists values in a Badger database. Keys are namespaced with
// a prefix so the database can be shared with other data.
type BadgerArea struct {
	db     *badger.DB
	prefix string
	owned  bool
	closed atomic.Bool
}

// BadgerOption configures a BadgerArea.
type BadgerOption func(*BadgerArea)

// WithKeyPrefix namespaces every key. The default prefix is "settings/".
func WithKeyPrefix(prefix string) BadgerOption {
	return func(a *BadgerArea) {
		a.prefix = prefix
	}
}

// OpenBadger opens (or creates) a database in dir. An empty dir opens an
// in-memory database. The returned area owns the database and closes it.
func OpenBadger(dir string, opts ...BadgerOption) (*BadgerArea, error) {
	options := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		options = options.WithInMemory(true)
	}
	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("storage: open badger %q: %w", dir, err)
	}
	area := NewBadgerArea(db, opts...)
	area.owned = true
	return area, nil
}

// NewBadgerArea wraps an existing database. Close leaves db open.
func NewBadgerArea(db *badger.DB, opts ...BadgerOption) *BadgerArea {
	area := &BadgerArea{db: db, prefix: "settings/"}
	for _, opt := range opts {
		if opt != nil {
			opt(area)
		}
	}
	return area
}

func (a *BadgerArea) key(key string) []byte {
	return []byte(a.prefix + key)
}

func (a *BadgerArea) check(ctx context.Context) error {
	if a.closed.Load() {
		return ErrClosed
	}
	return ctx.Err()
}

func (a *BadgerArea) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := a.check(ctx); err != nil {
		return nil, false, err
	}
	var value []byte
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(a.key(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: get %q: %w", key, err)
	}
	return value, true, nil
}

func (a *BadgerArea) Set(ctx context.Context, key string, value []byte) error {
	if err := a.check(ctx); err != nil {
		return err
	}
	err := a.db.Update(func(txn *badger.Txn) error {
		return txn.Set(a.key(key), value)
	})
	if err != nil {
		return fmt.Errorf("storage: set %q: %w", key, err)
	}
	return nil
}

func (a *BadgerArea) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := a.check(ctx); err != nil {
		return err
	}
	err := a.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete(a.key(key)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("storage: remove %v: %w", keys, err)
	}
	return nil
}

// Close releases the database when the area opened it.
func (a *BadgerArea) Close() error {
	if a.closed.Swap(true) || !a.owned {
		return nil
	}
	return a.db.Close()
}
