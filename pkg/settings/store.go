// Package settings implements a persisted settings store for one storage
// name: defaults merged with saved values, migrations run on construction,
// and two-way binding to a form.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/goliatone/go-options-perdomain/pkg/form"
	"github.com/goliatone/go-options-perdomain/pkg/storage"
)

var (
	ErrStorageNameRequired = errors.New("settings: storage name is required")
	ErrAreaRequired        = errors.New("settings: storage area is required")
)

// Config describes one store.
type Config struct {
	StorageName string
	Defaults    map[string]any
	Migrations  []Migration
	Area        storage.Area
	// Codec encodes stored values. When nil the store creates its own.
	Codec *storage.Codec
}

// Store persists one settings object under StorageName.
type Store struct {
	name     string
	defaults map[string]any
	area     storage.Area
	codec    *storage.Codec

	writeMu sync.Mutex
	bindMu  sync.Mutex
	stop    func()
}

// New constructs a store and runs the configured migrations.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.StorageName == "" {
		return nil, ErrStorageNameRequired
	}
	if cfg.Area == nil {
		return nil, ErrAreaRequired
	}
	codec := cfg.Codec
	if codec == nil {
		var err error
		if codec, err = storage.NewCodec(); err != nil {
			return nil, err
		}
	}
	store := &Store{
		name:     cfg.StorageName,
		defaults: cloneValues(cfg.Defaults),
		area:     cfg.Area,
		codec:    codec,
	}
	if err := store.migrate(ctx, cfg.Migrations); err != nil {
		return nil, err
	}
	return store, nil
}

// StorageName returns the key the store persists under.
func (s *Store) StorageName() string {
	return s.name
}

// Defaults returns a copy of the default values.
func (s *Store) Defaults() map[string]any {
	return cloneValues(s.defaults)
}

// GetAll returns the defaults overlaid with the saved values.
func (s *Store) GetAll(ctx context.Context) (map[string]any, error) {
	out := cloneValues(s.defaults)
	raw, ok, err := s.area.Get(ctx, s.name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return out, nil
	}
	saved, err := s.codec.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("settings: %q: %w", s.name, err)
	}
	maps.Copy(out, saved)
	return out, nil
}

// SetAll replaces the saved values.
func (s *Store) SetAll(ctx context.Context, values map[string]any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.write(ctx, values)
}

// Set merges values into the saved values.
func (s *Store) Set(ctx context.Context, values map[string]any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	current, err := s.GetAll(ctx)
	if err != nil {
		return err
	}
	maps.Copy(current, values)
	return s.write(ctx, current)
}

func (s *Store) write(ctx context.Context, values map[string]any) error {
	data, err := s.codec.Encode(values)
	if err != nil {
		return fmt.Errorf("settings: %q: %w", s.name, err)
	}
	return s.area.Set(ctx, s.name, data)
}

// BindForm fills f with the current values and saves every later input.
// A previous binding of this store is released first.
func (s *Store) BindForm(ctx context.Context, f form.Form) error {
	if f == nil {
		return fmt.Errorf("settings: %q: form is required", s.name)
	}
	values, err := s.GetAll(ctx)
	if err != nil {
		return err
	}
	if err := f.Fill(values); err != nil {
		return err
	}

	saveCtx := context.WithoutCancel(ctx)
	stop := f.Watch(func(values form.Values) error {
		return s.Set(saveCtx, values)
	})

	s.bindMu.Lock()
	previous := s.stop
	s.stop = stop
	s.bindMu.Unlock()
	if previous != nil {
		previous()
	}
	return nil
}

// UnbindForm stops saving form input. It is a no-op when nothing is bound.
func (s *Store) UnbindForm() {
	s.bindMu.Lock()
	stop := s.stop
	s.stop = nil
	s.bindMu.Unlock()
	if stop != nil {
		stop()
	}
}

// Bound reports whether a form is currently bound.
func (s *Store) Bound() bool {
	s.bindMu.Lock()
	defer s.bindMu.Unlock()
	return s.stop != nil
}

// DeleteData removes the persisted values of the named stores, or of this
// store when no name is given.
func (s *Store) DeleteData(ctx context.Context, storageNames ...string) error {
	if len(storageNames) == 0 {
		storageNames = []string{s.name}
	}
	return s.area.Remove(ctx, storageNames...)
}

func (s *Store) migrate(ctx context.Context, migrations []Migration) error {
	if len(migrations) == 0 {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	values, err := s.GetAll(ctx)
	if err != nil {
		return err
	}
	before, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("settings: %q: %w", s.name, err)
	}
	for i, migration := range migrations {
		if migration == nil {
			continue
		}
		if err := migration(values, cloneValues(s.defaults)); err != nil {
			return &MigrationError{StorageName: s.name, Index: i, Err: err}
		}
	}
	after, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("settings: %q: %w", s.name, err)
	}
	if string(before) == string(after) {
		return nil
	}
	return s.write(ctx, values)
}

// cloneValues copies values through JSON so nested maps are not shared.
func cloneValues(values map[string]any) map[string]any {
	out := map[string]any{}
	if len(values) == 0 {
		return out
	}
	data, err := json.Marshal(values)
	if err != nil {
		return maps.Clone(values)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return maps.Clone(values)
	}
	return out
}
