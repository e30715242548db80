package settings

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goliatone/go-options-perdomain/internal/hydrate"
)

// TypedOption configures a Typed view.
type TypedOption[T any] func(*typedConfig[T])

type typedConfig[T any] struct {
	decoder []hydrate.DecoderOption[T]
}

// Strict rejects stored keys that T has no field for.
func Strict[T any]() TypedOption[T] {
	return func(cfg *typedConfig[T]) {
		cfg.decoder = append(cfg.decoder, hydrate.WithDisallowUnknownFields[T]())
	}
}

// WithValidator runs fn on every decoded value.
func WithValidator[T any](fn func(storageName string, value *T) error) TypedOption[T] {
	return func(cfg *typedConfig[T]) {
		if fn == nil {
			return
		}
		cfg.decoder = append(cfg.decoder, hydrate.WithPostHook[T](func(ctx hydrate.Context, value *T) error {
			return fn(ctx.StorageName, value)
		}))
	}
}

// ValidateStruct checks `validate` struct tags on every decoded value.
func ValidateStruct[T any]() TypedOption[T] {
	v := validator.New(validator.WithRequiredStructEnabled())
	return WithValidator(func(storageName string, value *T) error {
		if err := v.Struct(value); err != nil {
			return fmt.Errorf("settings: %q: %w", storageName, err)
		}
		return nil
	})
}

// Typed reads and writes a store through a struct with JSON tags.
type Typed[T any] struct {
	store   *Store
	decoder *hydrate.Decoder[T]
}

// NewTyped wraps store.
func NewTyped[T any](store *Store, opts ...TypedOption[T]) *Typed[T] {
	cfg := typedConfig[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Typed[T]{store: store, decoder: hydrate.NewDecoder(cfg.decoder...)}
}

// Get decodes the defaults overlaid with the saved values.
func (t *Typed[T]) Get(ctx context.Context) (T, error) {
	values, err := t.store.GetAll(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return t.decoder.Decode(hydrate.Context{StorageName: t.store.StorageName()}, values)
}

// Set replaces the saved values with value.
func (t *Typed[T]) Set(ctx context.Context, value T) error {
	values, err := hydrate.Encode(hydrate.Context{StorageName: t.store.StorageName()}, value)
	if err != nil {
		return err
	}
	return t.store.SetAll(ctx, values)
}
