package perdomain

import (
	"context"

	"github.com/goliatone/go-options-perdomain/pkg/settings"
	"github.com/goliatone/go-options-perdomain/pkg/storage"
)

// Migration rewrites saved values in place before a store is first used.
type Migration = settings.Migration

// RemoveUnused drops saved keys that have no default.
func RemoveUnused(saved, defaults map[string]any) error {
	return settings.RemoveUnused(saved, defaults)
}

// SettingsFactory builds settings.Store values persisted in area. A nil
// codec gives every store its own.
func SettingsFactory(area storage.Area, codec *storage.Codec) StoreFactory {
	return StoreFactoryFunc(func(ctx context.Context, cfg StoreConfig) (SettingsStore, error) {
		return settings.New(ctx, settings.Config{
			StorageName: cfg.StorageName,
			Defaults:    cfg.Defaults,
			Migrations:  cfg.Migrations,
			Area:        area,
			Codec:       codec,
		})
	})
}
