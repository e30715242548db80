package perdomain

import (
	"github.com/goliatone/go-options-perdomain/pkg/activity"
	"github.com/goliatone/go-options-perdomain/pkg/form"
	"github.com/goliatone/go-options-perdomain/pkg/storage"
)

// Config describes the settings schema shared by every origin.
type Config struct {
	// StorageName is the base storage name. Defaults to DefaultStorageName.
	StorageName string
	Defaults    map[string]any
	// Migrations run for every store. When set, a privileged manager builds
	// every origin's store on construction so they all migrate.
	Migrations []Migration
}

// Option configures a Manager.
type Option func(*managerConfig)

type managerConfig struct {
	permissions    Permissions
	matcher        Matcher
	execution      ExecutionContext
	currentOrigin  string
	factory        StoreFactory
	area           storage.Area
	codec          *storage.Codec
	document       form.Document
	renderer       form.ChoiceRenderer
	logger         Logger
	activityHooks  activity.Hooks
	activityConfig activity.Config
}

func applyOptions(opts []Option) managerConfig {
	cfg := managerConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithPermissions sets the host permission source. Defaults to an empty
// in-memory source.
func WithPermissions(p Permissions) Option {
	return func(cfg *managerConfig) {
		cfg.permissions = p
	}
}

// WithMatcher overrides the matcher compiled from the static origins.
func WithMatcher(m Matcher) Option {
	return func(cfg *managerConfig) {
		cfg.matcher = m
	}
}

// WithExecutionContext sets where the manager runs. Defaults to ContextPage.
func WithExecutionContext(ec ExecutionContext) Option {
	return func(cfg *managerConfig) {
		cfg.execution = ec
	}
}

// WithCurrentOrigin sets the origin used when none is given. The empty
// default resolves to the default store, like an extension page.
func WithCurrentOrigin(origin string) Option {
	return func(cfg *managerConfig) {
		cfg.currentOrigin = origin
	}
}

// WithStoreFactory replaces the settings-backed store factory.
func WithStoreFactory(factory StoreFactory) Option {
	return func(cfg *managerConfig) {
		cfg.factory = factory
	}
}

// WithArea sets where the default factory persists values. Defaults to a
// memory area.
func WithArea(area storage.Area) Option {
	return func(cfg *managerConfig) {
		cfg.area = area
	}
}

// WithCodec shares a codec with the default factory.
func WithCodec(codec *storage.Codec) Option {
	return func(cfg *managerConfig) {
		cfg.codec = codec
	}
}

// WithDocument sets the selector resolver used by BindFormSelector.
func WithDocument(doc form.Document) Option {
	return func(cfg *managerConfig) {
		cfg.document = doc
	}
}

// WithChoiceRenderer sets how the domain picker is rendered. Defaults to a
// headless form.PickerRenderer.
func WithChoiceRenderer(renderer form.ChoiceRenderer) Option {
	return func(cfg *managerConfig) {
		cfg.renderer = renderer
	}
}

// WithActivityHooks attaches activity hooks. Hooks are cloned and nil
// entries dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := activity.CloneHooks(hooks)
	return func(cfg *managerConfig) {
		cfg.activityHooks = normalized
		cfg.activityConfig.Enabled = len(normalized) > 0
	}
}

// WithActivityChannel overrides the default activity channel.
func WithActivityChannel(channel string) Option {
	return func(cfg *managerConfig) {
		cfg.activityConfig.Channel = channel
	}
}
