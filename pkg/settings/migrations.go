package settings

import (
	"errors"
	"fmt"
)

// Migration rewrites saved values in place. defaults is a private copy.
type Migration func(saved, defaults map[string]any) error

// ErrJSUnavailable is returned by JSMigration without the js_eval build tag.
var ErrJSUnavailable = errors.New("settings: js migrations require the js_eval build tag")

// MigrationError reports which migration failed for which store.
type MigrationError struct {
	StorageName string
	Index       int
	Err         error
}

func (e *MigrationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("settings: migration %d for %q: %v", e.Index, e.StorageName, e.Err)
}

func (e *MigrationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RemoveUnused drops saved keys that have no default.
func RemoveUnused(saved, defaults map[string]any) error {
	for key := range saved {
		if _, ok := defaults[key]; !ok {
			delete(saved, key)
		}
	}
	return nil
}

// ruleEnvironment exposes saved keys at the top level plus the saved and
// defaults maps themselves.
func ruleEnvironment(saved, defaults map[string]any) map[string]any {
	env := make(map[string]any, len(saved)+2)
	for key, value := range saved {
		env[key] = value
	}
	env["saved"] = saved
	env["defaults"] = defaults
	return env
}

// assign stores result under key; a nil result deletes key.
func assign(saved map[string]any, key string, result any) {
	if result == nil {
		delete(saved, key)
		return
	}
	saved[key] = result
}

func requireRule(engine, key, expression string) error {
	if key == "" {
		return fmt.Errorf("settings: %s migration: key must not be empty", engine)
	}
	if expression == "" {
		return fmt.Errorf("settings: %s migration: expression must not be empty", engine)
	}
	return nil
}
