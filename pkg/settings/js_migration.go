//go:build js_eval

package settings

import (
	"fmt"

	"github.com/dop251/goja"
)

// JSMigration compiles expression with goja. saved and defaults are bound as
// globals; null or undefined deletes key.
func JSMigration(key, expression string) (Migration, error) {
	if err := requireRule("js", key, expression); err != nil {
		return nil, err
	}
	program, err := goja.Compile("migration-"+key, fmt.Sprintf("(function(){ return (%s); })()", expression), false)
	if err != nil {
		return nil, fmt.Errorf("settings: js migration %q: %w", key, err)
	}
	return func(saved, defaults map[string]any) error {
		vm := goja.New()
		if err := vm.Set("saved", saved); err != nil {
			return err
		}
		if err := vm.Set("defaults", defaults); err != nil {
			return err
		}
		value, err := vm.RunProgram(program)
		if err != nil {
			return fmt.Errorf("js %q: %w", expression, err)
		}
		if goja.IsUndefined(value) || goja.IsNull(value) {
			assign(saved, key, nil)
			return nil
		}
		assign(saved, key, value.Export())
		return nil
	}, nil
}
