package settings

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

// CELMigration compiles expression with cel-go. The program sees two map
// variables, saved and defaults; a null result deletes key.
//
//	CELMigration("theme", `has(saved.legacyDark) && saved.legacyDark ? "dark" : defaults.theme`)
func CELMigration(key, expression string) (Migration, error) {
	if err := requireRule("cel", key, expression); err != nil {
		return nil, err
	}
	env, err := celgo.NewEnv(
		celgo.Variable("saved", celgo.MapType(celgo.StringType, celgo.DynType)),
		celgo.Variable("defaults", celgo.MapType(celgo.StringType, celgo.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("settings: cel migration %q: %w", key, err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("settings: cel migration %q: %w", key, issues.Err())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("settings: cel migration %q: %w", key, err)
	}
	return func(saved, defaults map[string]any) error {
		out, _, err := program.Eval(map[string]any{
			"saved":    saved,
			"defaults": defaults,
		})
		if err != nil {
			return fmt.Errorf("cel %q: %w", expression, err)
		}
		if out.Type() == types.NullType {
			assign(saved, key, nil)
			return nil
		}
		assign(saved, key, out.Value())
		return nil
	}, nil
}
