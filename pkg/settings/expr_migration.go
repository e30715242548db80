package settings

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
)

// ExprMigration compiles expression with expr-lang and returns a migration
// that stores its result under key. Saved keys are visible by name, along
// with the saved and defaults maps.
//
//	ExprMigration("theme", `legacyDark == true ? "dark" : defaults.theme`)
func ExprMigration(key, expression string) (Migration, error) {
	if err := requireRule("expr", key, expression); err != nil {
		return nil, err
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("settings: expr migration %q: %w", key, err)
	}
	return func(saved, defaults map[string]any) error {
		result, err := exprlang.Run(program, ruleEnvironment(saved, defaults))
		if err != nil {
			return fmt.Errorf("expr %q: %w", expression, err)
		}
		assign(saved, key, result)
		return nil
	}, nil
}
