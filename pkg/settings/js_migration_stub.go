//go:build !js_eval

package settings

// JSMigration is unavailable without the js_eval build tag.
func JSMigration(key, expression string) (Migration, error) {
	if err := requireRule("js", key, expression); err != nil {
		return nil, err
	}
	return nil, ErrJSUnavailable
}
