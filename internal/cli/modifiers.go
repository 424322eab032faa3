package cli

import (
	"fmt"
	"strings"
)

// parseModifierArgs turns key=value arguments into fetch modifiers. A key
// given more than once collects its values into a list.
func parseModifierArgs(args []string) (map[string]any, error) {
	modifiers := make(map[string]any, len(args))
	for _, arg := range args {
		key, val, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid modifier %q: want key=value", arg)
		}

		switch existing := modifiers[key].(type) {
		case nil:
			modifiers[key] = val
		case []any:
			modifiers[key] = append(existing, val)
		default:
			modifiers[key] = []any{existing, val}
		}
	}
	return modifiers, nil
}
