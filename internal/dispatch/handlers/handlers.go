// Package handlers contains the specialized dispatch handlers. Each handler
// owns one module type and creates the matching entity record inside the
// coordinator's transaction.
package handlers

import "strings"

func stringField(data map[string]any, key string) string {
	v, ok := data[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func boolField(data map[string]any, key string) bool {
	v, ok := data[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

func intField(data map[string]any, key string) int {
	switch v := data[key].(type) {
	case int:
		return v
	case float64: // JSON numbers decode as float64
		return int(v)
	default:
		return 0
	}
}
