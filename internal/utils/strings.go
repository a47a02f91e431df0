package utils

import "strings"

// NormalizeString trims whitespace and converts to lowercase
func NormalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeExtension trims whitespace, strips a leading dot, and
// uppercases, matching how asset extensions are stored on the model
func NormalizeExtension(s string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "."))
}
