package utils

import (
	"fmt"
	"strings"
)

func AssertInvariant(condition bool, message string) {
	if !condition {
		panic("invariant violated - " + message)
	}
}

// Truncate shortens s to at most max runes, appending an ellipsis when it cuts.
// Discord rejects embed field values longer than 1024 characters.
func Truncate(s string, max int) string {
	AssertInvariant(max > 3, "max must be greater than 3")

	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// ValueOrDefault returns value unless it is blank
func ValueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// MaskSecret keeps the last four characters of a secret for logging
func MaskSecret(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return fmt.Sprintf("%s%s", strings.Repeat("*", len(secret)-4), secret[len(secret)-4:])
}
