package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssertInvariant(t *testing.T) {
	assert.NotPanics(t, func() { AssertInvariant(true, "ok") })
	assert.PanicsWithValue(t, "invariant violated - guild id must be set", func() {
		AssertInvariant(false, "guild id must be set")
	})
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{name: "Shorter than max", input: "hello", max: 10, expected: "hello"},
		{name: "Exactly max", input: "hello", max: 5, expected: "hello"},
		{name: "Longer than max", input: "hello world", max: 8, expected: "hello..."},
		{name: "Multibyte runes", input: "ééééééé", max: 5, expected: "éé..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truncate(tt.input, tt.max))
		})
	}

	t.Run("Discord field limit", func(t *testing.T) {
		out := Truncate(strings.Repeat("a", 2000), 1024)
		assert.Len(t, out, 1024)
		assert.True(t, strings.HasSuffix(out, "..."))
	})
}

func TestValueOrDefault(t *testing.T) {
	assert.Equal(t, "value", ValueOrDefault("value", "fallback"))
	assert.Equal(t, "fallback", ValueOrDefault("", "fallback"))
	assert.Equal(t, "fallback", ValueOrDefault("   ", "fallback"))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "***", MaskSecret("abc"))
	assert.Equal(t, "********5678", MaskSecret("abcd12345678"))
}
