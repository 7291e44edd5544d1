package core

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	assert.False(t, IsNotFoundError(nil))
	assert.True(t, IsNotFoundError(ErrNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("failed to get integration: %w", ErrNotFound)))
	assert.True(t, IsNotFoundError(errors.New("integration Not Found")))
	assert.False(t, IsNotFoundError(errors.New("connection refused")))
}

func TestProviderStatusError_Is(t *testing.T) {
	t.Run("5xx is transient", func(t *testing.T) {
		err := fmt.Errorf("failed to list boards: %w", &ProviderStatusError{Provider: "trello", StatusCode: 502})
		assert.ErrorIs(t, err, ErrTransientProvider)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("404 is not found", func(t *testing.T) {
		err := &ProviderStatusError{Provider: "github", StatusCode: http.StatusNotFound}
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrTransientProvider)
	})

	t.Run("401 is neither", func(t *testing.T) {
		err := &ProviderStatusError{Provider: "github", StatusCode: http.StatusUnauthorized}
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrTransientProvider)
	})
}

func TestAsVerificationError(t *testing.T) {
	wrapped := fmt.Errorf("trello: %w", NewGoneError("secret mismatch"))

	verr, ok := AsVerificationError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, http.StatusGone, verr.StatusCode)
	assert.Equal(t, "secret mismatch", verr.Reason)

	_, ok = AsVerificationError(errors.New("boom"))
	assert.False(t, ok)
}
