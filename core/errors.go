package core

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
)

// ErrNotFound is a sentinel error for "not found" cases
var ErrNotFound = errors.New("not found")

// ErrTransientProvider marks network failures and 5xx responses from Trello, GitHub or Google
var ErrTransientProvider = errors.New("transient provider error")

// ErrSyncTokenInvalidated is returned by the calendar client when Google answers 410 Gone for a sync token
var ErrSyncTokenInvalidated = errors.New("sync token invalidated")

// ErrStateInvariant marks data that breaks an assumption the relay depends on,
// e.g. a calendar pull that does not contain exactly one changed event
var ErrStateInvariant = errors.New("state invariant violated")

// ErrInvalidInput marks requests that name unknown providers, credentials or services
var ErrInvalidInput = errors.New("invalid input")

// ErrNotConfigured is returned when an integration's credential batch is incomplete
var ErrNotConfigured = errors.New("integration credentials are not configured")

var notFoundRegex = regexp.MustCompile(`(?i)not found`)

// IsNotFoundError checks if an error is a "not found" error
// This function handles both the ErrNotFound sentinel error and legacy string-based errors
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return true
	}
	return notFoundRegex.MatchString(err.Error())
}

// VerificationError is returned when an inbound webhook fails authentication.
// StatusCode is the HTTP status the provider must receive.
type VerificationError struct {
	StatusCode int
	Reason     string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("webhook verification failed (%d): %s", e.StatusCode, e.Reason)
}

// NewForbiddenError rejects a request with 403
func NewForbiddenError(reason string) *VerificationError {
	return &VerificationError{StatusCode: http.StatusForbidden, Reason: reason}
}

// NewGoneError rejects a request with 410, which makes Trello delete the webhook
func NewGoneError(reason string) *VerificationError {
	return &VerificationError{StatusCode: http.StatusGone, Reason: reason}
}

// NewBadRequestError rejects a malformed request
func NewBadRequestError(reason string) *VerificationError {
	return &VerificationError{StatusCode: http.StatusBadRequest, Reason: reason}
}

// AsVerificationError unwraps err into a *VerificationError if it is one
func AsVerificationError(err error) (*VerificationError, bool) {
	var verr *VerificationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// ProviderStatusError wraps a non-2xx response from a provider API. 5xx responses are transient.
type ProviderStatusError struct {
	Provider   string
	Operation  string
	StatusCode int
	Body       string
}

func (e *ProviderStatusError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d: %s", e.Provider, e.Operation, e.StatusCode, e.Body)
}

func (e *ProviderStatusError) Is(target error) bool {
	switch target {
	case ErrTransientProvider:
		return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}
