package models

import "net/http"

type RelayResultKind string

const (
	RelayResultOK          RelayResultKind = "ok"
	RelayResultRecoverable RelayResultKind = "recoverable"
	RelayResultFatal       RelayResultKind = "fatal"
)

// RelayResult is the outcome of handling one inbound webhook.
// Only fatal results change the status returned to the provider.
type RelayResult struct {
	Kind       RelayResultKind
	StatusCode int
	Reason     string
	Err        error
	Delivered  int
}

func RelayOK(delivered int, reason string) RelayResult {
	return RelayResult{Kind: RelayResultOK, StatusCode: http.StatusOK, Reason: reason, Delivered: delivered}
}

func RelayRecoverable(reason string, err error) RelayResult {
	return RelayResult{Kind: RelayResultRecoverable, StatusCode: http.StatusOK, Reason: reason, Err: err}
}

func RelayFatal(statusCode int, reason string, err error) RelayResult {
	return RelayResult{Kind: RelayResultFatal, StatusCode: statusCode, Reason: reason, Err: err}
}
