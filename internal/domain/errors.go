package domain

import "errors"

var (
	// ErrFetchFailed is returned when the upstream food database call fails:
	// non-success status, timeout or an undecodable body.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrInvalidInput is returned when caller-supplied parameters are invalid
	// (empty query, non-numeric identifier, non-object detail payload).
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured is returned when an optional collaborator has no credentials
	ErrNotConfigured = errors.New("service not configured")

	// ErrExtractionFailed is returned when the vision service answer cannot be used
	ErrExtractionFailed = errors.New("ingredient extraction failed")
)

// Error kinds reported on the wire.
const (
	KindFetchFailed   = "fetch-failed"
	KindInvalidInput  = "invalid-input"
	KindNotConfigured = "not-configured"
	KindInternal      = "internal"
)

// ErrorKind maps an error to the kind reported to API callers.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrFetchFailed), errors.Is(err, ErrExtractionFailed):
		return KindFetchFailed
	case errors.Is(err, ErrNotConfigured):
		return KindNotConfigured
	default:
		return KindInternal
	}
}
