package scrapecreators

import (
	"errors"
	"fmt"
)

// ErrMalformedPayload indicates the upstream body was not valid JSON or
// carried none of the expected fields. Never retried.
var ErrMalformedPayload = errors.New("scrapecreators: malformed response payload")

// UpstreamError represents a failed call to the scraping provider.
// Transient marks the retryable class (network failure, timeout, 429,
// 502/503/504); everything else is permanent and must not be retried.
type UpstreamError struct {
	// Status is the HTTP status code, or 0 for transport-level failures.
	Status int

	// Body is a truncated copy of the response body for diagnostics.
	Body string

	// Transient reports whether the failure class is retryable.
	Transient bool

	// Err is the underlying transport error, if any.
	Err error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scrapecreators: upstream request failed: %v", e.Err)
	}
	return fmt.Sprintf("scrapecreators: upstream status %d: %s", e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// transientStatus reports whether an HTTP status is in the retryable class.
func transientStatus(status int) bool {
	switch status {
	case 429, 502, 503, 504:
		return true
	}
	return false
}

// IsTransient reports whether the error is a retryable upstream failure.
func IsTransient(err error) bool {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Transient
	}
	return false
}

// IsPermanent reports whether the error is an upstream failure that must
// not be retried (4xx, malformed payloads).
func IsPermanent(err error) bool {
	if errors.Is(err, ErrMalformedPayload) {
		return true
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return !ue.Transient
	}
	return false
}

// truncateBody caps a response body copy kept for diagnostics.
func truncateBody(b []byte) string {
	const maxBody = 200
	if len(b) > maxBody {
		return string(b[:maxBody])
	}
	return string(b)
}
