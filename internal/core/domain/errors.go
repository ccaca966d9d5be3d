package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid request input.
	// No upstream I/O is attempted once this is raised.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoVideos indicates a query resolved to zero videos.
	// This is a soft "no data" outcome, not a transport failure.
	ErrNoVideos = errors.New("no videos found")

	// ErrNoComments indicates all resolved videos yielded zero comments.
	// Distinct from ErrNoVideos so callers can tell a bad query from a
	// degraded upstream.
	ErrNoComments = errors.New("no comments collected")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrLLMUnavailable indicates no language model backend is configured.
	// Summary features degrade to the deterministic manual fallback.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)

// IsNoData reports whether an error is one of the soft empty-result
// outcomes rather than a hard failure.
func IsNoData(err error) bool {
	return errors.Is(err, ErrNoVideos) || errors.Is(err, ErrNoComments)
}
