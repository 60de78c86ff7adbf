package similarity

import "errors"

// Sentinel errors surfaced by the aggregator. The HTTP layer maps these to
// status codes (404 / 400 / 502); everything else is treated as internal.
var (
	// ErrNotFound means the base article does not exist in the metadata store.
	// An article that exists but has no embedded chunks is NOT an error - the
	// search returns an empty result instead.
	ErrNotFound = errors.New("article not found")

	// ErrInvalidArgument means a search option was out of range. Rejected
	// before any store lookup, so no partial work happens.
	ErrInvalidArgument = errors.New("invalid search argument")

	// ErrBackendUnavailable means the chunk or article store failed. The
	// underlying cause is wrapped for logging; no internal retries.
	ErrBackendUnavailable = errors.New("backend unavailable")
)
