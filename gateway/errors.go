package gateway

import "errors"

// Error kinds a caller can match with errors.Is, per §7's taxonomy:
// gateway non-OK responses, decode failures, and not-found conditions are
// distinct from a raw transport failure.
var (
	// ErrNotFound is returned for a 404 from a status lookup.
	ErrNotFound = errors.New("gateway: not found")
	// ErrPending indicates a status GET whose body was the literal text
	// "Pending" rather than a confirmation JSON object.
	ErrPending = errors.New("gateway: transaction pending")
	// ErrGateway wraps a non-2xx response that isn't 404/Pending.
	ErrGateway = errors.New("gateway: non-OK response")
	// ErrDecode wraps a response body that didn't parse the way the
	// endpoint's contract promises.
	ErrDecode = errors.New("gateway: could not decode response")
)
