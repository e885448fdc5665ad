package realtime

import "errors"

// Connect failures are classified into one of these sentinels, wrapped
// with the underlying detail. None of them are retried by the client;
// retry policy belongs to the caller.
var (
	// ErrAuthRejected marks an upgrade rejected with 401 or 403.
	ErrAuthRejected = errors.New("authentication rejected")
	// ErrInvalidEndpoint marks unusable connection parameters: a missing
	// or malformed endpoint, an unknown deployment, or missing credentials.
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	// ErrNetworkUnreachable marks dial, DNS and service-availability
	// failures.
	ErrNetworkUnreachable = errors.New("network unreachable")
)
