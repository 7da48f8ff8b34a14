package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the server returned 404 without a parseable message.
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimited means the server returned 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrUpstreamFailure covers 5xx responses and circuit-open rejections.
	ErrUpstreamFailure = errors.New("upstream failure")
)

// BadResponseError is a non-success response carrying a server-provided
// message. These are user-visible: the auth flow surfaces Message
// verbatim, unlike unexpected errors which are only logged.
type BadResponseError struct {
	StatusCode int
	Message    string
}

func (e *BadResponseError) Error() string {
	return fmt.Sprintf("bad response (HTTP %d): %s", e.StatusCode, e.Message)
}

// AsBadResponse unwraps err to a *BadResponseError if one is in the chain.
func AsBadResponse(err error) (*BadResponseError, bool) {
	var bre *BadResponseError
	if errors.As(err, &bre) {
		return bre, true
	}
	return nil, false
}
