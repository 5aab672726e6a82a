package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

var (
	// ErrRateLimited marks an explicit upstream rate-limit signal. It is never retried.
	ErrRateLimited = errors.New("rate limited")
	// ErrMalformed marks a payload that could not be decoded.
	ErrMalformed = errors.New("malformed payload")
	// ErrRejected marks an upstream API that answered with an explicit error
	// such as an invalid key. Retrying cannot help.
	ErrRejected = errors.New("request rejected")
	// ErrNoAdapter is returned for descriptors whose protocol has no adapter.
	ErrNoAdapter = errors.New("no adapter for protocol")
)

// StatusError is a non-2xx response that is not a rate limit.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

// IsRateLimited reports whether err carries a rate-limit signal.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsNetworkFailure reports an outright transport failure: the request never
// produced a response (refused, reset, DNS, TLS) and did not merely time out.
func IsNetworkFailure(err error) bool {
	if err == nil || IsTimeout(err) || IsRateLimited(err) || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return false
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return true
	}
	var oe *net.OpError
	return errors.As(err, &oe)
}

// IsTransient reports whether another attempt may succeed.
func IsTransient(err error) bool {
	if err == nil || IsRateLimited(err) || errors.Is(err, ErrNoAdapter) || errors.Is(err, ErrRejected) || errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
