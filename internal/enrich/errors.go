package enrich

import (
	"context"
	"errors"
	"net"
)

type transient interface {
	Transient() bool
}

// IsTransient reports whether a failed call is worth retrying: timeouts,
// rate limits and server side errors.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var t transient
	if errors.As(err, &t) {
		return t.Transient()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
