// vibrator/errors.go
package vibrator

import "errors"

var (
	// ErrUnsupported: the actuator declines this capability. Expected,
	// non-fatal; never retried.
	ErrUnsupported = errors.New("unsupported")

	// ErrUnavailable: transient connectivity failure (hardware service died
	// or disconnected). Triggers reconnect-and-retry within budget.
	ErrUnavailable = errors.New("unavailable")

	// ErrDisposed: operation called on a disposed controller. Caller bug.
	ErrDisposed = errors.New("disposed")

	// ErrRetriesExhausted wraps the last transient failure once the retry
	// budget is spent.
	ErrRetriesExhausted = errors.New("retries_exhausted")
)
