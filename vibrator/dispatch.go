// vibrator/dispatch.go
package vibrator

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// completionRelay marshals hardware-thread completion signals to the
// registered listener. It is allocated separately from the Controller so the
// closures handed to the backend can outlive a controller that is being
// disposed: a late callback observes the alive guard and drops the
// notification instead of touching torn-down state.
type completionRelay struct {
	actuatorID int32
	listener   CompletionListener
	alive      atomic.Bool
	log        zerolog.Logger
}

func newCompletionRelay(actuatorID int32, listener CompletionListener, log zerolog.Logger) *completionRelay {
	r := &completionRelay{
		actuatorID: actuatorID,
		listener:   listener,
		log:        log,
	}
	r.alive.Store(true)
	return r
}

// Callback binds one request id to this relay. The backend invokes the
// returned function at most once, from its own goroutine; delivery carries
// exactly the (actuatorID, requestID) pair bound here. Never blocks on the
// hardware path beyond the listener's own work.
func (r *completionRelay) Callback(requestID int64) func() {
	return func() {
		if !r.alive.Load() {
			r.log.Debug().
				Int32("actuator", r.actuatorID).
				Int64("request", requestID).
				Msg("completion after dispose, dropped")
			return
		}
		r.listener.OnComplete(r.actuatorID, requestID)
	}
}

// shutdown suppresses all future deliveries. Signals already past the guard
// still reach the listener; listener implementations are required to be
// thread-safe, so this races benignly.
func (r *completionRelay) shutdown() { r.alive.Store(false) }
