// vibrator/retry.go
package vibrator

import (
	"errors"
	"fmt"
	"time"
)

// doWithRetry runs one hardware operation against the current handle with
// the retry contract every call in this layer goes through:
//
//   - success                  -> Ok
//   - ErrUnsupported           -> Unsupported, never retried
//   - ErrUnavailable           -> reconnect and retry within budget
//   - anything else, or budget -> Failed
//
// Safe to invoke from any goroutine; the handle swap on reconnect is
// serialized inside the controller.
func doWithRetry[T any](c *Controller, fn func(HalWrapper) (T, error), name string) HalResult[T] {
	if c.disposed() {
		return Failed[T](fmt.Errorf("%s: %w", name, ErrDisposed))
	}
	budget := c.cfg.MaxAttempts
	if budget < 1 {
		budget = 1
	}
	for attempt := 1; ; attempt++ {
		v, err := fn(c.handle())
		switch {
		case err == nil:
			return Ok(v)

		case errors.Is(err, ErrUnsupported):
			return Unsupported[T]()

		case errors.Is(err, ErrUnavailable):
			if attempt >= budget {
				c.log.Warn().Str("call", name).Int("attempts", attempt).
					Msg("actuator unavailable, retries exhausted")
				return Failed[T](fmt.Errorf("%s: %w: %w", name, ErrRetriesExhausted, err))
			}
			delay := c.backoffDelay(attempt)
			c.log.Debug().Str("call", name).Int("attempt", attempt).
				Dur("backoff", delay).Msg("actuator unavailable, reconnecting")
			if delay > 0 {
				time.Sleep(delay)
			}
			c.reconnect()

		default:
			c.log.Warn().Str("call", name).Err(err).Msg("actuator call failed")
			return Failed[T](fmt.Errorf("%s: %w", name, err))
		}
	}
}

// doWithRetryVoid applies the same contract to calls with no payload.
func doWithRetryVoid(c *Controller, fn func(HalWrapper) error, name string) HalResult[struct{}] {
	return doWithRetry(c, func(h HalWrapper) (struct{}, error) {
		return struct{}{}, fn(h)
	}, name)
}
