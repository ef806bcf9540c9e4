// vibrator/config.go
package vibrator

import "time"

// BackoffConfig defines retry backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config tunes the retry contract. The values are policy, not semantics:
// any budget must yield the same Ok/Unsupported/Failed classification.
type Config struct {
	// MaxAttempts bounds total tries per call, reconnecting between
	// transient failures. Minimum 1.
	MaxAttempts int
	Backoff     BackoffConfig
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		Backoff: BackoffConfig{
			InitialDelay: 50 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     500 * time.Millisecond,
			Jitter:       true,
		},
	}
}
