package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// MsToDuration converts a millisecond count to a time.Duration.
// Negative inputs are coerced to zero.
func MsToDuration(ms int64) time.Duration {
	if ms < 0 {
		ms = 0
	}
	return time.Duration(ms) * time.Millisecond
}

// DurationMs returns d in whole milliseconds.
func DurationMs(d time.Duration) int64 { return d.Milliseconds() }
