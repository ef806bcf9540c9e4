// vibrator/result.go
package vibrator

// Status is the three-way outcome of every hardware-facing call.
type Status uint8

const (
	StatusOK Status = iota
	StatusUnsupported
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnsupported:
		return "unsupported"
	default:
		return "failed"
	}
}

// HalResult carries Ok(T) | Unsupported | Failed(err). Higher layers never
// see raw backend errors outside the Failed arm.
type HalResult[T any] struct {
	status Status
	value  T
	err    error
}

func Ok[T any](v T) HalResult[T] { return HalResult[T]{status: StatusOK, value: v} }

func Unsupported[T any]() HalResult[T] { return HalResult[T]{status: StatusUnsupported} }

func Failed[T any](err error) HalResult[T] { return HalResult[T]{status: StatusFailed, err: err} }

func (r HalResult[T]) Status() Status      { return r.status }
func (r HalResult[T]) IsOk() bool          { return r.status == StatusOK }
func (r HalResult[T]) IsUnsupported() bool { return r.status == StatusUnsupported }
func (r HalResult[T]) IsFailed() bool      { return r.status == StatusFailed }

// Value returns the Ok payload; meaningful only when IsOk.
func (r HalResult[T]) Value() T { return r.value }

// Err returns the failure cause; nil unless IsFailed.
func (r HalResult[T]) Err() error { return r.err }

// DurationOrSentinel flattens a duration result to the caller convention:
// the value on Ok, 0 on Unsupported, -1 on Failed.
func DurationOrSentinel(r HalResult[int64]) int64 {
	switch r.status {
	case StatusOK:
		return r.value
	case StatusUnsupported:
		return 0
	default:
		return -1
	}
}
