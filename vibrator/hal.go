// vibrator/hal.go
package vibrator

import (
	"time"

	"hapticctl-go/types"
)

// HalWrapper is the narrow blocking call surface of one physical actuator.
// Implementations must be safe for concurrent use; calls block the caller
// until the hardware service acknowledges the request.
//
// Completion callbacks passed to On/Perform* are invoked from the backend's
// own goroutine when the vibration naturally finishes or its timeout elapses,
// at most once per request. Calls that return an error never fire their
// callback.
//
// Capabilities the actuator does not implement return ErrUnsupported; a dead
// or disconnected hardware service returns ErrUnavailable.
type HalWrapper interface {
	// Init prepares the connection. Called once per connect.
	Init() error

	// Ping is a liveness probe.
	Ping() error

	// On drives the actuator at default strength until timeout.
	On(timeout time.Duration, onComplete func()) error

	// Off stops the current vibration. Does not suppress an in-flight
	// completion callback.
	Off() error

	SetAmplitude(amplitude float32) error
	SetExternalControl(enabled bool) error

	// PerformEffect plays a canned effect and reports its nominal duration.
	PerformEffect(effect types.Effect, strength types.EffectStrength, onComplete func()) (time.Duration, error)

	// PerformComposed plays an ordered primitive composition and reports its
	// nominal duration.
	PerformComposed(effects []types.CompositeEffect, onComplete func()) (time.Duration, error)

	// PerformPwle plays a compiled primitive sequence.
	PerformPwle(primitives []types.PrimitivePwle, onComplete func()) error

	// AlwaysOnEnable configures persistent background effect slot id.
	AlwaysOnEnable(id int32, effect types.Effect, strength types.EffectStrength) error
	AlwaysOnDisable(id int32) error

	// GetInfo reads the capability snapshot. Fields the hardware does not
	// report come back absent, never zero-valued.
	GetInfo() (HalInfo, error)
}

// HalInfo is the raw hardware-reported capability snapshot, before the
// controller injects actuator id and the caller's safe-range hint.
type HalInfo struct {
	Capabilities          types.Optional[types.Capabilities]
	SupportedEffects      types.Optional[[]types.Effect]
	SupportedBraking      types.Optional[[]types.Braking]
	SupportedPrimitives   types.Optional[[]types.CompositePrimitiveID]
	QFactor               types.Optional[float32]
	MinFrequencyHz        types.Optional[float32]
	ResonantFrequencyHz   types.Optional[float32]
	FrequencyResolutionHz types.Optional[float32]
	MaxAmplitudes         types.Optional[[]float32]
}

// Connector resolves a fresh actuator handle. It is injected at construction
// time and re-invoked by the retry layer after a transient disconnect.
type Connector interface {
	Connect() (HalWrapper, error)
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func() (HalWrapper, error)

func (f ConnectorFunc) Connect() (HalWrapper, error) { return f() }

// CompletionListener receives asynchronous completion notifications.
// OnComplete is invoked from an unspecified goroutine; implementations must
// be safe for concurrent use.
type CompletionListener interface {
	OnComplete(actuatorID int32, requestID int64)
}

// ListenerFunc adapts a function to CompletionListener.
type ListenerFunc func(actuatorID int32, requestID int64)

func (f ListenerFunc) OnComplete(actuatorID int32, requestID int64) { f(actuatorID, requestID) }
