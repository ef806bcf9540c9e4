// vibrator/controller.go
package vibrator

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"hapticctl-go/types"
	"hapticctl-go/x/timex"
)

const (
	stateReady int32 = iota + 1
	stateDisposed
)

// Controller owns exactly one actuator handle and exposes its command
// surface. All public operations are safe from any goroutine; they are not
// mutually exclusive against each other. Ordering between, say, an Off and
// a racing SetAmplitude is the caller's discipline.
//
// Lifecycle is Ready -> Disposed (terminal). Every operation on a disposed
// controller reports Failed(ErrDisposed).
type Controller struct {
	id    int32
	conn  Connector
	cfg   Config
	log   zerolog.Logger
	relay *completionRelay

	state atomic.Int32

	mu  sync.Mutex // guards hal (swapped only on reconnect)
	hal HalWrapper

	randMu sync.Mutex
	rand   *rand.Rand
}

// New resolves the actuator handle through conn and returns a Ready
// controller. Discovery above this layer already guaranteed a valid target:
// failure to obtain a handle, or a nil listener, is an integration bug and
// panics rather than returning an error.
func New(actuatorID int32, conn Connector, listener CompletionListener, cfg Config, log zerolog.Logger) *Controller {
	if conn == nil {
		panic("vibrator: nil connector")
	}
	if listener == nil {
		panic("vibrator: nil completion listener")
	}
	h, err := conn.Connect()
	if err != nil || h == nil {
		panic("vibrator: failed to connect to actuator hal: " + errString(err))
	}
	log = log.With().Int32("actuator", actuatorID).Logger()
	c := &Controller{
		id:    actuatorID,
		conn:  conn,
		cfg:   cfg,
		log:   log,
		relay: newCompletionRelay(actuatorID, listener, log),
		hal:   h,
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	c.state.Store(stateReady)
	if res := doWithRetryVoid(c, func(h HalWrapper) error { return h.Init() }, "init"); res.IsFailed() {
		log.Warn().Err(res.Err()).Msg("hal init failed")
	}
	return c
}

// ActuatorID returns the immutable actuator identifier.
func (c *Controller) ActuatorID() int32 { return c.id }

// Dispose tears the controller down. Idempotent. A hardware completion
// callback already in flight is dropped by the relay instead of reaching the
// listener.
func (c *Controller) Dispose() {
	if !c.state.CompareAndSwap(stateReady, stateDisposed) {
		return
	}
	c.relay.shutdown()
	c.log.Debug().Msg("controller disposed")
}

func (c *Controller) disposed() bool { return c.state.Load() == stateDisposed }

func (c *Controller) handle() HalWrapper {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hal
}

// reconnect swaps in a fresh handle after a transient disconnect. On failure
// the stale handle is kept; the next attempt will fail transiently again
// until the budget runs out.
func (c *Controller) reconnect() {
	h, err := c.conn.Connect()
	if err != nil || h == nil {
		c.log.Warn().Err(err).Msg("actuator reconnect failed")
		return
	}
	if err := h.Init(); err != nil {
		c.log.Warn().Err(err).Msg("actuator re-init failed")
	}
	c.mu.Lock()
	c.hal = h
	c.mu.Unlock()
}

func (c *Controller) backoffDelay(attempt int) time.Duration {
	c.randMu.Lock()
	defer c.randMu.Unlock()
	return NextBackoffDelay(c.cfg.Backoff, attempt, c.rand)
}

// -----------------------------------------------------------------------------
// Command surface
// -----------------------------------------------------------------------------

// IsAvailable pings the actuator through the retry contract.
func (c *Controller) IsAvailable() bool {
	return doWithRetryVoid(c, func(h HalWrapper) error { return h.Ping() }, "ping").IsOk()
}

// On drives the actuator until timeoutMs elapses. The duration payload is
// timeoutMs on success and 0 on Unsupported; completion for requestID is
// signalled asynchronously when the vibration ends.
func (c *Controller) On(timeoutMs int64, requestID int64) HalResult[int64] {
	cb := c.relay.Callback(requestID)
	res := doWithRetryVoid(c, func(h HalWrapper) error {
		return h.On(timex.MsToDuration(timeoutMs), cb)
	}, "on")
	return mapDuration(res, timeoutMs)
}

// Off stops the current vibration. It does not guarantee suppression of an
// already-in-flight completion callback.
func (c *Controller) Off() HalResult[struct{}] {
	return doWithRetryVoid(c, func(h HalWrapper) error { return h.Off() }, "off")
}

func (c *Controller) SetAmplitude(amplitude float32) HalResult[struct{}] {
	return doWithRetryVoid(c, func(h HalWrapper) error { return h.SetAmplitude(amplitude) }, "setAmplitude")
}

func (c *Controller) SetExternalControl(enabled bool) HalResult[struct{}] {
	return doWithRetryVoid(c, func(h HalWrapper) error { return h.SetExternalControl(enabled) }, "setExternalControl")
}

// PerformEffect plays a canned effect; the payload is the hardware-reported
// duration in milliseconds.
func (c *Controller) PerformEffect(effect types.Effect, strength types.EffectStrength, requestID int64) HalResult[int64] {
	cb := c.relay.Callback(requestID)
	return doWithRetry(c, func(h HalWrapper) (int64, error) {
		d, err := h.PerformEffect(effect, strength, cb)
		return timex.DurationMs(d), err
	}, "performEffect")
}

// PerformComposed plays an ordered composite sequence; the payload is the
// hardware-reported duration in milliseconds.
func (c *Controller) PerformComposed(effects []types.CompositeEffect, requestID int64) HalResult[int64] {
	cb := c.relay.Callback(requestID)
	return doWithRetry(c, func(h HalWrapper) (int64, error) {
		d, err := h.PerformComposed(effects, cb)
		return timex.DurationMs(d), err
	}, "performComposedEffect")
}

// PerformPwle compiles the envelope waveform (see CompilePwle) and plays the
// resulting primitive sequence. The duration payload is the compiler's total,
// not a hardware-reported figure.
func (c *Controller) PerformPwle(segments []types.ActivePwle, braking types.Braking, requestID int64) HalResult[int64] {
	primitives, totalMs := CompilePwle(segments, braking)
	cb := c.relay.Callback(requestID)
	res := doWithRetryVoid(c, func(h HalWrapper) error {
		return h.PerformPwle(primitives, cb)
	}, "performPwleEffect")
	return mapDuration(res, totalMs)
}

// AlwaysOnEnable configures persistent background effect slot id,
// independent of any request id.
func (c *Controller) AlwaysOnEnable(id int32, effect types.Effect, strength types.EffectStrength) HalResult[struct{}] {
	return doWithRetryVoid(c, func(h HalWrapper) error {
		return h.AlwaysOnEnable(id, effect, strength)
	}, "alwaysOnEnable")
}

func (c *Controller) AlwaysOnDisable(id int32) HalResult[struct{}] {
	return doWithRetryVoid(c, func(h HalWrapper) error { return h.AlwaysOnDisable(id) }, "alwaysOnDisable")
}

// GetInfo reads the capability snapshot. suggestedSafeRangeHz is injected
// into the returned frequency mapping as a policy hint; it is not read from
// hardware. Absent hardware fields stay absent.
func (c *Controller) GetInfo(suggestedSafeRangeHz float32) HalResult[types.VibratorInfo] {
	res := doWithRetry(c, func(h HalWrapper) (HalInfo, error) { return h.GetInfo() }, "getInfo")
	switch res.Status() {
	case StatusOK:
		raw := res.Value()
		return Ok(types.VibratorInfo{
			ActuatorID:          c.id,
			Capabilities:        raw.Capabilities,
			SupportedEffects:    raw.SupportedEffects,
			SupportedBraking:    raw.SupportedBraking,
			SupportedPrimitives: raw.SupportedPrimitives,
			QFactor:             raw.QFactor,
			Frequency: types.FrequencyMapping{
				MinFrequencyHz:        raw.MinFrequencyHz,
				ResonantFrequencyHz:   raw.ResonantFrequencyHz,
				FrequencyResolutionHz: raw.FrequencyResolutionHz,
				SuggestedSafeRangeHz:  suggestedSafeRangeHz,
				MaxAmplitudes:         raw.MaxAmplitudes,
			},
		})
	case StatusUnsupported:
		return Unsupported[types.VibratorInfo]()
	default:
		return Failed[types.VibratorInfo](res.Err())
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// mapDuration lifts a void result into the duration convention used by On
// and PerformPwle: okMs on success, 0 on Unsupported.
func mapDuration(res HalResult[struct{}], okMs int64) HalResult[int64] {
	switch res.Status() {
	case StatusOK:
		return Ok(okMs)
	case StatusUnsupported:
		return Unsupported[int64]()
	default:
		return Failed[int64](res.Err())
	}
}

func errString(err error) string {
	if err == nil {
		return "no handle"
	}
	return err.Error()
}
