// vibrator/adaptor_drv2605.go
package vibrator

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"tinygo.org/x/drivers"

	"hapticctl-go/drivers/drv2605"
	"hapticctl-go/types"
)

// drv2605Hal drives a DRV2605 haptic controller as a HalWrapper backend.
// The chip has no completion interrupt wired here, so completion is
// signalled from a timer armed with the effect's nominal duration.
//
// PWLE playback, external control and always-on slots are not implemented
// by this part; those calls report ErrUnsupported.
type drv2605Hal struct {
	dev     drv2605.Device
	pending drv2605.Config // applied by Init on every (re)connect

	mu  sync.Mutex
	cur *drvPlayback
}

type drvPlayback struct {
	fired atomic.Bool
	done  func()
}

func (p *drvPlayback) fire() {
	if p.done != nil && p.fired.CompareAndSwap(false, true) {
		p.done()
	}
}

// NewDRV2605Hal builds a HalWrapper over a DRV2605 on the given I2C bus.
func NewDRV2605Hal(bus drivers.I2C, cfg drv2605.Config) HalWrapper {
	return &drv2605Hal{dev: drv2605.New(bus), pending: cfg}
}

// ROM library waveform ids per effect and strength tier.
var drvWaveforms = map[types.Effect][3]uint8{
	//                              light, medium, strong
	types.EffectClick:       {3, 2, 1},    // sharp/strong click 30..100%
	types.EffectDoubleClick: {28, 27, 10}, // double clicks
	types.EffectTick:        {26, 25, 24}, // short ticks
	types.EffectThud:        {9, 8, 7},    // soft bumps
	types.EffectPop:         {30, 29, 29},
	types.EffectHeavyClick:  {19, 18, 17}, // strong clicks
	types.EffectTextureTick: {23, 22, 21},
}

// Nominal durations for completion timers.
var drvDurations = map[types.Effect]time.Duration{
	types.EffectClick:       30 * time.Millisecond,
	types.EffectDoubleClick: 80 * time.Millisecond,
	types.EffectTick:        15 * time.Millisecond,
	types.EffectThud:        40 * time.Millisecond,
	types.EffectPop:         20 * time.Millisecond,
	types.EffectHeavyClick:  35 * time.Millisecond,
	types.EffectTextureTick: 10 * time.Millisecond,
}

func drvErr(err error) error {
	if err == nil {
		return nil
	}
	// Any bus-level failure is treated as a transient disconnect.
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func (h *drv2605Hal) begin(done func()) *drvPlayback {
	p := &drvPlayback{done: done}
	h.mu.Lock()
	prev := h.cur
	h.cur = p
	h.mu.Unlock()
	if prev != nil {
		prev.fire()
	}
	return p
}

func (h *drv2605Hal) Init() error {
	return drvErr(h.dev.Configure(h.pending))
}

func (h *drv2605Hal) Ping() error {
	_, err := h.dev.DeviceID()
	return drvErr(err)
}

func (h *drv2605Hal) On(timeout time.Duration, onComplete func()) error {
	if err := h.dev.SetMode(drv2605.ModeRealtime); err != nil {
		return drvErr(err)
	}
	if err := h.dev.SetRealtimeValue(0xFF); err != nil {
		return drvErr(err)
	}
	p := h.begin(onComplete)
	time.AfterFunc(timeout, func() {
		_ = h.dev.SetRealtimeValue(0)
		_ = h.dev.Standby(true)
		p.fire()
	})
	return nil
}

func (h *drv2605Hal) Off() error {
	h.mu.Lock()
	p := h.cur
	h.cur = nil
	h.mu.Unlock()
	if err := h.dev.Stop(); err != nil {
		return drvErr(err)
	}
	if err := h.dev.SetRealtimeValue(0); err != nil {
		return drvErr(err)
	}
	if p != nil {
		p.fire()
	}
	return nil
}

func (h *drv2605Hal) SetAmplitude(amplitude float32) error {
	if amplitude < 0 {
		amplitude = 0
	}
	if amplitude > 1 {
		amplitude = 1
	}
	return drvErr(h.dev.SetRealtimeValue(uint8(amplitude * 0xFF)))
}

func (h *drv2605Hal) SetExternalControl(enabled bool) error { return ErrUnsupported }

func (h *drv2605Hal) PerformEffect(effect types.Effect, strength types.EffectStrength, onComplete func()) (time.Duration, error) {
	wf, ok := drvWaveforms[effect]
	if !ok {
		return 0, ErrUnsupported
	}
	tier := int(strength)
	if tier < 0 || tier > 2 {
		tier = 2
	}
	if err := h.dev.SetMode(drv2605.ModeInternalTrigger); err != nil {
		return 0, drvErr(err)
	}
	if err := h.dev.SetSequence([]uint8{wf[tier]}); err != nil {
		return 0, drvErr(err)
	}
	if err := h.dev.Go(); err != nil {
		return 0, drvErr(err)
	}
	dur := drvDurations[effect]
	p := h.begin(onComplete)
	time.AfterFunc(dur, p.fire)
	return dur, nil
}

func (h *drv2605Hal) PerformComposed(effects []types.CompositeEffect, onComplete func()) (time.Duration, error) {
	seq := make([]uint8, 0, drv2605.SequencerSlots)
	var totalMs int64
	for _, e := range effects {
		if e.DelayMs > 0 {
			// One wait slot covers up to 1270ms in 10ms steps.
			waits := (int(e.DelayMs) + 9) / 10
			if waits > 127 {
				return 0, ErrUnsupported
			}
			seq = append(seq, drv2605.WaitFlag|uint8(waits))
			totalMs += int64(waits) * 10
		}
		wf, ok := drvPrimitives[e.Primitive]
		if !ok {
			return 0, ErrUnsupported
		}
		seq = append(seq, wf)
		totalMs += drvPrimitiveMs
	}
	if len(seq) > drv2605.SequencerSlots {
		return 0, ErrUnsupported
	}
	if err := h.dev.SetMode(drv2605.ModeInternalTrigger); err != nil {
		return 0, drvErr(err)
	}
	if err := h.dev.SetSequence(seq); err != nil {
		return 0, drvErr(err)
	}
	if err := h.dev.Go(); err != nil {
		return 0, drvErr(err)
	}
	dur := time.Duration(totalMs) * time.Millisecond
	p := h.begin(onComplete)
	time.AfterFunc(dur, p.fire)
	return dur, nil
}

func (h *drv2605Hal) PerformPwle(primitives []types.PrimitivePwle, onComplete func()) error {
	return ErrUnsupported
}

func (h *drv2605Hal) AlwaysOnEnable(id int32, effect types.Effect, strength types.EffectStrength) error {
	return ErrUnsupported
}

func (h *drv2605Hal) AlwaysOnDisable(id int32) error { return ErrUnsupported }

func (h *drv2605Hal) GetInfo() (HalInfo, error) {
	if _, err := h.dev.DeviceID(); err != nil {
		return HalInfo{}, drvErr(err)
	}
	effects := make([]types.Effect, 0, len(drvWaveforms))
	for e := range drvWaveforms {
		effects = append(effects, e)
	}
	prims := make([]types.CompositePrimitiveID, 0, len(drvPrimitives))
	for p := range drvPrimitives {
		prims = append(prims, p)
	}
	// The chip reports no frequency characteristics or Q factor over this
	// interface; those fields stay absent.
	return HalInfo{
		Capabilities: types.Some(types.CapPerformCallback |
			types.CapAmplitudeControl | types.CapComposeEffects),
		SupportedEffects:    types.Some(effects),
		SupportedBraking:    types.Some([]types.Braking{types.BrakingNone}),
		SupportedPrimitives: types.Some(prims),
	}, nil
}

// drvPrimitives maps composite primitives to ROM waveforms.
var drvPrimitives = map[types.CompositePrimitiveID]uint8{
	types.PrimitiveNoop:      drv2605.WaitFlag | 1,
	types.PrimitiveClick:     1,
	types.PrimitiveThud:      7,
	types.PrimitiveSpin:      47,
	types.PrimitiveQuickRise: 82,
	types.PrimitiveSlowRise:  85,
	types.PrimitiveQuickFall: 88,
	types.PrimitiveLightTick: 24,
	types.PrimitiveLowTick:   26,
}

// drvPrimitiveMs is the nominal play time of one primitive waveform.
const drvPrimitiveMs = 20
