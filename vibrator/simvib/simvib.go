// Package simvib provides a simulated actuator backend implementing the full
// vibrator.HalWrapper surface. It backs host runs, the interactive console,
// and service-level tests, and can inject transient faults to exercise the
// reconnect path.
package simvib

import (
	"sync"
	"sync/atomic"
	"time"

	"hapticctl-go/types"
	"hapticctl-go/vibrator"
	"hapticctl-go/x/ramp"
)

// amplitude is modelled per-mille so the integer ramp helper can step it.
const levelTop = 1000

// Config describes the simulated motor. Zero values fall back to an LRA-ish
// default profile.
type Config struct {
	ResonantFrequencyHz   float32
	MinFrequencyHz        float32
	FrequencyResolutionHz float32
	QFactor               float32
}

func (c *Config) defaults() {
	if c.ResonantFrequencyHz == 0 {
		c.ResonantFrequencyHz = 150
	}
	if c.MinFrequencyHz == 0 {
		c.MinFrequencyHz = 65
	}
	if c.FrequencyResolutionHz == 0 {
		c.FrequencyResolutionHz = 5
	}
	if c.QFactor == 0 {
		c.QFactor = 11
	}
}

// Nominal canned-effect durations.
var effectDurations = map[types.Effect]time.Duration{
	types.EffectClick:       20 * time.Millisecond,
	types.EffectDoubleClick: 50 * time.Millisecond,
	types.EffectTick:        10 * time.Millisecond,
	types.EffectThud:        40 * time.Millisecond,
	types.EffectPop:         15 * time.Millisecond,
	types.EffectHeavyClick:  30 * time.Millisecond,
	types.EffectTextureTick: 8 * time.Millisecond,
}

// perPrimitiveMs is the nominal play time of one composite primitive.
const perPrimitiveMs = 20

// playback is one in-flight vibration request.
type playback struct {
	cancel chan struct{}
	fired  atomic.Bool
	done   func()
}

// fire invokes the completion callback at most once.
func (p *playback) fire() {
	if p.done != nil && p.fired.CompareAndSwap(false, true) {
		p.done()
	}
}

func (p *playback) stop() {
	select {
	case <-p.cancel:
	default:
		close(p.cancel)
	}
}

// Device is a simulated actuator. Safe for concurrent use.
type Device struct {
	cfg Config

	alive    atomic.Bool
	connects atomic.Int32

	level    atomic.Int32 // current amplitude, per-mille
	external atomic.Bool

	mu       sync.Mutex
	cur      *playback
	alwaysOn map[int32]alwaysOnSlot
}

type alwaysOnSlot struct {
	effect   types.Effect
	strength types.EffectStrength
}

func New(cfg Config) *Device {
	cfg.defaults()
	d := &Device{
		cfg:      cfg,
		alwaysOn: map[int32]alwaysOnSlot{},
	}
	d.alive.Store(true)
	return d
}

// Connector resolves this device as an actuator handle. While the device is
// killed, Connect fails transiently, modelling a restarting hardware service.
func (d *Device) Connector() vibrator.Connector {
	return vibrator.ConnectorFunc(func() (vibrator.HalWrapper, error) {
		if !d.alive.Load() {
			return nil, vibrator.ErrUnavailable
		}
		d.connects.Add(1)
		return d, nil
	})
}

// Connects reports how many times a handle was resolved.
func (d *Device) Connects() int32 { return d.connects.Load() }

// Kill makes every call fail with ErrUnavailable until Revive.
func (d *Device) Kill() { d.alive.Store(false) }

// Revive restores the device after Kill.
func (d *Device) Revive() { d.alive.Store(true) }

// KillFor kills the device and revives it after dur.
func (d *Device) KillFor(dur time.Duration) {
	d.Kill()
	time.AfterFunc(dur, d.Revive)
}

// Level returns the current amplitude in per-mille.
func (d *Device) Level() int32 { return d.level.Load() }

// AlwaysOnSlots returns a snapshot of configured slot ids.
func (d *Device) AlwaysOnSlots() []int32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]int32, 0, len(d.alwaysOn))
	for id := range d.alwaysOn {
		ids = append(ids, id)
	}
	return ids
}

func (d *Device) guard() error {
	if !d.alive.Load() {
		return vibrator.ErrUnavailable
	}
	return nil
}

// begin replaces the current playback, firing the previous one's completion
// (an interrupted vibration still finished from the hardware's view).
func (d *Device) begin(done func()) *playback {
	p := &playback{cancel: make(chan struct{}), done: done}
	d.mu.Lock()
	prev := d.cur
	d.cur = p
	d.mu.Unlock()
	if prev != nil {
		prev.stop()
		prev.fire()
	}
	return p
}

func (d *Device) finishAfter(p *playback, dur time.Duration) {
	time.AfterFunc(dur, func() {
		select {
		case <-p.cancel:
			// already stopped; Off fired the completion
		default:
			d.level.Store(0)
			p.fire()
		}
	})
}

// -----------------------------------------------------------------------------
// vibrator.HalWrapper
// -----------------------------------------------------------------------------

func (d *Device) Init() error { return d.guard() }

func (d *Device) Ping() error { return d.guard() }

func (d *Device) On(timeout time.Duration, onComplete func()) error {
	if err := d.guard(); err != nil {
		return err
	}
	p := d.begin(onComplete)
	d.level.Store(levelTop)
	d.finishAfter(p, timeout)
	return nil
}

func (d *Device) Off() error {
	if err := d.guard(); err != nil {
		return err
	}
	d.mu.Lock()
	p := d.cur
	d.cur = nil
	d.mu.Unlock()
	d.level.Store(0)
	if p != nil {
		p.stop()
		p.fire()
	}
	return nil
}

func (d *Device) SetAmplitude(amplitude float32) error {
	if err := d.guard(); err != nil {
		return err
	}
	if amplitude < 0 {
		amplitude = 0
	}
	if amplitude > 1 {
		amplitude = 1
	}
	d.level.Store(int32(amplitude * levelTop))
	return nil
}

func (d *Device) SetExternalControl(enabled bool) error {
	if err := d.guard(); err != nil {
		return err
	}
	d.external.Store(enabled)
	return nil
}

func (d *Device) PerformEffect(effect types.Effect, strength types.EffectStrength, onComplete func()) (time.Duration, error) {
	if err := d.guard(); err != nil {
		return 0, err
	}
	dur, ok := effectDurations[effect]
	if !ok {
		return 0, vibrator.ErrUnsupported
	}
	p := d.begin(onComplete)
	d.level.Store(strengthLevel(strength))
	d.finishAfter(p, dur)
	return dur, nil
}

func (d *Device) PerformComposed(effects []types.CompositeEffect, onComplete func()) (time.Duration, error) {
	if err := d.guard(); err != nil {
		return 0, err
	}
	var totalMs int64
	for _, e := range effects {
		totalMs += int64(e.DelayMs) + perPrimitiveMs
	}
	dur := time.Duration(totalMs) * time.Millisecond
	p := d.begin(onComplete)
	d.finishAfter(p, dur)
	return dur, nil
}

// PerformPwle steps the amplitude level through each primitive with the
// linear ramp helper and fires completion when the sequence ends.
func (d *Device) PerformPwle(primitives []types.PrimitivePwle, onComplete func()) error {
	if err := d.guard(); err != nil {
		return err
	}
	p := d.begin(onComplete)
	go d.playPwle(p, primitives)
	return nil
}

func (d *Device) playPwle(p *playback, primitives []types.PrimitivePwle) {
	tick := func(wait time.Duration) bool {
		select {
		case <-p.cancel:
			return false
		case <-time.After(wait):
			return true
		}
	}
	set := func(level uint16) { d.level.Store(int32(level)) }

	for _, prim := range primitives {
		select {
		case <-p.cancel:
			return
		default:
		}
		switch seg := prim.(type) {
		case types.ActivePwle:
			set(toLevel(seg.StartAmplitude))
			steps := uint16(seg.DurationMs / 10)
			if steps == 0 {
				steps = 1
			}
			ramp.StartLinear(toLevel(seg.StartAmplitude), toLevel(seg.EndAmplitude), levelTop,
				uint32(seg.DurationMs), steps, tick, set)
			// StartLinear waits steps-1 intervals; spend the last one here.
			if !tick(time.Duration(seg.DurationMs/int32(steps)) * time.Millisecond) {
				return
			}
		case types.BrakingPwle:
			set(0)
			if seg.DurationMs > 0 && !tick(time.Duration(seg.DurationMs)*time.Millisecond) {
				return
			}
		}
	}
	set(0)
	p.fire()
}

func (d *Device) AlwaysOnEnable(id int32, effect types.Effect, strength types.EffectStrength) error {
	if err := d.guard(); err != nil {
		return err
	}
	d.mu.Lock()
	d.alwaysOn[id] = alwaysOnSlot{effect: effect, strength: strength}
	d.mu.Unlock()
	return nil
}

func (d *Device) AlwaysOnDisable(id int32) error {
	if err := d.guard(); err != nil {
		return err
	}
	d.mu.Lock()
	delete(d.alwaysOn, id)
	d.mu.Unlock()
	return nil
}

func (d *Device) GetInfo() (vibrator.HalInfo, error) {
	if err := d.guard(); err != nil {
		return vibrator.HalInfo{}, err
	}
	effects := make([]types.Effect, 0, len(effectDurations))
	for e := range effectDurations {
		effects = append(effects, e)
	}
	return vibrator.HalInfo{
		Capabilities: types.Some(types.CapOnCallback | types.CapPerformCallback |
			types.CapAmplitudeControl | types.CapExternalControl |
			types.CapComposeEffects | types.CapAlwaysOnControl |
			types.CapGetResonantFrequency | types.CapGetQFactor |
			types.CapFrequencyControl | types.CapComposePwleEffects),
		SupportedEffects: types.Some(effects),
		SupportedBraking: types.Some([]types.Braking{types.BrakingNone, types.BrakingClab}),
		SupportedPrimitives: types.Some([]types.CompositePrimitiveID{
			types.PrimitiveNoop, types.PrimitiveClick, types.PrimitiveThud,
			types.PrimitiveSpin, types.PrimitiveQuickRise, types.PrimitiveSlowRise,
			types.PrimitiveQuickFall, types.PrimitiveLightTick, types.PrimitiveLowTick,
		}),
		QFactor:               types.Some(d.cfg.QFactor),
		MinFrequencyHz:        types.Some(d.cfg.MinFrequencyHz),
		ResonantFrequencyHz:   types.Some(d.cfg.ResonantFrequencyHz),
		FrequencyResolutionHz: types.Some(d.cfg.FrequencyResolutionHz),
		MaxAmplitudes:         types.Some([]float32{0.4, 0.6, 0.8, 1.0, 0.8, 0.6}),
	}, nil
}

func strengthLevel(s types.EffectStrength) int32 {
	switch s {
	case types.StrengthLight:
		return 300
	case types.StrengthMedium:
		return 600
	default:
		return levelTop
	}
}

func toLevel(amplitude float32) uint16 {
	if amplitude < 0 {
		return 0
	}
	if amplitude > 1 {
		return levelTop
	}
	return uint16(amplitude * levelTop)
}
