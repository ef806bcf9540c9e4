// vibrator/controller_test.go
package vibrator

import (
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"hapticctl-go/types"
)

func TestNew_NilListenerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on nil listener")
		}
	}()
	conn := &countingConnector{hals: []HalWrapper{&scriptHal{}}}
	New(1, conn, nil, testConfig(), zerolog.Nop())
}

func TestNew_ConnectFailurePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when no handle can be resolved")
		}
	}()
	New(1, ConnectorFunc(func() (HalWrapper, error) { return nil, ErrUnavailable }),
		ListenerFunc(func(int32, int64) {}), testConfig(), zerolog.Nop())
}

func TestOn_DurationIsRequestedTimeout(t *testing.T) {
	var gotTimeout time.Duration
	hal := &scriptHal{onFn: func(timeout time.Duration, _ func()) error {
		gotTimeout = timeout
		return nil
	}}
	conn := &countingConnector{hals: []HalWrapper{hal}}
	c := newTestController(t, conn, testConfig())

	res := c.On(120, 1)
	if !res.IsOk() || res.Value() != 120 {
		t.Fatalf("On = %v/%d, want Ok(120)", res.Status(), res.Value())
	}
	if gotTimeout != 120*time.Millisecond {
		t.Errorf("hal timeout = %v, want 120ms", gotTimeout)
	}
	if got := DurationOrSentinel(res); got != 120 {
		t.Errorf("sentinel mapping = %d, want 120", got)
	}
}

func TestOn_UnsupportedMapsToZero(t *testing.T) {
	hal := &scriptHal{onFn: func(time.Duration, func()) error { return ErrUnsupported }}
	conn := &countingConnector{hals: []HalWrapper{hal}}
	c := newTestController(t, conn, testConfig())

	res := c.On(120, 1)
	if !res.IsUnsupported() {
		t.Fatalf("status = %v, want unsupported", res.Status())
	}
	if got := DurationOrSentinel(res); got != 0 {
		t.Errorf("sentinel mapping = %d, want 0", got)
	}
}

func TestOn_FailedMapsToNegative(t *testing.T) {
	c := New(1, ConnectorFunc(func() (HalWrapper, error) { return &scriptHal{}, nil }),
		ListenerFunc(func(int32, int64) {}), testConfig(), zerolog.Nop())
	c.Dispose()

	res := c.On(120, 1)
	if !res.IsFailed() {
		t.Fatalf("status = %v, want failed", res.Status())
	}
	if got := DurationOrSentinel(res); got != -1 {
		t.Errorf("sentinel mapping = %d, want -1", got)
	}
}

func TestPerformEffect_ReportsHardwareDuration(t *testing.T) {
	hal := &scriptHal{effectFn: func(types.Effect, types.EffectStrength, func()) (time.Duration, error) {
		return 37 * time.Millisecond, nil
	}}
	conn := &countingConnector{hals: []HalWrapper{hal}}
	c := newTestController(t, conn, testConfig())

	res := c.PerformEffect(types.EffectTick, types.StrengthLight, 5)
	if !res.IsOk() || res.Value() != 37 {
		t.Fatalf("PerformEffect = %v/%d, want Ok(37)", res.Status(), res.Value())
	}
}

func TestPerformEffect_UnsupportedReportsZero(t *testing.T) {
	hal := &scriptHal{effectFn: func(types.Effect, types.EffectStrength, func()) (time.Duration, error) {
		return 0, ErrUnsupported
	}}
	conn := &countingConnector{hals: []HalWrapper{hal}}
	c := newTestController(t, conn, testConfig())

	res := c.PerformEffect(types.EffectPop, types.StrengthStrong, 5)
	if !res.IsUnsupported() {
		t.Fatalf("status = %v, want unsupported", res.Status())
	}
	if got := DurationOrSentinel(res); got != 0 {
		t.Errorf("duration = %d, want 0", got)
	}
}

func TestPerformPwle_PassesCompiledPrimitives(t *testing.T) {
	var got []types.PrimitivePwle
	hal := &scriptHal{pwleFn: func(p []types.PrimitivePwle, _ func()) error {
		got = p
		return nil
	}}
	conn := &countingConnector{hals: []HalWrapper{hal}}
	c := newTestController(t, conn, testConfig())

	in := []types.ActivePwle{seg(0.3, 0.3, 50), seg(0, 0, 10), seg(0.5, 0, 20)}
	res := c.PerformPwle(in, types.BrakingClab, 7)
	if !res.IsOk() {
		t.Fatalf("PerformPwle failed: %v", res.Err())
	}
	// The controller reports the compiler's total, not a hardware figure.
	if res.Value() != 80 {
		t.Errorf("duration = %d, want 80", res.Value())
	}

	want, _ := CompilePwle(in, types.BrakingClab)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("hal received %+v, want compiled %+v", got, want)
	}
}

func TestGetInfo_InjectsSafeRange(t *testing.T) {
	hal := &scriptHal{infoFn: func() (HalInfo, error) {
		return HalInfo{
			Capabilities:        types.Some(types.CapAmplitudeControl),
			SupportedEffects:    types.Some([]types.Effect{types.EffectClick}),
			ResonantFrequencyHz: types.Some(float32(150)),
		}, nil
	}}
	conn := &countingConnector{hals: []HalWrapper{hal}}
	c := newTestController(t, conn, testConfig())

	res := c.GetInfo(55.5)
	if !res.IsOk() {
		t.Fatalf("GetInfo failed: %v", res.Err())
	}
	info := res.Value()
	if info.ActuatorID != 7 {
		t.Errorf("actuator id = %d, want 7", info.ActuatorID)
	}
	if info.Frequency.SuggestedSafeRangeHz != 55.5 {
		t.Errorf("safe range = %v, want 55.5", info.Frequency.SuggestedSafeRangeHz)
	}
	if hz, ok := info.Frequency.ResonantFrequencyHz.Get(); !ok || hz != 150 {
		t.Errorf("resonant = %v/%v, want 150/present", hz, ok)
	}
	// Fields the backend never reported stay absent.
	if info.Frequency.MinFrequencyHz.Present() {
		t.Error("min frequency should be absent")
	}
	if info.QFactor.Present() {
		t.Error("q factor should be absent")
	}
}

func TestDispose_AllOperationsFail(t *testing.T) {
	conn := &countingConnector{hals: []HalWrapper{&scriptHal{}}}
	c := New(7, conn, ListenerFunc(func(int32, int64) {}), testConfig(), zerolog.Nop())
	c.Dispose()
	c.Dispose() // idempotent

	checks := map[string]Status{
		"on":      c.On(10, 1).Status(),
		"off":     c.Off().Status(),
		"amp":     c.SetAmplitude(0.5).Status(),
		"ext":     c.SetExternalControl(true).Status(),
		"effect":  c.PerformEffect(types.EffectClick, types.StrengthMedium, 1).Status(),
		"pwle":    c.PerformPwle([]types.ActivePwle{seg(0.1, 0.1, 10)}, types.BrakingNone, 1).Status(),
		"aoe":     c.AlwaysOnEnable(0, types.EffectClick, types.StrengthLight).Status(),
		"aod":     c.AlwaysOnDisable(0).Status(),
		"getInfo": c.GetInfo(0).Status(),
	}
	for name, st := range checks {
		if st != StatusFailed {
			t.Errorf("%s on disposed controller = %v, want failed", name, st)
		}
	}
	// No new connection attempts after dispose.
	if got := conn.n.Load(); got != 1 {
		t.Errorf("connects = %d, want 1", got)
	}
}
