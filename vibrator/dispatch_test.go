// vibrator/dispatch_test.go
package vibrator

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"hapticctl-go/types"
)

type recordingListener struct {
	mu    sync.Mutex
	calls []struct {
		actuator int32
		request  int64
	}
}

func (l *recordingListener) OnComplete(actuatorID int32, requestID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, struct {
		actuator int32
		request  int64
	}{actuatorID, requestID})
}

func (l *recordingListener) snapshot() []struct {
	actuator int32
	request  int64
} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]struct {
		actuator int32
		request  int64
	}(nil), l.calls...)
}

func TestRelay_DeliversBoundIdentity(t *testing.T) {
	listener := &recordingListener{}
	relay := newCompletionRelay(11, listener, zerolog.Nop())

	relay.Callback(42)()

	got := listener.snapshot()
	if len(got) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(got))
	}
	if got[0].actuator != 11 || got[0].request != 42 {
		t.Errorf("delivered (%d, %d), want (11, 42)", got[0].actuator, got[0].request)
	}
}

func TestRelay_DropsAfterShutdown(t *testing.T) {
	listener := &recordingListener{}
	relay := newCompletionRelay(11, listener, zerolog.Nop())

	// The backend may hold the closure across teardown.
	cb := relay.Callback(42)
	relay.shutdown()
	cb()

	if got := listener.snapshot(); len(got) != 0 {
		t.Fatalf("deliveries after shutdown = %d, want 0", len(got))
	}
}

func TestRelay_ShutdownIdempotent(t *testing.T) {
	relay := newCompletionRelay(11, &recordingListener{}, zerolog.Nop())
	relay.shutdown()
	relay.shutdown()
	relay.Callback(1)() // must not panic
}

func TestDispose_SuppressesLateCompletion(t *testing.T) {
	listener := &recordingListener{}
	var captured func()
	hal := &scriptHal{
		effectFn: func(_ types.Effect, _ types.EffectStrength, cb func()) (d time.Duration, err error) {
			captured = cb
			return 20 * time.Millisecond, nil
		},
	}
	conn := &countingConnector{hals: []HalWrapper{hal}}
	c := New(11, conn, listener, testConfig(), zerolog.Nop())

	if res := c.PerformEffect(types.EffectClick, types.StrengthMedium, 99); !res.IsOk() {
		t.Fatalf("perform failed: %v", res.Err())
	}
	c.Dispose()
	captured() // hardware fires after teardown

	if got := listener.snapshot(); len(got) != 0 {
		t.Fatalf("deliveries after dispose = %d, want 0", len(got))
	}
}
