// services/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"hapticctl-go/bus"
)

func TestPublish_RetainedPerSection(t *testing.T) {
	old := ReadFile
	ReadFile = func(path string) ([]byte, error) {
		return []byte(`
[haptics]
suggested_safe_range_hz = 60.0

[[haptics.actuators]]
id = 0
type = "sim"

[log]
level = "debug"
`), nil
	}
	t.Cleanup(func() { ReadFile = old })

	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")

	svc := New("unused.toml", zerolog.Nop())
	if err := svc.Publish(conn); err != nil {
		t.Fatalf("publish: %v", err)
	}

	// Retained sections must reach a late subscriber.
	sub := conn.Subscribe(bus.T(configPrefix, "+"))
	defer conn.Unsubscribe(sub)

	got := map[string]any{}
	deadline := time.Now().Add(time.Second)
	for len(got) < 2 && time.Now().Before(deadline) {
		select {
		case m := <-sub.Channel():
			got[m.Topic.At(1)] = m.Payload
		case <-time.After(10 * time.Millisecond):
		}
	}

	haptics, ok := got["haptics"].(map[string]any)
	if !ok {
		t.Fatalf("haptics section = %T, want map", got["haptics"])
	}
	if _, ok := haptics["actuators"]; !ok {
		t.Error("haptics section missing actuators list")
	}
	if _, ok := got["log"]; !ok {
		t.Error("log section not published")
	}
}

func TestPublish_MissingFile(t *testing.T) {
	b := bus.NewBus(4)
	svc := New("/nonexistent/hapticctl.toml", zerolog.Nop())
	if err := svc.Publish(b.NewConnection("t")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
