// drivers/drv2605/drv2605_test.go
package drv2605

import (
	"errors"
	"sync"
	"testing"

	"tinygo.org/x/drivers"
)

// Compile-time check.
var _ drivers.I2C = (*fakeI2C)(nil)

// Scripted DRV2605L-like fake: a register file behind Tx.
type fakeI2C struct {
	mu   sync.Mutex
	regs [0x22]uint8
	fail bool
}

func newFakeDRV2605() *fakeI2C {
	f := &fakeI2C{}
	f.regs[regStatus] = 7 << 5 // DRV2605L device id
	f.regs[regMode] = standbyBit
	return f
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("i2c: bus error")
	}
	// Register write.
	if len(w) == 2 && len(r) == 0 {
		f.regs[w[0]] = w[1]
		return nil
	}
	// Register read.
	if len(w) == 1 && len(r) == 1 {
		r[0] = f.regs[w[0]]
		return nil
	}
	return errors.New("i2c: unexpected transaction")
}

func (f *fakeI2C) reg(i uint8) uint8 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.regs[i]
}

func TestConfigure(t *testing.T) {
	bus := newFakeDRV2605()
	dev := New(bus)

	if err := dev.Configure(Config{Library: 6, LRA: true}); err != nil {
		t.Fatalf("configure error: %v", err)
	}
	if got := bus.reg(regMode); got != ModeInternalTrigger {
		t.Errorf("mode = %#x, want internal trigger", got)
	}
	if got := bus.reg(regLibrary); got != 6 {
		t.Errorf("library = %d, want 6", got)
	}
	if got := bus.reg(regFeedback); got&0x80 == 0 {
		t.Errorf("feedback = %#x, want LRA bit set", got)
	}
}

func TestConfigure_BadDeviceID(t *testing.T) {
	bus := newFakeDRV2605()
	bus.regs[regStatus] = 1 << 5
	dev := New(bus)

	if err := dev.Configure(); !errors.Is(err, ErrBadDeviceID) {
		t.Fatalf("expected ErrBadDeviceID, got %v", err)
	}
}

func TestSequenceAndGo(t *testing.T) {
	bus := newFakeDRV2605()
	dev := New(bus)
	if err := dev.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}

	seq := []uint8{1, WaitFlag | 5, 14}
	if err := dev.SetSequence(seq); err != nil {
		t.Fatalf("set sequence: %v", err)
	}
	for i, want := range seq {
		if got := bus.reg(uint8(regWaveSeq + i)); got != want {
			t.Errorf("slot %d = %#x, want %#x", i, got, want)
		}
	}
	// Terminator after the last programmed slot.
	if got := bus.reg(regWaveSeq + 3); got != 0 {
		t.Errorf("slot 3 = %#x, want terminator 0", got)
	}

	if err := dev.Go(); err != nil {
		t.Fatalf("go: %v", err)
	}
	if playing, err := dev.IsPlaying(); err != nil || !playing {
		t.Fatalf("IsPlaying = %v, %v; want true, nil", playing, err)
	}
	if err := dev.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if playing, _ := dev.IsPlaying(); playing {
		t.Fatal("still playing after Stop")
	}
}

func TestSequenceTooLong(t *testing.T) {
	bus := newFakeDRV2605()
	dev := New(bus)
	if err := dev.SetSequence(make([]uint8, 9)); !errors.Is(err, ErrSequenceTooLong) {
		t.Fatalf("expected ErrSequenceTooLong, got %v", err)
	}
}

func TestRealtime(t *testing.T) {
	bus := newFakeDRV2605()
	dev := New(bus)
	if err := dev.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if err := dev.SetMode(ModeRealtime); err != nil {
		t.Fatalf("set mode: %v", err)
	}
	if err := dev.SetRealtimeValue(200); err != nil {
		t.Fatalf("set rtp: %v", err)
	}
	if got := bus.reg(regRTPInput); got != 200 {
		t.Errorf("rtp input = %d, want 200", got)
	}
}

func TestBusErrorPropagates(t *testing.T) {
	bus := newFakeDRV2605()
	dev := New(bus)
	if err := dev.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	bus.fail = true
	if err := dev.SetRealtimeValue(10); err == nil {
		t.Fatal("expected bus error")
	}
}
