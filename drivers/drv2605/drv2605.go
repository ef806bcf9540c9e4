// Package drv2605 provides a driver for the TI DRV2605(L) haptic motor
// controller. It covers the register surface this project needs: ROM-library
// waveform playback through the sequencer, real-time playback (RTP) for
// direct amplitude drive, and standby control.
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when
// both w and r are provided, without releasing the bus.
package drv2605

import (
	"errors"

	"tinygo.org/x/drivers"
)

// I2C address.
const Address = 0x5A

// Registers.
const (
	regStatus     = 0x00
	regMode       = 0x01
	regRTPInput   = 0x02
	regLibrary    = 0x03
	regWaveSeq    = 0x04 // 0x04..0x0B, 8 sequencer slots
	regGo         = 0x0C
	regOverdrive  = 0x0D
	regSustainPos = 0x0E
	regSustainNeg = 0x0F
	regBrakeTime  = 0x10
	regRatedVolt  = 0x16
	regODClamp    = 0x17
	regFeedback   = 0x1A
	regControl3   = 0x1D
)

// Mode register values.
const (
	ModeInternalTrigger = 0x00
	ModeExternalEdge    = 0x01
	ModeExternalLevel   = 0x02
	ModePWMAnalog       = 0x03
	ModeAudioToVibe     = 0x04
	ModeRealtime        = 0x05
	ModeDiagnostics     = 0x06
	ModeAutoCalibrate   = 0x07

	standbyBit = 0x40
)

// Sequencer slot count and the wait-slot flag (delay = value * 10ms).
const (
	SequencerSlots = 8
	WaitFlag       = 0x80
)

// Errors returned by the driver.
var (
	ErrSequenceTooLong = errors.New("drv2605: sequence exceeds 8 slots")
	ErrBadDeviceID     = errors.New("drv2605: unexpected device id")
)

// Config controls driver behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x5A if zero.
	Address uint16
	// Library selects the ROM effect library (1..5 ERM, 6 LRA). Default 1.
	Library uint8
	// LRA switches feedback control to LRA mode. Default ERM.
	LRA bool
}

// Device wraps an I2C connection to a DRV2605 device.
type Device struct {
	bus     drivers.I2C
	Address uint16

	cfg Config
	buf [2]byte // reuse buffer to avoid allocations
}

// New creates a new DRV2605 connection. The I2C bus must already be
// configured. This function only creates the Device object; it does not
// touch the device.
func New(bus drivers.I2C) Device {
	return Device{
		bus:     bus,
		Address: Address,
	}
}

// Configure wakes the device out of standby, selects the effect library and
// feedback mode, and verifies the device id.
func (d *Device) Configure(cfgs ...Config) error {
	if len(cfgs) > 0 {
		c := cfgs[0]
		if c.Address != 0 {
			d.Address = c.Address
		}
		if c.Library == 0 {
			c.Library = 1
		}
		d.cfg = c
	} else {
		d.cfg = Config{Address: d.Address, Library: 1}
	}

	if _, err := d.DeviceID(); err != nil {
		return err
	}

	// Exit standby, internal trigger.
	if err := d.writeReg(regMode, ModeInternalTrigger); err != nil {
		return err
	}
	if err := d.writeReg(regLibrary, d.cfg.Library); err != nil {
		return err
	}
	if d.cfg.LRA {
		fb, err := d.readReg(regFeedback)
		if err != nil {
			return err
		}
		if err := d.writeReg(regFeedback, fb|0x80); err != nil {
			return err
		}
	}
	// No sustain/brake shaping by default.
	if err := d.writeReg(regSustainPos, 0); err != nil {
		return err
	}
	if err := d.writeReg(regSustainNeg, 0); err != nil {
		return err
	}
	return d.writeReg(regBrakeTime, 0)
}

// DeviceID reads the 3-bit device id from the status register. Known ids:
// 3 = DRV2605, 7 = DRV2605L.
func (d *Device) DeviceID() (uint8, error) {
	st, err := d.readReg(regStatus)
	if err != nil {
		return 0, err
	}
	id := st >> 5
	if id != 3 && id != 7 {
		return id, ErrBadDeviceID
	}
	return id, nil
}

// SetMode writes the mode register (device out of standby).
func (d *Device) SetMode(mode uint8) error {
	return d.writeReg(regMode, mode&0x07)
}

// Standby enters or leaves low-power standby, preserving internal trigger
// mode on exit.
func (d *Device) Standby(enter bool) error {
	if enter {
		return d.writeReg(regMode, standbyBit)
	}
	return d.writeReg(regMode, ModeInternalTrigger)
}

// SetRealtimeValue sets the RTP amplitude (0..255, unsigned data format).
func (d *Device) SetRealtimeValue(v uint8) error {
	return d.writeReg(regRTPInput, v)
}

// SetSequence programs the waveform sequencer. Values 1..123 are ROM
// waveforms; WaitFlag|n inserts a n*10ms pause; 0 terminates.
func (d *Device) SetSequence(seq []uint8) error {
	if len(seq) > SequencerSlots {
		return ErrSequenceTooLong
	}
	for i := 0; i < SequencerSlots; i++ {
		var v uint8
		if i < len(seq) {
			v = seq[i]
		}
		if err := d.writeReg(uint8(regWaveSeq+i), v); err != nil {
			return err
		}
		if i >= len(seq) {
			break // wrote the terminator
		}
	}
	return nil
}

// Go fires the programmed sequence.
func (d *Device) Go() error { return d.writeReg(regGo, 1) }

// Stop clears the GO bit, halting playback.
func (d *Device) Stop() error { return d.writeReg(regGo, 0) }

// IsPlaying reports whether the sequencer is still running.
func (d *Device) IsPlaying() (bool, error) {
	v, err := d.readReg(regGo)
	if err != nil {
		return false, err
	}
	return v&1 != 0, nil
}

func (d *Device) writeReg(reg, val uint8) error {
	d.buf[0] = reg
	d.buf[1] = val
	return d.bus.Tx(d.Address, d.buf[:2], nil)
}

func (d *Device) readReg(reg uint8) (uint8, error) {
	d.buf[0] = reg
	if err := d.bus.Tx(d.Address, d.buf[:1], d.buf[1:2]); err != nil {
		return 0, err
	}
	return d.buf[1], nil
}
