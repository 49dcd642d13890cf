package ina260

import (
	"context"
	"time"

	"tinygo.org/x/drivers"
)

// Driver configuration. Integer-only.
type Config struct {
	Address uint16 // 0 => AddressDefault
	// AcquireTimeout bounds the wait for exclusive access to the device.
	// Zero blocks until the device is free.
	AcquireTimeout time.Duration
	// Format selects how quantities are rendered by Device.Text.
	Format Format
}

// DefaultConfig returns the power-on address, unbounded acquisition and the
// unpadded fraction format.
func DefaultConfig() Config {
	return Config{Address: AddressDefault, Format: FormatCompat}
}

// Validate basic required fields.
func (c Config) Validate() error {
	if c.Address > 0x7F {
		return ErrInvalidAddress
	}
	if c.AcquireTimeout < 0 {
		return ErrInvalidTimeout
	}
	if c.Format > FormatPadded {
		return ErrUnknownFormat
	}
	return nil
}

// Device represents one INA260 on an I²C bus. The bus handle is borrowed for
// the duration of each transaction and never closed by the driver.
//
// All register transactions on a Device are serialised by its guard; distinct
// Devices share nothing, even when they sit on the same bus.
type Device struct {
	bus    drivers.I2C
	addr   uint16
	format Format
	g      guard
}

// New constructs a Device. It does not touch the bus.
func New(bus drivers.I2C, cfg Config) *Device {
	addr := cfg.Address
	if addr == 0 {
		addr = AddressDefault
	}
	return &Device{
		bus:    bus,
		addr:   addr,
		format: cfg.Format,
		g:      newGuard(cfg.AcquireTimeout),
	}
}

// Introspection.
func (d *Device) Address() uint16 { return d.addr }
func (d *Device) Format() Format  { return d.format }

// readRaw performs one guarded transaction and returns the decoded word.
// Buffers are local so that decoding can run after the guard is released.
func (d *Device) readRaw(ctx context.Context, reg Register) (uint16, error) {
	if err := d.g.acquire(ctx); err != nil {
		return 0, err
	}
	var r [2]byte
	err := d.readRegister(reg, &r)
	d.g.release()
	if err != nil {
		return 0, err
	}
	return decodeWord(r), nil
}
