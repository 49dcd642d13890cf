// Package ina260 provides a minimal driver for the TI INA260 precision
// current, voltage and power monitor.
//
// Design notes (datasheet references):
//   - I2C, register pointer write followed by a repeated-start 2-byte read.
//   - Registers are 16-bit, MSB first on the wire.
//   - Default 7-bit address = 0b1000000 (A0, A1 tied to GND).
//   - Integer-only scaling: 1.25 mA/LSB, 1.25 mV/LSB, 10 mW/LSB, kept as a
//     fixed-point decimal with five fractional digits.
//
// Only the power-on default operating mode is used. The configuration,
// mask/enable and alert limit registers are never written.
//
// NOTE: I2C.Tx MUST perform the write followed by a repeated-start read when
// both w and r are provided, without releasing the bus.
package ina260

// AddressDefault is the 7-bit bus address with A0 and A1 strapped to GND.
const AddressDefault uint16 = 0x40

// Identification values reported by the part.
const (
	ManufacturerTI uint16 = 0x5449 // "TI"
	DieIDINA260    uint16 = 0x2270 // upper 12 bits; low nibble is the revision
)
