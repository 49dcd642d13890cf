package ina260

import (
	"errors"

	"ina260-go/x/conv"
)

// Errors returned by the driver.
var (
	ErrAcquireTimeout = errors.New("ina260: acquire timeout")
	ErrUnexpectedID   = errors.New("ina260: unexpected device id")
	ErrInvalidAddress = errors.New("ina260: address must be a 7-bit value")
	ErrInvalidTimeout = errors.New("ina260: acquire timeout must not be negative")
	ErrUnknownFormat  = errors.New("ina260: unknown quantity format")
	ErrNotMeasurement = errors.New("ina260: register is not a measurement")
)

// TransportError reports a failed bus transaction (no device, NACK,
// arbitration loss, timeout). The driver never retries.
type TransportError struct {
	Addr uint16
	Reg  Register
	Err  error
}

func (e *TransportError) Error() string {
	s := "ina260: transport addr=0x" + string(conv.AppendHex8(nil, uint8(e.Addr))) + " reg=" + e.Reg.String()
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *TransportError) Unwrap() error { return e.Err }

// MeasurementError is returned by every read operation that could not
// complete. Err is a *TransportError, ErrAcquireTimeout or a context error.
type MeasurementError struct {
	Reg Register
	Err error
}

func (e *MeasurementError) Error() string {
	s := "ina260: read " + e.Reg.String()
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *MeasurementError) Unwrap() error { return e.Err }
