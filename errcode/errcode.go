package errcode

import (
	"context"
	"errors"

	"ina260-go/drivers/ina260"
)

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK               Code = "ok"
	Unsupported      Code = "unsupported"
	InvalidParams    Code = "invalid_params"
	InvalidPayload   Code = "invalid_payload"
	InvalidTopic     Code = "invalid_topic"
	NoDriver         Code = "no_driver"
	UnknownDevice    Code = "unknown_device"
	UnknownAttribute Code = "unknown_attribute"
	AlreadyBound     Code = "already_bound"
	UnexpectedDevice Code = "unexpected_device"
	UnknownBus       Code = "unknown_bus"
	Transport        Code = "transport"
	Timeout          Code = "timeout"
	Cancelled        Code = "cancelled"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap builds an *E carrying the code derived from err.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: Of(err), Op: op, Msg: err.Error(), Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	return MapDriverErr(err)
}

// MapDriverErr maps low-level driver errors to a Code.
func MapDriverErr(err error) Code {
	var te *ina260.TransportError
	switch {
	case err == nil:
		return OK
	case errors.Is(err, ina260.ErrAcquireTimeout), errors.Is(err, context.DeadlineExceeded):
		return Timeout
	case errors.Is(err, context.Canceled):
		return Cancelled
	case errors.Is(err, ina260.ErrUnexpectedID):
		return UnexpectedDevice
	case errors.As(err, &te):
		return Transport
	case errors.Is(err, ina260.ErrInvalidAddress), errors.Is(err, ina260.ErrInvalidTimeout),
		errors.Is(err, ina260.ErrUnknownFormat):
		return InvalidParams
	case errors.Is(err, ina260.ErrNotMeasurement):
		return Unsupported
	default:
		return Error
	}
}
