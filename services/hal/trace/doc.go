// Package trace records every register transaction issued to a bound device.
//
// It is separate from operational logging (slog): a trace is a complete,
// machine-readable record of bus traffic for debugging a misbehaving sensor.
//
// # Basic Usage
//
// Wrap the bus handle given to a driver:
//
//	bus = trace.Wrap(bus, logger, trace.Source{DeviceID: "psu", BindID: id})
//
// Loggers compose:
//
//	l := trace.NewMultiLogger(
//	    trace.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Trace files are a stream of CBOR-encoded Event values with integer keys.
// ReadFile decodes one back into memory.
package trace
