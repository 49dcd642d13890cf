package errcode

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"ina260-go/drivers/ina260"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"ok":                OK,
		"invalid_topic":     InvalidTopic,
		"invalid_params":    InvalidParams,
		"no_driver":         NoDriver,
		"unknown_device":    UnknownDevice,
		"unknown_attribute": UnknownAttribute,
		"already_bound":     AlreadyBound,
		"unknown_bus":       UnknownBus,
		"transport":         Transport,
		"timeout":           Timeout,
		"cancelled":         Cancelled,
		"error":             Error,
	}
	for want, c := range cases {
		assert.Equal(t, want, c.Error())
	}
}

func TestMapDriverErr(t *testing.T) {
	transport := &ina260.MeasurementError{
		Reg: ina260.RegCurrent,
		Err: &ina260.TransportError{Addr: 0x40, Reg: ina260.RegCurrent, Err: errors.New("nack")},
	}
	cases := []struct {
		err  error
		want Code
	}{
		{nil, OK},
		{transport, Transport},
		{&ina260.MeasurementError{Reg: ina260.RegPower, Err: ina260.ErrAcquireTimeout}, Timeout},
		{&ina260.MeasurementError{Reg: ina260.RegPower, Err: context.Canceled}, Cancelled},
		{fmt.Errorf("probe: %w", ina260.ErrUnexpectedID), UnexpectedDevice},
		{ina260.ErrInvalidAddress, InvalidParams},
		{errors.New("other"), Error},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, MapDriverErr(c.err), "%v", c.err)
	}
}

func TestOf(t *testing.T) {
	assert.Equal(t, OK, Of(nil))
	assert.Equal(t, InvalidTopic, Of(InvalidTopic))
	assert.Equal(t, UnknownBus, Of(fmt.Errorf("bind: %w", UnknownBus)))
	assert.Equal(t, AlreadyBound, Of(&E{C: AlreadyBound}))

	wrapped := Wrap("read", &ina260.MeasurementError{Reg: ina260.RegCurrent, Err: ina260.ErrAcquireTimeout})
	assert.Equal(t, Timeout, Of(wrapped))
	assert.ErrorIs(t, wrapped, ina260.ErrAcquireTimeout)
	assert.Nil(t, Wrap("read", nil))
}

func TestEError(t *testing.T) {
	e := &E{C: Transport, Op: "read", Msg: "nack"}
	assert.Equal(t, "read: transport: nack", e.Error())
	assert.Equal(t, "timeout", (&E{C: Timeout}).Error())
}
