// Package ina260dev binds INA260 power monitors to the HAL. Each instance
// exposes total_current, total_voltage and total_power as read-only
// attributes; every read is a fresh register transaction.
package ina260dev

import (
	"context"
	"time"

	"ina260-go/drivers/ina260"
	"ina260-go/errcode"
	"ina260-go/services/hal"
	"ina260-go/services/hal/attr"
	"ina260-go/types"
)

// Params is the driver-specific part of a device's configuration. A nil
// hal.DeviceConfig.Params selects the defaults.
type Params struct {
	AcquireTimeout time.Duration // 0 => block until the device is free
	Format         ina260.Format
	VerifyID       bool // check manufacturer and die id before exposing attributes
}

// Driver implements hal.Driver for the "ina260" device type.
type Driver struct{}

func (Driver) Name() string  { return "ina260" }
func (Driver) IDs() []string { return []string{"ina260"} }
func New() hal.Driver        { return Driver{} }

var _ hal.Driver = Driver{}

func (Driver) Probe(ctx context.Context, in hal.ProbeInput, reg attr.Registrar) (hal.Instance, error) {
	var p Params
	switch v := in.Params.(type) {
	case nil:
	case Params:
		p = v
	case *Params:
		if v != nil {
			p = *v
		}
	default:
		return nil, errcode.InvalidParams
	}
	if in.Bus == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "probe", Msg: "no bus"}
	}

	cfg := ina260.Config{Address: in.Addr, AcquireTimeout: p.AcquireTimeout, Format: p.Format}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dev := ina260.New(in.Bus, cfg)
	if p.VerifyID {
		if err := dev.VerifyID(ctx); err != nil {
			return nil, err
		}
	}

	inst := &Instance{id: in.ID, dev: dev, params: p}
	for _, a := range []struct {
		name string
		reg  ina260.Register
	}{
		{types.AttrTotalCurrent, ina260.RegCurrent},
		{types.AttrTotalVoltage, ina260.RegBusVoltage},
		{types.AttrTotalPower, ina260.RegPower},
	} {
		if err := reg.Register(attr.Attribute{
			Name: a.name,
			Mode: attr.ModeReadOnly,
			Show: inst.show(a.reg),
		}); err != nil {
			return nil, err
		}
	}
	if in.Log != nil {
		in.Log.Debug("ina260 ready", "addr", dev.Address(), "format", dev.Format().String(), "verified", p.VerifyID)
	}
	return inst, nil
}

// Instance is one bound INA260.
type Instance struct {
	id     string
	dev    *ina260.Device
	params Params
}

// Device exposes the underlying driver handle.
func (i *Instance) Device() *ina260.Device { return i.dev }

func (i *Instance) Detail() any {
	return types.PowerMonitorInfo{
		Format:           i.dev.Format().String(),
		AcquireTimeoutMs: i.params.AcquireTimeout.Milliseconds(),
		VerifiedID:       i.params.VerifyID,
	}
}

// Remove has nothing to release: the bus handle is borrowed and the
// attributes are owned by the HAL.
func (i *Instance) Remove() error { return nil }

func (i *Instance) show(reg ina260.Register) attr.ShowFunc {
	return func(ctx context.Context) (string, error) {
		s, err := i.dev.Text(ctx, reg)
		if err != nil {
			return "", err
		}
		return s + "\n", nil
	}
}
