package ina260

import "context"

// Measurements. Each performs exactly one fresh bus transaction; nothing is
// cached between calls. The guard is released before conversion.

// ReadCurrent returns the shunt current in amperes.
func (d *Device) ReadCurrent() (Quantity, error) {
	return d.measure(context.Background(), RegCurrent)
}

// ReadVoltage returns the bus voltage in volts.
func (d *Device) ReadVoltage() (Quantity, error) {
	return d.measure(context.Background(), RegBusVoltage)
}

// ReadPower returns the load power in watts.
func (d *Device) ReadPower() (Quantity, error) {
	return d.measure(context.Background(), RegPower)
}

// Context-aware variants. ctx only bounds the wait for the guard; a
// transaction that has started always runs to completion.

func (d *Device) ReadCurrentCtx(ctx context.Context) (Quantity, error) {
	return d.measure(ctx, RegCurrent)
}

func (d *Device) ReadVoltageCtx(ctx context.Context) (Quantity, error) {
	return d.measure(ctx, RegBusVoltage)
}

func (d *Device) ReadPowerCtx(ctx context.Context) (Quantity, error) {
	return d.measure(ctx, RegPower)
}

// Read dispatches on a measurement register.
func (d *Device) Read(ctx context.Context, reg Register) (Quantity, error) {
	if reg.multiplier() == 0 {
		return Quantity{}, &MeasurementError{Reg: reg, Err: ErrNotMeasurement}
	}
	return d.measure(ctx, reg)
}

// Text reads reg and renders it with the Device's configured format.
func (d *Device) Text(ctx context.Context, reg Register) (string, error) {
	q, err := d.Read(ctx, reg)
	if err != nil {
		return "", err
	}
	return q.Format(d.format), nil
}

func (d *Device) measure(ctx context.Context, reg Register) (Quantity, error) {
	raw, err := d.readRaw(ctx, reg)
	if err != nil {
		return Quantity{}, &MeasurementError{Reg: reg, Err: err}
	}
	return scaleRaw(raw, reg.multiplier()), nil
}

// Snapshot holds one reading of each quantity.
type Snapshot struct {
	Current Quantity
	Voltage Quantity
	Power   Quantity
}

// ReadAll reads current, voltage and power as three separate transactions.
// Other callers may interleave between them; the values are not coherent
// to a single conversion cycle.
func (d *Device) ReadAll(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	var err error
	if s.Current, err = d.measure(ctx, RegCurrent); err != nil {
		return Snapshot{}, err
	}
	if s.Voltage, err = d.measure(ctx, RegBusVoltage); err != nil {
		return Snapshot{}, err
	}
	if s.Power, err = d.measure(ctx, RegPower); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
