package ina260

import "context"

// ManufacturerID reads the manufacturer register (0x5449 for TI parts).
func (d *Device) ManufacturerID(ctx context.Context) (uint16, error) {
	v, err := d.readRaw(ctx, RegManufacturerID)
	if err != nil {
		return 0, &MeasurementError{Reg: RegManufacturerID, Err: err}
	}
	return v, nil
}

// DieID reads the die identification register. The upper 12 bits are the
// device id, the low nibble the die revision.
func (d *Device) DieID(ctx context.Context) (uint16, error) {
	v, err := d.readRaw(ctx, RegDieID)
	if err != nil {
		return 0, &MeasurementError{Reg: RegDieID, Err: err}
	}
	return v, nil
}

// VerifyID checks that the addressed part identifies as an INA260.
func (d *Device) VerifyID(ctx context.Context) error {
	mfg, err := d.ManufacturerID(ctx)
	if err != nil {
		return err
	}
	if mfg != ManufacturerTI {
		return ErrUnexpectedID
	}
	die, err := d.DieID(ctx)
	if err != nil {
		return err
	}
	if die&0xFFF0 != DieIDINA260 {
		return ErrUnexpectedID
	}
	return nil
}
