package ina260

import "ina260-go/x/conv"

// Register is the pointer byte selecting which 16-bit register a transaction reads.
type Register uint8

// Register map (read-only subset used by this driver).
const (
	RegCurrent        Register = 0x01 // current, 1.25 mA/LSB, decoded as unsigned
	RegBusVoltage     Register = 0x02 // bus voltage, 1.25 mV/LSB
	RegPower          Register = 0x03 // power, 10 mW/LSB
	RegManufacturerID Register = 0xFE
	RegDieID          Register = 0xFF
)

// Fixed multipliers applied to the raw word before splitting at Scale.
const (
	multCurrent = 125
	multVoltage = 125
	multPower   = 1000
)

func (r Register) String() string {
	switch r {
	case RegCurrent:
		return "current"
	case RegBusVoltage:
		return "bus_voltage"
	case RegPower:
		return "power"
	case RegManufacturerID:
		return "manufacturer_id"
	case RegDieID:
		return "die_id"
	default:
		return string(conv.AppendHex8([]byte("reg_0x"), uint8(r)))
	}
}

// multiplier returns the scale constant for a measurement register, 0 otherwise.
func (r Register) multiplier() uint32 {
	switch r {
	case RegCurrent:
		return multCurrent
	case RegBusVoltage:
		return multVoltage
	case RegPower:
		return multPower
	default:
		return 0
	}
}
