package ina260

import "ina260-go/x/conv"

// Scale is the fixed-point denominator of a Quantity: five fractional digits.
const Scale = 100000

// Quantity is a non-negative fixed-point decimal, Whole + Frac/Scale.
type Quantity struct {
	Whole uint32
	Frac  uint32 // always < Scale
}

// Format selects how the fractional part of a Quantity is rendered.
type Format uint8

const (
	// FormatCompat prints the fraction as a plain integer with no padding,
	// so 2.00005 renders as "2.5". This matches the established sysfs output.
	FormatCompat Format = iota
	// FormatPadded prints exactly five fractional digits: "2.00005".
	FormatPadded
)

// ParseFormat maps "compat" / "padded" ("" => compat).
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "compat":
		return FormatCompat, nil
	case "padded":
		return FormatPadded, nil
	default:
		return FormatCompat, ErrUnknownFormat
	}
}

func (f Format) String() string {
	switch f {
	case FormatCompat:
		return "compat"
	case FormatPadded:
		return "padded"
	default:
		return "unknown"
	}
}

// scaleRaw applies the register multiplier and splits at Scale.
// 0xFFFF*1000 fits comfortably in 32 bits.
func scaleRaw(raw uint16, mult uint32) Quantity {
	v := uint32(raw) * mult
	return Quantity{Whole: v / Scale, Frac: v % Scale}
}

// Current converts a raw current word (1.25 mA/LSB) to amperes.
func Current(raw uint16) Quantity { return scaleRaw(raw, multCurrent) }

// Voltage converts a raw bus voltage word (1.25 mV/LSB) to volts.
func Voltage(raw uint16) Quantity { return scaleRaw(raw, multVoltage) }

// Power converts a raw power word to the reported power quantity.
func Power(raw uint16) Quantity { return scaleRaw(raw, multPower) }

// Scaled returns the quantity as a single integer in units of 1/Scale.
func (q Quantity) Scaled() uint64 { return uint64(q.Whole)*Scale + uint64(q.Frac) }

// AppendFormat appends "<whole>.<fraction>" to dst.
func (q Quantity) AppendFormat(dst []byte, f Format) []byte {
	dst = conv.AppendUint(dst, uint64(q.Whole))
	dst = append(dst, '.')
	if f == FormatPadded {
		return conv.AppendUintPad(dst, uint64(q.Frac), 5)
	}
	return conv.AppendUint(dst, uint64(q.Frac))
}

// Format renders q with the given fraction format.
func (q Quantity) Format(f Format) string {
	var buf [24]byte
	return string(q.AppendFormat(buf[:0], f))
}

// String renders q in FormatCompat.
func (q Quantity) String() string { return q.Format(FormatCompat) }
