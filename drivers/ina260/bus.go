package ina260

// I2C 16-bit register read (big-endian: HIGH then LOW).

// readRegister issues one combined transaction: a 1-byte pointer write and a
// 2-byte read. It does not retry and does not touch Device state.
func (d *Device) readRegister(reg Register, r *[2]byte) error {
	w := [1]byte{byte(reg)}
	if err := d.bus.Tx(d.addr, w[:], r[:]); err != nil {
		return &TransportError{Addr: d.addr, Reg: reg, Err: err}
	}
	return nil
}

// decodeWord interprets wire bytes as a big-endian unsigned word, independent
// of host byte order.
func decodeWord(b [2]byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}
