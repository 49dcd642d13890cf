// Package conv holds allocation-light integer formatting helpers.
package conv

// Utoa writes base-10 representation of n into buf and returns the used slice.
// buf should be length >= 20 for uint64.
func Utoa(buf []byte, n uint64) []byte {
	if len(buf) == 0 {
		return buf[:0]
	}
	i := len(buf)
	if n == 0 {
		i--
		buf[i] = '0'
	} else {
		for n > 0 && i > 0 {
			i--
			buf[i] = byte('0' + (n % 10))
			n /= 10
		}
	}
	return buf[i:]
}

// AppendUint appends the base-10 digits of n to dst.
func AppendUint(dst []byte, n uint64) []byte {
	var buf [20]byte
	return append(dst, Utoa(buf[:], n)...)
}

// AppendUintPad appends n left-padded with zeros to at least width digits.
func AppendUintPad(dst []byte, n uint64, width int) []byte {
	var buf [20]byte
	digits := Utoa(buf[:], n)
	for i := len(digits); i < width; i++ {
		dst = append(dst, '0')
	}
	return append(dst, digits...)
}
