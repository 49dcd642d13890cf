package conv

const hexdigits = "0123456789abcdef"

// AppendHex8 appends two lowercase hex digits for b, without 0x.
func AppendHex8(dst []byte, b uint8) []byte {
	return append(dst, hexdigits[b>>4], hexdigits[b&0x0F])
}

// AppendHex16 appends four lowercase hex digits for n, without 0x.
func AppendHex16(dst []byte, n uint16) []byte {
	return AppendHex8(AppendHex8(dst, uint8(n>>8)), uint8(n))
}
