package conv

const hexd = "0123456789ABCDEF"

// U16Hex writes 4-digit uppercase hex without 0x, zero-padded.
func U16Hex(buf []byte, n uint16) []byte {
	return hexTail(buf, uint32(n), 4)
}

func hexTail(buf []byte, n uint32, digits int) []byte {
	if len(buf) < digits {
		return buf[:0]
	}
	i := len(buf)
	for j := 0; j < digits; j++ {
		i--
		buf[i] = hexd[n&0xF]
		n >>= 4
	}
	return buf[i:]
}

// Hex16 is U16Hex with a "0x" prefix, returned as a string.
func Hex16(n uint16) string {
	var b [6]byte
	b[0], b[1] = '0', 'x'
	U16Hex(b[2:], n)
	return string(b[:])
}
