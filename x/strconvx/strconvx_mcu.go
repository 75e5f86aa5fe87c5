//go:build tinygo

package strconvx

func AppendInt(dst []byte, i int64) []byte {
	if i < 0 {
		dst = append(dst, '-')
		return AppendUint(dst, uint64(-i))
	}
	return AppendUint(dst, uint64(i))
}

func AppendUint(dst []byte, u uint64) []byte {
	var buf [20]byte
	n := len(buf)
	for {
		n--
		buf[n] = byte('0' + u%10)
		u /= 10
		if u == 0 {
			break
		}
	}
	return append(dst, buf[n:]...)
}

func AppendBool(dst []byte, b bool) []byte {
	if b {
		return append(dst, "true"...)
	}
	return append(dst, "false"...)
}

// AppendFixed appends f with prec fractional digits, rounding half away from
// zero. NaN/Inf are not expected on these paths and print as "0".
func AppendFixed(dst []byte, f float64, prec int) []byte {
	if f != f || f > 1e18 || f < -1e18 {
		return append(dst, '0')
	}
	if prec < 0 {
		prec = 0
	}
	if prec > 9 {
		prec = 9
	}
	neg := f < 0
	if neg {
		f = -f
	}
	scale := uint64(1)
	for i := 0; i < prec; i++ {
		scale *= 10
	}
	// Round once on the scaled value so the carry reaches the integer part.
	scaled := uint64(f*float64(scale) + 0.5)
	ip, fp := scaled/scale, scaled%scale
	if neg && scaled != 0 {
		dst = append(dst, '-')
	}
	dst = AppendUint(dst, ip)
	if prec == 0 {
		return dst
	}
	dst = append(dst, '.')
	for div := scale / 10; div > 0; div /= 10 {
		dst = append(dst, byte('0'+(fp/div)%10))
	}
	return dst
}

func FormatFixed(f float64, prec int) string { return string(AppendFixed(nil, f, prec)) }
