//go:build !tinygo

package strconvx

import "strconv"

// Host builds delegate straight to strconv; MCU builds carry a small
// allocation-free subset with the same results for finite values.

func AppendInt(dst []byte, i int64) []byte   { return strconv.AppendInt(dst, i, 10) }
func AppendUint(dst []byte, u uint64) []byte { return strconv.AppendUint(dst, u, 10) }
func AppendBool(dst []byte, b bool) []byte   { return strconv.AppendBool(dst, b) }

// AppendFixed appends f in 'f' format with prec fractional digits.
func AppendFixed(dst []byte, f float64, prec int) []byte {
	return strconv.AppendFloat(dst, f, 'f', prec, 64)
}

func FormatFixed(f float64, prec int) string { return strconv.FormatFloat(f, 'f', prec, 64) }
