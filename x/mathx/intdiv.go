package mathx

import "golang.org/x/exp/constraints"

// RoundDiv returns floor((a + b/2)/b), classic rounding for positives.
// b == 0 yields 0.
func RoundDiv[T constraints.Unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b/2) / b
}

// DivExact returns a/b and whether b divides a with no remainder.
func DivExact[T constraints.Unsigned](a, b T) (T, bool) {
	if b == 0 {
		return 0, false
	}
	return a / b, a%b == 0
}

// RoundF64 rounds half away from zero and converts to int64.
func RoundF64(f float64) int64 {
	if f < 0 {
		return -int64(-f + 0.5)
	}
	return int64(f + 0.5)
}
