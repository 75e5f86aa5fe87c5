package sit5501

import "ppsdo-go/x/mathx"

// PPMToControlWord scales ppm onto the control word for pull range pr,
// rounding to nearest and clamping to ±ControlWordMax.
func PPMToControlWord(ppm float64, pr PullRange) int32 {
	span := pr.PPM()
	if span == 0 || ppm != ppm {
		return 0
	}
	ppm = mathx.Clamp(ppm, -span, span)
	w := mathx.RoundF64(ppm * ControlWordMax / span)
	return int32(mathx.Clamp(w, -ControlWordMax, ControlWordMax))
}

// ControlWordToPPM is the inverse of PPMToControlWord.
func ControlWordToPPM(word int32, pr PullRange) float64 {
	return float64(word) * pr.PPM() / ControlWordMax
}

// splitWord packs a control word into the LSW and the DCTRL bits of the MSW.
func splitWord(word int32) (lsw, msw uint16) {
	u := uint32(word) & controlWordMask
	return uint16(u), uint16(u>>16) & MSWMask
}

// joinWord sign-extends the 26-bit field held in lsw/msw.
func joinWord(lsw, msw uint16) int32 {
	u := uint32(msw&MSWMask)<<16 | uint32(lsw)
	return int32(u<<(32-ControlWordBits)) >> (32 - ControlWordBits)
}
