// Package sit5501 drives the SiTime SiT5501 digitally controlled MEMS
// oscillator over I2C.
//
// Supported register map (16-bit, big-endian on the wire, auto-increment):
//
//	0x00  DCTRL[15:0]
//	0x01  bit 10 OE (1 = output enabled), bits 9:0 DCTRL[25:16]
//	0x02  bits 3:0 pull range code
//
// DCTRL is a 26-bit two's complement frequency control word.
package sit5501

import "time"

const (
	// 7-bit I2C addresses selected by the A1/A0 straps.
	AddressDefault = 0x68
	AddressA1A0_00 = 0x60
	AddressA1A0_01 = 0x62
	AddressA1A0_11 = 0x6A

	regFCLSW     = 0x00
	regFCMSW     = 0x01
	regPullRange = 0x02
	numRegs      = 3

	OEBit   = 1 << 10
	MSWMask = 0x03FF // DCTRL[25:16] in regFCMSW

	pullRangeMask = 0x000F

	ControlWordBits = 26
	ControlWordMax  = 1<<(ControlWordBits-1) - 1 // full scale, maps to +pull range
	ControlWordMin  = -(1 << (ControlWordBits - 1))
	controlWordMask = 1<<ControlWordBits - 1

	// Datasheet timing after a DCTRL write.
	FreqChangeDelay = 140 * time.Microsecond
	SettleTime      = 20 * time.Microsecond
)

// writable bits per register; readback compares under these masks.
var regMask = [numRegs]uint16{
	regFCLSW:     0xFFFF,
	regFCMSW:     OEBit | MSWMask,
	regPullRange: pullRangeMask,
}

// PullRange is the 4-bit pull range code.
type PullRange uint8

const (
	PullRange6_25 PullRange = iota
	PullRange10
	PullRange12_5
	PullRange25
	PullRange50
	PullRange80
	PullRange100
	PullRange125
	PullRange150
	PullRange200
	PullRange400
	PullRange600
	PullRange800
	PullRange1200
	PullRange1600
	PullRange3200
)

var pullRangePPM = [16]float64{
	6.25, 10, 12.5, 25, 50, 80, 100, 125, 150, 200, 400, 600, 800, 1200, 1600, 3200,
}

// PPM returns the ± span of the code, or 0 for an invalid code.
func (p PullRange) PPM() float64 {
	if p > PullRange3200 {
		return 0
	}
	return pullRangePPM[p]
}

func (p PullRange) Valid() bool { return p <= PullRange3200 }

// PullRangeFor returns the code whose span is exactly ppm.
func PullRangeFor(ppm float64) (PullRange, bool) {
	for i, v := range pullRangePPM {
		if v == ppm {
			return PullRange(i), true
		}
	}
	return 0, false
}
