//go:build tinygo && mimxrt1062

package main

import (
	"machine"
	"runtime/volatile"
	"unsafe"
)

func reg(addr uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(addr))
}

const (
	ccmCSCMR1 = 0x400FC01C
	ccmCCGR0  = 0x400FC068

	cscmr1PerclkSel  = 1 << 6
	cscmr1PerclkPodf = 0x3F

	ccgr0GPT2Bus    = 3 << 24
	ccgr0GPT2Serial = 3 << 26

	muxAlt8 = 8
	muxSION = 1 << 4
	padCtl  = 0x1030 // input enable, pull-up, medium drive

	// AD_B1_02 pin 14 GPT2_CLK, AD_B1_03 pin 15 CAPTURE1, AD_B1_05 pin 41 COMPARE1
	muxADB102 = 0x401F8134
	muxADB103 = 0x401F8138
	muxADB105 = 0x401F8140
	padADB102 = 0x401F8324
	padADB103 = 0x401F8328
	padADB105 = 0x401F8330

	selGPT2Capin1 = 0x401F8764
	selGPT2Clkin  = 0x401F876C
)

var oePins = [...]machine.Pin{machine.D21, machine.D22, machine.D23}

// initBoard gates GPT2 on, selects its peripheral clock root and routes the
// timer pads. With an external source the root is IPG/2 (75 MHz) so the
// GPT_CLK input is synchronised well above 10 MHz; otherwise the root is the
// 24 MHz oscillator the internal profile counts from.
func initBoard(external bool) {
	cscmr1 := reg(ccmCSCMR1)
	v := cscmr1.Get() &^ (cscmr1PerclkSel | cscmr1PerclkPodf)
	if external {
		v |= 1
	} else {
		v |= cscmr1PerclkSel
	}
	cscmr1.Set(v)

	ccgr0 := reg(ccmCCGR0)
	ccgr0.Set(ccgr0.Get() | ccgr0GPT2Bus | ccgr0GPT2Serial)

	for _, p := range [...]struct{ mux, pad uintptr }{
		{muxADB102, padADB102},
		{muxADB103, padADB103},
		{muxADB105, padADB105},
	} {
		reg(p.mux).Set(muxSION | muxAlt8)
		reg(p.pad).Set(padCtl)
	}
	reg(selGPT2Clkin).Set(1)
	reg(selGPT2Capin1).Set(1)

	for _, p := range oePins {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.High()
	}
}
