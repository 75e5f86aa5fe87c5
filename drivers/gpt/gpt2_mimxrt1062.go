//go:build tinygo && mimxrt1062

package gpt

import (
	"device/nxp"
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"
)

const gpt2Base = 0x401F0000

func reg(addr uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(addr))
}

// GPT2 is the timer routed to Teensy 4.x pins 14 (GPT2_CLK), 15 (CAPTURE1)
// and 41 (COMPARE1). Pin mux and clock gating are the board's job.
var GPT2 = NewTimer(Registers{
	CR:   reg(gpt2Base + offCR),
	PR:   reg(gpt2Base + offPR),
	SR:   reg(gpt2Base + offSR),
	IR:   reg(gpt2Base + offIR),
	OCR1: reg(gpt2Base + offOCR1),
	ICR1: reg(gpt2Base + offICR1),
	CNT:  reg(gpt2Base + offCNT),
}, nil)

func init() {
	GPT2.irq = interrupt.New(nxp.IRQ_GPT2, func(interrupt.Interrupt) {
		GPT2.dispatch()
	})
}
