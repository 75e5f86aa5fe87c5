// Package gpt drives one i.MX RT general purpose timer as a PPS timebase:
// input capture channel 1 timestamps reference edges and output compare
// channel 1 synthesises a continuously re-armed square wave from the same
// free-running counter.
package gpt

// Register is one 32-bit peripheral register. *volatile.Register32 satisfies
// it on the MCU; tests supply a fake block.
type Register interface {
	Get() uint32
	Set(uint32)
}

// Registers is the subset of the GPT block the engine touches.
type Registers struct {
	CR   Register // control
	PR   Register // prescaler
	SR   Register // status, write 1 to clear
	IR   Register // interrupt enable
	OCR1 Register // output compare 1
	ICR1 Register // input capture 1
	CNT  Register // counter, read only
}

// Register byte offsets from the block base.
const (
	offCR   = 0x00
	offPR   = 0x04
	offSR   = 0x08
	offIR   = 0x0C
	offOCR1 = 0x10
	offICR1 = 0x1C
	offCNT  = 0x24
)

// --- CR bitfields ---

const (
	crEN     = 1 << 0
	crENMOD  = 1 << 1
	crFRR    = 1 << 9
	crEN24M  = 1 << 10
	crSWR    = 1 << 15
	crClkPos = 6
	crClkMsk = 0x7 << crClkPos
	crIM1Pos = 16
	crIM1Msk = 0x3 << crIM1Pos
	crOM1Pos = 20
	crOM1Msk = 0x7 << crOM1Pos
)

// Clock source field values.
const (
	clkOff      = 0
	clkPeriph   = 1
	clkExternal = 3
	clkCrystal  = 5 // 24 MHz oscillator, needs EN_24M
)

// --- SR / IR bitfields (shared layout) ---

const (
	flagOF1 = 1 << 0
	flagOF2 = 1 << 1
	flagOF3 = 1 << 2
	flagIF1 = 1 << 3
	flagIF2 = 1 << 4
	flagROV = 1 << 5
	flagAll = 0x3F
)

const prescaleMax = 4096

// Control is a typed view of CR.
type Control uint32

func (c Control) Enabled() bool       { return c&crEN != 0 }
func (c Control) ResetPending() bool  { return c&crSWR != 0 }
func (c Control) ClockSource() uint32 { return (uint32(c) & crClkMsk) >> crClkPos }
func (c Control) CaptureEdge() Edge   { return Edge((uint32(c) & crIM1Msk) >> crIM1Pos) }
func (c Control) OutputMode() OutputMode {
	return OutputMode((uint32(c) & crOM1Msk) >> crOM1Pos)
}

func (c Control) WithEnabled(on bool) Control {
	if on {
		return c | crEN
	}
	return c &^ crEN
}

func (c Control) WithClockSource(src uint32) Control {
	return c&^crClkMsk | Control(src<<crClkPos)&crClkMsk
}

func (c Control) WithCaptureEdge(e Edge) Control {
	return c&^crIM1Msk | Control(uint32(e)<<crIM1Pos)&crIM1Msk
}

func (c Control) WithOutputMode(m OutputMode) Control {
	return c&^crOM1Msk | Control(uint32(m)<<crOM1Pos)&crOM1Msk
}

// Status is a typed view of SR (and of IR, which shares the layout).
type Status uint32

func (s Status) Captured() bool { return s&flagIF1 != 0 }
func (s Status) Compared() bool { return s&flagOF1 != 0 }
func (s Status) Rollover() bool { return s&flagROV != 0 }

// OutputMode is the OM1 action applied on a compare match.
type OutputMode uint8

const (
	OutputDisconnected OutputMode = 0
	OutputToggle       OutputMode = 1
	OutputClear        OutputMode = 2
	OutputSet          OutputMode = 3
)
