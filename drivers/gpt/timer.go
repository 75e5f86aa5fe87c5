package gpt

import (
	"sync/atomic"
	"time"

	"ppsdo-go/errcode"
)

// IRQ is the NVIC line of a timer. runtime/interrupt.Interrupt satisfies it.
type IRQ interface {
	Enable()
	Disable()
}

// noCopy flags accidental copies of a Timer under go vet.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Timer is one physical GPT instance. At most one Engine owns it at a time.
type Timer struct {
	_       noCopy
	regs    Registers
	irq     IRQ
	sleep   func(time.Duration)
	claimed atomic.Bool
	engine  *Engine // owner, read by the interrupt trampoline
}

// NewTimer wraps a register block. irq may be nil when only polled mode is
// used.
func NewTimer(regs Registers, irq IRQ) *Timer {
	return &Timer{regs: regs, irq: irq, sleep: time.Sleep}
}

// SetSleep replaces the delay used while waiting for the software reset.
func (t *Timer) SetSleep(fn func(time.Duration)) {
	if fn == nil {
		fn = time.Sleep
	}
	t.sleep = fn
}

// Claim hands out the exclusive Engine for this timer.
func (t *Timer) Claim() (*Engine, error) {
	if !t.claimed.CompareAndSwap(false, true) {
		return nil, errcode.New(errcode.InUse, "gpt.claim", "timer already claimed")
	}
	e := &Engine{t: t}
	t.engine = e
	return e, nil
}

// Claimed reports whether an Engine currently owns the timer.
func (t *Timer) Claimed() bool { return t.claimed.Load() }

// dispatch routes a hardware interrupt to the owning engine.
func (t *Timer) dispatch() {
	if e := t.engine; e != nil {
		e.HandleInterrupt()
	}
}
