package gpt

import "time"

type plainReg struct{ v uint32 }

func (r *plainReg) Get() uint32  { return r.v }
func (r *plainReg) Set(v uint32) { r.v = v }

// w1cReg models SR: writing a 1 clears that bit.
type w1cReg struct{ v uint32 }

func (r *w1cReg) Get() uint32  { return r.v }
func (r *w1cReg) Set(v uint32) { r.v &^= v }

// ctrlReg models CR: SWR reads back set once, then clears unless stuck.
type ctrlReg struct {
	v     uint32
	stuck bool
}

func (r *ctrlReg) Get() uint32 {
	v := r.v
	if !r.stuck {
		r.v &^= crSWR
	}
	return v
}
func (r *ctrlReg) Set(v uint32) { r.v = v }

type fakeIRQ struct{ enabled bool }

func (i *fakeIRQ) Enable()  { i.enabled = true }
func (i *fakeIRQ) Disable() { i.enabled = false }

type fakeGPT struct {
	cr                      ctrlReg
	sr                      w1cReg
	pr, ir, ocr1, icr1, cnt plainReg
	irq                     fakeIRQ
	sleeps                  int
}

func newFake() (*fakeGPT, *Timer) {
	f := &fakeGPT{}
	t := NewTimer(Registers{
		CR: &f.cr, PR: &f.pr, SR: &f.sr, IR: &f.ir,
		OCR1: &f.ocr1, ICR1: &f.icr1, CNT: &f.cnt,
	}, &f.irq)
	t.SetSleep(func(time.Duration) { f.sleeps++ })
	return f, t
}

// edge latches v into ICR1 and raises IF1.
func (f *fakeGPT) edge(v uint32) {
	f.icr1.v = v
	f.sr.v |= flagIF1
}

// match moves the counter to now and raises OF1.
func (f *fakeGPT) match(now uint32) {
	f.cnt.v = now
	f.sr.v |= flagOF1
}

func (f *fakeGPT) control() Control { return Control(f.cr.v) }
