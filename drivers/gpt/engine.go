package gpt

import (
	"sync/atomic"

	"ppsdo-go/errcode"
)

// State is the engine lifecycle.
type State uint32

const (
	Idle State = iota
	Configured
	Running
	Stopped
	released
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Configured:
		return "configured"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return "released"
}

// captureState is written by the service path and read by ReadCapture, both
// under the engine's critical section.
type captureState struct {
	previous uint32
	last     uint32
	edges    uint8 // saturates at 2
	avail    bool
	overruns uint32
}

// Engine owns one Timer: configuration, capture periods and the compare
// waveform. Obtain it with Timer.Claim.
type Engine struct {
	t     *Timer
	cfg   Config
	state atomic.Uint32
	cs    critical
	cap   captureState
	cmp   compareState
}

func (e *Engine) State() State    { return State(e.state.Load()) }
func (e *Engine) IsRunning() bool { return e.State() == Running }

// TickRateHz is the counter rate of the active configuration, or 0.
func (e *Engine) TickRateHz() uint32 {
	switch e.State() {
	case Configured, Running:
		return e.cfg.TickRateHz
	}
	return 0
}

// Config returns the active configuration.
func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) setState(s State) { e.state.Store(uint32(s)) }

func invalidState(op string, s State) error {
	return errcode.New(errcode.InvalidState, op, "not allowed while "+s.String())
}

// Configure resets the timer and programs clock, prescaler and capture edge.
// A reset that is never acknowledged yields a ConfigurationTimeout error but
// the timer is still programmed and the engine moves to Configured.
func (e *Engine) Configure(cfg Config) error {
	switch s := e.State(); s {
	case Idle, Configured, Stopped:
	default:
		return invalidState("gpt.configure", s)
	}
	pr, err := cfg.prescale()
	if err != nil {
		return err
	}
	cfg = cfg.withDefaults()
	r := &e.t.regs

	r.IR.Set(0)
	r.CR.Set(0)
	r.CR.Set(crSWR)
	acked := false
	for i := 0; i < cfg.ResetPolls; i++ {
		if !Control(r.CR.Get()).ResetPending() {
			acked = true
			break
		}
		e.t.sleep(cfg.ResetPollInterval)
	}

	cr := Control(crFRR | crENMOD).
		WithClockSource(cfg.clockField()).
		WithCaptureEdge(cfg.Edge)
	if cfg.Source == SourceCrystal {
		cr |= crEN24M
	}
	r.CR.Set(uint32(cr))
	r.PR.Set(pr)
	r.SR.Set(flagAll)

	e.cs.enter()
	e.cfg = cfg
	e.cap = captureState{}
	e.cmp = compareState{duty: 50}
	e.cs.exit()
	e.setState(Configured)

	if !acked {
		return errcode.New(errcode.ConfigurationTimeout, "gpt.configure", "software reset not acknowledged")
	}
	return nil
}

// Start enables the counter and, if an output frequency is set, arms the
// compare channel.
func (e *Engine) Start() error {
	if s := e.State(); s != Configured {
		return invalidState("gpt.start", s)
	}
	r := &e.t.regs
	e.cs.enter()
	// ENMOD zeroes the counter on enable, so CNT reads as the start point.
	if e.cmp.half != 0 {
		e.armLocked(0)
	}
	e.cs.exit()

	r.SR.Set(flagAll)
	r.IR.Set(e.interruptMask())
	r.CR.Set(uint32(Control(r.CR.Get()).WithEnabled(true)))
	e.setState(Running)
	if e.cfg.Mode == ModeInterrupt && e.t.irq != nil {
		e.t.irq.Enable()
	}
	return nil
}

// Stop disables the counter and discards capture and compare state.
func (e *Engine) Stop() error {
	if s := e.State(); s != Running {
		return invalidState("gpt.stop", s)
	}
	r := &e.t.regs
	if e.t.irq != nil {
		e.t.irq.Disable()
	}
	r.IR.Set(0)
	cr := Control(r.CR.Get()).WithEnabled(false).WithOutputMode(OutputDisconnected)
	r.CR.Set(uint32(cr))
	r.SR.Set(flagAll)

	e.cs.enter()
	e.cap = captureState{}
	e.cmp = compareState{duty: 50}
	e.cs.exit()
	e.setState(Stopped)
	return nil
}

// Release stops the engine if needed and frees the timer for another Claim.
// The Engine must not be used afterwards; releasing it again is a no-op and
// never disturbs a later owner.
func (e *Engine) Release() {
	if e.State() == released {
		return
	}
	if e.IsRunning() {
		_ = e.Stop()
	}
	e.setState(released)
	if e.t.engine == e {
		e.t.engine = nil
		e.t.claimed.Store(false)
	}
}

// SetCaptureEdge changes the IM1 edge selection in place.
func (e *Engine) SetCaptureEdge(edge Edge) error {
	if edge > EdgeBoth {
		return errcode.New(errcode.InvalidParams, "gpt.edge", "unknown capture edge")
	}
	switch s := e.State(); s {
	case Configured, Running:
	default:
		return invalidState("gpt.edge", s)
	}
	r := &e.t.regs
	e.cfg.Edge = edge
	r.CR.Set(uint32(Control(r.CR.Get()).WithCaptureEdge(edge)))
	if e.IsRunning() {
		r.IR.Set(e.interruptMask())
	}
	return nil
}

func (e *Engine) interruptMask() uint32 {
	if e.cfg.Mode != ModeInterrupt {
		return 0
	}
	var m uint32
	if e.cfg.Edge != EdgeDisabled {
		m |= flagIF1
	}
	if e.cmp.armed {
		m |= flagOF1
	}
	return m
}

// --- Capture ---

// CaptureAvailable reports whether an unread period is pending.
func (e *Engine) CaptureAvailable() bool {
	e.cs.enter()
	ok := e.cap.avail
	e.cs.exit()
	return ok
}

// ReadCapture consumes the pending period, the tick difference between the
// two most recent edges modulo 2^32. ok is false when nothing new arrived.
func (e *Engine) ReadCapture() (ticks uint32, ok bool) {
	e.cs.enter()
	if e.cap.avail {
		e.cap.avail = false
		ticks, ok = e.cap.last-e.cap.previous, true
	}
	e.cs.exit()
	return ticks, ok
}

// Overruns counts periods that were replaced before ReadCapture saw them.
func (e *Engine) Overruns() uint32 {
	e.cs.enter()
	n := e.cap.overruns
	e.cs.exit()
	return n
}

func (e *Engine) recordCapture(v uint32) {
	e.cs.enter()
	c := &e.cap
	if c.avail {
		c.overruns++
	}
	c.previous = c.last
	c.last = v
	if c.edges < 2 {
		c.edges++
	}
	c.avail = c.edges >= 2
	e.cs.exit()
}

// --- Service path ---

// HandleInterrupt services the timer from its interrupt handler. It is a
// no-op unless the engine runs in interrupt mode.
func (e *Engine) HandleInterrupt() {
	if e.cfg.Mode != ModeInterrupt || !e.IsRunning() {
		return
	}
	e.service()
}

// Poll services pending capture and compare events from the main loop in
// polled mode. It reports whether anything was handled.
func (e *Engine) Poll() bool {
	if e.cfg.Mode != ModePolled || !e.IsRunning() {
		return false
	}
	return e.service()
}

// service handles IF1 and OF1 and clears only those bits.
func (e *Engine) service() bool {
	r := &e.t.regs
	sr := Status(r.SR.Get())
	var handled uint32
	if sr.Captured() {
		e.recordCapture(r.ICR1.Get())
		handled |= flagIF1
	}
	if sr.Compared() {
		e.cs.enter()
		if e.cmp.armed {
			e.matchLocked()
		}
		e.cs.exit()
		handled |= flagOF1
	}
	if handled != 0 {
		r.SR.Set(handled)
	}
	return handled != 0
}
