package gpt

import (
	"ppsdo-go/errcode"
	"ppsdo-go/x/mathx"
)

// Phase is the output level the compare channel drives.
type Phase uint8

const (
	PhaseLow Phase = iota
	PhaseHigh
)

// Schedule is a snapshot of the compare channel.
type Schedule struct {
	Target     uint32 // next match, absolute counter value
	Phase      Phase  // level driven since the previous match
	HalfPeriod uint32 // TickRateHz / (2*hz)
	HighTicks  uint32
	LowTicks   uint32
	Armed      bool
}

type compareState struct {
	half   uint32
	high   uint32
	low    uint32
	duty   uint8
	target uint32
	level  bool // current output level
	armed  bool
	missed uint32
}

func (c *compareState) symmetric() bool { return c.high == c.low }

func (c *compareState) split() {
	if c.duty == 50 {
		c.high, c.low = c.half, c.half
		return
	}
	period := uint64(c.half) * 2
	hi := mathx.RoundDiv(period*uint64(c.duty), 100)
	hi = uint64(mathx.Clamp(int64(hi), 1, int64(period)-1))
	c.high, c.low = uint32(hi), uint32(period-hi)
}

func (c *compareState) period() uint32 { return c.high + c.low }

// SetOutputFrequency sets the compare waveform frequency. hz==0 is treated
// as 1 Hz. When running, the new period applies from the next match.
func (e *Engine) SetOutputFrequency(hz uint32) error {
	switch s := e.State(); s {
	case Configured, Running:
	default:
		return invalidState("gpt.frequency", s)
	}
	if hz == 0 {
		hz = 1
	}
	half := uint64(e.cfg.TickRateHz) / (2 * uint64(hz))
	if half == 0 {
		return errcode.New(errcode.OutOfRange, "gpt.frequency", "frequency above half the tick rate")
	}
	e.cs.enter()
	e.cmp.half = uint32(half)
	e.cmp.split()
	arm := e.IsRunning() && !e.cmp.armed
	if arm {
		e.armLocked(e.t.regs.CNT.Get())
	}
	e.cs.exit()
	if arm {
		e.t.regs.IR.Set(e.interruptMask())
	}
	return nil
}

// SetDutyCycle sets the high share of each period in percent (1..99).
// 50 gives a toggled symmetric wave; anything else uses set/clear matches.
func (e *Engine) SetDutyCycle(percent uint8) error {
	if !mathx.Between(percent, 1, 99) {
		return errcode.New(errcode.OutOfRange, "gpt.duty", "duty cycle must be 1..99")
	}
	switch s := e.State(); s {
	case Configured, Running:
	default:
		return invalidState("gpt.duty", s)
	}
	e.cs.enter()
	e.cmp.duty = percent
	if e.cmp.half != 0 {
		e.cmp.split()
	}
	e.cs.exit()
	return nil
}

// SetCompareTarget moves the next match to an absolute counter value. An
// armed waveform continues from the new target.
func (e *Engine) SetCompareTarget(ticks uint32) error {
	switch s := e.State(); s {
	case Configured, Running:
	default:
		return invalidState("gpt.target", s)
	}
	e.cs.enter()
	e.cmp.target = ticks
	e.t.regs.OCR1.Set(ticks)
	e.cs.exit()
	return nil
}

// Schedule returns the compare channel state.
func (e *Engine) Schedule() Schedule {
	e.cs.enter()
	c := e.cmp
	e.cs.exit()
	s := Schedule{
		Target:     c.target,
		HalfPeriod: c.half,
		HighTicks:  c.high,
		LowTicks:   c.low,
		Armed:      c.armed,
	}
	if c.level {
		s.Phase = PhaseHigh
	}
	return s
}

// OutputHigh reports the level the compare output currently drives.
func (e *Engine) OutputHigh() bool {
	e.cs.enter()
	h := e.cmp.level
	e.cs.exit()
	return h
}

// MissedRearms counts whole periods skipped because a match was serviced
// after the following target had already passed.
func (e *Engine) MissedRearms() uint32 {
	e.cs.enter()
	n := e.cmp.missed
	e.cs.exit()
	return n
}

// armLocked schedules the first rising match one low phase after from.
func (e *Engine) armLocked(from uint32) {
	c := &e.cmp
	c.level = false
	c.armed = true
	c.target = from + c.low
	e.program(c.risingAction())
}

func (c *compareState) risingAction() OutputMode {
	if c.symmetric() {
		return OutputToggle
	}
	return OutputSet
}

// matchLocked runs after the pending action fired: it records the new level
// and programs the next one relative to the previous target.
func (e *Engine) matchLocked() {
	c := &e.cmp
	c.level = !c.level
	var mode OutputMode
	switch {
	case c.symmetric():
		c.target += c.half
		mode = OutputToggle
	case c.level:
		c.target += c.high
		mode = OutputClear
	default:
		c.target += c.low
		mode = OutputSet
	}

	// A target the counter already sits on has passed: the match only fires
	// when CNT steps onto OCR1 after the write.
	now := e.t.regs.CNT.Get()
	if lag := now - c.target; int32(lag) >= 0 {
		p := c.period()
		n := lag/p + 1
		c.target += n * p
		c.missed += n
	}
	e.program(mode)
}

// program writes the action before the target so the match never fires with
// the previous action.
func (e *Engine) program(mode OutputMode) {
	r := &e.t.regs
	r.CR.Set(uint32(Control(r.CR.Get()).WithOutputMode(mode)))
	r.OCR1.Set(e.cmp.target)
}
