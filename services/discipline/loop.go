package discipline

import "ppsdo-go/x/mathx"

// Result describes one fed capture period.
type Result struct {
	PPMError float64
	Accepted bool // false for outliers
	Locked   bool
	Steer    bool    // a new trim should be applied
	Offset   float64 // trim to apply when Steer is set
}

// Loop turns capture periods into error statistics, lock state and trim
// corrections. It does no I/O.
type Loop struct {
	cfg     Config
	nominal uint32

	window []float64
	next   int
	filled int
	sum    float64

	run     int // consecutive accepted periods
	stable  int
	locked  bool
	samples uint32
	last    float64

	servo pi
}

// NewLoop measures periods against nominal ticks per second.
func NewLoop(cfg Config, nominal uint32) *Loop {
	if cfg.AverageWindow < 1 {
		cfg.AverageWindow = 1
	}
	return &Loop{
		cfg:     cfg,
		nominal: nominal,
		window:  make([]float64, cfg.AverageWindow),
		servo:   pi{kp: cfg.Kp, ki: cfg.Ki, limit: cfg.Limit},
	}
}

// PPMError is the fractional deviation of ticks from nominal, in ppm.
func PPMError(ticks, nominal uint32) float64 {
	if nominal == 0 {
		return 0
	}
	return (float64(ticks) - float64(nominal)) / float64(nominal) * 1e6
}

// Feed consumes one period.
//
// Steering starts after LockSamples consecutive accepted periods. Lock means
// LockSamples consecutive periods within LockThresholdPPM of the target:
// zero error while steering, the moving average otherwise.
func (l *Loop) Feed(ticks uint32) Result {
	e := PPMError(ticks, l.nominal)
	if mathx.Abs(e) > l.cfg.OutlierPPM {
		l.run, l.stable = 0, 0
		l.locked = false
		return Result{PPMError: e}
	}
	l.samples++
	l.run++
	l.last = e
	avg := l.push(e)

	target := avg
	if l.cfg.Steer {
		target = 0
	}
	if mathx.Abs(e-target) <= l.cfg.LockThresholdPPM {
		l.stable++
	} else {
		l.stable = 0
	}
	l.locked = l.stable >= l.cfg.LockSamples

	r := Result{PPMError: e, Accepted: true, Locked: l.locked}
	if l.cfg.Steer && l.run >= l.cfg.LockSamples {
		r.Steer = true
		r.Offset = l.servo.sample(e)
	}
	return r
}

func (l *Loop) push(e float64) float64 {
	if l.filled == len(l.window) {
		l.sum -= l.window[l.next]
	} else {
		l.filled++
	}
	l.window[l.next] = e
	l.sum += e
	l.next = (l.next + 1) % len(l.window)
	return l.sum / float64(l.filled)
}

// Average is the moving average of accepted errors.
func (l *Loop) Average() float64 {
	if l.filled == 0 {
		return 0
	}
	return l.sum / float64(l.filled)
}

func (l *Loop) Last() float64      { return l.last }
func (l *Loop) Locked() bool       { return l.locked }
func (l *Loop) Samples() uint32    { return l.samples }
func (l *Loop) Nominal() uint32    { return l.nominal }
func (l *Loop) SeedTrim(o float64) { l.servo.seed(o) }

// Reset clears statistics and the servo, e.g. after the trim was moved by
// hand.
func (l *Loop) Reset() {
	for i := range l.window {
		l.window[i] = 0
	}
	l.next, l.filled, l.sum = 0, 0, 0
	l.run, l.stable, l.locked = 0, 0, false
	l.servo.reset()
}
