package gpt

import (
	"errors"
	"testing"

	"ppsdo-go/errcode"
)

func configured(t *testing.T, cfg Config) (*fakeGPT, *Engine) {
	t.Helper()
	f, tm := newFake()
	e, _ := tm.Claim()
	if err := e.Configure(cfg); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	return f, e
}

func TestHalfPeriod(t *testing.T) {
	type C struct {
		rate, hz, half uint32
	}
	for _, c := range []C{
		{1_000_000, 1, 500_000},
		{10_000_000, 1, 5_000_000},
		{10_000_000, 1000, 5_000},
		{10_000_000, 3, 1_666_666},
		{1_000_000, 0, 500_000}, // 0 Hz is treated as 1 Hz
	} {
		cfg := ExternalConfig()
		cfg.SourceHz, cfg.TickRateHz = c.rate, c.rate
		_, e := configured(t, cfg)
		if err := e.SetOutputFrequency(c.hz); err != nil {
			t.Fatalf("SetOutputFrequency(%d): %v", c.hz, err)
		}
		if got := e.Schedule().HalfPeriod; got != c.half {
			t.Fatalf("rate %d hz %d: half = %d, want %d", c.rate, c.hz, got, c.half)
		}
	}
}

func TestFrequencyAboveTickRateRejected(t *testing.T) {
	_, e := configured(t, DefaultConfig())
	if err := e.SetOutputFrequency(600_000); !errors.Is(err, errcode.OutOfRange) {
		t.Fatalf("err = %v", err)
	}
}

func TestCompareAdvancesFromPreviousTarget(t *testing.T) {
	f, e := configured(t, func() Config { c := DefaultConfig(); c.Mode = ModePolled; return c }())
	if err := e.SetOutputFrequency(1); err != nil {
		t.Fatal(err)
	}
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	start := e.Schedule().Target
	if start != 500_000 || f.ocr1.v != start {
		t.Fatalf("armed target = %d, OCR1 = %d", start, f.ocr1.v)
	}
	if f.control().OutputMode() != OutputToggle {
		t.Fatalf("OM = %d, want toggle", f.control().OutputMode())
	}

	// Service each match late by a few ticks; the grid must not move.
	f.match(start + 37)
	e.Poll()
	if e.OutputHigh() != true {
		t.Fatal("output not high after first toggle")
	}
	f.match(start + 500_000 + 911)
	e.Poll()

	if got := e.Schedule().Target; got != start+2*500_000 {
		t.Fatalf("target = %d, want %d", got, start+2*500_000)
	}
	if f.ocr1.v != start+1_000_000 || f.sr.v&flagOF1 != 0 {
		t.Fatalf("OCR1 = %d SR = %#x", f.ocr1.v, f.sr.v)
	}
	if e.OutputHigh() || e.MissedRearms() != 0 {
		t.Fatalf("high=%v missed=%d", e.OutputHigh(), e.MissedRearms())
	}
}

func TestCompareWrapsWithCounter(t *testing.T) {
	f, e := configured(t, func() Config { c := ExternalConfig(); c.Mode = ModePolled; return c }())
	e.SetOutputFrequency(1)
	e.Start()
	e.SetCompareTarget(4_294_000_000)
	f.match(4_294_000_010)
	e.Poll()
	base := uint32(4_294_000_000)
	want := base + 5_000_000 // wraps
	if got := e.Schedule().Target; got != want || e.MissedRearms() != 0 {
		t.Fatalf("target = %d missed %d, want %d", got, e.MissedRearms(), want)
	}
}

func TestAsymmetricDuty(t *testing.T) {
	f, e := configured(t, func() Config { c := DefaultConfig(); c.Mode = ModePolled; return c }())
	e.SetOutputFrequency(1)
	if err := e.SetDutyCycle(25); err != nil {
		t.Fatal(err)
	}
	e.Start()
	s := e.Schedule()
	if s.HighTicks != 250_000 || s.LowTicks != 750_000 || s.Target != 750_000 {
		t.Fatalf("schedule = %+v", s)
	}
	if f.control().OutputMode() != OutputSet {
		t.Fatalf("OM = %d, want set", f.control().OutputMode())
	}

	f.match(750_001)
	e.Poll()
	if !e.OutputHigh() || e.Schedule().Target != 1_000_000 || f.control().OutputMode() != OutputClear {
		t.Fatalf("after rise: %+v OM=%d", e.Schedule(), f.control().OutputMode())
	}
	f.match(1_000_001)
	e.Poll()
	if e.OutputHigh() || e.Schedule().Target != 1_750_000 || f.control().OutputMode() != OutputSet {
		t.Fatalf("after fall: %+v OM=%d", e.Schedule(), f.control().OutputMode())
	}
}

func TestDutyCycleRange(t *testing.T) {
	_, e := configured(t, DefaultConfig())
	for _, p := range []uint8{0, 100, 150} {
		if err := e.SetDutyCycle(p); !errors.Is(err, errcode.OutOfRange) {
			t.Fatalf("SetDutyCycle(%d) = %v", p, err)
		}
	}
}

func TestLateRearmSkipsWholePeriods(t *testing.T) {
	f, e := configured(t, func() Config { c := DefaultConfig(); c.Mode = ModePolled; return c }())
	e.SetOutputFrequency(1)
	e.Start()

	f.match(2_200_000)
	e.Poll()
	if got := e.Schedule().Target; got != 3_000_000 {
		t.Fatalf("target = %d, want 3000000", got)
	}
	if got := e.MissedRearms(); got != 2 {
		t.Fatalf("MissedRearms = %d, want 2", got)
	}
}

func TestFrequencySetWhileRunningArms(t *testing.T) {
	f, e := running(t, ExternalConfig())
	if e.Schedule().Armed {
		t.Fatal("armed without a frequency")
	}
	f.cnt.v = 1234
	if err := e.SetOutputFrequency(1000); err != nil {
		t.Fatal(err)
	}
	s := e.Schedule()
	if !s.Armed || s.Target != 1234+5000 {
		t.Fatalf("schedule = %+v", s)
	}
	if f.ir.v&flagOF1 == 0 {
		t.Fatalf("IR = %#x, want OF1IE", f.ir.v)
	}
	f.match(1234 + 5000 + 3)
	e.HandleInterrupt()
	if !e.OutputHigh() {
		t.Fatal("output not high after interrupt-driven match")
	}
}

func TestTargetReachedExactlyCountsAsPassed(t *testing.T) {
	f, e := configured(t, func() Config { c := DefaultConfig(); c.Mode = ModePolled; return c }())
	e.SetOutputFrequency(1)
	e.Start()

	f.match(1_000_000)
	e.Poll()
	if got := e.Schedule().Target; got != 2_000_000 {
		t.Fatalf("target = %d, want 2000000", got)
	}
	if got := e.MissedRearms(); got != 1 {
		t.Fatalf("MissedRearms = %d, want 1", got)
	}
}

func TestDutySplitRoundsToNearestTick(t *testing.T) {
	_, e := configured(t, func() Config { c := DefaultConfig(); c.Mode = ModePolled; return c }())
	e.SetOutputFrequency(3) // half 166,666, period 333,332
	e.SetDutyCycle(33)      // 109,999.56 high ticks
	s := e.Schedule()
	if s.HighTicks != 110_000 || s.LowTicks != 223_332 {
		t.Fatalf("schedule = %+v", s)
	}
}
