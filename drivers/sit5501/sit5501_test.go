package sit5501

import (
	"errors"
	"math"
	"testing"

	"ppsdo-go/errcode"
)

type tx struct {
	w    []byte
	rLen int
}

// fakeChip is an auto-incrementing 16-bit register file behind drivers.I2C.
type fakeChip struct {
	addr    uint16
	regs    [numRegs]uint16
	log     []tx
	absent  bool
	fail    error
	corrupt func(reg uint8, v uint16) uint16
}

func newChip() *fakeChip { return &fakeChip{addr: AddressDefault} }

func (f *fakeChip) Tx(addr uint16, w, r []byte) error {
	if f.absent || addr != f.addr {
		return errors.New("nack")
	}
	if f.fail != nil {
		return f.fail
	}
	f.log = append(f.log, tx{w: append([]byte(nil), w...), rLen: len(r)})
	if len(w) == 0 {
		return nil
	}
	reg := int(w[0])
	for i := 1; i+1 < len(w); i += 2 {
		if reg < numRegs {
			f.regs[reg] = uint16(w[i])<<8 | uint16(w[i+1])
		}
		reg++
	}
	for i := 0; i+1 < len(r); i += 2 {
		reg := w[0] + uint8(i/2)
		var v uint16
		if reg < numRegs {
			v = f.regs[reg]
		}
		if f.corrupt != nil {
			v = f.corrupt(reg, v)
		}
		r[i], r[i+1] = byte(v>>8), byte(v)
	}
	return nil
}

func (f *fakeChip) writes() []tx {
	var out []tx
	for _, t := range f.log {
		if len(t.w) > 1 {
			out = append(out, t)
		}
	}
	return out
}

func started(t *testing.T, cfg Config) (*fakeChip, *Device) {
	t.Helper()
	chip := newChip()
	d := New(chip, cfg)
	if err := d.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	chip.log = nil
	return chip, d
}

func TestRegisterLayoutConstants(t *testing.T) {
	if OEBit != 0x0400 || MSWMask != 0x03FF {
		t.Fatalf("OEBit=%#x MSWMask=%#x", OEBit, MSWMask)
	}
	if OEBit&MSWMask != 0 {
		t.Fatal("OE bit overlaps DCTRL field")
	}
	if ControlWordMax != 33_554_431 || ControlWordMin != -33_554_432 {
		t.Fatalf("word range %d..%d", ControlWordMin, ControlWordMax)
	}
	if PullRange3200.PPM() != 3200 || PullRange6_25.PPM() != 6.25 || PullRange(16).PPM() != 0 {
		t.Fatal("pull range table")
	}
}

func TestOutOfRangeRejectedWithoutTraffic(t *testing.T) {
	chip := newChip()
	d := New(chip, DefaultConfig())
	for _, ppm := range []float64{5000, -3200.5, math.NaN()} {
		if err := d.SetFrequencyOffsetPPM(ppm); !errors.Is(err, errcode.OutOfRange) {
			t.Fatalf("SetFrequencyOffsetPPM(%v) = %v", ppm, err)
		}
	}
	if len(chip.log) != 0 {
		t.Fatalf("bus saw %d transactions, want 0", len(chip.log))
	}
	if d.ControlWord() != 0 {
		t.Fatal("shadow changed by rejected request")
	}
}

func TestPPMRoundTrip(t *testing.T) {
	for _, pr := range []PullRange{PullRange3200, PullRange100, PullRange6_25} {
		lsb := pr.PPM() / ControlWordMax
		for _, ppm := range []float64{1600, -1600, 0.001, -pr.PPM(), pr.PPM(), 1.5} {
			if math.Abs(ppm) > pr.PPM() {
				continue
			}
			w := PPMToControlWord(ppm, pr)
			if back := ControlWordToPPM(w, pr); math.Abs(back-ppm) > lsb {
				t.Fatalf("range %v: %v ppm -> %d -> %v", pr.PPM(), ppm, w, back)
			}
		}
	}
	if w := PPMToControlWord(1600, PullRange3200); w != 16_777_216 {
		t.Fatalf("PPMToControlWord(1600) = %d", w)
	}
	if w := PPMToControlWord(9999, PullRange3200); w != ControlWordMax {
		t.Fatalf("clamp high = %d", w)
	}
	if w := PPMToControlWord(-9999, PullRange3200); w != -ControlWordMax {
		t.Fatalf("clamp low = %d", w)
	}
}

func TestWordPacking(t *testing.T) {
	for _, w := range []int32{0, 1, -1, 0x1234567 >> 1, ControlWordMax, ControlWordMin, -16_777_216} {
		lsw, msw := splitWord(w)
		if msw&^MSWMask != 0 {
			t.Fatalf("%d: msw %#x spills outside DCTRL", w, msw)
		}
		if got := joinWord(lsw, msw|OEBit); got != w {
			t.Fatalf("joinWord(splitWord(%d)) = %d", w, got)
		}
	}
}

func TestTrimUpdateIsOneTransaction(t *testing.T) {
	chip, d := started(t, DefaultConfig())
	d.SetVerify(false)

	if err := d.SetFrequencyOffsetPPM(1600); err != nil {
		t.Fatal(err)
	}
	if len(chip.log) != 1 {
		t.Fatalf("%d transactions, want 1", len(chip.log))
	}
	// 16777216 = 0x1000000: LSW 0x0000, MSW 0x0100 plus OE.
	want := []byte{regFCLSW, 0x00, 0x00, 0x05, 0x00}
	if got := chip.log[0].w; string(got) != string(want) {
		t.Fatalf("write = % x, want % x", got, want)
	}
	if chip.regs[regFCMSW] != 0x0500 || chip.regs[regPullRange] != uint16(PullRange3200) {
		t.Fatalf("device regs = %#x", chip.regs)
	}
}

func TestVerifiedUpdateWritesOnce(t *testing.T) {
	chip, d := started(t, DefaultConfig())
	if err := d.SetFrequencyOffsetPPM(-1600); err != nil {
		t.Fatal(err)
	}
	if ws := chip.writes(); len(ws) != 1 || len(ws[0].w) != 5 {
		t.Fatalf("writes = %v", ws)
	}
	w, err := d.FrequencyControl()
	if err != nil || w != -16_777_216 {
		t.Fatalf("FrequencyControl = %d, %v", w, err)
	}
	if got := d.FrequencyOffsetPPM(); math.Abs(got+1600) > 1e-3 {
		t.Fatalf("FrequencyOffsetPPM = %v", got)
	}
}

func TestReadbackMismatchIsConsistencyFault(t *testing.T) {
	chip, d := started(t, DefaultConfig())
	chip.corrupt = func(reg uint8, v uint16) uint16 {
		if reg == regFCLSW {
			return v ^ 1
		}
		return v
	}
	err := d.SetFrequencyControl(0x1234)
	if !errors.Is(err, errcode.RegisterConsistency) || errors.Is(err, errcode.BusTransaction) {
		t.Fatalf("err = %v, want register_consistency", err)
	}
	var mm *RegisterMismatch
	if !errors.As(err, &mm) || mm.Reg != regFCLSW || mm.Want != 0x1234 || mm.Got != 0x1235 {
		t.Fatalf("mismatch = %+v", mm)
	}
	if err := d.Flush(); !errors.Is(err, errcode.RegisterConsistency) {
		t.Fatalf("Flush err = %v", err)
	}
}

func TestBusFailureKeepsShadow(t *testing.T) {
	chip, d := started(t, DefaultConfig())
	before := d.Shadow()
	chip.fail = errors.New("arbitration lost")
	if err := d.SetFrequencyOffsetPPM(10); !errors.Is(err, errcode.BusTransaction) {
		t.Fatalf("err = %v", err)
	}
	if d.Shadow() != before {
		t.Fatal("shadow changed after failed write")
	}
}

func TestOutputEnablePreservesControlWord(t *testing.T) {
	chip, d := started(t, DefaultConfig())
	if err := d.SetFrequencyControl(0x2ABCDEF >> 1); err != nil {
		t.Fatal(err)
	}
	_, msw := splitWord(0x2ABCDEF >> 1)
	chip.log = nil

	if err := d.SetOutputEnable(false); err != nil {
		t.Fatal(err)
	}
	ws := chip.writes()
	if len(ws) != 1 || len(ws[0].w) != 3 || ws[0].w[0] != regFCMSW {
		t.Fatalf("writes = %v", ws)
	}
	if chip.regs[regFCMSW] != msw || d.OutputEnabled() {
		t.Fatalf("reg1 = %#x, want %#x", chip.regs[regFCMSW], msw)
	}
	if d.ControlWord() != 0x2ABCDEF>>1 {
		t.Fatalf("control word changed: %d", d.ControlWord())
	}
}

func TestPullRangeChange(t *testing.T) {
	chip, d := started(t, DefaultConfig())
	if err := d.SetPullRange(PullRange100); err != nil {
		t.Fatal(err)
	}
	if chip.regs[regPullRange] != uint16(PullRange100) || d.PullRange() != PullRange100 {
		t.Fatalf("reg2 = %#x", chip.regs[regPullRange])
	}
	if err := d.SetFrequencyOffsetPPM(150); !errors.Is(err, errcode.OutOfRange) {
		t.Fatalf("150 ppm at ±100: %v", err)
	}
	if err := d.SetPullRange(PullRange(16)); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("bad code: %v", err)
	}
	if pr, ok := PullRangeFor(1600); !ok || pr != PullRange1600 {
		t.Fatalf("PullRangeFor(1600) = %v,%v", pr, ok)
	}
}

func TestBeginWritesImage(t *testing.T) {
	chip := newChip()
	chip.regs = [numRegs]uint16{0xFFFF, 0x03FF, 0}
	cfg := DefaultConfig()
	cfg.PullRange = PullRange800
	d := New(chip, cfg)
	if err := d.Begin(); err != nil {
		t.Fatal(err)
	}
	if chip.regs != [numRegs]uint16{0, OEBit, uint16(PullRange800)} {
		t.Fatalf("regs = %#x", chip.regs)
	}
	ws := chip.writes()
	if len(ws) != 1 || len(ws[0].w) != 7 {
		t.Fatalf("Begin writes = %v", ws)
	}
}

func TestBeginAbsent(t *testing.T) {
	chip := newChip()
	chip.absent = true
	d := New(chip, DefaultConfig())
	if d.IsPresent() {
		t.Fatal("absent device reported present")
	}
	if err := d.Begin(); !errors.Is(err, errcode.DeviceAbsent) {
		t.Fatalf("Begin = %v", err)
	}
}

func TestRegisterAccessBounds(t *testing.T) {
	_, d := started(t, DefaultConfig())
	if _, err := d.ReadRegister(3); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("ReadRegister(3) = %v", err)
	}
	if err := d.WriteRegister(regPullRange, 0xFFF3); err != nil {
		t.Fatal(err)
	}
	if v, _ := d.ReadRegister(regPullRange); v != 3 {
		t.Fatalf("reg2 = %#x, want masked 3", v)
	}
}

func TestSyncAdoptsDeviceImage(t *testing.T) {
	chip := newChip()
	lsw, msw := splitWord(-1234)
	chip.regs = [numRegs]uint16{lsw, msw | OEBit, uint16(PullRange200)}

	d := New(chip, DefaultConfig())
	if err := d.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(chip.writes()) != 0 {
		t.Fatalf("Sync wrote to the device: %v", chip.writes())
	}
	if d.ControlWord() != -1234 || !d.OutputEnabled() || d.PullRange() != PullRange200 {
		t.Fatalf("shadow = %#v", d.Shadow())
	}

	chip.absent = true
	if err := d.Sync(); !errors.Is(err, errcode.BusTransaction) {
		t.Fatalf("Sync absent: %v", err)
	}
}

func TestFrequencyControlReadIsOneTransaction(t *testing.T) {
	chip, d := started(t, DefaultConfig())
	if err := d.SetFrequencyControl(-70_000); err != nil {
		t.Fatal(err)
	}
	chip.log = nil

	w, err := d.FrequencyControl()
	if err != nil || w != -70_000 {
		t.Fatalf("FrequencyControl = %d, %v", w, err)
	}
	if len(chip.log) != 1 || chip.log[0].rLen != 4 || chip.log[0].w[0] != regFCLSW {
		t.Fatalf("transactions = %+v, want one 4-byte read from reg 0", chip.log)
	}
}
