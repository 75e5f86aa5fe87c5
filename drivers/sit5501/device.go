package sit5501

import (
	"ppsdo-go/errcode"

	"tinygo.org/x/drivers"
)

// Config for a Device.
type Config struct {
	Address      uint16
	PullRange    PullRange
	OutputEnable bool
	Verify       bool // read back after every write
}

// DefaultConfig: strap address 0x68, ±3200 ppm, output on, verified writes.
func DefaultConfig() Config {
	return Config{
		Address:      AddressDefault,
		PullRange:    PullRange3200,
		OutputEnable: true,
		Verify:       true,
	}
}

func (c Config) Validate() error {
	if c.Address == 0 || c.Address > 0x7F {
		return errcode.New(errcode.InvalidParams, "sit5501.config", "address must be a 7-bit I2C address")
	}
	if !c.PullRange.Valid() {
		return errcode.New(errcode.InvalidParams, "sit5501.config", "unknown pull range code")
	}
	return nil
}

// Device is one SiT5501. Not safe for concurrent use; call it from one
// goroutine and never from interrupt context.
type Device struct {
	i2c    drivers.I2C
	addr   uint16
	verify bool

	cfg    Config
	shadow [numRegs]uint16

	// Fixed buffers to avoid per-call heap allocations.
	w [1 + 2*numRegs]byte
	r [2 * numRegs]byte
}

// New constructs a Device. Nothing is sent until Begin.
func New(i2c drivers.I2C, cfg Config) *Device {
	if cfg.Address == 0 {
		cfg.Address = AddressDefault
	}
	if !cfg.PullRange.Valid() {
		cfg.PullRange = PullRange3200
	}
	d := &Device{i2c: i2c, addr: cfg.Address, verify: cfg.Verify, cfg: cfg}
	d.shadow[regPullRange] = uint16(cfg.PullRange)
	if cfg.OutputEnable {
		d.shadow[regFCMSW] = OEBit
	}
	return d
}

// Begin probes the device and writes the initial image: zero offset, the
// configured output enable and pull range.
func (d *Device) Begin() error {
	if !d.IsPresent() {
		return errcode.New(errcode.DeviceAbsent, "sit5501.begin", "no response at address")
	}
	d.shadow[regFCLSW] = 0
	d.shadow[regFCMSW] = 0
	if d.cfg.OutputEnable {
		d.shadow[regFCMSW] = OEBit
	}
	d.shadow[regPullRange] = uint16(d.cfg.PullRange)
	return d.Flush()
}

// IsPresent reads the pull range register and reports whether it was
// acknowledged.
func (d *Device) IsPresent() bool {
	_, err := d.readReg(regPullRange)
	return err == nil
}

func (d *Device) Address() uint16 { return d.addr }

// SetVerify toggles readback after writes.
func (d *Device) SetVerify(on bool) { d.verify = on }

// Shadow returns the believed register image.
func (d *Device) Shadow() [numRegs]uint16 { return d.shadow }

// PullRange is the code held in the shadow.
func (d *Device) PullRange() PullRange {
	return PullRange(d.shadow[regPullRange] & pullRangeMask)
}

// OutputEnabled reports the OE bit held in the shadow.
func (d *Device) OutputEnabled() bool { return d.shadow[regFCMSW]&OEBit != 0 }

// ControlWord is the word held in the shadow.
func (d *Device) ControlWord() int32 {
	return joinWord(d.shadow[regFCLSW], d.shadow[regFCMSW])
}

// FrequencyOffsetPPM is the offset held in the shadow.
func (d *Device) FrequencyOffsetPPM() float64 {
	return ControlWordToPPM(d.ControlWord(), d.PullRange())
}

// SetFrequencyOffsetPPM validates ppm against the active pull range before
// any bus traffic, then writes the control word.
func (d *Device) SetFrequencyOffsetPPM(ppm float64) error {
	span := d.PullRange().PPM()
	if ppm != ppm || ppm < -span || ppm > span {
		return errcode.New(errcode.OutOfRange, "sit5501.set_ppm", "offset exceeds pull range")
	}
	return d.SetFrequencyControl(PPMToControlWord(ppm, d.PullRange()))
}

// SetFrequencyControl writes both DCTRL registers in one auto-increment
// transaction, keeping the OE bit.
func (d *Device) SetFrequencyControl(word int32) error {
	if word < ControlWordMin || word > ControlWordMax {
		return errcode.New(errcode.OutOfRange, "sit5501.set_fc", "control word exceeds 26 bits")
	}
	lsw, msw := splitWord(word)
	img := d.shadow
	img[regFCLSW] = lsw
	img[regFCMSW] = img[regFCMSW]&^MSWMask | msw
	return d.commit(regFCLSW, img[regFCLSW:regFCMSW+1], img)
}

// FrequencyControl reads both DCTRL registers back from the device in one
// auto-increment transaction.
func (d *Device) FrequencyControl() (int32, error) {
	var v [2]uint16
	if err := d.readRegs(regFCLSW, v[:]); err != nil {
		return 0, err
	}
	return joinWord(v[0], v[1]), nil
}

// SetOutputEnable rewrites the OE bit; DCTRL[25:16] is carried unchanged.
func (d *Device) SetOutputEnable(on bool) error {
	img := d.shadow
	if on {
		img[regFCMSW] |= OEBit
	} else {
		img[regFCMSW] &^= OEBit
	}
	return d.commit(regFCMSW, img[regFCMSW:regFCMSW+1], img)
}

// SetPullRange selects a new pull range. The control word is kept, so the
// effective offset scales with the range.
func (d *Device) SetPullRange(pr PullRange) error {
	if !pr.Valid() {
		return errcode.New(errcode.InvalidParams, "sit5501.set_range", "unknown pull range code")
	}
	img := d.shadow
	img[regPullRange] = uint16(pr)
	if err := d.commit(regPullRange, img[regPullRange:], img); err != nil {
		return err
	}
	d.cfg.PullRange = pr
	return nil
}

// ReadRegister reads one register from the device.
func (d *Device) ReadRegister(reg uint8) (uint16, error) {
	if reg >= numRegs {
		return 0, errcode.New(errcode.InvalidParams, "sit5501.read", "no such register")
	}
	return d.readReg(reg)
}

// WriteRegister writes one register and updates the shadow.
func (d *Device) WriteRegister(reg uint8, v uint16) error {
	if reg >= numRegs {
		return errcode.New(errcode.InvalidParams, "sit5501.write", "no such register")
	}
	img := d.shadow
	img[reg] = v & regMask[reg]
	return d.commit(reg, img[reg:reg+1], img)
}

// Sync replaces the shadow with the device's registers, for a caller that
// attaches to an oscillator it did not Begin.
func (d *Device) Sync() error {
	var img [numRegs]uint16
	if err := d.readRegs(regFCLSW, img[:]); err != nil {
		return err
	}
	for reg := range img {
		img[reg] &= regMask[reg]
	}
	d.shadow = img
	d.cfg.PullRange = PullRange(img[regPullRange])
	return nil
}

// Flush rewrites the whole shadow in one transaction and verifies it.
func (d *Device) Flush() error {
	img := d.shadow
	return d.commit(regFCLSW, img[:], img)
}

// commit writes vals starting at first, adopts img as the shadow once the
// bus acknowledged, then verifies the written registers.
func (d *Device) commit(first uint8, vals []uint16, img [numRegs]uint16) error {
	if err := d.writeRegs(first, vals); err != nil {
		return err
	}
	d.shadow = img
	if !d.verify {
		return nil
	}
	return d.check(first, len(vals))
}

// check reads back n registers from first and compares them to the shadow.
func (d *Device) check(first uint8, n int) error {
	for reg := first; reg < first+uint8(n); reg++ {
		got, err := d.readReg(reg)
		if err != nil {
			return err
		}
		want := d.shadow[reg]
		if got&regMask[reg] != want&regMask[reg] {
			return &errcode.E{
				C:   errcode.RegisterConsistency,
				Op:  "sit5501.verify",
				Err: &RegisterMismatch{Reg: reg, Want: want, Got: got},
			}
		}
	}
	return nil
}

// I2C 16-bit word operations (big-endian: HIGH then LOW).

func (d *Device) readReg(reg uint8) (uint16, error) {
	var v [1]uint16
	err := d.readRegs(reg, v[:])
	return v[0], err
}

// readRegs fills out from consecutive registers starting at first in one
// transaction.
func (d *Device) readRegs(first uint8, out []uint16) error {
	d.w[0] = first
	n := 2 * len(out)
	if err := d.i2c.Tx(d.addr, d.w[:1], d.r[:n]); err != nil {
		return errcode.Wrap(errcode.BusTransaction, "sit5501.read", err)
	}
	for i := range out {
		out[i] = uint16(d.r[2*i])<<8 | uint16(d.r[2*i+1])
	}
	return nil
}

// writeRegs sends one transaction: start register then each value, relying
// on the device's address auto-increment.
func (d *Device) writeRegs(first uint8, vals []uint16) error {
	d.w[0] = first
	n := 1
	for _, v := range vals {
		d.w[n] = byte(v >> 8)
		d.w[n+1] = byte(v)
		n += 2
	}
	if err := d.i2c.Tx(d.addr, d.w[:n], nil); err != nil {
		return errcode.Wrap(errcode.BusTransaction, "sit5501.write", err)
	}
	return nil
}
