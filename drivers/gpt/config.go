package gpt

import (
	"time"

	"ppsdo-go/errcode"
	"ppsdo-go/x/mathx"
)

// Source selects the counter clock.
type Source uint8

const (
	SourceInternal Source = iota // peripheral clock root
	SourceCrystal                // 24 MHz oscillator
	SourceExternal               // GPT_CLK pad
)

// Edge selects which input edges latch ICR1. Values match the IM1 field.
type Edge uint8

const (
	EdgeDisabled Edge = 0
	EdgeRising   Edge = 1
	EdgeFalling  Edge = 2
	EdgeBoth     Edge = 3
)

// Mode selects how capture and compare events are serviced.
type Mode uint8

const (
	ModeInterrupt Mode = iota
	ModePolled
)

// Config is applied by Engine.Configure and stays fixed until the next
// Configure.
type Config struct {
	Source     Source
	SourceHz   uint32 // frequency of the selected clock
	TickRateHz uint32 // desired counter rate; SourceHz/TickRateHz must be exact
	Edge       Edge
	Mode       Mode

	// Software reset wait. Zero values take the defaults below.
	ResetPolls        int
	ResetPollInterval time.Duration
}

const (
	defaultResetPolls        = 10000
	defaultResetPollInterval = time.Microsecond
)

// DefaultConfig counts the 24 MHz peripheral clock at 1 MHz and captures
// rising edges from an interrupt.
func DefaultConfig() Config {
	return Config{
		Source:     SourceInternal,
		SourceHz:   24_000_000,
		TickRateHz: 1_000_000,
		Edge:       EdgeRising,
		Mode:       ModeInterrupt,
	}
}

// ExternalConfig counts a 10 MHz reference on the clock pad without
// prescaling.
func ExternalConfig() Config {
	c := DefaultConfig()
	c.Source = SourceExternal
	c.SourceHz = 10_000_000
	c.TickRateHz = 10_000_000
	return c
}

// Validate checks ranges and that the prescaler can produce TickRateHz
// exactly.
func (c Config) Validate() error {
	_, err := c.prescale()
	return err
}

// prescale returns the PR register value (divisor-1).
func (c Config) prescale() (uint32, error) {
	if c.Source > SourceExternal {
		return 0, errcode.New(errcode.InvalidParams, "gpt.config", "unknown clock source")
	}
	if c.Edge > EdgeBoth {
		return 0, errcode.New(errcode.InvalidParams, "gpt.config", "unknown capture edge")
	}
	if c.Mode > ModePolled {
		return 0, errcode.New(errcode.InvalidParams, "gpt.config", "unknown mode")
	}
	if c.SourceHz == 0 || c.TickRateHz == 0 {
		return 0, errcode.New(errcode.InvalidParams, "gpt.config", "zero clock rate")
	}
	div, ok := mathx.DivExact(c.SourceHz, c.TickRateHz)
	if !ok {
		return 0, errcode.New(errcode.InvalidParams, "gpt.config", "tick rate does not divide source clock")
	}
	if !mathx.Between(div, 1, prescaleMax) {
		return 0, errcode.New(errcode.OutOfRange, "gpt.config", "prescaler out of range")
	}
	return div - 1, nil
}

func (c Config) clockField() uint32 {
	switch c.Source {
	case SourceCrystal:
		return clkCrystal
	case SourceExternal:
		return clkExternal
	default:
		return clkPeriph
	}
}

func (c Config) withDefaults() Config {
	if c.ResetPolls <= 0 {
		c.ResetPolls = defaultResetPolls
	}
	if c.ResetPollInterval < 0 {
		c.ResetPollInterval = 0
	} else if c.ResetPollInterval == 0 {
		c.ResetPollInterval = defaultResetPollInterval
	}
	return c
}

// ParseSource, ParseEdge and ParseMode accept the board document spellings.

func ParseSource(s string) (Source, error) {
	switch s {
	case "", "internal":
		return SourceInternal, nil
	case "crystal":
		return SourceCrystal, nil
	case "external":
		return SourceExternal, nil
	}
	return 0, errcode.New(errcode.InvalidParams, "gpt.parse", "unknown source "+s)
}

func ParseEdge(s string) (Edge, error) {
	switch s {
	case "", "rising":
		return EdgeRising, nil
	case "falling":
		return EdgeFalling, nil
	case "both":
		return EdgeBoth, nil
	case "disabled":
		return EdgeDisabled, nil
	}
	return 0, errcode.New(errcode.InvalidParams, "gpt.parse", "unknown edge "+s)
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "interrupt":
		return ModeInterrupt, nil
	case "polled":
		return ModePolled, nil
	}
	return 0, errcode.New(errcode.InvalidParams, "gpt.parse", "unknown mode "+s)
}
