package config

import "ppsdo-go/types"

// -----------------------------------------------------------------------------
// Embedded board profiles
//
// Key: profile name (same value placed in ctx under CtxDeviceKey).
// -----------------------------------------------------------------------------

const (
	ProfileExt10M  = "teensy41-ext10m"
	ProfileInt1M   = "teensy41-int1m"
	DefaultProfile = ProfileExt10M
)

// GPT2 counts the SiT5501 10 MHz output on pin 14; the loop steers the
// oscillator so one PPS period reads 10,000,000 ticks.
var cfgExt10M = types.BoardConfig{
	Name: ProfileExt10M,
	Timebase: types.TimebaseConfig{
		Source:     "external",
		SourceHz:   10_000_000,
		TickRateHz: 10_000_000,
		Edge:       "rising",
		Mode:       "interrupt",
	},
	Output: types.OutputConfig{FrequencyHz: 1, DutyPercent: 10},
	Trim: types.TrimConfig{
		Bus:          "1",
		Addr:         0x68,
		PullRangePPM: 6.25,
		OutputEnable: true,
		Verify:       true,
	},
	Discipline: types.DisciplineConfig{
		Steer:            true,
		AverageWindow:    16,
		LockSamples:      4,
		LockThresholdPPM: 0.25,
		OutlierPPM:       1000,
		Kp:               0.7,
		Ki:               0.3,
		PublishMs:        1000,
		PollMs:           10,
	},
	Display:   types.DisplayConfig{Enabled: true, Addr: 0x3D, Width: 128, Height: 64},
	Heartbeat: types.HeartbeatConfig{IntervalMs: 10_000},
}

// GPT2 counts the 24 MHz peripheral clock at 1 MHz; measurement only.
var cfgInt1M = types.BoardConfig{
	Name: ProfileInt1M,
	Timebase: types.TimebaseConfig{
		Source:     "internal",
		SourceHz:   24_000_000,
		TickRateHz: 1_000_000,
		Edge:       "rising",
		Mode:       "polled",
	},
	Output: types.OutputConfig{FrequencyHz: 1, DutyPercent: 50},
	Trim: types.TrimConfig{
		Bus:          "1",
		Addr:         0x68,
		PullRangePPM: 6.25,
		OutputEnable: true,
		Verify:       true,
	},
	Discipline: types.DisciplineConfig{
		AverageWindow:    16,
		LockSamples:      4,
		LockThresholdPPM: 2,
		OutlierPPM:       1000,
		Kp:               0.7,
		Ki:               0.3,
		PublishMs:        1000,
		PollMs:           5,
	},
	Display:   types.DisplayConfig{Enabled: true, Addr: 0x3D, Width: 128, Height: 64},
	Heartbeat: types.HeartbeatConfig{IntervalMs: 10_000},
}

var embeddedConfigs = map[string]types.BoardConfig{
	ProfileExt10M: cfgExt10M,
	ProfileInt1M:  cfgInt1M,
}
