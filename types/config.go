package types

// Board configuration supplied retained on "config/board".
// Enumerations are carried as strings so the document round-trips through
// YAML on the host unchanged.

type BoardConfig struct {
	Name       string           `yaml:"name" json:"name"`
	Timebase   TimebaseConfig   `yaml:"timebase" json:"timebase"`
	Output     OutputConfig     `yaml:"output" json:"output"`
	Trim       TrimConfig       `yaml:"trim" json:"trim"`
	Discipline DisciplineConfig `yaml:"discipline" json:"discipline"`
	Display    DisplayConfig    `yaml:"display" json:"display"`
	Heartbeat  HeartbeatConfig  `yaml:"heartbeat" json:"heartbeat"`
}

type TimebaseConfig struct {
	Source     string `yaml:"source" json:"source"` // "internal" | "external"
	SourceHz   uint32 `yaml:"source_hz" json:"source_hz"`
	TickRateHz uint32 `yaml:"tick_rate_hz" json:"tick_rate_hz"`
	Edge       string `yaml:"edge" json:"edge"` // "rising" | "falling" | "both" | "disabled"
	Mode       string `yaml:"mode" json:"mode"` // "interrupt" | "polled"
}

type OutputConfig struct {
	FrequencyHz uint32 `yaml:"frequency_hz" json:"frequency_hz"` // 0 disables the output
	DutyPercent uint8  `yaml:"duty_percent" json:"duty_percent"`
}

type TrimConfig struct {
	Bus          string  `yaml:"bus" json:"bus"` // host I2C bus name; ignored on the MCU
	Addr         uint16  `yaml:"addr" json:"addr"`
	PullRangePPM float64 `yaml:"pull_range_ppm" json:"pull_range_ppm"`
	OutputEnable bool    `yaml:"output_enable" json:"output_enable"`
	Verify       bool    `yaml:"verify" json:"verify"`
}

type DisciplineConfig struct {
	Steer            bool    `yaml:"steer" json:"steer"`
	AverageWindow    int     `yaml:"average_window" json:"average_window"`
	LockSamples      int     `yaml:"lock_samples" json:"lock_samples"`
	LockThresholdPPM float64 `yaml:"lock_threshold_ppm" json:"lock_threshold_ppm"`
	OutlierPPM       float64 `yaml:"outlier_ppm" json:"outlier_ppm"`
	Kp               float64 `yaml:"kp" json:"kp"`
	Ki               float64 `yaml:"ki" json:"ki"`
	PublishMs        int     `yaml:"publish_ms" json:"publish_ms"`
	PollMs           int     `yaml:"poll_ms" json:"poll_ms"`
}

type DisplayConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    uint16 `yaml:"addr" json:"addr"`
	Width   int16  `yaml:"width" json:"width"`
	Height  int16  `yaml:"height" json:"height"`
}

type HeartbeatConfig struct {
	IntervalMs int `yaml:"interval_ms" json:"interval_ms"`
}
