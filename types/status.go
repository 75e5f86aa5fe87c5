package types

// ---- Status snapshot (retained on "status") ----

// Status is what the display and log sinks render. Pure output.
type Status struct {
	TS           int64   `json:"ts_ms"`
	Locked       bool    `json:"locked"`
	PPMError     float64 `json:"ppm_error"`
	PPMAverage   float64 `json:"ppm_average"`
	Samples      uint32  `json:"samples"`
	OutputHigh   bool    `json:"output_high"`
	CalOffsetPPM float64 `json:"cal_offset_ppm"`
	TrimFault    string  `json:"trim_fault,omitempty"` // errcode string, "" when healthy
}

// ---- Capture samples (published on "capture") ----

type CaptureSample struct {
	TS       int64   `json:"ts_ms"`
	Ticks    uint32  `json:"ticks"` // counter ticks between the last two edges
	PPMError float64 `json:"ppm_error"`
	Accepted bool    `json:"accepted"` // false when rejected as an outlier
	Overruns uint32  `json:"overruns"`
}

// ---- Trim state (retained on "trim") ----

type TrimState struct {
	TS           int64   `json:"ts_ms"`
	Present      bool    `json:"present"`
	OffsetPPM    float64 `json:"offset_ppm"`
	ControlWord  int32   `json:"control_word"`
	PullRangePPM float64 `json:"pull_range_ppm"`
	OutputEnable bool    `json:"output_enable"`
	Error        string  `json:"error,omitempty"`
}

// ---- Liveness (retained on "heartbeat") ----

type Heartbeat struct {
	TS           int64  `json:"ts_ms"`
	UptimeS      uint32 `json:"uptime_s"`
	State        string `json:"timebase_state"`
	Overruns     uint32 `json:"overruns"`
	MissedRearms uint32 `json:"missed_rearms"`
}

// Topic heads used on the in-process bus.
const (
	TopicStatus  = "status"
	TopicCapture = "capture"
	TopicTrim    = "trim"
	TopicConfig  = "config"

	TopicHeartbeat = "heartbeat"
)
