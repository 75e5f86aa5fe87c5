package config

import (
	"time"

	"ppsdo-go/drivers/gpt"
	"ppsdo-go/drivers/sit5501"
	"ppsdo-go/errcode"
	"ppsdo-go/services/discipline"
	"ppsdo-go/types"
)

// Timebase maps the board section onto a validated gpt.Config.
func Timebase(c types.TimebaseConfig) (gpt.Config, error) {
	out := gpt.DefaultConfig()
	var err error
	if out.Source, err = gpt.ParseSource(c.Source); err != nil {
		return out, err
	}
	if out.Edge, err = gpt.ParseEdge(c.Edge); err != nil {
		return out, err
	}
	if out.Mode, err = gpt.ParseMode(c.Mode); err != nil {
		return out, err
	}
	if c.SourceHz != 0 {
		out.SourceHz = c.SourceHz
	}
	if c.TickRateHz != 0 {
		out.TickRateHz = c.TickRateHz
	}
	return out, out.Validate()
}

// Trim maps the board section onto a validated sit5501.Config.
func Trim(c types.TrimConfig) (sit5501.Config, error) {
	out := sit5501.DefaultConfig()
	if c.Addr != 0 {
		out.Address = c.Addr
	}
	if c.PullRangePPM != 0 {
		pr, ok := sit5501.PullRangeFor(c.PullRangePPM)
		if !ok {
			return out, errcode.New(errcode.InvalidParams, "config.trim", "unsupported pull range")
		}
		out.PullRange = pr
	}
	out.OutputEnable = c.OutputEnable
	out.Verify = c.Verify
	return out, out.Validate()
}

// Discipline maps the board section onto a discipline.Config whose
// correction limit is the trim pull range.
func Discipline(c types.DisciplineConfig, limitPPM float64) (discipline.Config, error) {
	out := discipline.DefaultConfig()
	out.Steer = c.Steer
	if c.AverageWindow != 0 {
		out.AverageWindow = c.AverageWindow
	}
	if c.LockSamples != 0 {
		out.LockSamples = c.LockSamples
	}
	if c.LockThresholdPPM != 0 {
		out.LockThresholdPPM = c.LockThresholdPPM
	}
	if c.OutlierPPM != 0 {
		out.OutlierPPM = c.OutlierPPM
	}
	if c.Kp != 0 {
		out.Kp = c.Kp
	}
	if c.Ki != 0 {
		out.Ki = c.Ki
	}
	if limitPPM != 0 {
		out.Limit = limitPPM
	}
	if c.PublishMs > 0 {
		out.PublishInterval = time.Duration(c.PublishMs) * time.Millisecond
	}
	if c.PollMs > 0 {
		out.PollInterval = time.Duration(c.PollMs) * time.Millisecond
	}
	return out, out.Validate()
}
