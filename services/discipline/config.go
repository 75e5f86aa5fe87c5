package discipline

import (
	"time"

	"ppsdo-go/errcode"
)

// Config tunes the measurement and steering loop.
type Config struct {
	AverageWindow    int     // samples in the moving average
	LockSamples      int     // consecutive stable samples before lock
	LockThresholdPPM float64 // max |error - average| for a stable sample
	OutlierPPM       float64 // |error| above this is discarded

	Steer bool    // drive the trim once locked
	Kp    float64 // proportional gain, ppm per ppm
	Ki    float64 // integral gain, ppm per ppm per sample
	Limit float64 // |correction| bound in ppm, usually the pull range

	PollInterval    time.Duration
	PublishInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		AverageWindow:    16,
		LockSamples:      4,
		LockThresholdPPM: 0.5,
		OutlierPPM:       1000,
		Kp:               0.7,
		Ki:               0.3,
		Limit:            3200,
		PollInterval:     10 * time.Millisecond,
		PublishInterval:  time.Second,
	}
}

func (c Config) Validate() error {
	switch {
	case c.AverageWindow < 1:
		return errcode.New(errcode.InvalidParams, "discipline.config", "average window must be >= 1")
	case c.LockSamples < 1:
		return errcode.New(errcode.InvalidParams, "discipline.config", "lock samples must be >= 1")
	case c.LockThresholdPPM <= 0 || c.OutlierPPM <= 0:
		return errcode.New(errcode.InvalidParams, "discipline.config", "thresholds must be positive")
	case c.Steer && c.Limit <= 0:
		return errcode.New(errcode.InvalidParams, "discipline.config", "steering needs a positive limit")
	case c.PollInterval <= 0 || c.PublishInterval <= 0:
		return errcode.New(errcode.InvalidParams, "discipline.config", "intervals must be positive")
	}
	return nil
}
