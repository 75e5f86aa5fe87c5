package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// TicksToDuration converts a tick count at rateHz into a Duration.
// rateHz==0 yields 0.
func TicksToDuration(ticks uint32, rateHz uint32) time.Duration {
	if rateHz == 0 {
		return 0
	}
	return time.Duration(uint64(ticks) * uint64(time.Second) / uint64(rateHz))
}
