// Package heartbeat reports firmware liveness and timebase health.
package heartbeat

import (
	"context"
	"time"

	"ppsdo-go/bus"
	"ppsdo-go/drivers/gpt"
	"ppsdo-go/types"
	"ppsdo-go/x/timex"
)

var (
	topicConfigHeartbeat = bus.T(types.TopicConfig, "heartbeat")
	topicHeartbeat       = bus.T(types.TopicHeartbeat)
)

const defaultInterval = 10 * time.Second

// Source is the timebase being watched; gpt.Engine satisfies it.
type Source interface {
	State() gpt.State
	Overruns() uint32
	MissedRearms() uint32
}

type Service struct {
	src   Source
	start int64
	now   func() int64
}

func New(src Source) *Service {
	return &Service{src: src, start: timex.NowMs(), now: timex.NowMs}
}

// Beat samples the timebase.
func (s *Service) Beat() types.Heartbeat {
	ts := s.now()
	return types.Heartbeat{
		TS:           ts,
		UptimeS:      uint32((ts - s.start) / 1000),
		State:        s.src.State().String(),
		Overruns:     s.src.Overruns(),
		MissedRearms: s.src.MissedRearms(),
	}
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(defaultInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("[heartbeat] stopping")
			return
		case <-tick.C:
			hb := s.Beat()
			println("[heartbeat] up", hb.UptimeS, "s gpt", hb.State,
				"overruns", hb.Overruns, "missed", hb.MissedRearms)
			conn.Publish(conn.NewMessage(topicHeartbeat, hb, true))
		case msg := <-cfgSub.Channel():
			c, ok := msg.Payload.(types.HeartbeatConfig)
			if !ok || c.IntervalMs <= 0 {
				continue
			}
			tick.Reset(time.Duration(c.IntervalMs) * time.Millisecond)
			println("[heartbeat] interval", c.IntervalMs, "ms")
		}
	}
}

// Start runs the heartbeat until ctx ends.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
