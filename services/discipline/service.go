package discipline

import (
	"context"
	"time"

	"ppsdo-go/bus"
	"ppsdo-go/errcode"
	"ppsdo-go/types"
	"ppsdo-go/x/timex"
)

// Capturer is the timebase side: gpt.Engine satisfies it.
type Capturer interface {
	Poll() bool
	ReadCapture() (uint32, bool)
	Overruns() uint32
	OutputHigh() bool
}

// Trimmer is the oscillator side: sit5501.Device satisfies it.
type Trimmer interface {
	SetFrequencyOffsetPPM(ppm float64) error
	FrequencyOffsetPPM() float64
}

// optional trimmer detail for the retained trim state
type wordReporter interface {
	ControlWord() int32
	OutputEnabled() bool
}

var (
	topicStatus  = bus.T(types.TopicStatus)
	topicCapture = bus.T(types.TopicCapture)
	topicTrim    = bus.T(types.TopicTrim)
	topicTrimSet = bus.T(types.TopicTrim, "set")
)

// Service runs in the cooperative main context: it services the timebase,
// feeds the loop, applies trims and publishes status. Trim bus transactions
// happen only here.
type Service struct {
	cfg  Config
	cap  Capturer
	trim Trimmer
	loop *Loop

	now     func() int64
	fault   errcode.Code
	lastPub int64
}

// New builds a Service. trim may be nil when no oscillator is fitted.
func New(cfg Config, cap Capturer, nominalTicks uint32, trim Trimmer) *Service {
	s := &Service{
		cfg:   cfg,
		cap:   cap,
		trim:  trim,
		loop:  NewLoop(cfg, nominalTicks),
		now:   timex.NowMs,
		fault: errcode.OK,
	}
	if trim != nil {
		s.loop.SeedTrim(trim.FrequencyOffsetPPM())
	}
	return s
}

func (s *Service) Loop() *Loop { return s.loop }

// Step polls the timebase once and drains every pending capture. It returns
// the number of periods consumed.
func (s *Service) Step(conn *bus.Connection) int {
	s.cap.Poll()
	n := 0
	for {
		ticks, ok := s.cap.ReadCapture()
		if !ok {
			return n
		}
		n++
		s.feed(conn, ticks)
	}
}

func (s *Service) feed(conn *bus.Connection, ticks uint32) {
	r := s.loop.Feed(ticks)
	if !r.Accepted {
		println("[discipline] outlier period", ticks, "ticks",
			timex.TicksToDuration(ticks, s.loop.Nominal()).String())
	}
	if conn != nil {
		conn.Publish(conn.NewMessage(topicCapture, types.CaptureSample{
			TS:       s.now(),
			Ticks:    ticks,
			PPMError: r.PPMError,
			Accepted: r.Accepted,
			Overruns: s.cap.Overruns(),
		}, false))
	}
	if r.Steer && s.trim != nil {
		s.applyTrim(conn, r.Offset)
	}
}

func (s *Service) applyTrim(conn *bus.Connection, ppm float64) {
	err := s.trim.SetFrequencyOffsetPPM(ppm)
	code := errcode.Of(err)
	if code != s.fault {
		if err != nil {
			println("[discipline] trim fault:", err.Error())
		} else {
			println("[discipline] trim recovered")
		}
		s.fault = code
	}
	if conn != nil {
		conn.Publish(conn.NewMessage(topicTrim, s.trimState(err), true))
	}
}

func (s *Service) trimState(err error) types.TrimState {
	ts := types.TrimState{
		TS:           s.now(),
		Present:      s.trim != nil,
		PullRangePPM: s.cfg.Limit,
	}
	if s.trim != nil {
		ts.OffsetPPM = s.trim.FrequencyOffsetPPM()
	}
	if w, ok := s.trim.(wordReporter); ok {
		ts.ControlWord = w.ControlWord()
		ts.OutputEnable = w.OutputEnabled()
	}
	if err != nil {
		ts.Error = err.Error()
	}
	return ts
}

// Status is the snapshot consumed by the display and log sinks.
func (s *Service) Status() types.Status {
	st := types.Status{
		TS:         s.now(),
		Locked:     s.loop.Locked(),
		PPMError:   s.loop.Last(),
		PPMAverage: s.loop.Average(),
		Samples:    s.loop.Samples(),
		OutputHigh: s.cap.OutputHigh(),
	}
	if s.trim != nil {
		st.CalOffsetPPM = s.trim.FrequencyOffsetPPM()
	}
	if s.fault != errcode.OK {
		st.TrimFault = string(s.fault)
	}
	return st
}

func (s *Service) publish(conn *bus.Connection) {
	st := s.Status()
	s.lastPub = st.TS
	conn.Publish(conn.NewMessage(topicStatus, st, true))
}

// handleSet applies a manual trim request (payload float64 ppm) and restarts
// the statistics from the new operating point.
func (s *Service) handleSet(conn *bus.Connection, msg *bus.Message) {
	if s.trim == nil {
		conn.Reply(msg, types.TrimState{TS: s.now(), Error: string(errcode.DeviceAbsent)}, false)
		return
	}
	ppm, ok := msg.Payload.(float64)
	if !ok {
		conn.Reply(msg, types.TrimState{TS: s.now(), Error: string(errcode.InvalidParams)}, false)
		return
	}
	err := s.trim.SetFrequencyOffsetPPM(ppm)
	if err == nil {
		s.loop.Reset()
		s.loop.SeedTrim(ppm)
	}
	st := s.trimState(err)
	conn.Reply(msg, st, false)
	conn.Publish(conn.NewMessage(topicTrim, st, true))
}

// Run services the timebase every PollInterval until ctx ends, publishing
// the status snapshot retained at most every PublishInterval.
func (s *Service) Run(ctx context.Context, conn *bus.Connection) {
	setSub := conn.Subscribe(topicTrimSet)
	defer conn.Unsubscribe(setSub)

	tick := time.NewTicker(s.cfg.PollInterval)
	defer tick.Stop()

	s.publish(conn)
	for {
		select {
		case <-ctx.Done():
			println("[discipline] stopping")
			return
		case msg := <-setSub.Channel():
			s.handleSet(conn, msg)
		case <-tick.C:
			s.Step(conn)
			if s.now()-s.lastPub >= s.cfg.PublishInterval.Milliseconds() {
				s.publish(conn)
			}
		}
	}
}

// Start launches Run in its own goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	go s.Run(ctx, conn)
	return nil
}
