// Package statuslog writes status snapshots as JSON lines without fmt or
// encoding/json, so it runs on the MCU console.
package statuslog

import (
	"context"
	"io"

	"ppsdo-go/bus"
	"ppsdo-go/types"
	"ppsdo-go/x/strconvx"
)

const ppmDigits = 6

// AppendStatus appends st as one JSON object terminated by '\n'.
func AppendStatus(dst []byte, st types.Status) []byte {
	dst = append(dst, `{"ts_ms":`...)
	dst = strconvx.AppendInt(dst, st.TS)
	dst = append(dst, `,"locked":`...)
	dst = strconvx.AppendBool(dst, st.Locked)
	dst = append(dst, `,"ppm_error":`...)
	dst = strconvx.AppendFixed(dst, st.PPMError, ppmDigits)
	dst = append(dst, `,"ppm_average":`...)
	dst = strconvx.AppendFixed(dst, st.PPMAverage, ppmDigits)
	dst = append(dst, `,"samples":`...)
	dst = strconvx.AppendUint(dst, uint64(st.Samples))
	dst = append(dst, `,"output_high":`...)
	dst = strconvx.AppendBool(dst, st.OutputHigh)
	dst = append(dst, `,"cal_offset_ppm":`...)
	dst = strconvx.AppendFixed(dst, st.CalOffsetPPM, ppmDigits)
	dst = append(dst, `,"trim_fault":`...)
	dst = appendString(dst, st.TrimFault)
	return append(dst, '}', '\n')
}

func appendString(dst []byte, s string) []byte {
	const hexd = "0123456789abcdef"
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			dst = append(dst, '\\', c)
		case c < 0x20:
			dst = append(dst, '\\', 'u', '0', '0', hexd[c>>4], hexd[c&0xF])
		default:
			dst = append(dst, c)
		}
	}
	return append(dst, '"')
}

// Sink writes every snapshot published on "status" to w.
type Sink struct {
	w   io.Writer
	buf []byte
}

func NewSink(w io.Writer) *Sink {
	return &Sink{w: w, buf: make([]byte, 0, 192)}
}

// Write emits one line.
func (s *Sink) Write(st types.Status) error {
	s.buf = AppendStatus(s.buf[:0], st)
	_, err := s.w.Write(s.buf)
	return err
}

// Run consumes the status topic until ctx ends.
func (s *Sink) Run(ctx context.Context, conn *bus.Connection) {
	sub := conn.Subscribe(bus.T(types.TopicStatus))
	defer conn.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-sub.Channel():
			st, ok := msg.Payload.(types.Status)
			if !ok {
				continue
			}
			if err := s.Write(st); err != nil {
				println("[statuslog] write:", err.Error())
			}
		}
	}
}
