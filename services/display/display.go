// Package display renders the status snapshot on a small monochrome panel.
package display

import (
	"context"
	"image/color"

	"ppsdo-go/bus"
	"ppsdo-go/types"
	"ppsdo-go/x/strconvx"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Panel is a buffered display; ssd1306.Device satisfies it.
type Panel interface {
	drivers.Displayer
	ClearBuffer()
}

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	font  = &proggy.TinySZ8pt7b
)

const (
	lineHeight = 10
	dotRadius  = 3
)

type Display struct {
	p Panel
}

func New(p Panel) *Display { return &Display{p: p} }

// Lines returns the text rows for st, top to bottom.
func Lines(st types.Status) []string {
	lines := make([]string, 0, 6)
	if st.Locked && st.Samples > 0 {
		lines = append(lines,
			"Lock: YES",
			"PPB Inst:"+strconvx.FormatFixed(st.PPMError*1000, 2),
			"PPB Avg :"+strconvx.FormatFixed(st.PPMAverage*1000, 2),
			"Samples: "+samples(st.Samples),
		)
	} else {
		lines = append(lines, "Lock: NO", "Waiting for PPS")
		if st.Samples > 0 {
			lines = append(lines, "Samples: "+samples(st.Samples))
		}
	}
	lines = append(lines, "CAL OFFSET: "+strconvx.FormatFixed(st.CalOffsetPPM*1000, 1)+"ppb")
	if st.TrimFault != "" {
		lines = append(lines, "TRIM: "+st.TrimFault)
	}
	return lines
}

func samples(n uint32) string { return string(strconvx.AppendUint(nil, uint64(n))) }

// Splash shows the boot banner.
func (d *Display) Splash() error {
	d.p.ClearBuffer()
	d.text([]string{"PPS Disciplined Osc", "Initializing..."})
	return d.p.Display()
}

// Render draws st and flushes the panel.
func (d *Display) Render(st types.Status) error {
	d.p.ClearBuffer()
	d.text(Lines(st))
	d.dot(st.OutputHigh)
	return d.p.Display()
}

func (d *Display) text(lines []string) {
	for i, l := range lines {
		tinyfont.WriteLine(d.p, font, 0, int16((i+1)*lineHeight-2), l, white)
	}
}

// dot marks the compare output level in the bottom-left corner: filled when
// high, a ring when low.
func (d *Display) dot(high bool) {
	_, h := d.p.Size()
	cx, cy := int16(dotRadius), h-1-dotRadius
	const r2 = dotRadius * dotRadius
	for dy := int16(-dotRadius); dy <= dotRadius; dy++ {
		for dx := int16(-dotRadius); dx <= dotRadius; dx++ {
			d2 := dx*dx + dy*dy
			on := d2 <= r2+dotRadius/2
			if !high {
				on = on && d2 >= r2-dotRadius
			}
			if on {
				d.p.SetPixel(cx+dx, cy+dy, white)
			}
		}
	}
}

// Run redraws on every status snapshot until ctx ends.
func (d *Display) Run(ctx context.Context, conn *bus.Connection) {
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
			if err := d.Render(st); err != nil {
				println("[display] render:", err.Error())
			}
		}
	}
}
