package display

import (
	"image/color"
	"reflect"
	"testing"

	"ppsdo-go/types"
)

type fakePanel struct {
	w, h    int16
	px      map[[2]int16]bool
	flushes int
}

func newPanel() *fakePanel { return &fakePanel{w: 128, h: 64, px: map[[2]int16]bool{}} }

func (f *fakePanel) Size() (int16, int16) { return f.w, f.h }
func (f *fakePanel) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return
	}
	f.px[[2]int16{x, y}] = c.R != 0
}
func (f *fakePanel) Display() error { f.flushes++; return nil }
func (f *fakePanel) ClearBuffer()   { f.px = map[[2]int16]bool{} }

func TestLinesLocked(t *testing.T) {
	got := Lines(types.Status{
		Locked: true, Samples: 12, PPMError: 0.00123, PPMAverage: -0.0005, CalOffsetPPM: 1.5,
	})
	want := []string{
		"Lock: YES",
		"PPB Inst:1.23",
		"PPB Avg :-0.50",
		"Samples: 12",
		"CAL OFFSET: 1500.0ppb",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Lines = %q\nwant %q", got, want)
	}
}

func TestLinesWaiting(t *testing.T) {
	got := Lines(types.Status{Samples: 0, TrimFault: "bus_transaction"})
	want := []string{"Lock: NO", "Waiting for PPS", "CAL OFFSET: 0.0ppb", "TRIM: bus_transaction"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Lines = %q", got)
	}
	got = Lines(types.Status{Samples: 3})
	if got[2] != "Samples: 3" {
		t.Fatalf("Lines = %q", got)
	}
}

func TestOutputDot(t *testing.T) {
	p := newPanel()
	d := New(p)
	center := [2]int16{dotRadius, 64 - 1 - dotRadius}

	if err := d.Render(types.Status{OutputHigh: true}); err != nil {
		t.Fatal(err)
	}
	if !p.px[center] {
		t.Fatal("high output should fill the dot")
	}
	d.Render(types.Status{OutputHigh: false})
	if p.px[center] {
		t.Fatal("low output should leave the dot hollow")
	}
	if !p.px[[2]int16{0, center[1]}] {
		t.Fatal("ring edge not drawn")
	}
	if p.flushes != 2 {
		t.Fatalf("flushes = %d", p.flushes)
	}
}

func TestTextIsDrawn(t *testing.T) {
	p := newPanel()
	if err := New(p).Splash(); err != nil {
		t.Fatal(err)
	}
	lit := 0
	for xy, on := range p.px {
		if on && xy[1] < lineHeight*2 {
			lit++
		}
	}
	if lit == 0 {
		t.Fatal("splash drew nothing")
	}
}
