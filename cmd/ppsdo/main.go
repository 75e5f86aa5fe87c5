//go:build tinygo && mimxrt1062

// Command ppsdo is the Teensy 4.x firmware: it measures the PPS period on
// GPT2, steers the SiT5501 and reports status over USB serial and the panel.
package main

import (
	"context"
	"errors"
	"machine"
	"time"

	"ppsdo-go/bus"
	"ppsdo-go/drivers/gpt"
	"ppsdo-go/drivers/sit5501"
	"ppsdo-go/errcode"
	"ppsdo-go/services/config"
	"ppsdo-go/services/discipline"
	"ppsdo-go/services/display"
	"ppsdo-go/services/heartbeat"
	"ppsdo-go/services/statuslog"
	"ppsdo-go/x/conv"

	"tinygo.org/x/drivers/ssd1306"
)

const (
	usbSettle = 1500 * time.Millisecond
	queueLen  = 8
)

var displayAddrs = [...]uint16{0x3D, 0x3C}

func main() {
	time.Sleep(usbSettle)
	println("[main] ppsdo starting")

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, config.DefaultProfile)
	bc, err := config.FromContext(ctx)
	if err != nil {
		fatal("config", err)
	}
	tbCfg, err := config.Timebase(bc.Timebase)
	if err != nil {
		fatal("config.timebase", err)
	}
	trCfg, err := config.Trim(bc.Trim)
	if err != nil {
		fatal("config.trim", err)
	}
	dcCfg, err := config.Discipline(bc.Discipline, trCfg.PullRange.PPM())
	if err != nil {
		fatal("config.discipline", err)
	}
	println("[main] profile", bc.Name)

	initBoard(tbCfg.Source == gpt.SourceExternal)

	i2c := machine.I2C0
	if err := i2c.Configure(machine.I2CConfig{Frequency: 400 * machine.KHz}); err != nil {
		fatal("i2c", err)
	}

	b := bus.NewBus(queueLen)
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	// Trim first: a missing oscillator leaves the loop in measure-only mode.
	var trim discipline.Trimmer
	osc := sit5501.New(i2c, trCfg)
	switch err := osc.Begin(); {
	case err == nil:
		trim = osc
		println("[sit5501] ready, pull range", int(trCfg.PullRange.PPM()), "ppm")
	case errors.Is(err, errcode.DeviceAbsent):
		println("[sit5501] not found, trim disabled")
	default:
		trim = osc
		println("[sit5501] begin:", err.Error())
	}

	eng, err := gpt.GPT2.Claim()
	if err != nil {
		fatal("gpt", err)
	}
	if err := eng.Configure(tbCfg); err != nil {
		if !errors.Is(err, errcode.ConfigurationTimeout) {
			fatal("gpt.configure", err)
		}
		println("[gpt] reset not acknowledged, continuing")
	}
	if hz := bc.Output.FrequencyHz; hz > 0 {
		if err := eng.SetOutputFrequency(hz); err != nil {
			println("[gpt] output:", err.Error())
		}
		if d := bc.Output.DutyPercent; d > 0 {
			if err := eng.SetDutyCycle(d); err != nil {
				println("[gpt] duty:", err.Error())
			}
		}
	}
	if err := eng.Start(); err != nil {
		fatal("gpt.start", err)
	}
	println("[gpt] running at", tbCfg.TickRateHz, "Hz")

	if err := heartbeat.New(eng).Start(ctx, b.NewConnection("heartbeat")); err != nil {
		println("[heartbeat]", err.Error())
	}

	sink := statuslog.NewSink(machine.Serial)
	go sink.Run(ctx, b.NewConnection("statuslog"))

	if bc.Display.Enabled {
		startDisplay(ctx, b, i2c, bc.Display.Addr, bc.Display.Width, bc.Display.Height)
	}

	svc := discipline.New(dcCfg, eng, tbCfg.TickRateHz, trim)
	svc.Run(ctx, b.NewConnection("discipline"))
}

func startDisplay(ctx context.Context, b *bus.Bus, i2c *machine.I2C, addr uint16, w, h int16) {
	addrs := displayAddrs[:]
	if addr != 0 {
		addrs = append([]uint16{addr}, addrs...)
	}
	for _, a := range addrs {
		// A bare control byte is a no-op command stream; only the ACK matters.
		if err := i2c.Tx(a, []byte{0x00}, nil); err != nil {
			continue
		}
		dev := ssd1306.NewI2C(i2c)
		dev.Configure(ssd1306.Config{Address: a, Width: w, Height: h})
		d := display.New(&dev)
		if err := d.Splash(); err != nil {
			println("[display] splash:", err.Error())
		}
		go d.Run(ctx, b.NewConnection("display"))
		println("[display] at", conv.Hex16(a))
		return
	}
	println("[display] not found")
}

func fatal(where string, err error) {
	for {
		println("[main]", where+":", err.Error())
		time.Sleep(time.Second)
	}
}
