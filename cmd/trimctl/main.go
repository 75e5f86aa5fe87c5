//go:build !tinygo

// Command trimctl drives a SiT5501 from a Linux host I2C bus.
//
//	trimctl [-config board.yaml] [-bus 1] [-addr 0x68] probe
//	trimctl get
//	trimctl set-ppm 0.125
//	trimctl set-word -1600
//	trimctl oe on|off
//	trimctl range 6.25
//	trimctl flush
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"ppsdo-go/drivers/sit5501"
	"ppsdo-go/services/config"
	"ppsdo-go/x/conv"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("trimctl: ")

	cfgPath := flag.String("config", "", "board YAML (default: built-in profile)")
	busName := flag.String("bus", "", "I2C bus name or number (default: config trim.bus)")
	addr := flag.Uint("addr", 0, "7-bit device address (default: config trim.addr)")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	bc, err := config.LoadFile(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if *busName != "" {
		bc.Trim.Bus = *busName
	}
	if *addr != 0 {
		bc.Trim.Addr = uint16(*addr)
	}
	cfg, err := config.Trim(bc.Trim)
	if err != nil {
		log.Fatal(err)
	}

	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	b, err := i2creg.Open(bc.Trim.Bus)
	if err != nil {
		log.Fatal(err)
	}
	defer b.Close()

	dev := sit5501.New(b, cfg)
	if err := run(dev, flag.Arg(0), flag.Args()[1:]); err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: trimctl [flags] probe|get|set-ppm PPM|set-word N|oe on|off|range PPM|flush\n")
	flag.PrintDefaults()
}

func run(dev *sit5501.Device, cmd string, args []string) error {
	if cmd != "probe" && cmd != "flush" {
		if err := dev.Sync(); err != nil {
			return err
		}
	}
	switch cmd {
	case "probe":
		if !dev.IsPresent() {
			return fmt.Errorf("no SiT5501 at %s", conv.Hex16(dev.Address()))
		}
		fmt.Println("present at", conv.Hex16(dev.Address()))
		return nil

	case "get":
		return show(dev)

	case "set-ppm":
		v, err := oneFloat(args)
		if err != nil {
			return err
		}
		if err := dev.SetFrequencyOffsetPPM(v); err != nil {
			return err
		}
		return show(dev)

	case "set-word":
		if len(args) != 1 {
			return fmt.Errorf("set-word: want one argument")
		}
		w, err := strconv.ParseInt(args[0], 0, 32)
		if err != nil {
			return fmt.Errorf("set-word: %w", err)
		}
		if err := dev.SetFrequencyControl(int32(w)); err != nil {
			return err
		}
		return show(dev)

	case "oe":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return fmt.Errorf("oe: want on or off")
		}
		return dev.SetOutputEnable(args[0] == "on")

	case "range":
		v, err := oneFloat(args)
		if err != nil {
			return err
		}
		pr, ok := sit5501.PullRangeFor(v)
		if !ok {
			return fmt.Errorf("range: no pull range of %g ppm", v)
		}
		return dev.SetPullRange(pr)

	case "flush":
		return dev.Flush()
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func show(dev *sit5501.Device) error {
	fmt.Printf("word %d  offset %.6f ppm  range %g ppm  oe %t\n",
		dev.ControlWord(), dev.FrequencyOffsetPPM(), dev.PullRange().PPM(), dev.OutputEnabled())
	return nil
}

func oneFloat(args []string) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("want one numeric argument")
	}
	return strconv.ParseFloat(args[0], 64)
}
