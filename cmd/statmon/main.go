//go:build !tinygo

// Command statmon prints the firmware's status stream from its USB serial
// port. Lines that are not status records are echoed as they arrive.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"ppsdo-go/services/statuslog"
	"ppsdo-go/types"

	"go.bug.st/serial"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("statmon: ")

	port := flag.String("port", "/dev/ttyACM0", "serial device")
	baud := flag.Int("baud", 115200, "baud rate (ignored by USB CDC)")
	raw := flag.Bool("raw", false, "print records undecoded")
	flag.Parse()

	p, err := serial.Open(*port, &serial.Mode{BaudRate: *baud})
	if err != nil {
		log.Fatalf("open %s: %v", *port, err)
	}
	defer p.Close()

	sc := bufio.NewScanner(p)
	for sc.Scan() {
		line := sc.Bytes()
		if *raw || len(line) == 0 || line[0] != '{' {
			fmt.Fprintf(os.Stdout, "%s\n", line)
			continue
		}
		st, err := statuslog.Decode(line)
		if err != nil {
			fmt.Fprintf(os.Stdout, "%s\n", line)
			continue
		}
		fmt.Println(format(st))
	}
	if err := sc.Err(); err != nil {
		log.Fatal(err)
	}
}

func format(st types.Status) string {
	lock := "NO "
	if st.Locked {
		lock = "YES"
	}
	s := fmt.Sprintf("%10d  lock %s  inst %+9.3f ppb  avg %+9.3f ppb  n %6d  cal %+9.3f ppb",
		st.TS, lock, st.PPMError*1000, st.PPMAverage*1000, st.Samples, st.CalOffsetPPM*1000)
	if st.TrimFault != "" {
		s += "  trim " + st.TrimFault
	}
	return s
}
