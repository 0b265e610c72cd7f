// cpurunner drives the core against Game Boy test ROMs that report results
// over the serial port (blargg-style: SC bit 7 set once SB holds a byte to
// transmit). Kept on stdlib flag per the teacher's choice — a narrow
// single-purpose trace tool isn't worth promoting to cobra.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/pixeldivider/dmgcore/internal/bus"
	"github.com/pixeldivider/dmgcore/internal/cpu"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM (.gb)")
	steps := flag.Int("steps", 5_000_000, "max instruction steps to run")
	trace := flag.Bool("trace", false, "print PC/opcode/register state per instruction")
	until := flag.String("until", "Passed", "stop when serial output contains this substring (case-insensitive); empty to disable")
	auto := flag.Bool("auto", false, "auto-detect 'Passed' or 'Failed N tests' in serial output and exit with code 0/1")
	timeout := flag.Duration("timeout", 0, "optional wall-clock timeout (e.g. 30s, 2m); 0 disables")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("-rom is required")
	}
	rom, err := os.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("read rom: %v", err)
	}

	b := bus.New(rom)
	c := cpu.New(b)

	var serial strings.Builder
	start := time.Now()
	var deadline time.Time
	if *timeout > 0 {
		deadline = start.Add(*timeout)
	}

	failRe := regexp.MustCompile(`(?i)failed\s+(\d+)\s+tests?`)
	var cycles int

	for i := 0; i < *steps; i++ {
		pc := c.Reg.PC
		var op byte
		if *trace {
			op = b.Read(pc)
		}
		cyc := stepMachine(b, c)
		cycles += cyc
		if *trace {
			fmt.Printf("PC=%04X OP=%02X cyc=%d A=%02X F=%02X B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X SP=%04X IME=%t\n",
				pc, op, cyc, c.Reg.A, c.Reg.F, c.Reg.B, c.Reg.C, c.Reg.D, c.Reg.E, c.Reg.H, c.Reg.L, c.Reg.SP, c.IME())
		}

		if b.ConsumeWrite(0xFF02) {
			serial.WriteByte(b.Read(0xFF01))
			fmt.Print(string(b.Read(0xFF01)))
		}

		s := serial.String()
		if *auto {
			if strings.Contains(strings.ToLower(s), "passed") {
				fmt.Printf("\nDetected PASS in serial output.\nDone: steps=%d cycles~=%d elapsed=%s\n",
					i+1, cycles, time.Since(start).Truncate(time.Millisecond))
				os.Exit(0)
			}
			if m := failRe.FindStringSubmatch(s); m != nil {
				fmt.Printf("\nDetected %s in serial output.\nDone: steps=%d cycles~=%d elapsed=%s\n",
					m[0], i+1, cycles, time.Since(start).Truncate(time.Millisecond))
				os.Exit(1)
			}
		} else if *until != "" && strings.Contains(strings.ToLower(s), strings.ToLower(*until)) {
			fmt.Printf("\nDetected %q in serial output.\nDone: steps=%d cycles~=%d elapsed=%s\n",
				*until, i+1, cycles, time.Since(start).Truncate(time.Millisecond))
			return
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			fmt.Printf("\nTimeout after %s.\nDone: steps=%d cycles~=%d elapsed=%s\n",
				time.Since(start).Truncate(time.Millisecond), i+1, cycles, time.Since(start).Truncate(time.Millisecond))
			os.Exit(2)
		}
	}
	fmt.Printf("\nDone: steps=%d cycles~=%d elapsed=%s\n", *steps, cycles, time.Since(start).Truncate(time.Millisecond))
}

// stepMachine drives the bus and CPU together, one machine cycle at a time,
// until the in-flight instruction completes, replicating the scheduler's
// timer-then-cpu order (spec §4.7) without the PPU/APU stages this
// serial-output-only tool has no use for.
func stepMachine(b *bus.Bus, c *cpu.CPU) int {
	b.Tick()
	c.Tick()
	cycles := 1
	for c.PendingCycles() > 0 {
		b.Tick()
		c.Tick()
		cycles++
	}
	return cycles
}
