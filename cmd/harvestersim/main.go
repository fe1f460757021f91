// Command harvestersim drives the mppt.Controller against a named,
// scripted scenario and prints the resulting per-tick trace, so the control
// loop can be exercised off-hardware.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/benbjohnson/clock"

	"github.com/wrale/solar-mppt-fw/mppt"
	"github.com/wrale/solar-mppt-fw/platform"
	"github.com/wrale/solar-mppt-fw/simulator"
)

func scenarios() map[string]simulator.Scenario {
	all := []simulator.Scenario{
		simulator.ColdStartThenClimb(),
		simulator.OverVoltageThenRecover(),
		simulator.DarknessShutdown(),
	}
	byName := make(map[string]simulator.Scenario, len(all))
	for _, s := range all {
		byName[s.Name] = s
	}
	return byName
}

func main() {
	name := flag.String("scenario", "cold-start-then-climb", "scenario to run")
	list := flag.Bool("list", false, "list available scenarios and exit")
	flag.Parse()

	named := scenarios()

	if *list {
		for n := range named {
			fmt.Println(n)
		}
		return
	}

	s, ok := named[*name]
	if !ok {
		fmt.Fprintf(os.Stderr, "harvestersim: unknown scenario %q (use -list)\n", *name)
		os.Exit(1)
	}

	ctrl := mppt.NewController()
	p := platform.NewSimulated().WithClock(clock.NewMock(), simulator.DefaultTickPeriod)

	observations := simulator.Run(ctrl, p, s.Samples)

	fmt.Printf("scenario: %s\n", s.Name)
	fmt.Printf("%-4s %-5s %-7s %-4s %-12s %-6s %-7s\n", "tick", "vcc", "sensor", "off", "state", "up", "lastE")
	for i, o := range observations {
		fmt.Printf("%-4d %-5d %-7d %-4t %-12d %-6t %-7d\n",
			i, o.Sample.VCC, o.Sample.Sensor, o.Off, o.State, o.Up, o.LastEnergy)
	}
}
