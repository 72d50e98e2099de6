// Command fleetctl runs an offline demonstration of the fleet control
// plane: it builds a ControlPlane, optionally seeds it from a YAML
// bootstrap document, runs one dispatch cycle, and prints the resulting
// event log.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/orangedot/fleetctl/internal/config"
	"github.com/orangedot/fleetctl/internal/dispatcher"
	"github.com/orangedot/fleetctl/internal/fleet"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", "", "YAML bootstrap document (maps/robots/modules)")
		mapID      = pflag.StringP("map", "m", "", "map id to dispatch on")
		algo       = pflag.StringP("algorithm", "a", "greedy", "greedy | optimal | balanced")
		verbose    = pflag.BoolP("verbose", "v", false, "emit operational diagnostics to stderr")
	)
	pflag.Parse()

	var diag *slog.Logger
	if *verbose {
		diag = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	cp := fleet.New(os.Stdout, diag)

	if *configPath != "" {
		doc, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load config:", err)
			os.Exit(1)
		}
		if err := doc.Apply(cp); err != nil {
			fmt.Fprintln(os.Stderr, "apply config:", err)
			os.Exit(1)
		}
	}

	if *mapID == "" {
		fmt.Fprintln(os.Stderr, "fleetctl: --map is required")
		os.Exit(2)
	}

	if err := cp.AssignTasks(*mapID, dispatcher.Algorithm(*algo)); err != nil {
		fmt.Fprintln(os.Stderr, "assign tasks:", err)
		os.Exit(1)
	}

	assignments, err := cp.GetAssignments(*mapID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "get assignments:", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "\n%d active assignment(s) on map %q\n", len(assignments), *mapID)
	for taskID, robotID := range assignments {
		fmt.Fprintf(os.Stderr, "  task %d -> robot %s\n", taskID, robotID)
	}
}
