package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/care-controller/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to replay fixture JSON")
	verbose := flag.Bool("v", false, "print per-turn results")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [-v]")
		os.Exit(2)
	}

	fixture, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	results, summary, mismatches := replay.Run(fixture, replay.DefaultReplayConfig())

	if *verbose {
		for _, r := range results {
			fmt.Printf("%-12s %s -> %s  gate=%-8s executed=%v  %s\n",
				r.TurnID, r.FromState, r.ToState, r.Gate.Decision, r.Executed, r.Reason)
		}
	}

	fmt.Printf("turns=%d transitions=%d no-ops=%d allow=%d escalate=%d block=%d final=%s\n",
		summary.TotalTurns, summary.Transitions, summary.NoOps,
		summary.Allows, summary.Escalates, summary.Blocks, summary.FinalState)

	if len(mismatches) > 0 {
		fmt.Fprintf(os.Stderr, "%d mismatch(es):\n", len(mismatches))
		for _, m := range mismatches {
			fmt.Fprintf(os.Stderr, "  %s\n", m)
		}
		os.Exit(1)
	}
}

// #endregion main
