package main

import (
	"fmt"
	"os"

	"github.com/avetrov/adscope/internal/trace"
)

func cmdReplay(args []string) {
	var traceDir string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--trace":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--trace requires a value")
				os.Exit(1)
			}
			traceDir = args[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown flag: %s\n", args[i])
			usage()
			os.Exit(1)
		}
	}
	if traceDir == "" {
		fmt.Fprintln(os.Stderr, "--trace is required")
		os.Exit(1)
	}

	t, err := trace.Load(traceDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	for _, s := range t.Steps {
		status := "ok"
		if !s.Result.OK {
			status = "FAILED: " + s.Result.Err
		}
		fmt.Printf("step %d: %s (%s)\n", s.Step, s.Tool, status)
		fmt.Printf("  %s\n", s.Rationale)
		for _, d := range s.Deltas {
			fmt.Printf("  %s: %.4f -> %.4f (aggregate %.4f)\n", d.Hypothesis, d.Before, d.After, d.Aggregate)
		}
	}
	if t.Final != nil {
		fmt.Printf("final: %s wins at %.2f (%s, %d steps, run %s)\n",
			t.Final.Winner, t.Final.Belief, t.Final.Reason, t.Final.Steps, t.Final.RunID)
	}
	fmt.Printf("verified %d records\n", len(t.Steps)+btoi(t.Final != nil))
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
