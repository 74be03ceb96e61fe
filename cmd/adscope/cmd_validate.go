package main

import (
	"fmt"
	"os"

	"github.com/avetrov/adscope/internal/scenario"
)

func cmdValidate(args []string) {
	var scenarioDir string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--scenario":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--scenario requires a value")
				os.Exit(1)
			}
			scenarioDir = args[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown flag: %s\n", args[i])
			usage()
			os.Exit(1)
		}
	}
	if scenarioDir == "" {
		fmt.Fprintln(os.Stderr, "--scenario is required")
		os.Exit(1)
	}

	sc, err := scenario.Load(scenarioDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("%s: ok (asin %s, goal %s, lookback %dd)\n", sc.Name, sc.ASIN, sc.Goal, sc.LookbackDays)
}
