package main

import (
	"fmt"
	"os"

	"github.com/avetrov/adscope/internal/scenario"
)

func cmdScenarios(args []string) {
	root := "testdata/scenarios"
	pattern := "**"
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--root":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--root requires a value")
				os.Exit(1)
			}
			root = args[i]
		case "--glob":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--glob requires a value")
				os.Exit(1)
			}
			pattern = args[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown flag: %s\n", args[i])
			usage()
			os.Exit(1)
		}
	}

	dirs, err := scenario.Discover(root, pattern)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(dirs) == 0 {
		fmt.Fprintf(os.Stderr, "no scenarios under %s matching %q\n", root, pattern)
		os.Exit(1)
	}
	for _, dir := range dirs {
		sc, err := scenario.Load(dir)
		if err != nil {
			fmt.Printf("%s\tINVALID: %v\n", dir, err)
			continue
		}
		fmt.Printf("%s\t%s\t%s\n", dir, sc.ASIN, sc.Goal)
	}
}
