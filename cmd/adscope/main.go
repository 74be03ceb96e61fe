package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		cmdRun(os.Args[2:])
	case "validate":
		cmdValidate(os.Args[2:])
	case "scenarios":
		cmdScenarios(os.Args[2:])
	case "replay":
		cmdReplay(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  adscope run --scenario <dir> [--config <file.yaml>] [--rules <file.yaml>] [--mode keyword|campaign] [--trace-root <dir>] [--run-id <id>] [--break-tool <name>]")
	fmt.Fprintln(os.Stderr, "  adscope validate --scenario <dir>")
	fmt.Fprintln(os.Stderr, "  adscope scenarios [--root <dir>] [--glob <pattern>]")
	fmt.Fprintln(os.Stderr, "  adscope replay --trace <dir>")
}
