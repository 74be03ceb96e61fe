package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oklog/ulid/v2"

	"github.com/avetrov/adscope/internal/diagnose"
	"github.com/avetrov/adscope/internal/report"
	"github.com/avetrov/adscope/internal/rules"
	"github.com/avetrov/adscope/internal/scenario"
	"github.com/avetrov/adscope/internal/tools"
	"github.com/avetrov/adscope/internal/trace"
)

func cmdRun(args []string) {
	var scenarioDir string
	var configPath string
	var rulesPath string
	var mode string
	var traceRoot string
	var runID string
	var breakTools []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--scenario":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--scenario requires a value")
				os.Exit(1)
			}
			scenarioDir = args[i]
		case "--config":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--config requires a value")
				os.Exit(1)
			}
			configPath = args[i]
		case "--rules":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--rules requires a value")
				os.Exit(1)
			}
			rulesPath = args[i]
		case "--mode":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--mode requires a value")
				os.Exit(1)
			}
			mode = args[i]
		case "--trace-root":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--trace-root requires a value")
				os.Exit(1)
			}
			traceRoot = args[i]
		case "--run-id":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--run-id requires a value")
				os.Exit(1)
			}
			runID = args[i]
		case "--break-tool":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--break-tool requires a value")
				os.Exit(1)
			}
			breakTools = append(breakTools, args[i])
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

	opts := diagnose.Options{}
	if configPath != "" {
		opts, err = diagnose.LoadOptionsFile(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if mode != "" {
		opts.Mode = mode
	}
	if runID == "" {
		runID = ulid.Make().String()
	}
	opts.RunID = runID

	table := rules.DefaultTable()
	if rulesPath != "" {
		table, err = rules.LoadTable(rulesPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	reg := tools.DefaultRegistry()
	for _, name := range breakTools {
		reg.Break(name)
	}

	if traceRoot == "" {
		traceRoot = "trace"
	}
	traceDir := filepath.Join(traceRoot, runID)
	sink, err := trace.NewWriter(traceDir, runID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	eng := &diagnose.Engine{
		Table:   table,
		Runner:  reg,
		Options: opts,
		Sink:    sink,
	}
	actx, err := eng.Run(context.Background(), sc)
	if cerr := sink.Close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "warning: trace persistence: %v\n", cerr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rep, err := report.Build(actx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	report.Render(os.Stdout, rep, actx)
	fmt.Printf("\ntrace: %s\n", traceDir)
}
