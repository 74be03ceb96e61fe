// Package tools implements the diagnostic tool collaborators: fixture-backed
// analyzers that read a scenario's raw metrics and emit the features the
// rule table scores. The registry is the engine-facing runner; it contains
// every failure (error, panic, timeout) inside a ToolResult.
package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avetrov/adscope/internal/diagnose"
	"github.com/avetrov/adscope/internal/scenario"
)

// ErrMissingData marks a fixture that lacks a field a tool requires.
var ErrMissingData = errors.New("missing data")

// Tool analyzes one aspect of a scenario. Analyze must not mutate the
// scenario; mode is tool-specific ("keyword"/"campaign" for ads metrics).
type Tool interface {
	Name() string
	Describe() string
	Analyze(sc *scenario.Scenario, mode string) (features, data map[string]any, err error)
}

// Registry dispatches engine invocations to registered tools. It satisfies
// diagnose.ToolRunner.
type Registry struct {
	order  []string
	tools  map[string]Tool
	broken map[string]bool
}

// NewRegistry registers tools in the given order.
func NewRegistry(ts ...Tool) *Registry {
	r := &Registry{
		tools:  make(map[string]Tool, len(ts)),
		broken: map[string]bool{},
	}
	for _, t := range ts {
		if _, dup := r.tools[t.Name()]; dup {
			continue
		}
		r.order = append(r.order, t.Name())
		r.tools[t.Name()] = t
	}
	return r
}

// DefaultRegistry registers the four builtin analyzers.
func DefaultRegistry() *Registry {
	return NewRegistry(AdsMetrics{}, ListingAudit{}, Competitor{}, Inventory{})
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Break marks a tool as broken: every invocation fails with a simulated
// timeout. Used to exercise the failure path end to end.
func (r *Registry) Break(name string) {
	r.broken[name] = true
}

type analyzeOut struct {
	features map[string]any
	data     map[string]any
	err      error
}

// Run invokes one tool. It never returns a fault to the loop: unknown tools,
// analyzer errors, panics and deadline hits all come back as a ToolResult
// with OK=false and an error description.
func (r *Registry) Run(ctx context.Context, sc *scenario.Scenario, name, mode string) diagnose.ToolResult {
	start := time.Now()
	res := diagnose.ToolResult{Tool: name}

	t, ok := r.tools[name]
	if !ok {
		res.Err = fmt.Sprintf("unknown tool %q", name)
		res.Elapsed = time.Since(start)
		return res
	}
	if r.broken[name] {
		res.Err = fmt.Sprintf("tool %s timed out (simulated)", name)
		res.Elapsed = time.Since(start)
		return res
	}

	ch := make(chan analyzeOut, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				ch <- analyzeOut{err: fmt.Errorf("tool %s panicked: %v", name, p)}
			}
		}()
		features, data, err := t.Analyze(sc, mode)
		ch <- analyzeOut{features: features, data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		// The analyzer goroutine is abandoned; its buffered channel send
		// cannot block.
		res.Err = fmt.Sprintf("tool %s timed out: %v", name, ctx.Err())
	case out := <-ch:
		if out.err != nil {
			res.Err = out.err.Error()
		} else {
			res.OK = true
			res.Features = out.features
			res.Data = out.data
		}
	}
	res.Elapsed = time.Since(start)
	return res
}
