package diagnose

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/avetrov/adscope/internal/rules"
	"github.com/avetrov/adscope/internal/scenario"
)

// ToolRunner invokes a named diagnostic tool against a scenario. A failure
// must surface as a ToolResult with OK=false and an error description, never
// as a panic or fault that escapes to the loop. The runner must honor ctx's
// deadline; the engine sets it from Options.ToolTimeout.
type ToolRunner interface {
	Run(ctx context.Context, sc *scenario.Scenario, tool, mode string) ToolResult
}

// Engine runs the observe→think→act diagnostic loop. The rule table is
// read-only and may be shared across concurrently running engines; each run
// owns an independent AgentContext.
type Engine struct {
	Table   *rules.Table
	Runner  ToolRunner
	Options Options

	// Sink receives the transparency log. Optional; errors inside the sink
	// never affect the run.
	Sink Sink
}

// Run executes one full diagnostic run over a loaded scenario and returns
// the finalized context: ranked hypotheses plus the complete step trace.
//
// The loop is strictly sequential. One tool's failure never aborts the run;
// the step counter advances regardless of tool success, so the loop always
// terminates within the step budget even under repeated failure. ctx
// cancellation is honored between steps only, never mid-tool-call beyond the
// per-call timeout.
func (e *Engine) Run(ctx context.Context, sc *scenario.Scenario) (*AgentContext, error) {
	if e.Table == nil {
		return nil, fmt.Errorf("engine has no rule table")
	}
	if e.Runner == nil {
		return nil, fmt.Errorf("engine has no tool runner")
	}
	if sc == nil {
		return nil, fmt.Errorf("engine needs a scenario")
	}
	opts := e.Options
	if err := opts.applyDefaults(); err != nil {
		return nil, err
	}
	if opts.RunID == "" {
		opts.RunID = ulid.Make().String()
	}

	// INIT: build the context with priors. OBSERVING mutates nothing.
	actx := &AgentContext{
		RunID:       opts.RunID,
		Scenario:    sc,
		Hypotheses:  initialHypotheses(e.Table, sc.Goal, opts),
		Observation: observe(sc, opts),
	}

	for {
		// The caller may abandon a run between steps only.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run %s abandoned: %w", actx.RunID, err)
		}

		// SELECTING. Exhaustion forces termination regardless of step count.
		tool, rationale, ok := SelectTool(actx, e.Table)
		if !ok {
			actx.Reason = ReasonExhausted
			break
		}

		// EXECUTING. The step counts whether or not the tool succeeds, and a
		// tool is never retried within the same step.
		actx.Step++
		toolCtx, cancel := context.WithTimeout(ctx, opts.ToolTimeout)
		res := e.Runner.Run(toolCtx, sc, tool, opts.Mode)
		cancel()

		rec := StepRecord{
			Step:      actx.Step,
			Tool:      tool,
			Rationale: rationale,
			Result:    res,
		}

		// SCORING. Failed invocations leave every belief untouched.
		if res.OK {
			rec.Deltas = e.updateBeliefs(actx, tool, res.Features, opts.Alpha)
		} else {
			rec.Fallback = FallbackFor(tool).Message
		}
		actx.Invoked = append(actx.Invoked, tool)

		// CHECKING.
		check := CheckTermination(actx, opts)
		rec.Termination = &check
		actx.Steps = append(actx.Steps, rec)
		if e.Sink != nil {
			e.Sink.Step(rec)
		}
		if check.Stop {
			actx.Reason = check.Reason
			break
		}
	}

	// FINALIZED: freeze and rank.
	actx.Finalized = true
	actx.Ranked = actx.rank()
	if e.Sink != nil {
		e.Sink.Finalized(actx)
	}
	return actx, nil
}

// initialHypotheses builds the belief state: BasePrior everywhere, except
// hypotheses primed for the scenario's goal, which start at PrimedPrior.
func initialHypotheses(table *rules.Table, goal scenario.Goal, opts Options) []*Hypothesis {
	primed := map[rules.HypothesisID]bool{}
	for _, id := range opts.Primed[goal] {
		primed[id] = true
	}
	defs := table.Definitions()
	out := make([]*Hypothesis, 0, len(defs))
	for _, d := range defs {
		belief := opts.BasePrior
		if primed[d.ID] {
			belief = opts.PrimedPrior
		}
		out = append(out, &Hypothesis{
			ID:      d.ID,
			Label:   d.Label,
			Belief:  belief,
			History: []float64{belief},
		})
	}
	return out
}

// observe summarizes the scenario into the derived context string recorded
// on the run.
func observe(sc *scenario.Scenario, opts Options) string {
	primed := opts.Primed[sc.Goal]
	return fmt.Sprintf("asin %s, goal %s, lookback %dd, primed %v",
		sc.ASIN, sc.Goal, sc.LookbackDays, primed)
}

// updateBeliefs scores every rule the tool defines and folds the evidence
// into each affected hypothesis. Hypotheses with no rules for this tool are
// left untouched.
func (e *Engine) updateBeliefs(actx *AgentContext, tool string, features map[string]any, alpha float64) []BeliefDelta {
	var deltas []BeliefDelta
	for _, h := range actx.Hypotheses {
		rs := e.Table.RulesFor(tool, h.ID)
		if len(rs) == 0 {
			continue
		}
		evidence := make([]Evidence, 0, len(rs))
		strengths := make([]float64, 0, len(rs))
		for _, r := range rs {
			ev := ScoreRule(h.ID, r, features)
			evidence = append(evidence, ev)
			strengths = append(strengths, ev.Strength)
		}
		agg := HarmonicMean(strengths)
		before := h.Belief
		after := Blend(before, alpha, agg)
		h.Belief = after
		h.History = append(h.History, after)
		deltas = append(deltas, BeliefDelta{
			Hypothesis: h.ID,
			Before:     before,
			After:      after,
			Delta:      after - before,
			Aggregate:  agg,
			Evidence:   evidence,
		})
	}
	return deltas
}
