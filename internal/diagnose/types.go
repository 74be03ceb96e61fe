// Package diagnose implements the belief-update and tool-selection engine:
// the hypothesis state model, the unified feature scorer, the belief
// aggregator, the selection and termination policies, and the
// observe→think→act loop that ties them together.
package diagnose

import (
	"sort"
	"time"

	"github.com/avetrov/adscope/internal/rules"
	"github.com/avetrov/adscope/internal/scenario"
)

// Hypothesis is the mutable belief state for one candidate root cause.
// Belief is always in [0,1]; History records the belief after every step
// that touched it, append-only.
type Hypothesis struct {
	ID      rules.HypothesisID `json:"id"`
	Label   string             `json:"label"`
	Belief  float64            `json:"belief"`
	History []float64          `json:"history"`
}

// ToolResult is what a diagnostic tool returns. The engine only reads it.
type ToolResult struct {
	Tool     string         `json:"tool"`
	OK       bool           `json:"ok"`
	Features map[string]any `json:"features,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Err      string         `json:"error,omitempty"`
	Elapsed  time.Duration  `json:"elapsed_ns"`
}

// Evidence is one scored rule: how strongly one measured feature supports
// (strength near 1) or refutes (near 0) one hypothesis, with a short
// justification for the transparency log.
type Evidence struct {
	Hypothesis    rules.HypothesisID `json:"hypothesis"`
	Feature       string             `json:"feature"`
	Strength      float64            `json:"strength"`
	Justification string             `json:"justification"`
}

// BeliefDelta records one hypothesis's belief update within a step.
type BeliefDelta struct {
	Hypothesis rules.HypothesisID `json:"hypothesis"`
	Before     float64            `json:"before"`
	After      float64            `json:"after"`
	Delta      float64            `json:"delta"`
	Aggregate  float64            `json:"aggregate"`
	Evidence   []Evidence         `json:"evidence,omitempty"`
}

// StepRecord is the append-only trace entry for one loop step. It is never
// edited after creation.
type StepRecord struct {
	Step        int               `json:"step"`
	Tool        string            `json:"tool"`
	Rationale   string            `json:"rationale"`
	Result      ToolResult        `json:"result"`
	Deltas      []BeliefDelta     `json:"deltas,omitempty"`
	Fallback    string            `json:"fallback,omitempty"`
	Termination *TerminationCheck `json:"termination,omitempty"`
}

// RankedHypothesis is one row of the final outcome.
type RankedHypothesis struct {
	Rank   int                `json:"rank"`
	ID     rules.HypothesisID `json:"id"`
	Label  string             `json:"label"`
	Belief float64            `json:"belief"`
}

// AgentContext is the per-run mutable state. It is created at run start,
// mutated once per loop iteration by the engine only, and frozen when the
// loop terminates.
type AgentContext struct {
	RunID    string             `json:"run_id"`
	Scenario *scenario.Scenario `json:"scenario"`
	Step     int                `json:"step"`

	// Observation is the derived scenario summary produced during OBSERVING.
	Observation string `json:"observation,omitempty"`

	Hypotheses []*Hypothesis `json:"hypotheses"`
	Invoked    []string      `json:"invoked"`
	Steps      []StepRecord  `json:"steps"`

	// Set at finalization.
	Finalized bool               `json:"finalized"`
	Reason    TerminationReason  `json:"reason,omitempty"`
	Ranked    []RankedHypothesis `json:"ranked,omitempty"`
}

// Hypothesis returns the state for id, or nil.
func (a *AgentContext) Hypothesis(id rules.HypothesisID) *Hypothesis {
	for _, h := range a.Hypotheses {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// MaxBelief returns the current highest belief and its hypothesis. Ties go
// to the lower hypothesis id, matching the final ranking order.
func (a *AgentContext) MaxBelief() (*Hypothesis, float64) {
	var best *Hypothesis
	for _, h := range a.Hypotheses {
		if best == nil || h.Belief > best.Belief || (h.Belief == best.Belief && h.ID < best.ID) {
			best = h
		}
	}
	if best == nil {
		return nil, 0
	}
	return best, best.Belief
}

func (a *AgentContext) invoked(tool string) bool {
	for _, t := range a.Invoked {
		if t == tool {
			return true
		}
	}
	return false
}

// rank computes the final ordering: descending belief, ascending id on ties.
func (a *AgentContext) rank() []RankedHypothesis {
	hyps := append([]*Hypothesis(nil), a.Hypotheses...)
	sort.SliceStable(hyps, func(i, j int) bool {
		if hyps[i].Belief != hyps[j].Belief {
			return hyps[i].Belief > hyps[j].Belief
		}
		return hyps[i].ID < hyps[j].ID
	})
	out := make([]RankedHypothesis, len(hyps))
	for i, h := range hyps {
		out[i] = RankedHypothesis{Rank: i + 1, ID: h.ID, Label: h.Label, Belief: h.Belief}
	}
	return out
}

// Sink receives the transparency log: one StepRecord per completed step and
// the finalized context. Implementations must not assume they can fail the
// run; the engine never blocks on a sink and ignores its errors.
type Sink interface {
	Step(rec StepRecord)
	Finalized(actx *AgentContext)
}
