package diagnose

import (
	"fmt"
	"sort"

	"github.com/avetrov/adscope/internal/rules"
)

// SelectTool picks the next diagnostic tool: target the highest-belief
// hypothesis that still has an uninvoked tool with rules, then among that
// hypothesis's tools prefer the one whose rules cover the most
// currently-believed hypotheses (belief-weighted rule count). Ties fall back
// to the table's declared priority order, so identical inputs always yield
// the identical choice.
//
// It is a read-only decision: the loop records the invocation after the tool
// actually runs, never here. ok=false means every mapped tool has been
// invoked and the loop must terminate.
func SelectTool(actx *AgentContext, table *rules.Table) (tool, rationale string, ok bool) {
	hyps := append([]*Hypothesis(nil), actx.Hypotheses...)
	sort.SliceStable(hyps, func(i, j int) bool {
		if hyps[i].Belief != hyps[j].Belief {
			return hyps[i].Belief > hyps[j].Belief
		}
		return hyps[i].ID < hyps[j].ID
	})

	for _, h := range hyps {
		var best string
		var bestScore float64
		for _, cand := range table.ToolsFor(h.ID) {
			if actx.invoked(cand) {
				continue
			}
			score := coverageScore(actx, table, cand)
			// Strict > keeps the earlier (higher-priority) candidate on ties.
			if best == "" || score > bestScore {
				best = cand
				bestScore = score
			}
		}
		if best == "" {
			continue
		}
		rationale = fmt.Sprintf("probing %s (%s, belief %.2f) with %s (coverage %.2f)",
			h.ID, h.Label, h.Belief, best, bestScore)
		return best, rationale, true
	}
	return "", "", false
}

// coverageScore weights a tool's rule count by the current belief of each
// hypothesis it can touch.
func coverageScore(actx *AgentContext, table *rules.Table, tool string) float64 {
	var score float64
	for _, h := range actx.Hypotheses {
		score += h.Belief * float64(table.RuleCount(tool, h.ID))
	}
	return score
}
