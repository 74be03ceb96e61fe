package tools

import (
	"context"
	"math"
	"testing"

	"github.com/avetrov/adscope/internal/diagnose"
	"github.com/avetrov/adscope/internal/rules"
)

// Full-stack run over the acos-blowout fixture: broad-match ACOS of 1.5
// should drive H5 to a confidence stop at the forced-minimum step.
func TestEngineWithRealTools_ACOSBlowout(t *testing.T) {
	sc := loadScenario(t)
	eng := &diagnose.Engine{
		Table:  rules.DefaultTable(),
		Runner: DefaultRegistry(),
	}

	actx, err := eng.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if actx.Reason != diagnose.ReasonConfidence {
		t.Fatalf("reason = %q, want confidence", actx.Reason)
	}
	if len(actx.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(actx.Steps))
	}
	wantTools := []string{rules.ToolAdsMetrics, rules.ToolCompetitor, rules.ToolListingAudit}
	for i, rec := range actx.Steps {
		if rec.Tool != wantTools[i] {
			t.Fatalf("step %d tool = %s, want %s", rec.Step, rec.Tool, wantTools[i])
		}
	}

	if actx.Ranked[0].ID != rules.HypBroadWaste {
		t.Fatalf("winner = %s, want H5", actx.Ranked[0].ID)
	}
	// Primed 0.35 blended once with a saturated aggregate: 0.8·0.35 + 0.2·1.0.
	if got := actx.Hypothesis(rules.HypBroadWaste).Belief; math.Abs(got-0.48) > 1e-9 {
		t.Fatalf("H5 belief = %v, want 0.48", got)
	}
}

// A broken tool must not stop the investigation: the loop records the
// failure, keeps beliefs intact for that step and moves on.
func TestEngineWithRealTools_BrokenToolDegrades(t *testing.T) {
	sc := loadScenario(t)
	reg := DefaultRegistry()
	reg.Break(rules.ToolAdsMetrics)
	eng := &diagnose.Engine{
		Table:  rules.DefaultTable(),
		Runner: reg,
	}

	actx, err := eng.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	first := actx.Steps[0]
	if first.Tool != rules.ToolAdsMetrics || first.Result.OK {
		t.Fatalf("first step = %+v, want failed AdsMetrics", first)
	}
	if first.Fallback == "" {
		t.Fatalf("no fallback advice recorded")
	}
	if len(actx.Steps) < 2 {
		t.Fatalf("run gave up after the failure")
	}
	if !actx.Finalized {
		t.Fatalf("run not finalized")
	}
}
