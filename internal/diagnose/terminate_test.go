package diagnose

import "testing"

func testOpts(t *testing.T) Options {
	t.Helper()
	var o Options
	if err := o.applyDefaults(); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	return o
}

func TestCheckTermination_MinStepsGateHoldsEvenAtHighBelief(t *testing.T) {
	opts := testOpts(t)
	actx := &AgentContext{
		Step:       1,
		Hypotheses: []*Hypothesis{{ID: "H5", Belief: 0.95}},
	}
	check := CheckTermination(actx, opts)
	if check.Stop {
		t.Fatalf("stopped at step 1 below minimum: %+v", check)
	}
}

func TestCheckTermination_ConfidenceAfterMinSteps(t *testing.T) {
	opts := testOpts(t)
	actx := &AgentContext{
		Step: 3,
		Hypotheses: []*Hypothesis{
			{ID: "H1", Label: "one", Belief: 0.30},
			{ID: "H5", Label: "five", Belief: 0.48},
		},
	}
	check := CheckTermination(actx, opts)
	if !check.Stop || check.Reason != ReasonConfidence {
		t.Fatalf("check = %+v, want confidence stop", check)
	}
	if check.Winner != "H5" || check.Belief != 0.48 {
		t.Fatalf("winner = %s/%.2f, want H5/0.48", check.Winner, check.Belief)
	}
}

func TestCheckTermination_ExactThresholdStops(t *testing.T) {
	opts := testOpts(t)
	actx := &AgentContext{
		Step:       3,
		Hypotheses: []*Hypothesis{{ID: "H1", Belief: opts.ConfidenceThreshold}},
	}
	check := CheckTermination(actx, opts)
	if !check.Stop || check.Reason != ReasonConfidence {
		t.Fatalf("belief equal to threshold must stop, got %+v", check)
	}
}

func TestCheckTermination_StepBudget(t *testing.T) {
	opts := testOpts(t)
	actx := &AgentContext{
		Step:       opts.MaxSteps,
		Hypotheses: []*Hypothesis{{ID: "H2", Belief: 0.37}},
	}
	check := CheckTermination(actx, opts)
	if !check.Stop || check.Reason != ReasonStepBudget {
		t.Fatalf("check = %+v, want step budget stop", check)
	}
	if check.Winner != "H2" {
		t.Fatalf("budget stop still names the leader, got %q", check.Winner)
	}
}

func TestCheckTermination_ContinuesMidRun(t *testing.T) {
	opts := testOpts(t)
	actx := &AgentContext{
		Step:       3,
		Hypotheses: []*Hypothesis{{ID: "H1", Belief: 0.35}},
	}
	check := CheckTermination(actx, opts)
	if check.Stop {
		t.Fatalf("stopped mid-run without cause: %+v", check)
	}
}

func TestCheckTermination_IsPure(t *testing.T) {
	opts := testOpts(t)
	actx := &AgentContext{
		Step:       4,
		Hypotheses: []*Hypothesis{{ID: "H3", Belief: 0.39}},
	}
	a := CheckTermination(actx, opts)
	b := CheckTermination(actx, opts)
	if a != b {
		t.Fatalf("repeated checks diverged: %+v vs %+v", a, b)
	}
}
