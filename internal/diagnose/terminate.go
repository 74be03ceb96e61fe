package diagnose

import (
	"fmt"

	"github.com/avetrov/adscope/internal/rules"
)

// TerminationReason is the single reason a run stopped.
type TerminationReason string

const (
	// ReasonConfidence: a hypothesis reached the confidence threshold.
	ReasonConfidence TerminationReason = "confidence"
	// ReasonStepBudget: the step budget was exhausted.
	ReasonStepBudget TerminationReason = "step_budget"
	// ReasonExhausted: no eligible tool remained. Not an error; exhaustion
	// forces termination regardless of step count.
	ReasonExhausted TerminationReason = "exhausted"
)

// TerminationCheck is the outcome of one post-step evaluation.
type TerminationCheck struct {
	Stop   bool               `json:"stop"`
	Reason TerminationReason  `json:"reason,omitempty"`
	Winner rules.HypothesisID `json:"winner,omitempty"`
	Belief float64            `json:"belief,omitempty"`
	Detail string             `json:"detail"`
}

// CheckTermination evaluates the stop conditions after a completed step. It
// is a pure function of the context: re-evaluated fresh each call, never a
// persistent state machine. Exhaustion is detected at selection time by the
// loop, not here.
func CheckTermination(actx *AgentContext, opts Options) TerminationCheck {
	if actx.Step < opts.MinSteps {
		return TerminationCheck{
			Detail: fmt.Sprintf("step %d below forced minimum %d, continuing", actx.Step, opts.MinSteps),
		}
	}

	if top, belief := actx.MaxBelief(); top != nil && belief >= opts.ConfidenceThreshold {
		return TerminationCheck{
			Stop:   true,
			Reason: ReasonConfidence,
			Winner: top.ID,
			Belief: belief,
			Detail: fmt.Sprintf("%s (%s) reached belief %.2f >= %.2f", top.ID, top.Label, belief, opts.ConfidenceThreshold),
		}
	}

	if actx.Step >= opts.MaxSteps {
		top, belief := actx.MaxBelief()
		check := TerminationCheck{
			Stop:   true,
			Reason: ReasonStepBudget,
			Detail: fmt.Sprintf("step budget %d exhausted", opts.MaxSteps),
		}
		if top != nil {
			check.Winner = top.ID
			check.Belief = belief
		}
		return check
	}

	return TerminationCheck{
		Detail: fmt.Sprintf("no belief at %.2f yet, continuing", opts.ConfidenceThreshold),
	}
}
