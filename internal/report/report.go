// Package report turns a finalized run into a human-readable artifact: the
// primary diagnosis, recommended actions and a step-by-step account. The
// engine has no dependency on this package succeeding.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/avetrov/adscope/internal/diagnose"
	"github.com/avetrov/adscope/internal/rules"
)

// Action is one recommended intervention for a diagnosed root cause.
type Action struct {
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Risk        string `json:"risk"`
	KPI         string `json:"kpi"`
}

// Report is the final artifact handed to the user.
type Report struct {
	RunID      string                      `json:"run_id"`
	Primary    diagnose.RankedHypothesis   `json:"primary"`
	Confidence float64                     `json:"confidence"`
	Reason     diagnose.TerminationReason  `json:"reason"`
	Ranked     []diagnose.RankedHypothesis `json:"ranked"`
	Actions    []Action                    `json:"actions"`
	Steps      int                         `json:"steps"`
}

const maxActions = 3

// Build summarizes a finalized context.
func Build(actx *diagnose.AgentContext) (Report, error) {
	if !actx.Finalized || len(actx.Ranked) == 0 {
		return Report{}, fmt.Errorf("context is not finalized")
	}
	primary := actx.Ranked[0]
	actions := actionsFor(primary.ID)
	if len(actions) > maxActions {
		actions = actions[:maxActions]
	}
	return Report{
		RunID:      actx.RunID,
		Primary:    primary,
		Confidence: primary.Belief,
		Reason:     actx.Reason,
		Ranked:     actx.Ranked,
		Actions:    actions,
		Steps:      actx.Step,
	}, nil
}

// Render writes the report as plain text.
func Render(w io.Writer, r Report, actx *diagnose.AgentContext) {
	fmt.Fprintf(w, "run %s: diagnosed %q (belief %.0f%%, stopped: %s, %d steps)\n",
		r.RunID, r.Primary.Label, r.Confidence*100, r.Reason, r.Steps)

	fmt.Fprintln(w, "\nhypotheses:")
	for _, h := range r.Ranked {
		fmt.Fprintf(w, "  %d. %-4s %-32s %.2f\n", h.Rank, h.ID, h.Label, h.Belief)
	}

	if len(r.Actions) > 0 {
		fmt.Fprintln(w, "\nrecommended actions:")
		for i, a := range r.Actions {
			fmt.Fprintf(w, "  %d. %s\n     impact: %s | risk: %s | kpi: %s\n",
				i+1, a.Description, a.Impact, a.Risk, a.KPI)
		}
	}

	if actx != nil && len(actx.Steps) > 0 {
		fmt.Fprintln(w, "\nsteps:")
		for _, s := range actx.Steps {
			status := "ok"
			if !s.Result.OK {
				status = "FAILED: " + s.Result.Err
			}
			fmt.Fprintf(w, "  step %d: %s (%s)\n", s.Step, s.Tool, status)
			fmt.Fprintf(w, "    %s\n", s.Rationale)
			for _, d := range s.Deltas {
				fmt.Fprintf(w, "    %s: %.2f -> %.2f (%+.3f)\n", d.Hypothesis, d.Before, d.After, d.Delta)
			}
			if s.Fallback != "" {
				fmt.Fprintf(w, "    fallback: %s\n", s.Fallback)
			}
		}
	}
}

// String renders to a string.
func String(r Report, actx *diagnose.AgentContext) string {
	var b strings.Builder
	Render(&b, r, actx)
	return b.String()
}

func actionsFor(id rules.HypothesisID) []Action {
	switch id {
	case rules.HypBidTooLow:
		return []Action{
			{
				Description: "raise keyword bids 15-25%",
				Impact:      "more impressions and clicks",
				Risk:        "ad cost rises",
				KPI:         "impressions +20-40%",
			},
			{
				Description: "concentrate bid increases on high-converting keywords",
				Impact:      "better overall return on spend",
				Risk:        "individual keywords get expensive",
				KPI:         "ACOS -5-15%",
			},
		}
	case rules.HypKeywordsNarrow:
		return []Action{
			{
				Description: "expand the targeted keyword list",
				Impact:      "wider ad reach",
				Risk:        "some irrelevant traffic",
				KPI:         "15-20 targeted keywords",
			},
			{
				Description: "mine new keywords with an automatic campaign",
				Impact:      "surfaces high-value keywords",
				Risk:        "initial waste while learning",
				KPI:         "5-10 new effective keywords",
			},
		}
	case rules.HypCompetitor:
		return []Action{
			{
				Description: "adjust pricing to regain competitiveness",
				Impact:      "better ad auction position",
				Risk:        "margin compression",
				KPI:         "ad placement rank improves",
			},
			{
				Description: "shift spend to long-tail keywords away from head terms",
				Impact:      "less head-to-head competition",
				Risk:        "lower traffic volume",
				KPI:         "long-tail conversion rate up",
			},
		}
	case rules.HypListingQuality:
		return []Action{
			{
				Description: "overhaul the main image and gallery",
				Impact:      "higher click-through and conversion",
				Risk:        "design time and cost",
				KPI:         "conversion +10-30%",
			},
			{
				Description: "rewrite title and bullet points",
				Impact:      "better search relevance",
				Risk:        "may disturb existing ranking",
				KPI:         "organic traffic up",
			},
			{
				Description: "build or refresh A+ content",
				Impact:      "stronger product page",
				Risk:        "production lead time",
				KPI:         "time on page up",
			},
		}
	case rules.HypBroadWaste:
		return []Action{
			{
				Description: "add negative keywords to cut irrelevant traffic",
				Impact:      "less wasted spend",
				Risk:        "over-filtering good traffic",
				KPI:         "ACOS -10-20%",
			},
			{
				Description: "move broad-match keywords to phrase or exact",
				Impact:      "more precise traffic",
				Risk:        "total impressions drop",
				KPI:         "conversion +15-25%",
			},
		}
	case rules.HypInventory:
		return []Action{
			{
				Description: "expedite restocking now",
				Impact:      "avoids a stockout killing momentum",
				Risk:        "inventory carrying cost",
				KPI:         "days of inventory back above 30",
			},
			{
				Description: "throttle ad spend until stock recovers",
				Impact:      "stretches remaining inventory",
				Risk:        "short-term sales dip",
				KPI:         "stable sell-through",
			},
		}
	}
	return nil
}
