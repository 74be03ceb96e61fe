package diagnose

import (
	"fmt"

	"github.com/avetrov/adscope/internal/rules"
)

// FallbackAdvice names the substitute investigative path recorded when a
// tool fails. The loop never retries the failed tool within the same step;
// the alternatives only steer later selection by a human reader of the trace.
type FallbackAdvice struct {
	Alternatives []string `json:"alternatives,omitempty"`
	Message      string   `json:"message"`
}

var fallbacks = map[string]FallbackAdvice{
	rules.ToolCompetitor: {
		Alternatives: []string{rules.ToolListingAudit},
		Message:      "competitor analysis failed; audit the listing to gauge competitiveness instead",
	},
	rules.ToolInventory: {
		Alternatives: []string{rules.ToolAdsMetrics},
		Message:      "inventory lookup failed; fall back to ads metrics for spend posture",
	},
	rules.ToolListingAudit: {
		Alternatives: []string{rules.ToolAdsMetrics, rules.ToolCompetitor},
		Message:      "listing audit failed; lean on ads metrics and competitor analysis",
	},
	rules.ToolAdsMetrics: {
		Alternatives: []string{rules.ToolCompetitor, rules.ToolListingAudit},
		Message:      "ads metrics failed; lean on competitor analysis and the listing audit",
	},
}

// FallbackFor returns the advice for a failed tool.
func FallbackFor(tool string) FallbackAdvice {
	if adv, ok := fallbacks[tool]; ok {
		return adv
	}
	return FallbackAdvice{
		Message: fmt.Sprintf("tool %s failed; check its data source and re-run", tool),
	}
}
