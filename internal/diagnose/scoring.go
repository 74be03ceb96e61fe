package diagnose

import (
	"fmt"

	"github.com/avetrov/adscope/internal/rules"
)

// Strength bounds and the neutral point of the unified scorer.
const (
	strengthNeutral = 0.5
)

// Mild refuting severities applied when a measurement sits on the healthy
// side of a rule's threshold. Values mirror the relative weights of the
// original tuning: ratios refute harder than the other kinds.
const (
	refuteRatio       = -0.3
	refuteCount       = -0.2
	refuteThreshold   = -0.2
	refuteGap         = -0.2
	refuteCategorical = -0.2
)

// ScoreRule converts one rule plus the tool's measurements into an evidence
// strength in [0,1]: near 1 strongly supports the rule's hypothesis, near 0
// strongly refutes it, 0.5 is neutral.
//
// A missing feature is never an error; it degrades to neutral so a single
// absent metric cannot crash the run.
func ScoreRule(hyp rules.HypothesisID, r rules.Rule, features map[string]any) Evidence {
	ev := Evidence{Hypothesis: hyp, Feature: r.Feature}

	if r.Kind == rules.KindCategorical {
		raw, ok := features[r.Feature]
		if !ok {
			ev.Strength = strengthNeutral
			ev.Justification = fmt.Sprintf("%s missing, neutral", r.Feature)
			return ev
		}
		label := categoryLabel(raw)
		if s, known := r.Categories[label]; known {
			ev.Strength = clamp01(s)
			ev.Justification = fmt.Sprintf("%s=%s, strength %.2f", r.Feature, label, ev.Strength)
		} else {
			ev.Strength = strengthNeutral
			ev.Justification = fmt.Sprintf("%s=%s not in category table, neutral", r.Feature, label)
		}
		return ev
	}

	value, ok := numericFeature(features, r.Feature)
	if !ok {
		ev.Strength = strengthNeutral
		ev.Justification = fmt.Sprintf("%s missing, neutral", r.Feature)
		return ev
	}

	if r.Kind == rules.KindGap && r.RefFeature != "" {
		ref, refOK := numericFeature(features, r.RefFeature)
		if !refOK {
			ev.Strength = strengthNeutral
			ev.Justification = fmt.Sprintf("%s missing, neutral", r.RefFeature)
			return ev
		}
		if ref == 0 {
			ev.Strength = strengthNeutral
			ev.Justification = fmt.Sprintf("%s is zero, gap undefined, neutral", r.RefFeature)
			return ev
		}
		value = (value - ref) / ref
	}

	severity := severityFor(r, value)
	ev.Strength = clamp01(strengthNeutral + strengthNeutral*severity)
	ev.Justification = fmt.Sprintf("%s=%.3f vs threshold %.3f, strength %.2f",
		r.Feature, value, r.Threshold, ev.Strength)
	return ev
}

// severityFor computes the signed severity in [-1,1]: a linear ramp past the
// threshold on the supporting side, a fixed mild refutation on the other.
func severityFor(r rules.Rule, value float64) float64 {
	thr := r.Threshold
	span := thr
	if span < 0 {
		span = -span
	}
	if span == 0 {
		span = 1
	}

	ramp := func(distance float64) float64 {
		s := distance / span
		if s > 1 {
			return 1
		}
		return s
	}

	switch r.Kind {
	case rules.KindRatio:
		// lower_better: a ratio well below the threshold supports the
		// hypothesis; higher_better mirrors it.
		if r.Direction == rules.LowerBetter {
			if value < thr {
				return ramp(thr - value)
			}
		} else {
			if value > thr {
				return ramp(value - thr)
			}
		}
		return refuteRatio

	case rules.KindCount:
		// higher_better: the count falling short of the threshold supports
		// the deficiency hypothesis; lower_better fires when it exceeds.
		if r.Direction == rules.HigherBetter {
			if value < thr {
				return ramp(thr - value)
			}
		} else {
			if value > thr {
				return ramp(value - thr)
			}
		}
		return refuteCount

	case rules.KindThreshold:
		if r.Direction == rules.HigherWorse {
			if value > thr {
				return ramp(value - thr)
			}
		} else {
			if value < thr {
				return ramp(thr - value)
			}
		}
		return refuteThreshold

	case rules.KindGap:
		if r.Direction == rules.HigherWorse {
			if value > thr {
				return ramp(value - thr)
			}
		} else {
			if value < thr {
				return ramp(thr - value)
			}
		}
		return refuteGap
	}
	return 0
}

func numericFeature(features map[string]any, name string) (float64, bool) {
	raw, ok := features[name]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func categoryLabel(raw any) string {
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprint(raw)
}
