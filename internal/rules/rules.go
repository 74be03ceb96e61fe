// Package rules holds the declarative diagnostic knowledge of adscope: the
// fixed hypothesis set and the tool→hypothesis rule table that maps measured
// features to evidence for or against each hypothesis.
//
// The table is built once at startup (DefaultTable or LoadTable) and is
// immutable afterwards, so a single table can be shared read-only across
// concurrent runs.
package rules

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// HypothesisID identifies one candidate root cause (H1..H6 in the default set).
type HypothesisID string

const (
	HypBidTooLow      HypothesisID = "H1"
	HypKeywordsNarrow HypothesisID = "H2"
	HypCompetitor     HypothesisID = "H3"
	HypListingQuality HypothesisID = "H4"
	HypBroadWaste     HypothesisID = "H5"
	HypInventory      HypothesisID = "H6"
)

// Definition is the static description of a hypothesis.
type Definition struct {
	ID          HypothesisID `json:"id" yaml:"id"`
	Label       string       `json:"label" yaml:"label"`
	Description string       `json:"description" yaml:"description"`
}

// Kind selects the comparison semantics of a rule.
type Kind string

const (
	KindRatio       Kind = "ratio"
	KindCount       Kind = "count"
	KindThreshold   Kind = "threshold"
	KindGap         Kind = "gap"
	KindCategorical Kind = "categorical"
)

// Direction tags the polarity of a numeric rule: which side of the threshold
// counts as evidence for the hypothesis.
type Direction string

const (
	LowerBetter  Direction = "lower_better"
	HigherBetter Direction = "higher_better"
	LowerWorse   Direction = "lower_worse"
	HigherWorse  Direction = "higher_worse"
)

// Rule maps one measured feature to one hypothesis. Rules are immutable once
// the table is built.
type Rule struct {
	Kind      Kind      `json:"kind" yaml:"kind"`
	Feature   string    `json:"feature" yaml:"feature"`
	Threshold float64   `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Direction Direction `json:"direction,omitempty" yaml:"direction,omitempty"`

	// RefFeature, when set on a gap rule, names the second feature: the
	// measured gap is (Feature−RefFeature)/RefFeature. When unset, Feature is
	// expected to already hold a precomputed gap.
	RefFeature string `json:"ref_feature,omitempty" yaml:"ref_feature,omitempty"`

	// Categories maps a categorical label to a fixed evidence strength in
	// [0,1]. Labels absent from the map score neutral.
	Categories map[string]float64 `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// Table is the immutable rule lookup shared across runs.
type Table struct {
	defs    []Definition
	defByID map[HypothesisID]Definition

	// tools preserves the declared priority ordering; byTool mirrors it.
	tools  []string
	byTool map[string]map[HypothesisID][]Rule
}

// Spec is the serializable form of a table, used for YAML overrides.
type Spec struct {
	Hypotheses []Definition `yaml:"hypotheses"`

	// Tools is ordered: it doubles as the deterministic tool priority list
	// used for tie-breaking during selection.
	Tools []ToolSpec `yaml:"tools"`
}

// ToolSpec declares the rules one tool contributes, grouped by hypothesis.
type ToolSpec struct {
	Name  string                  `yaml:"name"`
	Rules map[HypothesisID][]Rule `yaml:"rules"`
}

// Build constructs an immutable Table from a spec. The spec is validated:
// every rule must reference a declared hypothesis and carry a known kind.
func Build(spec Spec) (*Table, error) {
	if len(spec.Hypotheses) == 0 {
		return nil, fmt.Errorf("rule table declares no hypotheses")
	}
	if len(spec.Tools) == 0 {
		return nil, fmt.Errorf("rule table declares no tools")
	}

	t := &Table{
		defs:    append([]Definition(nil), spec.Hypotheses...),
		defByID: make(map[HypothesisID]Definition, len(spec.Hypotheses)),
		byTool:  make(map[string]map[HypothesisID][]Rule, len(spec.Tools)),
	}
	for _, d := range spec.Hypotheses {
		if d.ID == "" {
			return nil, fmt.Errorf("hypothesis with empty id")
		}
		if _, dup := t.defByID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate hypothesis id %s", d.ID)
		}
		t.defByID[d.ID] = d
	}

	for _, ts := range spec.Tools {
		if ts.Name == "" {
			return nil, fmt.Errorf("tool with empty name in rule table")
		}
		if _, dup := t.byTool[ts.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %s in rule table", ts.Name)
		}
		byHyp := make(map[HypothesisID][]Rule, len(ts.Rules))
		for hid, rs := range ts.Rules {
			if _, ok := t.defByID[hid]; !ok {
				return nil, fmt.Errorf("tool %s references unknown hypothesis %s", ts.Name, hid)
			}
			for _, r := range rs {
				if err := validateRule(r); err != nil {
					return nil, fmt.Errorf("tool %s, hypothesis %s: %w", ts.Name, hid, err)
				}
			}
			byHyp[hid] = append([]Rule(nil), rs...)
		}
		t.tools = append(t.tools, ts.Name)
		t.byTool[ts.Name] = byHyp
	}
	return t, nil
}

func validateRule(r Rule) error {
	switch r.Kind {
	case KindRatio, KindCount, KindThreshold, KindGap:
		switch r.Direction {
		case LowerBetter, HigherBetter, LowerWorse, HigherWorse:
		default:
			return fmt.Errorf("rule for feature %q: unknown direction %q", r.Feature, r.Direction)
		}
	case KindCategorical:
		if len(r.Categories) == 0 {
			return fmt.Errorf("categorical rule for feature %q has no categories", r.Feature)
		}
		for label, s := range r.Categories {
			if s < 0 || s > 1 {
				return fmt.Errorf("categorical rule for feature %q: strength %v for %q outside [0,1]", r.Feature, s, label)
			}
		}
	default:
		return fmt.Errorf("rule for feature %q: unknown kind %q", r.Feature, r.Kind)
	}
	if r.Feature == "" {
		return fmt.Errorf("rule with empty feature name")
	}
	return nil
}

// LoadTable reads a YAML table spec and builds it.
func LoadTable(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec Spec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return nil, fmt.Errorf("decode rule table %s: %w", path, err)
	}
	t, err := Build(spec)
	if err != nil {
		return nil, fmt.Errorf("rule table %s: %w", path, err)
	}
	return t, nil
}

// Definitions returns the hypothesis set in declared order.
func (t *Table) Definitions() []Definition {
	return append([]Definition(nil), t.defs...)
}

// Definition returns the static description for id.
func (t *Table) Definition(id HypothesisID) (Definition, bool) {
	d, ok := t.defByID[id]
	return d, ok
}

// Tools returns tool names in declared priority order.
func (t *Table) Tools() []string {
	return append([]string(nil), t.tools...)
}

// RulesFor returns the rules linking tool and hypothesis, in declared order.
// Unknown tools or hypotheses yield an empty slice, never an error: the
// policy treats "no rules" as neutral.
func (t *Table) RulesFor(tool string, hyp HypothesisID) []Rule {
	byHyp, ok := t.byTool[tool]
	if !ok {
		return nil
	}
	return append([]Rule(nil), byHyp[hyp]...)
}

// RuleCount reports how many rules link tool and hypothesis.
func (t *Table) RuleCount(tool string, hyp HypothesisID) int {
	byHyp, ok := t.byTool[tool]
	if !ok {
		return 0
	}
	return len(byHyp[hyp])
}

// ToolsFor returns, in priority order, the tools that define at least one
// rule for the hypothesis.
func (t *Table) ToolsFor(hyp HypothesisID) []string {
	var out []string
	for _, name := range t.tools {
		if len(t.byTool[name][hyp]) > 0 {
			out = append(out, name)
		}
	}
	return out
}

// Hypotheses returns the sorted ids that tool has rules for.
func (t *Table) Hypotheses(tool string) []HypothesisID {
	byHyp, ok := t.byTool[tool]
	if !ok {
		return nil
	}
	out := make([]HypothesisID, 0, len(byHyp))
	for hid := range byHyp {
		if len(byHyp[hid]) > 0 {
			out = append(out, hid)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
