package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTable_BuildsAndOrdersTools(t *testing.T) {
	table := DefaultTable()
	tools := table.Tools()
	want := []string{ToolAdsMetrics, ToolListingAudit, ToolCompetitor, ToolInventory}
	if len(tools) != len(want) {
		t.Fatalf("tools: %v", tools)
	}
	for i := range want {
		if tools[i] != want[i] {
			t.Fatalf("tool order: got %v, want %v", tools, want)
		}
	}
	if len(table.Definitions()) != 6 {
		t.Fatalf("hypotheses: %d", len(table.Definitions()))
	}
}

func TestRulesFor_UnknownToolOrHypothesis_ReturnsEmpty(t *testing.T) {
	table := DefaultTable()
	if rs := table.RulesFor("NoSuchTool", HypBidTooLow); len(rs) != 0 {
		t.Fatalf("expected no rules, got %d", len(rs))
	}
	if rs := table.RulesFor(ToolAdsMetrics, "H99"); len(rs) != 0 {
		t.Fatalf("expected no rules, got %d", len(rs))
	}
}

func TestRulesFor_KnownPair(t *testing.T) {
	table := DefaultTable()
	rs := table.RulesFor(ToolListingAudit, HypListingQuality)
	if len(rs) != 3 {
		t.Fatalf("ListingAudit/H4 rules: %d", len(rs))
	}
	if rs[0].Feature != "main_image_score" {
		t.Fatalf("rule order changed: %q", rs[0].Feature)
	}
}

func TestToolsFor_PreservesPriorityOrder(t *testing.T) {
	table := DefaultTable()
	if got := table.ToolsFor(HypBroadWaste); len(got) != 1 || got[0] != ToolAdsMetrics {
		t.Fatalf("ToolsFor(H5): %v", got)
	}
}

func TestBuild_RejectsUnknownHypothesisReference(t *testing.T) {
	spec := Spec{
		Hypotheses: []Definition{{ID: "H1", Label: "x"}},
		Tools: []ToolSpec{{
			Name:  "T",
			Rules: map[HypothesisID][]Rule{"H9": {{Kind: KindCount, Feature: "f", Threshold: 1, Direction: HigherBetter}}},
		}},
	}
	if _, err := Build(spec); err == nil {
		t.Fatalf("expected error")
	}
}

func TestBuild_RejectsBadDirectionAndBadStrength(t *testing.T) {
	base := func(r Rule) Spec {
		return Spec{
			Hypotheses: []Definition{{ID: "H1", Label: "x"}},
			Tools:      []ToolSpec{{Name: "T", Rules: map[HypothesisID][]Rule{"H1": {r}}}},
		}
	}
	if _, err := Build(base(Rule{Kind: KindRatio, Feature: "f", Threshold: 1, Direction: "sideways"})); err == nil {
		t.Fatalf("expected direction error")
	}
	if _, err := Build(base(Rule{Kind: KindCategorical, Feature: "f", Categories: map[string]float64{"a": 1.5}})); err == nil {
		t.Fatalf("expected strength error")
	}
}

func TestLoadTable_YAML(t *testing.T) {
	doc := `
hypotheses:
  - id: H1
    label: Bid too low
tools:
  - name: AdsMetrics
    rules:
      H1:
        - kind: ratio
          feature: avg_cpc_ratio
          threshold: 0.5
          direction: lower_better
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	rs := table.RulesFor("AdsMetrics", "H1")
	if len(rs) != 1 || rs[0].Threshold != 0.5 || rs[0].Direction != LowerBetter {
		t.Fatalf("rules: %+v", rs)
	}
}

func TestLoadTable_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("hypotheses: []\ntools: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTable(path); err == nil {
		t.Fatalf("expected error")
	}
}
