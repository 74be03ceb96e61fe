package rules

// Tool names used by the default table. The registry in internal/tools
// registers implementations under the same names.
const (
	ToolAdsMetrics   = "AdsMetrics"
	ToolListingAudit = "ListingAudit"
	ToolCompetitor   = "Competitor"
	ToolInventory    = "Inventory"
)

// DefaultSpec returns the built-in hypothesis set and rule table.
//
// The tool order here is the deterministic selection tie-break: earlier
// tools win ties.
func DefaultSpec() Spec {
	return Spec{
		Hypotheses: []Definition{
			{ID: HypBidTooLow, Label: "Bid too low", Description: "Bids are too low to win competitive keywords"},
			{ID: HypKeywordsNarrow, Label: "Keyword coverage too narrow", Description: "Too few targeted keywords limit ad reach"},
			{ID: HypCompetitor, Label: "Competitor pressure", Description: "Strong competitors suppress ad performance"},
			{ID: HypListingQuality, Label: "Listing quality", Description: "Product page quality hurts conversion and ad efficiency"},
			{ID: HypBroadWaste, Label: "Broad match waste", Description: "Broad-match keywords attract irrelevant traffic and waste spend"},
			{ID: HypInventory, Label: "Inventory risk", Description: "Low inventory constrains how aggressively ads can run"},
		},
		Tools: []ToolSpec{
			{
				Name: ToolAdsMetrics,
				Rules: map[HypothesisID][]Rule{
					HypBidTooLow: {
						{Kind: KindRatio, Feature: "avg_cpc_ratio", Threshold: 0.6, Direction: LowerBetter},
					},
					HypKeywordsNarrow: {
						{Kind: KindCount, Feature: "keyword_count", Threshold: 5, Direction: HigherBetter},
					},
					HypBroadWaste: {
						{Kind: KindThreshold, Feature: "broad_acos", Threshold: 0.6, Direction: HigherWorse},
					},
				},
			},
			{
				Name: ToolListingAudit,
				Rules: map[HypothesisID][]Rule{
					HypListingQuality: {
						{Kind: KindThreshold, Feature: "main_image_score", Threshold: 0.6, Direction: LowerWorse},
						{Kind: KindThreshold, Feature: "rating", Threshold: 4.0, Direction: LowerWorse},
						{Kind: KindCount, Feature: "reviews", Threshold: 50, Direction: HigherBetter},
					},
				},
			},
			{
				Name: ToolCompetitor,
				Rules: map[HypothesisID][]Rule{
					HypCompetitor: {
						{Kind: KindThreshold, Feature: "sponsored_share", Threshold: 0.35, Direction: HigherWorse},
						{Kind: KindGap, Feature: "comp_avg_price", RefFeature: "our_price", Threshold: -0.05, Direction: LowerWorse},
					},
				},
			},
			{
				Name: ToolInventory,
				Rules: map[HypothesisID][]Rule{
					HypInventory: {
						{Kind: KindThreshold, Feature: "days_of_inventory", Threshold: 14, Direction: LowerWorse},
						{Kind: KindCategorical, Feature: "stockout_risk", Categories: map[string]float64{
							"high":     0.9,
							"critical": 1.0,
						}},
					},
				},
			},
		},
	}
}

// DefaultTable builds the built-in table. It panics only on a programming
// error in DefaultSpec, which is covered by tests.
func DefaultTable() *Table {
	t, err := Build(DefaultSpec())
	if err != nil {
		panic(err)
	}
	return t
}
