package tools

import (
	"fmt"

	"github.com/avetrov/adscope/internal/rules"
	"github.com/avetrov/adscope/internal/scenario"
)

// AdsMetrics analyzes keyword or campaign performance and emits the CPC
// ratio, keyword coverage and broad-match ACOS features.
type AdsMetrics struct{}

func (AdsMetrics) Name() string { return rules.ToolAdsMetrics }

func (AdsMetrics) Describe() string {
	return "analyzes keyword and campaign performance: CPC ratio, ACOS, CTR, coverage"
}

type keywordRow struct {
	Keyword     string  `json:"keyword"`
	MatchType   string  `json:"match_type"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Spend       float64 `json:"spend"`
	Orders      float64 `json:"orders"`
	Sales       float64 `json:"sales"`
}

type keywordFixture struct {
	Keywords       []keywordRow `json:"keywords"`
	CategoryAvgCPC float64      `json:"category_avg_cpc"`
}

type campaignRow struct {
	Name   string  `json:"name"`
	Status string  `json:"status"`
	Spend  float64 `json:"spend"`
	Sales  float64 `json:"sales"`
}

type campaignFixture struct {
	Campaigns []campaignRow `json:"campaigns"`
}

func (AdsMetrics) Analyze(sc *scenario.Scenario, mode string) (map[string]any, map[string]any, error) {
	if mode == "campaign" {
		return analyzeCampaigns(sc)
	}
	return analyzeKeywords(sc)
}

func analyzeKeywords(sc *scenario.Scenario) (map[string]any, map[string]any, error) {
	var fx keywordFixture
	if err := sc.Fixture("ads_keywords.json", &fx); err != nil {
		return nil, nil, err
	}
	if len(fx.Keywords) == 0 {
		return nil, nil, fmt.Errorf("%w: keywords", ErrMissingData)
	}

	var impressions, clicks, spend, sales float64
	var broadSpend, broadSales float64
	for _, kw := range fx.Keywords {
		impressions += kw.Impressions
		clicks += kw.Clicks
		spend += kw.Spend
		sales += kw.Sales
		if kw.MatchType == "broad" {
			broadSpend += kw.Spend
			broadSales += kw.Sales
		}
	}

	avgCPC := safeDiv(spend, clicks)
	ctr := safeDiv(clicks, impressions)
	acos := safeDiv(spend, sales)
	broadACOS := safeDiv(broadSpend, broadSales)
	cpcRatio := 1.0
	if fx.CategoryAvgCPC > 0 {
		cpcRatio = avgCPC / fx.CategoryAvgCPC
	}

	features := map[string]any{
		"avg_cpc_ratio":     cpcRatio,
		"keyword_count":     float64(len(fx.Keywords)),
		"broad_acos":        broadACOS,
		"overall_ctr":       ctr,
		"overall_acos":      acos,
		"total_impressions": impressions,
		"total_clicks":      clicks,
	}
	data := map[string]any{
		"impressions":   impressions,
		"clicks":        clicks,
		"ctr":           fmt.Sprintf("%.3f", ctr),
		"acos":          fmt.Sprintf("%.2f", acos),
		"keyword_count": len(fx.Keywords),
	}
	return features, data, nil
}

func analyzeCampaigns(sc *scenario.Scenario) (map[string]any, map[string]any, error) {
	var fx campaignFixture
	if err := sc.Fixture("ads_campaign.json", &fx); err != nil {
		return nil, nil, err
	}
	if len(fx.Campaigns) == 0 {
		return nil, nil, fmt.Errorf("%w: campaigns", ErrMissingData)
	}

	var spend, sales float64
	active := 0
	for _, c := range fx.Campaigns {
		spend += c.Spend
		sales += c.Sales
		if c.Status == "enabled" {
			active++
		}
	}
	acos := safeDiv(spend, sales)

	features := map[string]any{
		"campaign_count":        float64(len(fx.Campaigns)),
		"active_campaign_count": float64(active),
		"campaign_acos":         acos,
		"avg_campaign_spend":    spend / float64(len(fx.Campaigns)),
	}
	data := map[string]any{
		"campaigns": len(fx.Campaigns),
		"active":    active,
		"acos":      fmt.Sprintf("%.2f", acos),
		"spend":     fmt.Sprintf("$%.2f", spend),
	}
	return features, data, nil
}

func safeDiv(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}
