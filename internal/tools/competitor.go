package tools

import (
	"fmt"

	"github.com/avetrov/adscope/internal/rules"
	"github.com/avetrov/adscope/internal/scenario"
)

// Competitor analyzes the competitive landscape: price position relative to
// rivals and sponsored-placement pressure.
type Competitor struct{}

func (Competitor) Name() string { return rules.ToolCompetitor }

func (Competitor) Describe() string {
	return "analyzes competitive pressure: pricing position, sponsored share"
}

type competitorFixture struct {
	AvgCompetitorPrice  *float64 `json:"avg_competitor_price"`
	OurPrice            *float64 `json:"our_price"`
	TopCompetitorRating float64  `json:"top_competitor_rating"`
	SponsoredShare      float64  `json:"sponsored_share"`
	MarketSaturation    string   `json:"market_saturation"`
	BrandRecognition    string   `json:"brand_recognition"`
}

func (Competitor) Analyze(sc *scenario.Scenario, mode string) (map[string]any, map[string]any, error) {
	var fx competitorFixture
	if err := sc.Fixture("competitor.json", &fx); err != nil {
		return nil, nil, err
	}
	switch {
	case fx.AvgCompetitorPrice == nil:
		return nil, nil, fmt.Errorf("%w: avg_competitor_price", ErrMissingData)
	case fx.OurPrice == nil:
		return nil, nil, fmt.Errorf("%w: our_price", ErrMissingData)
	}

	priceGap := 0.0
	if *fx.OurPrice > 0 {
		priceGap = (*fx.AvgCompetitorPrice - *fx.OurPrice) / *fx.OurPrice
	}

	features := map[string]any{
		// Both raw prices are exposed so the gap rule can normalize them
		// itself; comp_price_gap stays for rule tables using the
		// precomputed form.
		"comp_avg_price":        *fx.AvgCompetitorPrice,
		"our_price":             *fx.OurPrice,
		"comp_price_gap":        priceGap,
		"sponsored_share":       fx.SponsoredShare,
		"top_competitor_rating": fx.TopCompetitorRating,
	}
	data := map[string]any{
		"avg_competitor_price": fmt.Sprintf("$%.2f", *fx.AvgCompetitorPrice),
		"our_price":            fmt.Sprintf("$%.2f", *fx.OurPrice),
		"price_gap":            fmt.Sprintf("%+.1f%%", priceGap*100),
		"sponsored_share":      fmt.Sprintf("%.1f%%", fx.SponsoredShare*100),
		"price_position":       pricePosition(priceGap),
		"competitive_pressure": competitivePressure(fx),
	}
	return features, data, nil
}

func pricePosition(gap float64) string {
	switch {
	case gap > 0.1:
		return "price advantage"
	case gap > -0.05:
		return "price parity"
	case gap > -0.15:
		return "price disadvantage"
	default:
		return "severe price disadvantage"
	}
}

func competitivePressure(fx competitorFixture) string {
	score := 0
	if fx.SponsoredShare > 0.4 {
		score += 2
	} else if fx.SponsoredShare > 0.25 {
		score++
	}
	if fx.TopCompetitorRating >= 4.5 {
		score++
	}
	switch fx.MarketSaturation {
	case "high":
		score += 2
	case "medium":
		score++
	}
	if fx.BrandRecognition == "low" {
		score++
	}
	switch {
	case score >= 4:
		return "high"
	case score >= 2:
		return "medium"
	default:
		return "low"
	}
}
