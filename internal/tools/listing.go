package tools

import (
	"fmt"

	"github.com/avetrov/adscope/internal/rules"
	"github.com/avetrov/adscope/internal/scenario"
)

// ListingAudit checks product page quality: imagery, rating, reviews and
// content completeness, the drivers behind the listing-quality hypothesis.
type ListingAudit struct{}

func (ListingAudit) Name() string { return rules.ToolListingAudit }

func (ListingAudit) Describe() string {
	return "audits product page quality: images, rating, reviews, content"
}

type listingFixture struct {
	MainImageScore        *float64 `json:"main_image_score"`
	Rating                *float64 `json:"rating"`
	Reviews               *float64 `json:"reviews"`
	APlusContent          bool     `json:"a_plus_content"`
	TitleKeywordCoverage  float64  `json:"title_keyword_coverage"`
	BulletPointsCount     float64  `json:"bullet_points_count"`
}

func (ListingAudit) Analyze(sc *scenario.Scenario, mode string) (map[string]any, map[string]any, error) {
	var fx listingFixture
	if err := sc.Fixture("listing_audit.json", &fx); err != nil {
		return nil, nil, err
	}
	switch {
	case fx.MainImageScore == nil:
		return nil, nil, fmt.Errorf("%w: main_image_score", ErrMissingData)
	case fx.Rating == nil:
		return nil, nil, fmt.Errorf("%w: rating", ErrMissingData)
	case fx.Reviews == nil:
		return nil, nil, fmt.Errorf("%w: reviews", ErrMissingData)
	}

	quality := listingQualityScore(fx)

	features := map[string]any{
		"main_image_score":       *fx.MainImageScore,
		"rating":                 *fx.Rating,
		"reviews":                *fx.Reviews,
		"a_plus":                 fx.APlusContent,
		"title_keyword_coverage": fx.TitleKeywordCoverage,
		"bullet_points_count":    fx.BulletPointsCount,
		"quality_score":          quality,
	}
	data := map[string]any{
		"main_image_score": fmt.Sprintf("%.2f", *fx.MainImageScore),
		"rating":           fmt.Sprintf("%.1f", *fx.Rating),
		"reviews":          int(*fx.Reviews),
		"a_plus_content":   fx.APlusContent,
		"quality_score":    fmt.Sprintf("%.0f/100", quality),
		"suggestions":      listingSuggestions(fx),
	}
	return features, data, nil
}

// listingQualityScore aggregates page quality into 0..100: main image 25%,
// rating 20%, reviews 15% (100 reviews saturate), A+ content 15%, title
// coverage 15%, bullet points 10% (5 saturate).
func listingQualityScore(fx listingFixture) float64 {
	score := *fx.MainImageScore * 25
	score += *fx.Rating / 5.0 * 20
	score += minf(*fx.Reviews/100, 1) * 15
	if fx.APlusContent {
		score += 15
	}
	score += fx.TitleKeywordCoverage * 15
	score += minf(fx.BulletPointsCount/5, 1) * 10
	return minf(score, 100)
}

func listingSuggestions(fx listingFixture) []string {
	var out []string
	if *fx.MainImageScore < 0.7 {
		out = append(out, "improve main image quality")
	}
	if *fx.Rating < 4.0 {
		out = append(out, "raise product rating")
	}
	if *fx.Reviews < 50 {
		out = append(out, "grow review count")
	}
	if !fx.APlusContent {
		out = append(out, "add A+ content")
	}
	if fx.TitleKeywordCoverage < 0.8 {
		out = append(out, "improve title keyword coverage")
	}
	if fx.BulletPointsCount < 5 {
		out = append(out, "flesh out bullet points")
	}
	return out
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
