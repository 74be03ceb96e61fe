package tools

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/avetrov/adscope/internal/scenario"
)

func TestCompetitor_ExposesRawPricesAndGap(t *testing.T) {
	sc := loadScenario(t)
	features, data, err := Competitor{}.Analyze(sc, "keyword")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got := numFeature(t, features, "comp_avg_price"); got != 27.5 {
		t.Fatalf("comp_avg_price = %v", got)
	}
	if got := numFeature(t, features, "our_price"); got != 26.9 {
		t.Fatalf("our_price = %v", got)
	}
	wantGap := (27.5 - 26.9) / 26.9
	if got := numFeature(t, features, "comp_price_gap"); math.Abs(got-wantGap) > 1e-9 {
		t.Fatalf("comp_price_gap = %v, want %v", got, wantGap)
	}
	if got := data["price_position"]; got != "price parity" {
		t.Fatalf("price_position = %v", got)
	}
}

func TestCompetitor_UndercutMarket(t *testing.T) {
	dir := t.TempDir()
	doc := `{
  "avg_competitor_price": 19.0,
  "our_price": 24.0,
  "top_competitor_rating": 4.7,
  "sponsored_share": 0.5,
  "market_saturation": "high",
  "brand_recognition": "low"
}`
	if err := os.WriteFile(filepath.Join(dir, "competitor.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	sc := &scenario.Scenario{Dir: dir}
	features, data, err := Competitor{}.Analyze(sc, "keyword")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got := numFeature(t, features, "comp_price_gap"); got >= -0.15 {
		t.Fatalf("comp_price_gap = %v, want severe undercut", got)
	}
	if got := data["price_position"]; got != "severe price disadvantage" {
		t.Fatalf("price_position = %v", got)
	}
	if got := data["competitive_pressure"]; got != "high" {
		t.Fatalf("competitive_pressure = %v", got)
	}
}

func TestCompetitor_MissingPricesIsMissingData(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "competitor.json"), []byte(`{"sponsored_share": 0.3}`), 0o644); err != nil {
		t.Fatal(err)
	}
	sc := &scenario.Scenario{Dir: dir}
	_, _, err := Competitor{}.Analyze(sc, "keyword")
	if !errors.Is(err, ErrMissingData) {
		t.Fatalf("err = %v, want ErrMissingData", err)
	}
}
