package tools

import (
	"fmt"

	"github.com/avetrov/adscope/internal/rules"
	"github.com/avetrov/adscope/internal/scenario"
)

// Inventory checks stock cover: remaining days of inventory and stockout
// risk, which bound how aggressively ads should run.
type Inventory struct{}

func (Inventory) Name() string { return rules.ToolInventory }

func (Inventory) Describe() string {
	return "checks inventory cover: days remaining, stockout risk, restock ETA"
}

type inventoryFixture struct {
	DaysOfInventory *float64 `json:"days_of_inventory"`
	RestockETADays  float64  `json:"restock_eta_days"`
	StockoutRisk    string   `json:"stockout_risk"`
	UnitsAvailable  float64  `json:"units_available"`
	AvgDailySales   float64  `json:"avg_daily_sales"`
}

func (Inventory) Analyze(sc *scenario.Scenario, mode string) (map[string]any, map[string]any, error) {
	var fx inventoryFixture
	if err := sc.Fixture("inventory.json", &fx); err != nil {
		return nil, nil, err
	}
	if fx.DaysOfInventory == nil {
		return nil, nil, fmt.Errorf("%w: days_of_inventory", ErrMissingData)
	}
	risk := fx.StockoutRisk
	if risk == "" {
		risk = "low"
	}

	features := map[string]any{
		"days_of_inventory": *fx.DaysOfInventory,
		"stockout_risk":     risk,
		"restock_eta_days":  fx.RestockETADays,
		"units_available":   fx.UnitsAvailable,
		"avg_daily_sales":   fx.AvgDailySales,
	}
	data := map[string]any{
		"days_of_inventory": fmt.Sprintf("%.0f days", *fx.DaysOfInventory),
		"units_available":   int(fx.UnitsAvailable),
		"stockout_risk":     risk,
		"restock_eta":       fmt.Sprintf("%.0f days", fx.RestockETADays),
		"health":            inventoryHealth(*fx.DaysOfInventory),
	}
	return features, data, nil
}

func inventoryHealth(days float64) string {
	switch {
	case days >= 30:
		return "healthy"
	case days >= 14:
		return "watch"
	case days >= 7:
		return "warning"
	default:
		return "critical"
	}
}
