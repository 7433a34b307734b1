package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func testFabrics() []Fabric {
	return []Fabric{
		{ID: 1, Name: "cotton", CostPerMeter: decimal.NewFromInt(50), AvailableMeters: decimal.NewFromInt(100)},
		{ID: 2, Name: "lining", CostPerMeter: decimal.NewFromInt(20), AvailableMeters: decimal.NewFromInt(40)},
	}
}

func TestCalculateFabricCostPlain(t *testing.T) {
	req := &FabricRequirements{
		Lines: []RequirementLine{{FabricName: "cotton", Meters: decimal.NewFromInt(2)}},
	}

	total, breakdown := CalculateFabricCost(req, testFabrics(), decimal.NewFromInt(25))
	if !total.Equal(decimal.NewFromInt(100)) {
		t.Errorf("total = %s, want 100", total)
	}
	if len(breakdown) != 1 {
		t.Fatalf("expected 1 breakdown line, got %d", len(breakdown))
	}
	if !breakdown[0].PrintCost.IsZero() {
		t.Errorf("plain product should carry no print cost, got %s", breakdown[0].PrintCost)
	}
}

func TestCalculateFabricCostPrinted(t *testing.T) {
	req := &FabricRequirements{
		Lines:     []RequirementLine{{FabricName: "cotton", Meters: decimal.NewFromInt(2)}},
		IsPrinted: true,
	}

	// 2 x (50 + 25)
	total, breakdown := CalculateFabricCost(req, testFabrics(), decimal.NewFromInt(25))
	if !total.Equal(decimal.NewFromInt(150)) {
		t.Errorf("total = %s, want 150", total)
	}
	if !breakdown[0].PrintCost.Equal(decimal.NewFromInt(25)) {
		t.Errorf("print cost = %s, want 25", breakdown[0].PrintCost)
	}
}

func TestCalculateFabricCostNilRequirement(t *testing.T) {
	total, breakdown := CalculateFabricCost(nil, testFabrics(), decimal.NewFromInt(25))
	if !total.IsZero() {
		t.Errorf("total = %s, want 0", total)
	}
	if breakdown == nil || len(breakdown) != 0 {
		t.Errorf("breakdown = %v, want empty non-nil slice", breakdown)
	}
}

func TestCalculateFabricCostUnknownFabric(t *testing.T) {
	req := &FabricRequirements{
		Lines: []RequirementLine{
			{FabricName: "cotton", Meters: decimal.NewFromInt(1)},
			{FabricName: "velvet", Meters: decimal.NewFromInt(3)},
		},
	}

	total, breakdown := CalculateFabricCost(req, testFabrics(), decimal.NewFromInt(25))
	if !total.Equal(decimal.NewFromInt(50)) {
		t.Errorf("total = %s, want 50 (unknown fabric contributes zero)", total)
	}
	if len(breakdown) != 2 {
		t.Fatalf("expected 2 breakdown lines, got %d", len(breakdown))
	}
	if !breakdown[1].TotalCost.IsZero() {
		t.Errorf("unknown fabric line cost = %s, want 0", breakdown[1].TotalCost)
	}
}

func TestCalculateFabricCostCaseInsensitive(t *testing.T) {
	req := &FabricRequirements{
		Lines: []RequirementLine{{FabricName: "Cotton", Meters: decimal.NewFromInt(2)}},
	}

	total, _ := CalculateFabricCost(req, testFabrics(), decimal.Zero)
	if !total.Equal(decimal.NewFromInt(100)) {
		t.Errorf("total = %s, want 100 (name match should ignore case)", total)
	}
}

func TestCalculateFabricCostPreservesLineOrder(t *testing.T) {
	req := &FabricRequirements{
		Lines: []RequirementLine{
			{FabricName: "lining", Meters: decimal.NewFromInt(1)},
			{FabricName: "cotton", Meters: decimal.NewFromInt(1)},
		},
	}

	_, breakdown := CalculateFabricCost(req, testFabrics(), decimal.Zero)
	if breakdown[0].FabricName != "lining" || breakdown[1].FabricName != "cotton" {
		t.Errorf("breakdown order %s, %s; want requirement order", breakdown[0].FabricName, breakdown[1].FabricName)
	}
}
