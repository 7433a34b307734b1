package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FabricCostLine is one fabric's share of a product's per-unit cost.
type FabricCostLine struct {
	FabricName   string          `json:"fabric_name"`
	Meters       decimal.Decimal `json:"meters"`
	CostPerMeter decimal.Decimal `json:"cost_per_meter"`
	PrintCost    decimal.Decimal `json:"print_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

// CalculateFabricCost computes the per-unit fabric cost for a requirement
// against a fabrics snapshot. Pure function: same inputs, same output, no
// I/O. The caller supplies one consistent snapshot and may reuse it across
// a whole product list or order.
//
// A nil requirement yields zero cost and an empty breakdown. A fabric named
// in the requirement but missing from the snapshot contributes zero cost;
// unknown fabrics never fail the calculation. Fabric matching is
// case-insensitive. The breakdown preserves the requirement's line order.
func CalculateFabricCost(req *FabricRequirements, fabrics []Fabric, printCostPerMeter decimal.Decimal) (decimal.Decimal, []FabricCostLine) {
	breakdown := make([]FabricCostLine, 0)
	totalCost := decimal.Zero
	if req == nil {
		return totalCost, breakdown
	}

	for _, line := range req.Lines {
		costPerMeter := decimal.Zero
		for _, fabric := range fabrics {
			if strings.EqualFold(fabric.Name, line.FabricName) {
				costPerMeter = fabric.CostPerMeter
				break
			}
		}

		printCost := decimal.Zero
		if req.IsPrinted {
			printCost = printCostPerMeter
		}

		lineCost := line.Meters.Mul(costPerMeter.Add(printCost))
		breakdown = append(breakdown, FabricCostLine{
			FabricName:   line.FabricName,
			Meters:       line.Meters,
			CostPerMeter: costPerMeter,
			PrintCost:    printCost,
			TotalCost:    lineCost,
		})
		totalCost = totalCost.Add(lineCost)
	}

	return totalCost, breakdown
}
