package workflow

import (
	"context"
	"errors"
	"fmt"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/utils"
	"github.com/shopspring/decimal"
)

// OrderEvent is a decoded orders/create delivery.
type OrderEvent struct {
	OrderId   string
	OrderName string
	LineItems []OrderLineItem
}

type OrderLineItem struct {
	ProductId int64
	Title     string
	Quantity  int
}

type Outcome string

const (
	OutcomeProcessed Outcome = "PROCESSED"
	OutcomeDuplicate Outcome = "DUPLICATE"
)

// Result is the definitive outcome of one delivery. Duplicates are a
// success, not an error: at-least-once delivery from Shopify becomes
// effectively-once inventory effect.
type Result struct {
	Outcome         Outcome               `json:"outcome"`
	OrderId         string                `json:"order_id"`
	OrderName       string                `json:"order_name"`
	TotalFabricCost decimal.Decimal       `json:"total_fabric_cost"`
	FabricUsage     models.FabricUsageMap `json:"fabric_usage"`
	FabricChanges   []string              `json:"fabric_changes"`
	Message         string                `json:"message"`
}

// InventoryStore is the persistence surface reconciliation needs.
type InventoryStore interface {
	LoadFabrics(ctx context.Context) ([]models.Fabric, error)
	UpdateFabricInventory(ctx context.Context, name string, change decimal.Decimal, reason string) (*models.Fabric, *models.InventoryLog, error)
	IsOrderProcessed(ctx context.Context, shopifyOrderId string) (bool, error)
	MarkOrderProcessed(ctx context.Context, shopifyOrderId string, orderName string, totalFabricCost decimal.Decimal, usage models.FabricUsageMap) error
}

// RequirementSource fetches a product's raw fabric_requirements payload.
// *shopify.Client satisfies it.
type RequirementSource interface {
	FetchProductRequirement(ctx context.Context, productId int64) (string, error)
}

// SettingSource reads runtime-tunable numbers with fallback defaults.
type SettingSource interface {
	GetSettingDecimal(ctx context.Context, key string, fallback decimal.Decimal) decimal.Decimal
}

// Reconciler turns an order event into inventory deductions:
// RECEIVED -> CHECK_DUPLICATE -> (SKIPPED | PROCESSING) -> RECORDED.
type Reconciler struct {
	Store    InventoryStore
	Products RequirementSource
	Settings SettingSource
	Observer Observer
}

// NewReconciler wires the DB-backed store, the settings table and the logrus
// observer around the given product source.
func NewReconciler(products RequirementSource) *Reconciler {
	return &Reconciler{
		Store:    DBStore{},
		Products: products,
		Settings: DBSettings{},
		Observer: NewLogrusObserver(),
	}
}

// ProcessOrderEvent runs the state machine for one delivery.
//
// Per-item failures (unreachable product source, unparseable requirement,
// unknown fabric) skip that item or fabric and keep going; one bad line item
// never fails the whole order. Only a persistence failure at RECORDED
// returns an error.
func (r *Reconciler) ProcessOrderEvent(ctx context.Context, event OrderEvent) (*Result, error) {
	// CHECK_DUPLICATE
	processed, err := r.Store.IsOrderProcessed(ctx, event.OrderId)
	if err != nil {
		return nil, err
	}
	if processed {
		result := &Result{
			Outcome:         OutcomeDuplicate,
			OrderId:         event.OrderId,
			OrderName:       event.OrderName,
			TotalFabricCost: decimal.Zero,
			FabricUsage:     models.FabricUsageMap{},
			FabricChanges:   []string{},
			Message:         "Order already processed",
		}
		r.Observer.ReconcileOutcome(ctx, *result)
		return result, nil
	}

	// PROCESSING
	printCostPerMeter := r.Settings.GetSettingDecimal(ctx, models.SettingPrintCostPerMeter, models.DefaultPrintCostPerMeter)
	lowStockThreshold := r.Settings.GetSettingDecimal(ctx, models.SettingLowStockThreshold, models.DefaultLowStockThreshold)

	// One snapshot for the whole order; the calculator never re-fetches.
	fabrics, err := r.Store.LoadFabrics(ctx)
	if err != nil {
		return nil, err
	}

	totalFabricCost := decimal.Zero
	fabricUsage := models.FabricUsageMap{}
	fabricChanges := make([]string, 0)

	for _, item := range event.LineItems {
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}

		raw, err := r.Products.FetchProductRequirement(ctx, item.ProductId)
		if err != nil {
			r.Observer.LineSkipped(ctx, event.OrderId, item.Title, "requirement fetch failed", err)
			continue
		}
		req := models.ParseFabricRequirements(raw)
		if req == nil {
			r.Observer.LineSkipped(ctx, event.OrderId, item.Title, "no fabric requirement", nil)
			continue
		}

		unitCost, _ := models.CalculateFabricCost(req, fabrics, printCostPerMeter)
		totalFabricCost = totalFabricCost.Add(unitCost.Mul(decimal.NewFromInt(int64(quantity))))

		for _, line := range req.Lines {
			totalMeters := line.Meters.Mul(decimal.NewFromInt(int64(quantity)))
			reason := fmt.Sprintf("Order %s - %s x%d", event.OrderName, item.Title, quantity)

			fabric, _, err := r.Store.UpdateFabricInventory(ctx, line.FabricName, totalMeters.Neg(), reason)
			if err != nil {
				if errors.Is(err, utils.ErrorRecordNotFound) {
					r.Observer.LineSkipped(ctx, event.OrderId, item.Title, "fabric not found: "+line.FabricName, nil)
				} else {
					r.Observer.LineSkipped(ctx, event.OrderId, item.Title, "inventory update failed: "+line.FabricName, err)
				}
				continue
			}

			fabricUsage[line.FabricName] = fabricUsage[line.FabricName].Add(totalMeters)
			fabricChanges = append(fabricChanges, fmt.Sprintf("%s: -%sm", line.FabricName, totalMeters.String()))

			if fabric.AvailableMeters.LessThan(lowStockThreshold) {
				r.Observer.LowStock(ctx, *fabric, lowStockThreshold)
			}
		}
	}

	// RECORDED
	err = r.Store.MarkOrderProcessed(ctx, event.OrderId, event.OrderName, totalFabricCost, fabricUsage)
	if err != nil {
		if errors.Is(err, models.ErrOrderAlreadyProcessed) {
			// Lost the race to a parallel delivery that passed CHECK_DUPLICATE
			// at the same time. Its record stands; this run's deductions were
			// already applied, so report duplicate rather than failing.
			result := &Result{
				Outcome:         OutcomeDuplicate,
				OrderId:         event.OrderId,
				OrderName:       event.OrderName,
				TotalFabricCost: totalFabricCost,
				FabricUsage:     fabricUsage,
				FabricChanges:   fabricChanges,
				Message:         "Order recorded by a parallel delivery",
			}
			r.Observer.ReconcileOutcome(ctx, *result)
			return result, nil
		}
		return nil, err
	}

	result := &Result{
		Outcome:         OutcomeProcessed,
		OrderId:         event.OrderId,
		OrderName:       event.OrderName,
		TotalFabricCost: totalFabricCost,
		FabricUsage:     fabricUsage,
		FabricChanges:   fabricChanges,
		Message:         "Order processed",
	}
	r.Observer.ReconcileOutcome(ctx, *result)
	return result, nil
}
