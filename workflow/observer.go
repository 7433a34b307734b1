package workflow

import (
	"context"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Observer receives reconciliation signals. It is injected so tests can
// assert on low-stock warnings and outcomes without scraping log output;
// signals are notifications only and never gate a mutation.
type Observer interface {
	LowStock(ctx context.Context, fabric models.Fabric, threshold decimal.Decimal)
	LineSkipped(ctx context.Context, orderId string, itemTitle string, reason string, err error)
	ReconcileOutcome(ctx context.Context, result Result)
}

// LogrusObserver is the production Observer: structured warnings and info
// lines through the shared logger.
type LogrusObserver struct {
	Logger *logrus.Logger
}

func NewLogrusObserver() *LogrusObserver {
	return &LogrusObserver{Logger: config.GetLogger()}
}

func (o *LogrusObserver) LowStock(ctx context.Context, fabric models.Fabric, threshold decimal.Decimal) {
	o.Logger.WithFields(logrus.Fields{
		"module":           "reconciliation",
		"fabric":           fabric.Name,
		"available_meters": fabric.AvailableMeters.String(),
		"threshold":        threshold.String(),
	}).Warn("low stock")
}

func (o *LogrusObserver) LineSkipped(ctx context.Context, orderId string, itemTitle string, reason string, err error) {
	fields := logrus.Fields{
		"module":   "reconciliation",
		"order_id": orderId,
		"item":     itemTitle,
		"reason":   reason,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	o.Logger.WithFields(fields).Info("line item skipped")
}

func (o *LogrusObserver) ReconcileOutcome(ctx context.Context, result Result) {
	o.Logger.WithFields(logrus.Fields{
		"module":            "reconciliation",
		"order_id":          result.OrderId,
		"order_name":        result.OrderName,
		"outcome":           string(result.Outcome),
		"total_fabric_cost": result.TotalFabricCost.String(),
		"fabric_changes":    result.FabricChanges,
	}).Info("order reconciled")
}
