package workflow

import (
	"context"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"github.com/shopspring/decimal"
)

// DBStore backs InventoryStore with the models package.
type DBStore struct{}

func (DBStore) LoadFabrics(ctx context.Context) ([]models.Fabric, error) {
	return models.ListFabrics(ctx)
}

func (DBStore) UpdateFabricInventory(ctx context.Context, name string, change decimal.Decimal, reason string) (*models.Fabric, *models.InventoryLog, error) {
	return models.UpdateFabricInventory(ctx, name, change, reason)
}

func (DBStore) IsOrderProcessed(ctx context.Context, shopifyOrderId string) (bool, error) {
	return models.IsOrderProcessed(ctx, shopifyOrderId)
}

func (DBStore) MarkOrderProcessed(ctx context.Context, shopifyOrderId string, orderName string, totalFabricCost decimal.Decimal, usage models.FabricUsageMap) error {
	_, err := models.MarkOrderProcessed(ctx, shopifyOrderId, orderName, totalFabricCost, usage)
	return err
}

// DBSettings backs SettingSource with the settings table.
type DBSettings struct{}

func (DBSettings) GetSettingDecimal(ctx context.Context, key string, fallback decimal.Decimal) decimal.Decimal {
	return models.GetSettingDecimal(ctx, key, fallback)
}
