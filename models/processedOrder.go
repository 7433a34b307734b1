package models

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
)

var ErrOrderAlreadyProcessed = errors.New("order already processed")

// FabricUsageMap stores meters consumed per fabric name as a JSON column.
type FabricUsageMap map[string]decimal.Decimal

func (m FabricUsageMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *FabricUsageMap) Scan(value interface{}) error {
	if value == nil {
		*m = FabricUsageMap{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for FabricUsageMap: %T", value)
	}
	return json.Unmarshal(data, m)
}

// ProcessedOrder is the idempotency marker for the order webhook. The unique
// index on shopify_order_id is the real duplicate guard: a racing second
// insert fails with MySQL 1062 and is reported as ErrOrderAlreadyProcessed.
type ProcessedOrder struct {
	ID              int             `gorm:"primary_key" json:"id"`
	ShopifyOrderId  string          `gorm:"size:64;not null;uniqueIndex" json:"shopify_order_id"`
	OrderName       string          `gorm:"size:100" json:"order_name"`
	TotalFabricCost decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_fabric_cost"`
	FabricUsage     FabricUsageMap  `gorm:"type:json" json:"fabric_usage"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// IsOrderProcessed reports whether the external order id has already been
// reconciled against inventory.
func IsOrderProcessed(ctx context.Context, shopifyOrderId string) (bool, error) {
	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&ProcessedOrder{}).
		Where("shopify_order_id = ?", shopifyOrderId).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkOrderProcessed finalizes a reconciliation. A duplicate-key failure
// means another delivery of the same order won the race; callers treat
// ErrOrderAlreadyProcessed as a no-op success, not a hard failure.
func MarkOrderProcessed(ctx context.Context, shopifyOrderId string, orderName string, totalFabricCost decimal.Decimal, usage FabricUsageMap) (*ProcessedOrder, error) {
	db := config.GetDB()
	record := ProcessedOrder{
		ShopifyOrderId:  shopifyOrderId,
		OrderName:       orderName,
		TotalFabricCost: totalFabricCost,
		FabricUsage:     usage,
	}
	if err := db.WithContext(ctx).Create(&record).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return nil, ErrOrderAlreadyProcessed
		}
		return nil, err
	}
	return &record, nil
}

// LoadProcessedOrders returns recent idempotency records, newest first.
func LoadProcessedOrders(ctx context.Context, limit int) ([]ProcessedOrder, error) {
	if limit <= 0 {
		limit = 50
	}
	db := config.GetDB()
	records := make([]ProcessedOrder, 0)
	err := db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
