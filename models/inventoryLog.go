package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"github.com/shopspring/decimal"
)

// InventoryLog is the append-only ledger of stock changes. Rows are created
// exclusively by UpdateFabricInventory and are never updated or deleted.
type InventoryLog struct {
	ID           int             `gorm:"primary_key" json:"id"`
	FabricId     int             `gorm:"index;not null" json:"fabric_id"`
	FabricName   string          `gorm:"size:100;not null" json:"fabric_name"`
	ChangeAmount decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"change_amount"`
	Reason       string          `gorm:"type:text" json:"reason"`
	CreatedAt    time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

// LoadInventoryLogs returns the most recent ledger entries, newest first.
func LoadInventoryLogs(ctx context.Context, limit int) ([]InventoryLog, error) {
	if limit <= 0 {
		limit = 50
	}
	db := config.GetDB()
	logs := make([]InventoryLog, 0)
	err := db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
