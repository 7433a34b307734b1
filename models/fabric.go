package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Fabric struct {
	ID              int             `gorm:"primary_key" json:"id"`
	Name            string          `gorm:"size:100;not null;index" json:"name" binding:"required"`
	CostPerMeter    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_per_meter"`
	AvailableMeters decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"available_meters"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewFabric struct {
	Name            string          `json:"name" binding:"required"`
	CostPerMeter    decimal.Decimal `json:"cost_per_meter" binding:"gte=0"`
	AvailableMeters decimal.Decimal `json:"available_meters"`
}

type UpdateFabricInput struct {
	Name            *string          `json:"name"`
	CostPerMeter    *decimal.Decimal `json:"cost_per_meter"`
	AvailableMeters *decimal.Decimal `json:"available_meters"`
}

// ListFabrics returns all fabrics ordered by name.
func ListFabrics(ctx context.Context) ([]Fabric, error) {
	db := config.GetDB()
	fabrics := make([]Fabric, 0)
	if err := db.WithContext(ctx).Order("name").Find(&fabrics).Error; err != nil {
		return nil, err
	}
	return fabrics, nil
}

func GetFabric(ctx context.Context, id int) (*Fabric, error) {
	db := config.GetDB()
	var fabric Fabric
	if err := db.WithContext(ctx).First(&fabric, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &fabric, nil
}

func CreateFabric(ctx context.Context, input NewFabric) (*Fabric, error) {
	db := config.GetDB()
	fabric := Fabric{
		Name:            strings.ToLower(strings.TrimSpace(input.Name)),
		CostPerMeter:    input.CostPerMeter,
		AvailableMeters: input.AvailableMeters,
	}
	if err := db.WithContext(ctx).Create(&fabric).Error; err != nil {
		return nil, err
	}
	return &fabric, nil
}

func UpdateFabric(ctx context.Context, id int, input UpdateFabricInput) (*Fabric, error) {
	db := config.GetDB()

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = strings.ToLower(strings.TrimSpace(*input.Name))
	}
	if input.CostPerMeter != nil {
		updates["cost_per_meter"] = *input.CostPerMeter
	}
	if input.AvailableMeters != nil {
		updates["available_meters"] = *input.AvailableMeters
	}

	if len(updates) > 0 {
		result := db.WithContext(ctx).Model(&Fabric{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, utils.ErrorRecordNotFound
		}
	}
	return GetFabric(ctx, id)
}

// DeleteFabric removes the fabric row only. Ledger entries keep the
// denormalized fabric name, so history survives the delete.
func DeleteFabric(ctx context.Context, id int) error {
	db := config.GetDB()
	result := db.WithContext(ctx).Delete(&Fabric{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

// UpdateFabricInventory applies a signed change to a fabric's available
// meters and appends the matching ledger entry in the same transaction.
// Negative balances are allowed; callers surface them, the store never
// rejects them. Returns ErrorRecordNotFound (and writes nothing) when no
// fabric matches the name.
func UpdateFabricInventory(ctx context.Context, name string, change decimal.Decimal, reason string) (*Fabric, *InventoryLog, error) {
	db := config.GetDB()

	var fabric Fabric
	var entry InventoryLog

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
			First(&fabric).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}

		newMeters := fabric.AvailableMeters.Add(change)
		if err := tx.Model(&Fabric{}).Where("id = ?", fabric.ID).
			Update("available_meters", newMeters).Error; err != nil {
			return err
		}
		fabric.AvailableMeters = newMeters

		entry = InventoryLog{
			FabricId:     fabric.ID,
			FabricName:   fabric.Name,
			ChangeAmount: change,
			Reason:       reason,
		}
		// Ledger append and stock mutation commit or roll back together.
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &fabric, &entry, nil
}

// GetLowStockFabrics returns fabrics strictly under the threshold, lowest first.
func GetLowStockFabrics(ctx context.Context, threshold decimal.Decimal) ([]Fabric, error) {
	db := config.GetDB()
	fabrics := make([]Fabric, 0)
	err := db.WithContext(ctx).
		Where("available_meters < ?", threshold).
		Order("available_meters").
		Find(&fabrics).Error
	if err != nil {
		return nil, err
	}
	return fabrics, nil
}

// CalculateInventoryValue sums cost_per_meter * available_meters over all fabrics.
func CalculateInventoryValue(ctx context.Context) (decimal.Decimal, error) {
	fabrics, err := ListFabrics(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, fabric := range fabrics {
		total = total.Add(fabric.CostPerMeter.Mul(fabric.AvailableMeters))
	}
	return total, nil
}
