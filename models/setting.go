package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	SettingPrintCostPerMeter = "print_cost_per_meter"
	SettingLowStockThreshold = "low_stock_threshold"
)

var (
	DefaultPrintCostPerMeter = decimal.NewFromInt(25)
	DefaultLowStockThreshold = decimal.NewFromInt(10)
)

type Setting struct {
	Key         string    `gorm:"primary_key;size:64" json:"key"`
	Value       string    `gorm:"size:255;not null" json:"value"`
	Label       string    `gorm:"size:100" json:"label"`
	Description string    `gorm:"size:255" json:"description"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func settingCacheKey(key string) string {
	return "Setting:" + key
}

func LoadSettings(ctx context.Context) ([]Setting, error) {
	db := config.GetDB()
	settings := make([]Setting, 0)
	if err := db.WithContext(ctx).Order("`key`").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// GetSettingDecimal reads a numeric setting, falling back to the supplied
// default when the row is absent or unparseable. Values are cached in Redis;
// cache misses and Redis outages both fall through to the DB.
func GetSettingDecimal(ctx context.Context, key string, fallback decimal.Decimal) decimal.Decimal {
	var cached string
	exists, err := config.GetRedisObject(settingCacheKey(key), &cached)
	if err == nil && exists {
		if value, perr := utils.ParseDecimal(cached); perr == nil {
			return value
		}
	}

	db := config.GetDB()
	var setting Setting
	if err := db.WithContext(ctx).Where("`key` = ?", key).First(&setting).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			config.LogError(config.GetLogger(), "setting.go", "GetSettingDecimal", "load setting", key, err)
		}
		return fallback
	}

	value, err := utils.ParseDecimal(setting.Value)
	if err != nil {
		config.LogError(config.GetLogger(), "setting.go", "GetSettingDecimal", "parse setting value", setting, err)
		return fallback
	}

	if err := config.SetRedisObject(settingCacheKey(key), setting.Value, 0); err != nil {
		config.LogError(config.GetLogger(), "setting.go", "GetSettingDecimal", "cache setting", key, err)
	}
	return value
}

// UpdateSetting writes the value and busts the cache. Returns
// ErrorRecordNotFound for unknown keys; settings rows are seeded, not
// created through this path.
func UpdateSetting(ctx context.Context, key string, value string) (*Setting, error) {
	db := config.GetDB()

	result := db.WithContext(ctx).Model(&Setting{}).Where("`key` = ?", key).Update("value", value)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, utils.ErrorRecordNotFound
	}

	if err := config.RemoveRedisKey(settingCacheKey(key)); err != nil {
		config.LogError(config.GetLogger(), "setting.go", "UpdateSetting", "clear setting cache", key, err)
	}

	var setting Setting
	if err := db.WithContext(ctx).Where("`key` = ?", key).First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// SeedDefaultSettings inserts the known setting rows, skipping ones that
// already exist. Safe to run repeatedly.
func SeedDefaultSettings(ctx context.Context) error {
	db := config.GetDB()
	defaults := []Setting{
		{
			Key:         SettingPrintCostPerMeter,
			Value:       DefaultPrintCostPerMeter.String(),
			Label:       "Print cost per meter",
			Description: "Surcharge added to a fabric's cost per meter when the product is printed",
		},
		{
			Key:         SettingLowStockThreshold,
			Value:       DefaultLowStockThreshold.String(),
			Label:       "Low stock threshold",
			Description: "Fabrics with fewer available meters than this trigger a low stock warning",
		},
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&defaults).Error
}
