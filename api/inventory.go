package api

import (
	"errors"
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type adjustInventoryRequest struct {
	FabricName string          `json:"fabric_name" binding:"required"`
	Change     decimal.Decimal `json:"change" binding:"required"`
	Reason     string          `json:"reason" binding:"required"`
}

// ListInventoryHandler returns the recent-activity ledger view.
func ListInventoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		limit := 50
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		logs, err := models.LoadInventoryLogs(ctx, limit)
		if err != nil {
			config.LogError(config.GetLogger(), "inventory.go", "ListInventoryHandler", "load logs", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load inventory logs"})
			return
		}

		threshold := models.GetSettingDecimal(ctx, models.SettingLowStockThreshold, models.DefaultLowStockThreshold)
		lowStock, err := models.GetLowStockFabrics(ctx, threshold)
		if err != nil {
			config.LogError(config.GetLogger(), "inventory.go", "ListInventoryHandler", "low stock fabrics", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load inventory logs"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"logs": logs, "low_stock": lowStock})
	}
}

// AdjustInventoryHandler applies a manual signed stock change. Negative
// results are allowed and returned as-is; the response flags them along
// with low-stock state so the UI can warn.
func AdjustInventoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var req adjustInventoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: fabric_name, change and reason are required"})
			return
		}

		fabric, entry, err := models.UpdateFabricInventory(ctx, req.FabricName, req.Change, req.Reason)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "fabric not found: " + req.FabricName})
				return
			}
			config.LogError(config.GetLogger(), "inventory.go", "AdjustInventoryHandler", "update inventory", req, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update inventory"})
			return
		}

		threshold := models.GetSettingDecimal(ctx, models.SettingLowStockThreshold, models.DefaultLowStockThreshold)
		lowStock := fabric.AvailableMeters.LessThan(threshold)
		if lowStock {
			config.LogWarn(config.GetLogger(), "inventory.go", "AdjustInventoryHandler", "low stock", gin.H{
				"fabric":           fabric.Name,
				"available_meters": fabric.AvailableMeters.String(),
				"threshold":        threshold.String(),
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"fabric":    fabric,
			"log":       entry,
			"low_stock": lowStock,
		})
	}
}
