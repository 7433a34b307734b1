package api

import (
	"errors"
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/utils"
	"github.com/gin-gonic/gin"
)

// ListFabricsHandler returns the catalog with the dashboard summary numbers.
func ListFabricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		fabrics, err := models.ListFabrics(ctx)
		if err != nil {
			config.LogError(config.GetLogger(), "fabrics.go", "ListFabricsHandler", "list fabrics", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load fabrics"})
			return
		}

		totalValue, err := models.CalculateInventoryValue(ctx)
		if err != nil {
			config.LogError(config.GetLogger(), "fabrics.go", "ListFabricsHandler", "inventory value", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load fabrics"})
			return
		}

		threshold := models.GetSettingDecimal(ctx, models.SettingLowStockThreshold, models.DefaultLowStockThreshold)
		lowStock, err := models.GetLowStockFabrics(ctx, threshold)
		if err != nil {
			config.LogError(config.GetLogger(), "fabrics.go", "ListFabricsHandler", "low stock fabrics", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load fabrics"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"fabrics":             fabrics,
			"total_value":         totalValue,
			"low_stock":           lowStock,
			"low_stock_threshold": threshold,
		})
	}
}

func CreateFabricHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewFabric
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		fabric, err := models.CreateFabric(c.Request.Context(), input)
		if err != nil {
			config.LogError(config.GetLogger(), "fabrics.go", "CreateFabricHandler", "create fabric", input, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add fabric"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "fabric": fabric})
	}
}

func UpdateFabricHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid fabric id"})
			return
		}

		var input models.UpdateFabricInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		fabric, err := models.UpdateFabric(c.Request.Context(), id, input)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "fabric not found"})
				return
			}
			config.LogError(config.GetLogger(), "fabrics.go", "UpdateFabricHandler", "update fabric", input, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update fabric"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "fabric": fabric})
	}
}

func DeleteFabricHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid fabric id"})
			return
		}

		if err := models.DeleteFabric(c.Request.Context(), id); err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "fabric not found"})
				return
			}
			config.LogError(config.GetLogger(), "fabrics.go", "DeleteFabricHandler", "delete fabric", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete fabric"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
