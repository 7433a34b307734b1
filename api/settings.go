package api

import (
	"errors"
	"net/http"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/utils"
	"github.com/gin-gonic/gin"
)

type updateSettingRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

func GetSettingsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := models.LoadSettings(c.Request.Context())
		if err != nil {
			config.LogError(config.GetLogger(), "settings.go", "GetSettingsHandler", "load settings", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch settings"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"settings": settings})
	}
}

func UpdateSettingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateSettingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields: key, value"})
			return
		}

		// Both known settings are numeric; reject values the readers would
		// silently fall back on.
		if _, err := utils.ParseDecimal(req.Value); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "value must be numeric"})
			return
		}

		setting, err := models.UpdateSetting(c.Request.Context(), req.Key, req.Value)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "unknown setting: " + req.Key})
				return
			}
			config.LogError(config.GetLogger(), "settings.go", "UpdateSettingHandler", "update setting", req, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update setting"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "setting": setting})
	}
}
