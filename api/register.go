package api

import (
	"net/http"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/shopify"
	"github.com/gin-gonic/gin"
)

type registerWebhookRequest struct {
	CallbackURL string `json:"callback_url" binding:"required,url"`
}

func ListWebhooksHandler(client *shopify.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		webhooks, err := client.ListWebhookSubscriptions(c.Request.Context())
		if err != nil {
			config.LogError(config.GetLogger(), "register.go", "ListWebhooksHandler", "list webhooks", nil, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch webhooks"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"webhooks": webhooks})
	}
}

func RegisterWebhookHandler(client *shopify.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerWebhookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "callback_url is required"})
			return
		}

		webhook, err := client.CreateOrderWebhook(c.Request.Context(), req.CallbackURL)
		if err != nil {
			config.LogError(config.GetLogger(), "register.go", "RegisterWebhookHandler", "create webhook", req, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"webhook": webhook,
			"message": "Webhook registered successfully",
		})
	}
}

func DeleteWebhookHandler(client *shopify.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Query("id")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "webhook id is required"})
			return
		}

		deletedId, err := client.DeleteWebhookSubscription(c.Request.Context(), id)
		if err != nil {
			config.LogError(config.GetLogger(), "register.go", "DeleteWebhookHandler", "delete webhook", id, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "deleted_id": deletedId})
	}
}
