package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/shopify"
	"bitbucket.org/mmdatafocus/fabric_backend/workflow"
	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// verifyWebhookSignature checks the Shopify HMAC header against the raw
// body. An empty secret disables verification (logged once per request) so
// local setups without SHOPIFY_WEBHOOK_SECRET still work.
func verifyWebhookSignature(body []byte, signature string) bool {
	if config.SkipWebhookVerification() {
		return true
	}
	secret := os.Getenv("SHOPIFY_WEBHOOK_SECRET")
	if secret == "" {
		config.LogWarn(config.GetLogger(), "webhook.go", "verifyWebhookSignature",
			"SHOPIFY_WEBHOOK_SECRET not set, skipping verification", nil)
		return true
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// OrderWebhookHandler receives orders/create deliveries. It responds 200
// for both fresh and duplicate orders so Shopify stops redelivering; only
// unparseable payloads (400) and persistence failures (500) are errors.
func OrderWebhookHandler(client *shopify.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		correlationId := uuid.NewString()

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			config.LogError(logger, "webhook.go", "OrderWebhookHandler", "read body", nil, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}

		if !verifyWebhookSignature(body, c.GetHeader("X-Shopify-Hmac-Sha256")) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}

		var payload shopify.OrderWebhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			config.LogError(logger, "webhook.go", "OrderWebhookHandler", "unmarshal payload", string(body), err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		if payload.Id == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing order id"})
			return
		}

		orderId := strconv.FormatInt(payload.Id, 10)
		orderName := payload.Name
		if orderName == "" {
			orderName = "#" + strconv.FormatInt(payload.OrderNumber, 10)
		}

		config.LogInfo(logger, "webhook.go", "OrderWebhookHandler", "order received", gin.H{
			"order_id":       orderId,
			"order_name":     orderName,
			"correlation_id": correlationId,
		})

		// Best-effort per-order lock to narrow the window where two parallel
		// deliveries of the same order both pass the duplicate check. The
		// unique index on processed_orders stays the real guard; if Redis is
		// down or the lock is held, proceed anyway.
		if locker := config.GetRedisLock(); locker != nil {
			lock, lockErr := locker.Obtain(c.Request.Context(), "webhook:order:"+orderId, 30*time.Second, nil)
			if lockErr == nil {
				defer lock.Release(config.GetRedisContext())
			} else if lockErr != redislock.ErrNotObtained {
				config.LogError(logger, "webhook.go", "OrderWebhookHandler", "obtain order lock", orderId, lockErr)
			}
		}

		event := workflow.OrderEvent{
			OrderId:   orderId,
			OrderName: orderName,
			LineItems: make([]workflow.OrderLineItem, 0, len(payload.LineItems)),
		}
		for _, item := range payload.LineItems {
			title := item.Title
			if title == "" {
				title = "Unknown Product"
			}
			event.LineItems = append(event.LineItems, workflow.OrderLineItem{
				ProductId: item.ProductId,
				Title:     title,
				Quantity:  item.Quantity,
			})
		}

		reconciler := workflow.NewReconciler(client)
		result, err := reconciler.ProcessOrderEvent(c.Request.Context(), event)
		if err != nil {
			config.LogError(logger, "webhook.go", "OrderWebhookHandler", "process order event", orderId, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":           true,
			"outcome":           result.Outcome,
			"order":             result.OrderName,
			"message":           result.Message,
			"fabric_changes":    result.FabricChanges,
			"total_fabric_cost": result.TotalFabricCost,
		})
	}
}

// WebhookStatusHandler lets operators probe the endpoint from a browser.
func WebhookStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ready",
			"message": "This endpoint receives order notifications from Shopify",
		})
	}
}
