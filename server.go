package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bitbucket.org/mmdatafocus/fabric_backend/api"
	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/shopify"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func shopifyUnavailableHandler(err error) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shopify client not configured: " + err.Error()})
	}
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Shutdown coordination.
	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so Cloud Run considers the revision healthy.
	// Until the DB is ready, app endpoints return 503.
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// Production-safe CORS: explicit allowlist via CORS_ALLOWED_ORIGINS in
	// production, allow-all otherwise.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")

	r.Use(cors.New(corsConfig))
	r.Use(gin.Recovery())

	shopifyClient, shopifyErr := shopify.NewClientFromEnv()
	if shopifyErr != nil {
		logger.WithFields(logrus.Fields{"field": "shopify"}).
			Warn("shopify client not configured: " + shopifyErr.Error())
	}

	r.GET("/api/fabrics", api.ListFabricsHandler())
	r.POST("/api/fabrics", api.CreateFabricHandler())
	r.GET("/api/fabrics/export", api.ExportFabricsHandler())
	r.PUT("/api/fabrics/:id", api.UpdateFabricHandler())
	r.DELETE("/api/fabrics/:id", api.DeleteFabricHandler())

	r.GET("/api/inventory", api.ListInventoryHandler())
	r.POST("/api/inventory", api.AdjustInventoryHandler())

	r.GET("/api/orders/processed", api.ListProcessedOrdersHandler())

	r.GET("/api/settings", api.GetSettingsHandler())
	r.PUT("/api/settings", api.UpdateSettingHandler())

	if shopifyErr != nil {
		unavailable := shopifyUnavailableHandler(shopifyErr)
		r.GET("/api/products", unavailable)
		r.GET("/api/products/:id", unavailable)
		r.GET("/api/orders", unavailable)
		r.GET("/api/orders/:id", unavailable)
		r.GET("/api/webhooks/register", unavailable)
		r.POST("/api/webhooks/register", unavailable)
		r.DELETE("/api/webhooks/register", unavailable)
		r.POST("/api/webhooks/order", unavailable)
	} else {
		r.GET("/api/products", api.ListProductsHandler(shopifyClient))
		r.GET("/api/products/:id", api.GetProductHandler(shopifyClient))
		r.GET("/api/orders", api.ListOrdersHandler(shopifyClient))
		r.GET("/api/orders/:id", api.GetOrderHandler(shopifyClient))
		r.GET("/api/webhooks/register", api.ListWebhooksHandler(shopifyClient))
		r.POST("/api/webhooks/register", api.RegisterWebhookHandler(shopifyClient))
		r.DELETE("/api/webhooks/register", api.DeleteWebhookHandler(shopifyClient))
		r.POST("/api/webhooks/order", api.OrderWebhookHandler(shopifyClient))
	}
	r.GET("/api/webhooks/order", api.WebhookStatusHandler())

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()

	// AutoMigrate can run DDL that blocks tables; allow running migrations as
	// a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
		if err := models.SeedDefaultSettings(context.Background()); err != nil {
			logger.WithFields(logrus.Fields{"field": "settings"}).
				Error("failed to seed default settings: " + err.Error())
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).
			Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	log.Println("Server started successfully")

	// Block until shutdown or server error.
	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).
				Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Drain HTTP requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).
			Error("graceful shutdown failed: " + err.Error())
	}
}
