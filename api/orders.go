package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/shopify"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type orderLineWithCost struct {
	Title      string          `json:"title"`
	Quantity   int             `json:"quantity"`
	FabricCost decimal.Decimal `json:"fabric_cost"`
}

type orderWithFabricCost struct {
	Id              string              `json:"id"`
	Name            string              `json:"name"`
	CreatedAt       string              `json:"created_at"`
	TotalPrice      string              `json:"total_price"`
	TotalFabricCost decimal.Decimal     `json:"total_fabric_cost"`
	LineItems       []orderLineWithCost `json:"line_items"`
	Processed       bool                `json:"processed"`
}

func toOrderWithFabricCost(ctx context.Context, order shopify.Order, fabrics []models.Fabric, printCost decimal.Decimal) orderWithFabricCost {
	out := orderWithFabricCost{
		Id:              order.Id,
		Name:            order.Name,
		CreatedAt:       order.CreatedAt,
		TotalPrice:      order.TotalPrice(),
		TotalFabricCost: decimal.Zero,
		LineItems:       make([]orderLineWithCost, 0, len(order.LineItems.Edges)),
	}

	for _, edge := range order.LineItems.Edges {
		item := edge.Node
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}

		lineCost := decimal.Zero
		if item.Product != nil && item.Product.Metafield != nil {
			req := models.ParseFabricRequirements(item.Product.Metafield.Value)
			unitCost, _ := models.CalculateFabricCost(req, fabrics, printCost)
			lineCost = unitCost.Mul(decimal.NewFromInt(int64(quantity)))
		}

		out.TotalFabricCost = out.TotalFabricCost.Add(lineCost)
		out.LineItems = append(out.LineItems, orderLineWithCost{
			Title:      item.Title,
			Quantity:   quantity,
			FabricCost: lineCost,
		})
	}

	processed, err := models.IsOrderProcessed(ctx, numericIdFromGID(order.Id))
	if err != nil {
		config.LogError(config.GetLogger(), "orders.go", "toOrderWithFabricCost", "processed lookup", order.Id, err)
	}
	out.Processed = processed
	return out
}

// numericIdFromGID extracts the trailing numeric id from an Admin API gid,
// e.g. gid://shopify/Order/123 -> "123". Webhook deliveries carry the
// numeric form, so processed_orders is keyed on it.
func numericIdFromGID(gid string) string {
	if idx := strings.LastIndex(gid, "/"); idx >= 0 {
		return gid[idx+1:]
	}
	return gid
}

// ListOrdersHandler returns recent Shopify orders with fabric cost derived
// from the line items' embedded requirement metafields. One fabrics
// snapshot serves the whole listing.
func ListOrdersHandler(client *shopify.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		limit := 50
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		orders, err := client.FetchOrders(ctx, limit)
		if err != nil {
			config.LogError(config.GetLogger(), "orders.go", "ListOrdersHandler", "fetch orders", nil, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch orders"})
			return
		}

		fabrics, err := models.ListFabrics(ctx)
		if err != nil {
			config.LogError(config.GetLogger(), "orders.go", "ListOrdersHandler", "list fabrics", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load fabrics"})
			return
		}
		printCost := models.GetSettingDecimal(ctx, models.SettingPrintCostPerMeter, models.DefaultPrintCostPerMeter)

		result := make([]orderWithFabricCost, 0, len(orders))
		for _, order := range orders {
			result = append(result, toOrderWithFabricCost(ctx, order, fabrics, printCost))
		}
		c.JSON(http.StatusOK, gin.H{"orders": result})
	}
}

// ListProcessedOrdersHandler returns the reconciliation history straight
// from processed_orders; it needs no Shopify round trip.
func ListProcessedOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 50
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		orders, err := models.LoadProcessedOrders(c.Request.Context(), limit)
		if err != nil {
			config.LogError(config.GetLogger(), "orders.go", "ListProcessedOrdersHandler", "load processed orders", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load processed orders"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

// GetOrderHandler returns one order by numeric id or gid.
func GetOrderHandler(client *shopify.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id := c.Param("id")
		if numericIdPattern.MatchString(id) {
			id = "gid://shopify/Order/" + id
		}

		order, err := client.FetchOrderById(ctx, id)
		if err != nil {
			config.LogError(config.GetLogger(), "orders.go", "GetOrderHandler", "fetch order", id, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch order"})
			return
		}
		if order == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		fabrics, err := models.ListFabrics(ctx)
		if err != nil {
			config.LogError(config.GetLogger(), "orders.go", "GetOrderHandler", "list fabrics", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load fabrics"})
			return
		}
		printCost := models.GetSettingDecimal(ctx, models.SettingPrintCostPerMeter, models.DefaultPrintCostPerMeter)

		c.JSON(http.StatusOK, gin.H{"order": toOrderWithFabricCost(ctx, *order, fabrics, printCost)})
	}
}
