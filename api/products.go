package api

import (
	"net/http"
	"regexp"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/shopify"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// productWithFabricCost is a Shopify product joined with its per-unit
// fabric cost breakdown for the dashboard.
type productWithFabricCost struct {
	Id                 string                     `json:"id"`
	Title              string                     `json:"title"`
	Handle             string                     `json:"handle"`
	Status             string                     `json:"status"`
	Image              string                     `json:"image"`
	Price              string                     `json:"price"`
	FabricRequirements *models.FabricRequirements `json:"fabric_requirements"`
	FabricCost         decimal.Decimal            `json:"fabric_cost"`
	FabricBreakdown    []models.FabricCostLine    `json:"fabric_breakdown"`
}

func toProductWithFabricCost(product shopify.Product, fabrics []models.Fabric, printCostPerMeter decimal.Decimal) productWithFabricCost {
	req := models.ParseFabricRequirements(product.MetafieldValue())
	cost, breakdown := models.CalculateFabricCost(req, fabrics, printCostPerMeter)
	return productWithFabricCost{
		Id:                 product.Id,
		Title:              product.Title,
		Handle:             product.Handle,
		Status:             product.Status,
		Image:              product.FirstImageURL(),
		Price:              product.FirstVariantPrice(),
		FabricRequirements: req,
		FabricCost:         cost,
		FabricBreakdown:    breakdown,
	}
}

// ListProductsHandler returns active Shopify products with fabric costs
// computed against a single fabrics snapshot.
func ListProductsHandler(client *shopify.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		products, err := client.FetchProducts(ctx)
		if err != nil {
			config.LogError(config.GetLogger(), "products.go", "ListProductsHandler", "fetch products", nil, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch products"})
			return
		}

		fabrics, err := models.ListFabrics(ctx)
		if err != nil {
			config.LogError(config.GetLogger(), "products.go", "ListProductsHandler", "list fabrics", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load fabrics"})
			return
		}
		printCost := models.GetSettingDecimal(ctx, models.SettingPrintCostPerMeter, models.DefaultPrintCostPerMeter)

		result := make([]productWithFabricCost, 0, len(products))
		for _, product := range products {
			result = append(result, toProductWithFabricCost(product, fabrics, printCost))
		}
		c.JSON(http.StatusOK, gin.H{"products": result})
	}
}

var numericIdPattern = regexp.MustCompile(`^[0-9]+$`)

// GetProductHandler returns one product by numeric id or gid.
func GetProductHandler(client *shopify.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id := c.Param("id")
		if numericIdPattern.MatchString(id) {
			id = "gid://shopify/Product/" + id
		}

		product, err := client.FetchProductById(ctx, id)
		if err != nil {
			config.LogError(config.GetLogger(), "products.go", "GetProductHandler", "fetch product", id, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch product"})
			return
		}
		if product == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}

		fabrics, err := models.ListFabrics(ctx)
		if err != nil {
			config.LogError(config.GetLogger(), "products.go", "GetProductHandler", "list fabrics", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load fabrics"})
			return
		}
		printCost := models.GetSettingDecimal(ctx, models.SettingPrintCostPerMeter, models.DefaultPrintCostPerMeter)

		c.JSON(http.StatusOK, gin.H{"product": toProductWithFabricCost(*product, fabrics, printCost)})
	}
}
