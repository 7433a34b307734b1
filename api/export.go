package api

import (
	"fmt"
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportFabricsHandler writes the current stock levels as an xlsx report.
func ExportFabricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		fabrics, err := models.ListFabrics(ctx)
		if err != nil {
			config.LogError(config.GetLogger(), "export.go", "ExportFabricsHandler", "list fabrics", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load fabrics"})
			return
		}

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Fabrics"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"Name", "Cost per meter", "Available meters", "Stock value", "Last updated"}
		for i, header := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, header)
		}

		for row, fabric := range fabrics {
			values := []interface{}{
				fabric.Name,
				fabric.CostPerMeter.InexactFloat64(),
				fabric.AvailableMeters.InexactFloat64(),
				fabric.CostPerMeter.Mul(fabric.AvailableMeters).InexactFloat64(),
				fabric.UpdatedAt.Format("2006-01-02 15:04"),
			}
			for col, value := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(sheet, cell, value)
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			config.LogError(config.GetLogger(), "export.go", "ExportFabricsHandler", "write xlsx", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate report"})
			return
		}

		filename := fmt.Sprintf("fabric-stock-%s.xlsx", time.Now().Format("2006-01-02"))
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}
