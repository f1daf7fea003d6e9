package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"

	"suits-world/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportHeaders = []string{
	"ID", "SKU", "Name", "Category", "Subcategory", "Status",
	"Price", "ComparePrice", "CostPrice", "Quantity", "StockStatus",
	"Featured", "CreatedAt", "UpdatedAt",
}

// ExportProducts serves GET /products/export: every product, any status, as xlsx.
func (h *ProductHandler) ExportProducts(c *gin.Context) {
	products, err := h.store.All(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "", "Error exporting products")
		return
	}

	file, err := buildProductWorkbook(products)
	if err != nil {
		h.respondError(c, err, "", "Error exporting products")
		return
	}

	filename := fmt.Sprintf("products-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Expires", "0")
	c.Status(http.StatusOK)

	if err := file.Write(c.Writer); err != nil {
		log.Printf("❌ failed to write product export: %v", err)
	}
}

func buildProductWorkbook(products []models.Product) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetString(h)
	}

	for i := range products {
		p := &products[i]
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID.Hex())
		row.AddCell().SetString(p.SKU)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Category)
		row.AddCell().SetString(p.Subcategory)
		row.AddCell().SetString(string(p.Status))
		row.AddCell().SetFloat(p.Price)
		optionalFloat(row.AddCell(), p.ComparePrice)
		optionalFloat(row.AddCell(), p.CostPrice)
		row.AddCell().SetInt(p.Inventory.Quantity)
		row.AddCell().SetString(string(p.StockStatus()))
		row.AddCell().SetString(strconv.FormatBool(p.Featured))
		row.AddCell().SetString(p.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(p.UpdatedAt.UTC().Format("2006-01-02 15:04:05"))
	}
	return file, nil
}

func optionalFloat(cell *xlsx.Cell, v *float64) {
	if v == nil {
		cell.SetString("")
		return
	}
	cell.SetFloat(*v)
}
