package handlers

import (
	"net/http"
	"strings"

	"go-sales-ledger/internal/apperror"
	"go-sales-ledger/internal/models"

	"github.com/gin-gonic/gin"
)

// --- GET: /api/products ---
func (h *Handler) GetProducts(c *gin.Context) {
	products, err := h.store.ListProducts(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// --- POST: /api/products/update ---
// Creates or updates products by code. Rows without a code or name are skipped.
func (h *Handler) UpsertProducts(c *gin.Context) {
	var req []productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	products := make([]models.Product, 0, len(req))
	for _, p := range req {
		code := strings.TrimSpace(p.ProductCode)
		name := strings.TrimSpace(p.ProductName)
		if code == "" || name == "" {
			continue
		}
		if p.Price.IsNegative() {
			_ = c.Error(apperror.NewValidation("price cannot be negative").WithDetail("productCode", code))
			return
		}
		products = append(products, models.Product{ProductCode: code, ProductName: name, Price: p.Price})
	}

	saved, err := h.store.UpsertProducts(c.Request.Context(), products)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "results": saved})
}
