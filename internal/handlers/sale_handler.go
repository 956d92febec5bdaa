package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-sales-ledger/internal/apperror"
	"go-sales-ledger/internal/models"
	"go-sales-ledger/internal/sales"

	"github.com/gin-gonic/gin"
)

// --- POST: /api/sales ---
func (h *Handler) CreateSale(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	// Salespeople submit for themselves; admins may submit for anyone
	username, role := caller(c)
	if strings.TrimSpace(req.SalesPerson) == "" {
		req.SalesPerson = username
	}
	if role != models.RoleAdmin && req.SalesPerson != username {
		_ = c.Error(apperror.NewForbidden("Salespeople can only record their own sales"))
		return
	}

	date, err := parseSaleDate(req.Date)
	if err != nil {
		_ = c.Error(err)
		return
	}

	lines := make([]sales.LineInput, 0, len(req.Products))
	for _, p := range req.Products {
		lines = append(lines, sales.LineInput{
			ProductCode:     strings.TrimSpace(p.ProductCode),
			ProductName:     p.ProductName,
			Received:        p.Received,
			Sold:            p.Sold,
			ProductReturned: p.ProductReturned,
			EmptyReturned:   p.EmptyReturned,
		})
	}

	sale, err := h.sales.Submit(c.Request.Context(), sales.Submission{
		Date:          date,
		SalesPerson:   req.SalesPerson,
		PlateNumberID: req.PlateNumberID,
		Products:      lines,
		CashReceived:  req.CashReceived,
		CashDeposited: req.CashDeposited,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, toSaleResponse(*sale))
}

// --- GET: /api/sales ---
func (h *Handler) ListSales(c *gin.Context) {
	list, err := h.store.ListSales(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toSaleResponses(list))
}

// --- GET: /api/sales/:id ---
func (h *Handler) GetSale(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		_ = c.Error(apperror.NewValidation("Invalid sale ID"))
		return
	}

	sale, err := h.store.GetSale(c.Request.Context(), uint(id))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toSaleResponse(*sale))
}

// parseSaleDate accepts YYYY-MM-DD or RFC 3339. Empty means "now".
func parseSaleDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d, nil
	}
	if d, err := time.Parse(time.RFC3339, s); err == nil {
		return d, nil
	}
	return time.Time{}, apperror.NewValidation("date must be YYYY-MM-DD or RFC 3339").WithDetail("date", s)
}
