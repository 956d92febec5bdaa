package handlers

import (
	"net/http"
	"time"

	"go-sales-ledger/internal/apperror"
	"go-sales-ledger/internal/database"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const dashboardRecentSales = 5

// --- GET: /api/reports ---
// All-time totals, head counts and the latest submissions.
func (h *Handler) GetDashboard(c *gin.Context) {
	var data dashboardResponse
	g, ctx := errgroup.WithContext(c.Request.Context())

	g.Go(func() error {
		totals, err := h.store.AggregateTotals(ctx, database.DateRange{})
		if err != nil {
			return err
		}
		data.Totals = totals
		return nil
	})

	g.Go(func() error {
		n, err := h.store.CountSalespersons(ctx)
		data.Salespersons = n
		return err
	})

	g.Go(func() error {
		n, err := h.store.CountProducts(ctx)
		data.Products = n
		return err
	})

	g.Go(func() error {
		recent, err := h.store.RecentSales(ctx, dashboardRecentSales)
		if err != nil {
			return err
		}
		data.RecentSales = toSaleResponses(recent)
		return nil
	})

	if err := g.Wait(); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// --- GET: /api/reports/summary?from=YYYY-MM-DD&to=YYYY-MM-DD ---
func (h *Handler) GetSummary(c *gin.Context) {
	var r database.DateRange

	if s := c.Query("from"); s != "" {
		from, err := time.Parse("2006-01-02", s)
		if err != nil {
			_ = c.Error(apperror.NewValidation("from must be YYYY-MM-DD"))
			return
		}
		r.From = &from
	}
	if s := c.Query("to"); s != "" {
		to, err := time.Parse("2006-01-02", s)
		if err != nil {
			_ = c.Error(apperror.NewValidation("to must be YYYY-MM-DD"))
			return
		}
		// include the whole day
		to = to.Add(24*time.Hour - time.Nanosecond)
		r.To = &to
	}

	totals, err := h.store.AggregateTotals(c.Request.Context(), r)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, totals)
}
