package handlers

import (
	"context"
	"net/http"

	"go-sales-ledger/internal/apperror"
	"go-sales-ledger/internal/auth"
	"go-sales-ledger/internal/database"
	"go-sales-ledger/internal/middleware"
	"go-sales-ledger/internal/models"
	"go-sales-ledger/internal/sales"

	"github.com/gin-gonic/gin"
)

// Assistant answers free-form admin questions.
type Assistant interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Handler holds what every endpoint needs. Built once in main.
type Handler struct {
	store     *database.Store
	sales     *sales.Service
	tokens    *auth.Tokens
	assistant Assistant
}

// New wires a Handler. assistant may be nil, which disables /api/ask.
func New(store *database.Store, svc *sales.Service, tokens *auth.Tokens, assistant Assistant) *Handler {
	return &Handler{store: store, sales: svc, tokens: tokens, assistant: assistant}
}

// RouteOptions toggles optional routes.
type RouteOptions struct {
	AllowRegistration bool
}

// Routes registers every endpoint on r.
func (h *Handler) Routes(r *gin.Engine, opts RouteOptions) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })
	r.POST("/login", h.Login)

	// Only opens if explicitly allowed, to bootstrap the first admin
	if opts.AllowRegistration {
		r.POST("/register", h.Register)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(h.tokens))
	{
		// STAFF & ADMIN
		api.GET("/products", h.GetProducts)
		api.GET("/platenumbers", h.GetPlateNumbers)
		api.GET("/salespersons", h.GetSalespersons)
		api.GET("/users/:username", h.GetUser)
		api.POST("/sales", h.CreateSale)
		api.GET("/sales", h.ListSales)
		api.GET("/sales/:id", h.GetSale)

		// ADMIN ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/products/update", h.UpsertProducts)
			admin.POST("/platenumbers", h.CreatePlateNumber)
			admin.GET("/users", h.ListUsers)
			admin.POST("/users", h.CreateUser)
			admin.DELETE("/users/:username", h.DeleteUser)
			admin.GET("/reports", h.GetDashboard)
			admin.GET("/reports/summary", h.GetSummary)
			admin.POST("/ask", h.AskAI)
		}
	}
}

// caller returns the authenticated username and role.
func caller(c *gin.Context) (username, role string) {
	return c.GetString(middleware.KeyUsername), c.GetString(middleware.KeyRole)
}

func bindError(err error) *apperror.AppError {
	return apperror.NewValidation("Invalid input").WithDetail("reason", err.Error())
}
