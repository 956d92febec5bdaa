package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"go-sales-ledger/internal/apperror"
	"go-sales-ledger/internal/auth"
	"go-sales-ledger/internal/models"

	"github.com/gin-gonic/gin"
)

// --- GET: /api/users (admin) ---
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// --- GET: /api/salespersons ---
func (h *Handler) GetSalespersons(c *gin.Context) {
	users, err := h.store.ListSalespersons(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// --- GET: /api/users/:username ---
// Users can read their own profile; admins can read any.
func (h *Handler) GetUser(c *gin.Context) {
	username := c.Param("username")
	self, role := caller(c)
	if role != models.RoleAdmin && self != username {
		_ = c.Error(apperror.NewForbidden("You do not have permission to access this resource"))
		return
	}

	user, err := h.store.UserByUsername(c.Request.Context(), username)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// --- POST: /api/users (admin) ---
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.NewValidation("All fields are required").WithDetail("reason", err.Error()))
		return
	}

	user, err := h.newUser(req, models.RoleSalesperson)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "user": user})
}

// --- DELETE: /api/users/:username (admin) ---
func (h *Handler) DeleteUser(c *gin.Context) {
	username := c.Param("username")
	if self, _ := caller(c); self == username {
		_ = c.Error(apperror.NewConflict("You cannot delete your own account"))
		return
	}

	if err := h.store.DeleteUser(c.Request.Context(), username); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("User '%s' deleted successfully.", username)})
}

func (h *Handler) newUser(req createUserRequest, role string) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || strings.TrimSpace(req.Name) == "" || req.Password == "" {
		return nil, apperror.NewValidation("All fields are required")
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return &models.User{
		Username:     username,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hashed,
		Role:         role,
		PlateNumber:  strings.TrimSpace(req.PlateNumber),
	}, nil
}
