package handlers

import (
	"net/http"

	"go-sales-ledger/internal/apperror"
	"go-sales-ledger/internal/auth"
	"go-sales-ledger/internal/models"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var input LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	// Unknown user and wrong password look the same to the client
	user, err := h.store.UserByUsername(c.Request.Context(), input.Username)
	if err != nil {
		if apperror.IsNotFound(err) {
			err = apperror.NewUnauthorized("Invalid credentials")
		}
		_ = c.Error(err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		_ = c.Error(apperror.NewUnauthorized("Invalid credentials"))
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Username, user.Role)
	if err != nil {
		_ = c.Error(apperror.NewInternal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"role":     user.Role,
		"username": user.Username,
		"name":     user.Name,
	})
}

// Register creates an ADMIN. Only routed when ALLOW_REGISTRATION=true.
func (h *Handler) Register(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	user, err := h.newUser(req, models.RoleAdmin)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully!"})
}
