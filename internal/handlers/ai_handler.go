package handlers

import (
	"net/http"

	"go-sales-ledger/internal/apperror"

	"github.com/gin-gonic/gin"
)

type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) AskAI(c *gin.Context) {
	if h.assistant == nil {
		_ = c.Error(apperror.NewUnavailable("Assistant is not configured"))
		return
	}

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.NewValidation("Message is required"))
		return
	}

	reply, err := h.assistant.Ask(c.Request.Context(), req.Message)
	if err != nil {
		_ = c.Error(apperror.NewInternal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
