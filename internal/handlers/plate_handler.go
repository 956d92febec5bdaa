package handlers

import (
	"net/http"
	"strings"

	"go-sales-ledger/internal/apperror"
	"go-sales-ledger/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetPlateNumbers(c *gin.Context) {
	plates, err := h.store.ListPlates(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	out := make([]plateRef, 0, len(plates))
	for _, p := range plates {
		out = append(out, plateRef{ID: p.ID, Plate: p.Plate})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreatePlateNumber(c *gin.Context) {
	var req createPlateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}
	plate := strings.ToUpper(strings.TrimSpace(req.Plate))
	if plate == "" {
		_ = c.Error(apperror.NewValidation("plate is required"))
		return
	}

	p := &models.PlateNumber{Plate: plate}
	if err := h.store.CreatePlate(c.Request.Context(), p); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, p)
}
