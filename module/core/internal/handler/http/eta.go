package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
	"github.com/roadsync/fleet-telemetry/module/core/service"
)

type etaService interface {
	LoadETA(ctx context.Context, loadID int64) (*domain.LoadETA, error)
}

type ETAHandler struct {
	svc etaService
}

func NewETAHandler(svc etaService) *ETAHandler {
	return &ETAHandler{svc: svc}
}

func (h *ETAHandler) Register(r *gin.RouterGroup) {
	r.GET("/loads/:load_id/eta", h.GetLoadETA)
}

func (h *ETAHandler) GetLoadETA(c *gin.Context) {
	loadID, err := strconv.ParseInt(c.Param("load_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid load id"})
		return
	}

	eta, err := h.svc.LoadETA(c.Request.Context(), loadID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, eta)
	case errors.Is(err, service.ErrLoadNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "load not found"})
	case errors.Is(err, service.ErrNoPosition):
		c.JSON(http.StatusConflict, gin.H{"error": "no position known for driver"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute eta"})
	}
}
