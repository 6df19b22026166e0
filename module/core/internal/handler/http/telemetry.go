package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
	"github.com/roadsync/fleet-telemetry/module/core/internal/wire"
	"github.com/roadsync/fleet-telemetry/module/core/service"
)

type ingestService interface {
	Ingest(ctx context.Context, raw *wire.RawSample) (*domain.Position, error)
}

// TelemetryHandler is the ingestion endpoint. Clients treat anything other
// than a 200 with body "OK" as delivery failure and retry, so the success
// response is fixed.
type TelemetryHandler struct {
	svc ingestService
}

func NewTelemetryHandler(svc ingestService) *TelemetryHandler {
	return &TelemetryHandler{svc: svc}
}

func (h *TelemetryHandler) Register(r *gin.RouterGroup) {
	r.GET("/telemetry", h.Ingest)
	r.POST("/telemetry", h.Ingest)
}

func (h *TelemetryHandler) Ingest(c *gin.Context) {
	var body []byte
	if c.Request.Method == http.MethodPost && c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
	}

	raw := wire.Decode(c.Request.URL.Query(), body)

	_, err := h.svc.Ingest(c.Request.Context(), raw)
	switch {
	case err == nil:
		c.String(http.StatusOK, "OK")
	case errors.Is(err, service.ErrMissingFields), errors.Is(err, service.ErrInvalidCoordinates):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnknownDevice):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store sample"})
	}
}
