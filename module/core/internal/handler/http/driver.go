package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
)

type driverReadService interface {
	Drivers(ctx context.Context) ([]domain.Driver, error)
	LastLocation(ctx context.Context, driverID int64) (*domain.DriverLocation, error)
	History(ctx context.Context, query *domain.HistoryQuery) ([]domain.Position, error)
}

type locationResponse struct {
	DriverID  int64   `json:"driver_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	UpdatedAt int64   `json:"updated_at"`
}

type DriverHandler struct {
	svc driverReadService
}

func NewDriverHandler(svc driverReadService) *DriverHandler {
	return &DriverHandler{svc: svc}
}

func (h *DriverHandler) Register(r *gin.RouterGroup) {
	r.GET("/drivers", h.GetAll)
	r.GET("/drivers/:driver_id/location", h.GetLastLocation)
	r.GET("/drivers/:driver_id/history", h.GetHistory)
}

func (h *DriverHandler) GetAll(c *gin.Context) {
	drivers, err := h.svc.Drivers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch drivers"})
		return
	}
	c.JSON(http.StatusOK, drivers)
}

func (h *DriverHandler) GetLastLocation(c *gin.Context) {
	driverID, err := strconv.ParseInt(c.Param("driver_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid driver id"})
		return
	}

	loc, err := h.svc.LastLocation(c.Request.Context(), driverID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "driver location not found"})
		return
	}

	c.JSON(http.StatusOK, locationResponse{
		DriverID:  loc.DriverID,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		UpdatedAt: loc.UpdatedAt.Unix(),
	})
}

func (h *DriverHandler) GetHistory(c *gin.Context) {
	driverID, err := strconv.ParseInt(c.Param("driver_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid driver id"})
		return
	}

	start, err := strconv.ParseInt(c.Query("start"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start parameter"})
		return
	}

	end, err := strconv.ParseInt(c.Query("end"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end parameter"})
		return
	}

	positions, err := h.svc.History(c.Request.Context(), &domain.HistoryQuery{
		DriverID: driverID,
		Start:    time.Unix(start, 0),
		End:      time.Unix(end, 0),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, positions)
}
