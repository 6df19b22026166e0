package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
	"github.com/roadsync/fleet-telemetry/module/core/service"
)

type mockETAService struct {
	loadETAFn func(ctx context.Context, loadID int64) (*domain.LoadETA, error)
}

func (m *mockETAService) LoadETA(ctx context.Context, loadID int64) (*domain.LoadETA, error) {
	return m.loadETAFn(ctx, loadID)
}

func newETARouter(svc *mockETAService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewETAHandler(svc).Register(&r.RouterGroup)
	return r
}

func TestGetLoadETA_OK(t *testing.T) {
	svc := &mockETAService{
		loadETAFn: func(_ context.Context, loadID int64) (*domain.LoadETA, error) {
			if loadID != 42 {
				t.Fatalf("unexpected load id %d", loadID)
			}
			return &domain.LoadETA{
				LoadID: 42,
				Phase:  domain.PhaseToDelivery,
				Estimate: &domain.ETAEstimate{
					DistanceKm:        12.5,
					EstimatedSpeedKmh: 75,
					ETAMinutes:        10,
					ETATimestamp:      time.Unix(1700000600, 0).UTC(),
					Confidence:        domain.ConfidenceHigh,
				},
			}, nil
		},
	}
	router := newETARouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/loads/42/eta", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		LoadID int64  `json:"load_id"`
		Phase  string `json:"phase"`
		ETA    *struct {
			ETAMinutes int    `json:"eta_minutes"`
			Confidence string `json:"confidence"`
		} `json:"eta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.LoadID != 42 || resp.Phase != "TO_DELIVERY" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.ETA == nil || resp.ETA.ETAMinutes != 10 || resp.ETA.Confidence != "HIGH" {
		t.Errorf("unexpected estimate: %+v", resp.ETA)
	}
}

func TestGetLoadETA_DeliveredOmitsEstimate(t *testing.T) {
	svc := &mockETAService{
		loadETAFn: func(_ context.Context, _ int64) (*domain.LoadETA, error) {
			return &domain.LoadETA{LoadID: 42, Phase: domain.PhaseDelivered}, nil
		},
	}
	router := newETARouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/loads/42/eta", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if _, present := resp["eta"]; present {
		t.Errorf("delivered load must not carry an eta field: %s", w.Body.String())
	}
}

func TestGetLoadETA_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  error
		code int
	}{
		{"bad id", "/loads/abc/eta", nil, http.StatusBadRequest},
		{"not found", "/loads/42/eta", service.ErrLoadNotFound, http.StatusNotFound},
		{"no position", "/loads/42/eta", service.ErrNoPosition, http.StatusConflict},
		{"internal", "/loads/42/eta", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockETAService{
				loadETAFn: func(_ context.Context, _ int64) (*domain.LoadETA, error) {
					return nil, tt.err
				},
			}
			router := newETARouter(svc)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.code {
				t.Errorf("expected %d, got %d: %s", tt.code, w.Code, w.Body.String())
			}
		})
	}
}
