package database

import (
	"context"
	"time"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
)

type PositionRepository interface {
	Insert(ctx context.Context, p *domain.Position) (int64, error)
	GetLatestByDevice(ctx context.Context, deviceID string) (*domain.Position, error)
	GetLatestByDriver(ctx context.Context, driverID int64) (*domain.Position, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.Position, error)
	SpeedSamplesSince(ctx context.Context, driverID int64, since time.Time) ([]domain.SpeedSample, error)
	RecentSpeeds(ctx context.Context, driverID int64, since time.Time, limit int) ([]float64, error)
}

type DriverRepository interface {
	GetByDeviceID(ctx context.Context, deviceID string) (*domain.Driver, error)
	GetAll(ctx context.Context) ([]domain.Driver, error)
	// UpdateLastLocation is last-write-wins on the projection timestamp: a
	// write older than the stored one is a no-op.
	UpdateLastLocation(ctx context.Context, loc *domain.DriverLocation) error
}

type ZoneRepository interface {
	GetActive(ctx context.Context) ([]domain.Zone, error)
	Insert(ctx context.Context, z *domain.Zone) (int64, error)
}

type GeofenceEventRepository interface {
	Insert(ctx context.Context, e *domain.GeofenceEvent) (int64, error)
}

type LoadRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Load, error)
	GetActiveByDriver(ctx context.Context, driverID int64) ([]domain.Load, error)
	// MarkPickedUp and MarkDelivered guard on the eligible source statuses so
	// an automatic transition never overwrites a concurrent dispatch action.
	// They report whether a row actually changed.
	MarkPickedUp(ctx context.Context, loadID int64, at time.Time) (bool, error)
	MarkDelivered(ctx context.Context, loadID int64, at time.Time) (bool, error)
}
