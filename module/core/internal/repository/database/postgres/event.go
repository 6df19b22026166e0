package postgres

import (
	"context"
	"database/sql"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
	"github.com/roadsync/fleet-telemetry/module/core/internal/repository/database"
)

var _ database.GeofenceEventRepository = (*GeofenceEventRepo)(nil)

type GeofenceEventRepo struct {
	db *sql.DB
}

func NewGeofenceEventRepo(db *sql.DB) *GeofenceEventRepo {
	return &GeofenceEventRepo{db: db}
}

func (r *GeofenceEventRepo) Insert(ctx context.Context, e *domain.GeofenceEvent) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO geofence_events (zone_id, driver_id, event_type, latitude, longitude, speed_kmh, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		e.ZoneID, e.DriverID, e.EventType, e.Latitude, e.Longitude, nullableFloat(e.SpeedKmh), e.CreatedAt,
	).Scan(&id)
	return id, err
}
