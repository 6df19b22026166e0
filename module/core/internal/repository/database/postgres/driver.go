package postgres

import (
	"context"
	"database/sql"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
	"github.com/roadsync/fleet-telemetry/module/core/internal/repository/database"
)

var _ database.DriverRepository = (*DriverRepo)(nil)

type DriverRepo struct {
	db *sql.DB
}

func NewDriverRepo(db *sql.DB) *DriverRepo {
	return &DriverRepo{db: db}
}

func (r *DriverRepo) GetByDeviceID(ctx context.Context, deviceID string) (*domain.Driver, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, device_id, name FROM drivers WHERE device_id = $1`,
		deviceID,
	)

	var d domain.Driver
	if err := row.Scan(&d.ID, &d.DeviceID, &d.Name); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DriverRepo) GetAll(ctx context.Context) ([]domain.Driver, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device_id, name FROM drivers ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Driver
	for rows.Next() {
		var d domain.Driver
		if err := rows.Scan(&d.ID, &d.DeviceID, &d.Name); err != nil {
			return nil, err
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

// UpdateLastLocation enforces receivedAt ordering in the WHERE clause so a
// redelivered stale sample never overwrites a fresher projection.
func (r *DriverRepo) UpdateLastLocation(ctx context.Context, loc *domain.DriverLocation) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE drivers SET last_lat = $2, last_lon = $3, location_updated_at = $4
		 WHERE id = $1 AND (location_updated_at IS NULL OR location_updated_at <= $4)`,
		loc.DriverID, loc.Latitude, loc.Longitude, loc.UpdatedAt,
	)
	return err
}
