package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
	"github.com/roadsync/fleet-telemetry/module/core/internal/repository/database"
)

var _ database.LoadRepository = (*LoadRepo)(nil)

type LoadRepo struct {
	db *sql.DB
}

func NewLoadRepo(db *sql.DB) *LoadRepo {
	return &LoadRepo{db: db}
}

const loadColumns = `id, driver_id, status, pickup_lat, pickup_lon, delivery_lat, delivery_lon, actual_pickup_date, actual_delivery_date`

func (r *LoadRepo) GetByID(ctx context.Context, id int64) (*domain.Load, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+loadColumns+` FROM loads WHERE id = $1`,
		id,
	)
	return scanLoad(row)
}

func (r *LoadRepo) GetActiveByDriver(ctx context.Context, driverID int64) ([]domain.Load, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+loadColumns+` FROM loads WHERE driver_id = $1 AND status IN ('ASSIGNED', 'ACCEPTED', 'PICKED_UP', 'IN_TRANSIT') ORDER BY id`,
		driverID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Load
	for rows.Next() {
		ld, err := scanLoad(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *ld)
	}
	return results, rows.Err()
}

func (r *LoadRepo) MarkPickedUp(ctx context.Context, loadID int64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE loads SET status = 'PICKED_UP', actual_pickup_date = $2 WHERE id = $1 AND status IN ('ASSIGNED', 'ACCEPTED')`,
		loadID, at,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *LoadRepo) MarkDelivered(ctx context.Context, loadID int64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE loads SET status = 'DELIVERED', actual_delivery_date = $2 WHERE id = $1 AND status IN ('PICKED_UP', 'IN_TRANSIT')`,
		loadID, at,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func scanLoad(row rowScanner) (*domain.Load, error) {
	var ld domain.Load
	var pickup, delivery sql.NullTime

	if err := row.Scan(&ld.ID, &ld.DriverID, &ld.Status,
		&ld.PickupLat, &ld.PickupLon, &ld.DeliveryLat, &ld.DeliveryLon,
		&pickup, &delivery); err != nil {
		return nil, err
	}

	if pickup.Valid {
		t := pickup.Time
		ld.ActualPickupDate = &t
	}
	if delivery.Valid {
		t := delivery.Time
		ld.ActualDeliveryDate = &t
	}
	return &ld, nil
}
