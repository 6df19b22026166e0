package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
	"github.com/roadsync/fleet-telemetry/module/core/internal/repository/database"
)

var _ database.PositionRepository = (*PositionRepo)(nil)

type PositionRepo struct {
	db *sql.DB
}

func NewPositionRepo(db *sql.DB) *PositionRepo {
	return &PositionRepo{db: db}
}

const positionColumns = `id, device_id, driver_id, latitude, longitude, speed_kmh, bearing, altitude, battery, accuracy_m, recorded_at, received_at`

func (r *PositionRepo) Insert(ctx context.Context, p *domain.Position) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO positions (device_id, driver_id, latitude, longitude, speed_kmh, bearing, altitude, battery, accuracy_m, recorded_at, received_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`,
		p.DeviceID, p.DriverID, p.Latitude, p.Longitude,
		nullableFloat(p.SpeedKmh), nullableFloat(p.Bearing), nullableFloat(p.Altitude),
		nullableFloat(p.Battery), nullableFloat(p.AccuracyM),
		p.RecordedAt, p.ReceivedAt,
	).Scan(&id)
	return id, err
}

func (r *PositionRepo) GetLatestByDevice(ctx context.Context, deviceID string) (*domain.Position, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+positionColumns+` FROM positions WHERE device_id = $1 ORDER BY recorded_at DESC, received_at DESC LIMIT 1`,
		deviceID,
	)
	return scanPosition(row)
}

func (r *PositionRepo) GetLatestByDriver(ctx context.Context, driverID int64) (*domain.Position, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+positionColumns+` FROM positions WHERE driver_id = $1 ORDER BY recorded_at DESC, received_at DESC LIMIT 1`,
		driverID,
	)
	return scanPosition(row)
}

func (r *PositionRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.Position, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+positionColumns+` FROM positions WHERE driver_id = $1 AND recorded_at >= $2 AND recorded_at <= $3 ORDER BY recorded_at ASC, received_at ASC`,
		query.DriverID, query.Start, query.End,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *p)
	}
	return results, rows.Err()
}

func (r *PositionRepo) SpeedSamplesSince(ctx context.Context, driverID int64, since time.Time) ([]domain.SpeedSample, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT speed_kmh, recorded_at FROM positions WHERE driver_id = $1 AND recorded_at >= $2 AND speed_kmh > 0`,
		driverID, since,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var samples []domain.SpeedSample
	for rows.Next() {
		var s domain.SpeedSample
		if err := rows.Scan(&s.SpeedKmh, &s.RecordedAt); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

func (r *PositionRepo) RecentSpeeds(ctx context.Context, driverID int64, since time.Time, limit int) ([]float64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT speed_kmh FROM positions WHERE driver_id = $1 AND recorded_at >= $2 AND speed_kmh > 0 ORDER BY recorded_at DESC LIMIT $3`,
		driverID, since, limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var speeds []float64
	for rows.Next() {
		var s float64
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		speeds = append(speeds, s)
	}
	return speeds, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPosition(row rowScanner) (*domain.Position, error) {
	var p domain.Position
	var speed, bearing, altitude, battery, accuracy sql.NullFloat64

	if err := row.Scan(
		&p.ID, &p.DeviceID, &p.DriverID, &p.Latitude, &p.Longitude,
		&speed, &bearing, &altitude, &battery, &accuracy,
		&p.RecordedAt, &p.ReceivedAt,
	); err != nil {
		return nil, err
	}

	p.SpeedKmh = floatPtr(speed)
	p.Bearing = floatPtr(bearing)
	p.Altitude = floatPtr(altitude)
	p.Battery = floatPtr(battery)
	p.AccuracyM = floatPtr(accuracy)
	return &p, nil
}

func nullableFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
