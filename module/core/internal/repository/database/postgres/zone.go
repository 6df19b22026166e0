package postgres

import (
	"context"
	"database/sql"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
	"github.com/roadsync/fleet-telemetry/module/core/internal/repository/database"
)

var _ database.ZoneRepository = (*ZoneRepo)(nil)

type ZoneRepo struct {
	db *sql.DB
}

func NewZoneRepo(db *sql.DB) *ZoneRepo {
	return &ZoneRepo{db: db}
}

func (r *ZoneRepo) GetActive(ctx context.Context) ([]domain.Zone, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, latitude, longitude, radius_m, active, notify_entry, notify_exit, load_id, stop
		 FROM zones WHERE active ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Zone
	for rows.Next() {
		var z domain.Zone
		var loadID sql.NullInt64
		var stop sql.NullString
		if err := rows.Scan(&z.ID, &z.Name, &z.Latitude, &z.Longitude, &z.RadiusM,
			&z.Active, &z.NotifyEntry, &z.NotifyExit, &loadID, &stop); err != nil {
			return nil, err
		}
		if loadID.Valid {
			id := loadID.Int64
			z.LoadID = &id
		}
		if stop.Valid {
			z.Stop = domain.ZoneStop(stop.String)
		}
		results = append(results, z)
	}
	return results, rows.Err()
}

func (r *ZoneRepo) Insert(ctx context.Context, z *domain.Zone) (int64, error) {
	var loadID sql.NullInt64
	if z.LoadID != nil {
		loadID = sql.NullInt64{Int64: *z.LoadID, Valid: true}
	}
	var stop sql.NullString
	if z.Stop != "" {
		stop = sql.NullString{String: string(z.Stop), Valid: true}
	}

	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO zones (name, latitude, longitude, radius_m, active, notify_entry, notify_exit, load_id, stop)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		z.Name, z.Latitude, z.Longitude, z.RadiusM, z.Active, z.NotifyEntry, z.NotifyExit, loadID, stop,
	).Scan(&id)
	return id, err
}
