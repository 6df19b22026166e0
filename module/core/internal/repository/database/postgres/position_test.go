package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
)

var positionCols = []string{
	"id", "device_id", "driver_id", "latitude", "longitude",
	"speed_kmh", "bearing", "altitude", "battery", "accuracy_m",
	"recorded_at", "received_at",
}

func TestPositionInsert_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	recorded := time.Unix(1700000000, 0)
	received := time.Unix(1700000005, 0)
	speed := 62.5

	mock.ExpectQuery(`INSERT INTO positions`).
		WithArgs("DEV-1", int64(7), 44.7722, 17.1910,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			recorded, received).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(99)))

	repo := NewPositionRepo(db)
	id, err := repo.Insert(context.Background(), &domain.Position{
		DeviceID:   "DEV-1",
		DriverID:   7,
		Latitude:   44.7722,
		Longitude:  17.1910,
		SpeedKmh:   &speed,
		RecordedAt: recorded,
		ReceivedAt: received,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 99 {
		t.Errorf("expected id 99, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPositionInsert_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`INSERT INTO positions`).
		WillReturnError(sqlmock.ErrCancelled)

	repo := NewPositionRepo(db)
	_, err = repo.Insert(context.Background(), &domain.Position{DeviceID: "DEV-1", DriverID: 7})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGetLatestByDevice_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	recorded := time.Unix(1700000000, 0)
	received := time.Unix(1700000005, 0)
	rows := sqlmock.NewRows(positionCols).
		AddRow(int64(1), "DEV-1", int64(7), 44.7722, 17.1910, 62.5, nil, nil, 87.0, nil, recorded, received)

	mock.ExpectQuery(`SELECT (.+) FROM positions WHERE device_id = (.+) ORDER BY recorded_at DESC, received_at DESC LIMIT 1`).
		WithArgs("DEV-1").
		WillReturnRows(rows)

	repo := NewPositionRepo(db)
	pos, err := repo.GetLatestByDevice(context.Background(), "DEV-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos.ID != 1 || pos.DriverID != 7 {
		t.Errorf("unexpected position: %+v", pos)
	}
	if pos.SpeedKmh == nil || *pos.SpeedKmh != 62.5 {
		t.Errorf("expected speed 62.5, got %v", pos.SpeedKmh)
	}
	if pos.Bearing != nil || pos.Altitude != nil || pos.AccuracyM != nil {
		t.Errorf("expected nil optional fields, got %+v", pos)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetLatestByDevice_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`SELECT (.+) FROM positions WHERE device_id = (.+)`).
		WithArgs("UNKNOWN").
		WillReturnRows(sqlmock.NewRows(positionCols))

	repo := NewPositionRepo(db)
	_, err = repo.GetLatestByDevice(context.Background(), "UNKNOWN")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGetHistory_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	start := time.Unix(1700000000, 0)
	end := time.Unix(1700009999, 0)
	rows := sqlmock.NewRows(positionCols).
		AddRow(int64(1), "DEV-1", int64(7), 44.1, 17.1, nil, nil, nil, nil, nil, start, start).
		AddRow(int64(2), "DEV-1", int64(7), 44.2, 17.2, nil, nil, nil, nil, nil, end, end)

	mock.ExpectQuery(`SELECT (.+) FROM positions WHERE driver_id = (.+) AND recorded_at >= (.+) AND recorded_at <= (.+) ORDER BY recorded_at ASC`).
		WithArgs(int64(7), start, end).
		WillReturnRows(rows)

	repo := NewPositionRepo(db)
	results, err := repo.GetHistory(context.Background(), &domain.HistoryQuery{DriverID: 7, Start: start, End: end})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Latitude != 44.1 || results[1].Latitude != 44.2 {
		t.Errorf("unexpected results: %+v", results)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRecentSpeeds_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	since := time.Unix(1700000000, 0)
	rows := sqlmock.NewRows([]string{"speed_kmh"}).
		AddRow(80.0).
		AddRow(75.5)

	mock.ExpectQuery(`SELECT speed_kmh FROM positions WHERE driver_id = (.+) AND recorded_at >= (.+) AND speed_kmh > 0 ORDER BY recorded_at DESC LIMIT (.+)`).
		WithArgs(int64(7), since, 10).
		WillReturnRows(rows)

	repo := NewPositionRepo(db)
	speeds, err := repo.RecentSpeeds(context.Background(), 7, since, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(speeds) != 2 || speeds[0] != 80.0 {
		t.Errorf("unexpected speeds: %v", speeds)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSpeedSamplesSince_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	since := time.Unix(1700000000, 0)
	at := time.Unix(1700003600, 0)
	rows := sqlmock.NewRows([]string{"speed_kmh", "recorded_at"}).
		AddRow(80.0, at)

	mock.ExpectQuery(`SELECT speed_kmh, recorded_at FROM positions WHERE driver_id = (.+) AND recorded_at >= (.+) AND speed_kmh > 0`).
		WithArgs(int64(7), since).
		WillReturnRows(rows)

	repo := NewPositionRepo(db)
	samples, err := repo.SpeedSamplesSince(context.Background(), 7, since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 1 || samples[0].SpeedKmh != 80.0 || !samples[0].RecordedAt.Equal(at) {
		t.Errorf("unexpected samples: %+v", samples)
	}
}
