package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
	"github.com/roadsync/fleet-telemetry/module/core/internal/repository/database"
	"github.com/roadsync/fleet-telemetry/module/core/internal/repository/state"
	"github.com/roadsync/fleet-telemetry/module/core/internal/wire"
)

// Validation failures surfaced to the ingesting client. Everything past the
// position write is best-effort and never propagates.
var (
	ErrMissingFields      = errors.New("device id and coordinates are required")
	ErrInvalidCoordinates = errors.New("coordinates out of range")
	ErrUnknownDevice      = errors.New("device not registered to any driver")
)

// evaluator receives the per-sample background work. Enqueue must not block;
// it reports whether the job was accepted.
type evaluator interface {
	Enqueue(job EvalJob) bool
}

const lockShards = 64

// TelemetryService is the ingestion gateway: it validates a raw sample,
// resolves the device to a driver, persists the position, projects the last
// known location, and hands the geofence/proximity evaluation to the
// background dispatcher.
type TelemetryService struct {
	drivers   database.DriverRepository
	positions database.PositionRepository
	locations state.DriverLocationStore
	evaluator evaluator

	// deviceLocks serializes the read-prev/insert/project section per
	// device; cross-device ingestion stays fully parallel.
	deviceLocks [lockShards]sync.Mutex

	now func() time.Time
}

func NewTelemetryService(drivers database.DriverRepository, positions database.PositionRepository, locations state.DriverLocationStore, ev evaluator) *TelemetryService {
	return &TelemetryService{
		drivers:   drivers,
		positions: positions,
		locations: locations,
		evaluator: ev,
		now:       time.Now,
	}
}

func deviceShard(deviceID string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(deviceID))
	return int(h.Sum32() % uint32(n))
}

// Ingest runs the full gateway contract. The returned error is one of the
// sentinel validation errors or a wrapped storage error; in every error case
// nothing was persisted.
func (s *TelemetryService) Ingest(ctx context.Context, raw *wire.RawSample) (*domain.Position, error) {
	if raw.DeviceID == "" || raw.Lat == "" || raw.Lon == "" {
		return nil, ErrMissingFields
	}

	lat, err := strconv.ParseFloat(raw.Lat, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, ErrInvalidCoordinates
	}
	lon, err := strconv.ParseFloat(raw.Lon, 64)
	if err != nil || lon < -180 || lon > 180 {
		return nil, ErrInvalidCoordinates
	}

	driver, err := s.drivers.GetByDeviceID(ctx, raw.DeviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.WithField("device_id", raw.DeviceID).Warn("sample from unregistered device")
			return nil, ErrUnknownDevice
		}
		return nil, fmt.Errorf("resolve device: %w", err)
	}

	now := s.now()
	pos := &domain.Position{
		DeviceID:   raw.DeviceID,
		DriverID:   driver.ID,
		Latitude:   lat,
		Longitude:  lon,
		SpeedKmh:   parseOptional(raw.Speed, 0, -1),
		Bearing:    parseOptional(raw.Bearing, 0, 360),
		Altitude:   parseOptional(raw.Altitude, -1, -1),
		Battery:    parseOptional(raw.Battery, 0, 100),
		AccuracyM:  parseOptional(raw.Accuracy, 0, -1),
		RecordedAt: wire.ResolveTimestamp(raw.Timestamp, now),
		ReceivedAt: now,
	}

	lock := &s.deviceLocks[deviceShard(raw.DeviceID, lockShards)]
	lock.Lock()
	defer lock.Unlock()

	prev, err := s.positions.GetLatestByDevice(ctx, raw.DeviceID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load previous position: %w", err)
	}

	id, err := s.positions.Insert(ctx, pos)
	if err != nil {
		return nil, fmt.Errorf("store position: %w", err)
	}
	pos.ID = id

	// Past this point the sample is committed: projection and evaluation
	// failures are logged, never surfaced, never rolled back.
	s.project(ctx, driver.ID, pos)

	if ok := s.evaluator.Enqueue(EvalJob{Driver: driver, Prev: prev, Next: pos}); !ok {
		log.WithFields(log.Fields{
			"device_id": raw.DeviceID,
			"driver_id": driver.ID,
		}).Warn("evaluation queue full, sample not evaluated")
	}

	return pos, nil
}

func (s *TelemetryService) project(ctx context.Context, driverID int64, pos *domain.Position) {
	loc := &domain.DriverLocation{
		DriverID:  driverID,
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		UpdatedAt: pos.ReceivedAt,
	}

	if err := s.drivers.UpdateLastLocation(ctx, loc); err != nil {
		log.WithError(err).WithField("driver_id", driverID).Error("update driver location")
	}
	if err := s.locations.Set(ctx, loc); err != nil {
		log.WithError(err).WithField("driver_id", driverID).Error("project driver location")
	}
}

// Drivers lists the directory, for the read API.
func (s *TelemetryService) Drivers(ctx context.Context) ([]domain.Driver, error) {
	return s.drivers.GetAll(ctx)
}

// LastLocation reads the projection, falling back to the newest stored
// position when the projection is cold.
func (s *TelemetryService) LastLocation(ctx context.Context, driverID int64) (*domain.DriverLocation, error) {
	loc, err := s.locations.Get(ctx, driverID)
	if err != nil {
		log.WithError(err).WithField("driver_id", driverID).Warn("projection read failed, falling back to store")
	}
	if loc != nil {
		return loc, nil
	}

	pos, err := s.positions.GetLatestByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	return &domain.DriverLocation{
		DriverID:  driverID,
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		UpdatedAt: pos.ReceivedAt,
	}, nil
}

func (s *TelemetryService) History(ctx context.Context, query *domain.HistoryQuery) ([]domain.Position, error) {
	return s.positions.GetHistory(ctx, query)
}

// parseOptional parses an optional numeric field, dropping unparsable or
// out-of-range values. A negative bound disables that side of the check.
func parseOptional(raw string, min, max float64) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	if min >= 0 && v < min {
		return nil
	}
	if max >= 0 && v > max {
		return nil
	}
	return &v
}
