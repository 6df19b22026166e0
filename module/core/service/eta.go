package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
	"github.com/roadsync/fleet-telemetry/module/core/internal/repository/database"
	"github.com/roadsync/fleet-telemetry/module/core/internal/repository/state"
)

var ErrLoadNotFound = errors.New("load not found")
var ErrNoPosition = errors.New("no position known for driver")

const (
	// roadFactor approximates road distance from the great-circle distance.
	roadFactor = 1.25

	defaultSpeedKmh = 80
	minSpeedKmh     = 30
	maxSpeedKmh     = 90

	historyWindow = 30 * 24 * time.Hour
	recentWindow  = 30 * time.Minute
	recentLimit   = 10

	// highConfidenceSamples is the recent-sample count at which the blend
	// shifts to 0.7 recent / 0.3 historical.
	highConfidenceSamples = 5
)

type timeBucket string

const (
	bucketMorning   timeBucket = "MORNING"
	bucketAfternoon timeBucket = "AFTERNOON"
	bucketEvening   timeBucket = "EVENING"
	bucketNight     timeBucket = "NIGHT"
)

type dayType string

const (
	dayWeekday dayType = "WEEKDAY"
	dayWeekend dayType = "WEEKEND"
)

// ETAService computes confidence-qualified arrival estimates from historical
// driving-speed patterns. Pure read path, no persisted side effects.
type ETAService struct {
	positions database.PositionRepository
	loads     database.LoadRepository
	locations state.DriverLocationStore
	now       func() time.Time
}

func NewETAService(positions database.PositionRepository, loads database.LoadRepository, locations state.DriverLocationStore) *ETAService {
	return &ETAService{
		positions: positions,
		loads:     loads,
		locations: locations,
		now:       time.Now,
	}
}

// Estimate blends the driver's recent and historical average speeds and
// converts the road-adjusted distance to an arrival time.
func (s *ETAService) Estimate(ctx context.Context, driverID int64, curLat, curLon, destLat, destLon float64) (*domain.ETAEstimate, error) {
	distanceKm := haversineMeters(curLat, curLon, destLat, destLon) / 1000 * roadFactor
	now := s.now()

	historical, err := s.historicalSpeed(ctx, driverID, now)
	if err != nil {
		return nil, fmt.Errorf("historical speed: %w", err)
	}

	recent, recentCount, err := s.recentSpeed(ctx, driverID, now)
	if err != nil {
		return nil, fmt.Errorf("recent speed: %w", err)
	}

	var speed float64
	var confidence domain.ETAConfidence
	switch {
	case recentCount >= highConfidenceSamples:
		speed = 0.7*recent + 0.3*historical
		confidence = domain.ConfidenceHigh
	case recentCount >= 1:
		speed = 0.5*recent + 0.5*historical
		confidence = domain.ConfidenceMedium
	default:
		speed = historical
		confidence = domain.ConfidenceLow
	}

	speed = math.Min(math.Max(speed, minSpeedKmh), maxSpeedKmh)

	etaMinutes := int(math.Round(distanceKm / speed * 60))
	return &domain.ETAEstimate{
		DistanceKm:        distanceKm,
		EstimatedSpeedKmh: speed,
		ETAMinutes:        etaMinutes,
		ETATimestamp:      now.Add(time.Duration(etaMinutes) * time.Minute),
		Confidence:        confidence,
	}, nil
}

// LoadETA resolves the current phase of a load and estimates the open leg
// from the driver's last known position.
func (s *ETAService) LoadETA(ctx context.Context, loadID int64) (*domain.LoadETA, error) {
	ld, err := s.loads.GetByID(ctx, loadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLoadNotFound
		}
		return nil, fmt.Errorf("load %d: %w", loadID, err)
	}

	var phase domain.LoadPhase
	var destLat, destLon float64
	switch {
	case ld.Status.BeforePickup():
		phase = domain.PhaseToPickup
		destLat, destLon = ld.PickupLat, ld.PickupLon
	case ld.Status.InDeliveryLeg():
		phase = domain.PhaseToDelivery
		destLat, destLon = ld.DeliveryLat, ld.DeliveryLon
	default:
		return &domain.LoadETA{LoadID: ld.ID, Phase: domain.PhaseDelivered}, nil
	}

	cur, err := s.currentLocation(ctx, ld.DriverID)
	if err != nil {
		return nil, err
	}

	est, err := s.Estimate(ctx, ld.DriverID, cur.Latitude, cur.Longitude, destLat, destLon)
	if err != nil {
		return nil, err
	}

	return &domain.LoadETA{LoadID: ld.ID, Phase: phase, Estimate: est}, nil
}

func (s *ETAService) currentLocation(ctx context.Context, driverID int64) (*domain.DriverLocation, error) {
	loc, err := s.locations.Get(ctx, driverID)
	if err == nil && loc != nil {
		return loc, nil
	}

	pos, err := s.positions.GetLatestByDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoPosition
		}
		return nil, fmt.Errorf("latest position: %w", err)
	}
	return &domain.DriverLocation{
		DriverID:  driverID,
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		UpdatedAt: pos.ReceivedAt,
	}, nil
}

// historicalSpeed is the 30-day mean, filtered to the current time-of-day
// and day-type buckets when any matching samples exist, otherwise the
// unfiltered mean, otherwise the default.
func (s *ETAService) historicalSpeed(ctx context.Context, driverID int64, now time.Time) (float64, error) {
	samples, err := s.positions.SpeedSamplesSince(ctx, driverID, now.Add(-historyWindow))
	if err != nil {
		return 0, err
	}
	if len(samples) == 0 {
		return defaultSpeedKmh, nil
	}

	bucket := bucketOf(now)
	day := dayTypeOf(now)

	var matched, all []float64
	for _, sample := range samples {
		all = append(all, sample.SpeedKmh)
		if bucketOf(sample.RecordedAt) == bucket && dayTypeOf(sample.RecordedAt) == day {
			matched = append(matched, sample.SpeedKmh)
		}
	}

	if len(matched) > 0 {
		return mean(matched), nil
	}
	return mean(all), nil
}

func (s *ETAService) recentSpeed(ctx context.Context, driverID int64, now time.Time) (float64, int, error) {
	speeds, err := s.positions.RecentSpeeds(ctx, driverID, now.Add(-recentWindow), recentLimit)
	if err != nil {
		return 0, 0, err
	}
	if len(speeds) == 0 {
		return 0, 0, nil
	}
	return mean(speeds), len(speeds), nil
}

func bucketOf(t time.Time) timeBucket {
	switch h := t.Hour(); {
	case h >= 6 && h < 12:
		return bucketMorning
	case h >= 12 && h < 18:
		return bucketAfternoon
	case h >= 18 && h < 22:
		return bucketEvening
	default:
		return bucketNight
	}
}

func dayTypeOf(t time.Time) dayType {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return dayWeekend
	default:
		return dayWeekday
	}
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
