package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
	"github.com/roadsync/fleet-telemetry/module/core/internal/repository/database"
	"github.com/roadsync/fleet-telemetry/module/core/internal/repository/publisher"
)

// LoadProximityService drives the two automatic load transitions: PICKED_UP
// when a pre-pickup load's driver reaches the pickup stop, DELIVERED when an
// in-delivery load's driver reaches the delivery stop. Every other status
// belongs to dispatch and is never touched.
type LoadProximityService struct {
	loads database.LoadRepository
	pub   publisher.EventPublisher
	now   func() time.Time
}

func NewLoadProximityService(loads database.LoadRepository, pub publisher.EventPublisher) *LoadProximityService {
	return &LoadProximityService{
		loads: loads,
		pub:   pub,
		now:   time.Now,
	}
}

// Evaluate checks every active load of the driver independently. At most one
// transition happens per load per sample.
func (s *LoadProximityService) Evaluate(ctx context.Context, driver *domain.Driver, next *domain.Position) error {
	loads, err := s.loads.GetActiveByDriver(ctx, driver.ID)
	if err != nil {
		return fmt.Errorf("load active loads: %w", err)
	}

	var errs []error
	for i := range loads {
		ld := &loads[i]
		if err := s.evaluateLoad(ctx, ld, next); err != nil {
			errs = append(errs, fmt.Errorf("load %d: %w", ld.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *LoadProximityService) evaluateLoad(ctx context.Context, ld *domain.Load, next *domain.Position) error {
	switch {
	case ld.Status.BeforePickup():
		dist := haversineMeters(next.Latitude, next.Longitude, ld.PickupLat, ld.PickupLon)
		if dist > ProximityRadiusM {
			return nil
		}
		return s.transition(ctx, ld, domain.LoadPickedUp)

	case ld.Status.InDeliveryLeg():
		dist := haversineMeters(next.Latitude, next.Longitude, ld.DeliveryLat, ld.DeliveryLon)
		if dist > ProximityRadiusM {
			return nil
		}
		return s.transition(ctx, ld, domain.LoadDelivered)
	}
	return nil
}

func (s *LoadProximityService) transition(ctx context.Context, ld *domain.Load, to domain.LoadStatus) error {
	at := s.now()

	var changed bool
	var err error
	if to == domain.LoadPickedUp {
		changed, err = s.loads.MarkPickedUp(ctx, ld.ID, at)
	} else {
		changed, err = s.loads.MarkDelivered(ctx, ld.ID, at)
	}
	if err != nil {
		return fmt.Errorf("mark %s: %w", to, err)
	}
	if !changed {
		// Dispatch moved the load first; the status guard won the race for
		// them and there is nothing to announce.
		return nil
	}

	log.WithFields(log.Fields{
		"load_id":   ld.ID,
		"driver_id": ld.DriverID,
		"from":      ld.Status,
		"to":        to,
	}).Info("automatic load transition")

	transition := &domain.LoadTransition{
		LoadID:   ld.ID,
		DriverID: ld.DriverID,
		From:     ld.Status,
		To:       to,
		At:       at,
	}
	if err := s.pub.PublishLoadTransition(ctx, transition); err != nil {
		return fmt.Errorf("publish transition: %w", err)
	}
	return nil
}
