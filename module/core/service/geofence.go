package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
	"github.com/roadsync/fleet-telemetry/module/core/internal/repository/database"
	"github.com/roadsync/fleet-telemetry/module/core/internal/repository/publisher"
)

// GeofenceService detects zone membership transitions between consecutive
// positions of a device and records exactly one event per transition.
type GeofenceService struct {
	zones  database.ZoneRepository
	events database.GeofenceEventRepository
	pub    publisher.EventPublisher
}

func NewGeofenceService(zones database.ZoneRepository, events database.GeofenceEventRepository, pub publisher.EventPublisher) *GeofenceService {
	return &GeofenceService{
		zones:  zones,
		events: events,
		pub:    pub,
	}
}

// Evaluate compares membership of prev and next against every active zone.
// A nil prev means the driver was previously outside every zone, so a first
// sample inside a zone triggers ENTRY and never EXIT. Failures on one zone
// do not stop evaluation of the rest.
func (s *GeofenceService) Evaluate(ctx context.Context, driver *domain.Driver, prev, next *domain.Position) error {
	zones, err := s.zones.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("load zones: %w", err)
	}

	var errs []error
	for i := range zones {
		zone := &zones[i]

		insideNow := haversineMeters(next.Latitude, next.Longitude, zone.Latitude, zone.Longitude) <= zone.RadiusM
		insideBefore := prev != nil &&
			haversineMeters(prev.Latitude, prev.Longitude, zone.Latitude, zone.Longitude) <= zone.RadiusM

		switch {
		case insideNow && !insideBefore && zone.NotifyEntry:
			if err := s.emit(ctx, zone, driver, next, domain.GeofenceEntry); err != nil {
				errs = append(errs, err)
			}
		case !insideNow && insideBefore && zone.NotifyExit:
			if err := s.emit(ctx, zone, driver, next, domain.GeofenceExit); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (s *GeofenceService) emit(ctx context.Context, zone *domain.Zone, driver *domain.Driver, pos *domain.Position, eventType domain.GeofenceEventType) error {
	event := &domain.GeofenceEvent{
		ZoneID:    zone.ID,
		DriverID:  driver.ID,
		EventType: eventType,
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		SpeedKmh:  pos.SpeedKmh,
		CreatedAt: pos.ReceivedAt,
	}

	id, err := s.events.Insert(ctx, event)
	if err != nil {
		return fmt.Errorf("zone %d: store event: %w", zone.ID, err)
	}
	event.ID = id

	if err := s.pub.PublishGeofenceEvent(ctx, zone, event); err != nil {
		return fmt.Errorf("zone %d: publish event: %w", zone.ID, err)
	}
	return nil
}

// CreateLoadZones creates the PICKUP and DELIVERY zones for a newly created
// load, both entry-notify, tagged with the load id.
func (s *GeofenceService) CreateLoadZones(ctx context.Context, ev *domain.LoadCreated) error {
	loadID := ev.LoadID

	pickup := &domain.Zone{
		Name:        fmt.Sprintf("load %d pickup", ev.LoadID),
		Latitude:    ev.PickupLat,
		Longitude:   ev.PickupLon,
		RadiusM:     ProximityRadiusM,
		Active:      true,
		NotifyEntry: true,
		LoadID:      &loadID,
		Stop:        domain.ZoneStopPickup,
	}
	if _, err := s.zones.Insert(ctx, pickup); err != nil {
		return fmt.Errorf("create pickup zone: %w", err)
	}

	delivery := &domain.Zone{
		Name:        fmt.Sprintf("load %d delivery", ev.LoadID),
		Latitude:    ev.DeliveryLat,
		Longitude:   ev.DeliveryLon,
		RadiusM:     ProximityRadiusM,
		Active:      true,
		NotifyEntry: true,
		LoadID:      &loadID,
		Stop:        domain.ZoneStopDelivery,
	}
	if _, err := s.zones.Insert(ctx, delivery); err != nil {
		return fmt.Errorf("create delivery zone: %w", err)
	}
	return nil
}
