package publisher

import (
	"context"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
)

type EventPublisher interface {
	PublishGeofenceEvent(ctx context.Context, zone *domain.Zone, event *domain.GeofenceEvent) error
	PublishLoadTransition(ctx context.Context, transition *domain.LoadTransition) error
}
