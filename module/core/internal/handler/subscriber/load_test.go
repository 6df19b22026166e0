package subscriber

import (
	"context"
	"testing"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
)

type mockZoneCreator struct {
	created []*domain.LoadCreated
}

func (m *mockZoneCreator) CreateLoadZones(_ context.Context, ev *domain.LoadCreated) error {
	m.created = append(m.created, ev)
	return nil
}

func TestLoadHandleMessage_ValidEvent(t *testing.T) {
	creator := &mockZoneCreator{}
	sub := &LoadSubscriber{creator: creator}

	sub.handleMessage([]byte(`{"load_id":42,"pickup_lat":43.8563,"pickup_lon":18.4131,"delivery_lat":44.7722,"delivery_lon":17.191}`))

	if len(creator.created) != 1 {
		t.Fatalf("expected 1 zone creation, got %d", len(creator.created))
	}
	ev := creator.created[0]
	if ev.LoadID != 42 || ev.PickupLat != 43.8563 || ev.DeliveryLon != 17.191 {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestLoadHandleMessage_InvalidJSON(t *testing.T) {
	creator := &mockZoneCreator{}
	sub := &LoadSubscriber{creator: creator}

	sub.handleMessage([]byte("not json"))

	if len(creator.created) != 0 {
		t.Errorf("invalid event must not create zones")
	}
}

func TestLoadHandleMessage_MissingLoadID(t *testing.T) {
	creator := &mockZoneCreator{}
	sub := &LoadSubscriber{creator: creator}

	sub.handleMessage([]byte(`{"pickup_lat":1,"pickup_lon":2,"delivery_lat":3,"delivery_lon":4}`))

	if len(creator.created) != 0 {
		t.Errorf("event without load id must be dropped")
	}
}
