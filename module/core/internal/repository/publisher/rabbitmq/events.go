package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
	"github.com/roadsync/fleet-telemetry/module/core/internal/repository/publisher"
)

var _ publisher.EventPublisher = (*EventPublisher)(nil)

const (
	exchangeName = "fleet.events"
	queueName    = "telemetry_events"
)

type EventPublisher struct {
	ch *amqp.Channel
}

func NewEventPublisher(conn *amqp.Connection) (*EventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queueName, "", exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &EventPublisher{ch: ch}, nil
}

type geofenceMessage struct {
	Type      string   `json:"type"`
	ZoneID    int64    `json:"zone_id"`
	ZoneName  string   `json:"zone_name"`
	LoadID    *int64   `json:"load_id,omitempty"`
	DriverID  int64    `json:"driver_id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	SpeedKmh  *float64 `json:"speed_kmh,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

type loadTransitionMessage struct {
	Type      string `json:"type"`
	LoadID    int64  `json:"load_id"`
	DriverID  int64  `json:"driver_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Timestamp int64  `json:"timestamp"`
}

func (p *EventPublisher) PublishGeofenceEvent(ctx context.Context, zone *domain.Zone, event *domain.GeofenceEvent) error {
	msgType := "GEOFENCE_ENTRY"
	if event.EventType == domain.GeofenceExit {
		msgType = "GEOFENCE_EXIT"
	}

	msg := geofenceMessage{
		Type:      msgType,
		ZoneID:    zone.ID,
		ZoneName:  zone.Name,
		LoadID:    zone.LoadID,
		DriverID:  event.DriverID,
		Latitude:  event.Latitude,
		Longitude: event.Longitude,
		SpeedKmh:  event.SpeedKmh,
		Timestamp: event.CreatedAt.Unix(),
	}
	return p.publish(ctx, msg)
}

func (p *EventPublisher) PublishLoadTransition(ctx context.Context, transition *domain.LoadTransition) error {
	msg := loadTransitionMessage{
		Type:      "LOAD_" + string(transition.To),
		LoadID:    transition.LoadID,
		DriverID:  transition.DriverID,
		From:      string(transition.From),
		To:        string(transition.To),
		Timestamp: transition.At.Unix(),
	}
	return p.publish(ctx, msg)
}

func (p *EventPublisher) publish(ctx context.Context, msg interface{}) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.ch.PublishWithContext(ctx, exchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}
