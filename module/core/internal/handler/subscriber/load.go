package subscriber

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
)

const loadCreatedQueue = "load_created"

type zoneCreator interface {
	CreateLoadZones(ctx context.Context, ev *domain.LoadCreated) error
}

// LoadSubscriber consumes load-created events from the Load Directory and
// auto-creates the pickup/delivery zones for each new load.
type LoadSubscriber struct {
	conn    *amqp.Connection
	creator zoneCreator
}

func NewLoadSubscriber(conn *amqp.Connection, creator zoneCreator) *LoadSubscriber {
	return &LoadSubscriber{conn: conn, creator: creator}
}

func (s *LoadSubscriber) Start() error {
	ch, err := s.conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	if _, err := ch.QueueDeclare(loadCreatedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	msgs, err := ch.Consume(loadCreatedQueue, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	go func() {
		for msg := range msgs {
			s.handleMessage(msg.Body)
		}
	}()
	return nil
}

func (s *LoadSubscriber) handleMessage(body []byte) {
	var ev domain.LoadCreated
	if err := json.Unmarshal(body, &ev); err != nil {
		log.WithError(err).Warn("invalid load created event")
		return
	}
	if ev.LoadID == 0 {
		log.Warn("load created event without load id")
		return
	}

	if err := s.creator.CreateLoadZones(context.Background(), &ev); err != nil {
		log.WithError(err).WithField("load_id", ev.LoadID).Error("auto-create load zones")
	}
}
