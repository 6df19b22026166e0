package subscriber

import (
	"context"
	"encoding/json"
	"strconv"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
	"github.com/roadsync/fleet-telemetry/module/core/internal/wire"
)

const topicPattern = "/fleet/device/+/location"

type ingestService interface {
	Ingest(ctx context.Context, raw *wire.RawSample) (*domain.Position, error)
}

// sampleMessage is the flat JSON shape broker-connected devices publish.
// Broker installs run newer firmware, so only the flat shape is accepted
// here; the HTTP gateway handles the legacy variants.
type sampleMessage struct {
	DeviceID  string   `json:"device_id"`
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lon"`
	SpeedKmh  *float64 `json:"speed"`
	Bearing   *float64 `json:"bearing"`
	Battery   *float64 `json:"battery"`
	Timestamp int64    `json:"timestamp"`
}

// TelemetrySubscriber feeds MQTT-published samples into the same ingestion
// gateway the HTTP endpoint uses.
type TelemetrySubscriber struct {
	client mqtt.Client
	svc    ingestService
}

func NewTelemetrySubscriber(client mqtt.Client, svc ingestService) *TelemetrySubscriber {
	return &TelemetrySubscriber{client: client, svc: svc}
}

func (s *TelemetrySubscriber) Start() error {
	token := s.client.Subscribe(topicPattern, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *TelemetrySubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw sampleMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.WithError(err).WithField("topic", msg.Topic()).Warn("invalid sample payload")
		return
	}

	sample := &wire.RawSample{
		DeviceID:  raw.DeviceID,
		Lat:       formatOptional(raw.Latitude),
		Lon:       formatOptional(raw.Longitude),
		Speed:     formatOptional(raw.SpeedKmh),
		Bearing:   formatOptional(raw.Bearing),
		Battery:   formatOptional(raw.Battery),
		Timestamp: strconv.FormatInt(raw.Timestamp, 10),
	}
	if raw.Timestamp == 0 {
		sample.Timestamp = ""
	}

	if _, err := s.svc.Ingest(context.Background(), sample); err != nil {
		log.WithError(err).WithField("device_id", raw.DeviceID).Warn("sample rejected")
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
