package core

import (
	"database/sql"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"

	handler "github.com/roadsync/fleet-telemetry/module/core/internal/handler/http"
	"github.com/roadsync/fleet-telemetry/module/core/internal/handler/subscriber"
	"github.com/roadsync/fleet-telemetry/module/core/internal/repository/database/postgres"
	"github.com/roadsync/fleet-telemetry/module/core/internal/repository/publisher/rabbitmq"
	stateredis "github.com/roadsync/fleet-telemetry/module/core/internal/repository/state/redis"
	"github.com/roadsync/fleet-telemetry/module/core/service"
)

const (
	dispatchShards    = 16
	dispatchQueueSize = 256
)

type Module struct {
	TelemetrySvc *service.TelemetryService
	GeofenceSvc  *service.GeofenceService
	ProximitySvc *service.LoadProximityService
	ETASvc       *service.ETAService

	dispatcher *service.Dispatcher

	telemetryHandler *handler.TelemetryHandler
	etaHandler       *handler.ETAHandler
	driverHandler    *handler.DriverHandler

	telemetrySub *subscriber.TelemetrySubscriber
	loadSub      *subscriber.LoadSubscriber
}

func Build(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, redisClient *goredis.Client) (*Module, error) {
	positionRepo := postgres.NewPositionRepo(db)
	driverRepo := postgres.NewDriverRepo(db)
	zoneRepo := postgres.NewZoneRepo(db)
	eventRepo := postgres.NewGeofenceEventRepo(db)
	loadRepo := postgres.NewLoadRepo(db)

	locationStore := stateredis.NewDriverLocationStore(redisClient)

	eventPub, err := rabbitmq.NewEventPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("event publisher: %w", err)
	}

	geofenceSvc := service.NewGeofenceService(zoneRepo, eventRepo, eventPub)
	proximitySvc := service.NewLoadProximityService(loadRepo, eventPub)
	dispatcher := service.NewDispatcher(geofenceSvc, proximitySvc, dispatchShards, dispatchQueueSize)
	telemetrySvc := service.NewTelemetryService(driverRepo, positionRepo, locationStore, dispatcher)
	etaSvc := service.NewETAService(positionRepo, loadRepo, locationStore)

	return &Module{
		TelemetrySvc: telemetrySvc,
		GeofenceSvc:  geofenceSvc,
		ProximitySvc: proximitySvc,
		ETASvc:       etaSvc,

		dispatcher: dispatcher,

		telemetryHandler: handler.NewTelemetryHandler(telemetrySvc),
		etaHandler:       handler.NewETAHandler(etaSvc),
		driverHandler:    handler.NewDriverHandler(telemetrySvc),

		telemetrySub: subscriber.NewTelemetrySubscriber(mqttClient, telemetrySvc),
		loadSub:      subscriber.NewLoadSubscriber(amqpConn, geofenceSvc),
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	api := r.Group("/api")
	m.telemetryHandler.Register(api)
	m.etaHandler.Register(api)
	m.driverHandler.Register(api)
}

func (m *Module) Start() error {
	m.dispatcher.Start()

	if err := m.telemetrySub.Start(); err != nil {
		return fmt.Errorf("telemetry subscriber: %w", err)
	}
	if err := m.loadSub.Start(); err != nil {
		return fmt.Errorf("load subscriber: %w", err)
	}
	return nil
}

// Stop drains the evaluation queues before returning.
func (m *Module) Stop() {
	m.dispatcher.Stop()
}
