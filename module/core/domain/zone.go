package domain

import "time"

// ZoneStop tags auto-created zones with the load stop they cover. Standing
// zones carry no stop.
type ZoneStop string

const (
	ZoneStopPickup   ZoneStop = "PICKUP"
	ZoneStopDelivery ZoneStop = "DELIVERY"
)

// Zone is a named circular geofence.
type Zone struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	RadiusM     float64  `json:"radius_m"`
	Active      bool     `json:"active"`
	NotifyEntry bool     `json:"notify_entry"`
	NotifyExit  bool     `json:"notify_exit"`
	LoadID      *int64   `json:"load_id,omitempty"`
	Stop        ZoneStop `json:"stop,omitempty"`
}

type GeofenceEventType string

const (
	GeofenceEntry GeofenceEventType = "ENTRY"
	GeofenceExit  GeofenceEventType = "EXIT"
)

// GeofenceEvent records a single membership transition. Exactly one row is
// created per detected transition; rows are never mutated.
type GeofenceEvent struct {
	ID        int64             `json:"id"`
	ZoneID    int64             `json:"zone_id"`
	DriverID  int64             `json:"driver_id"`
	EventType GeofenceEventType `json:"event_type"`
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	SpeedKmh  *float64          `json:"speed_kmh,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// LoadCreated is the collaborator event that triggers pickup/delivery zone
// auto-creation.
type LoadCreated struct {
	LoadID      int64   `json:"load_id"`
	PickupLat   float64 `json:"pickup_lat"`
	PickupLon   float64 `json:"pickup_lon"`
	DeliveryLat float64 `json:"delivery_lat"`
	DeliveryLon float64 `json:"delivery_lon"`
}
