package domain

import "time"

type LoadStatus string

const (
	LoadAssigned  LoadStatus = "ASSIGNED"
	LoadAccepted  LoadStatus = "ACCEPTED"
	LoadPickedUp  LoadStatus = "PICKED_UP"
	LoadInTransit LoadStatus = "IN_TRANSIT"
	LoadDelivered LoadStatus = "DELIVERED"
	LoadCompleted LoadStatus = "COMPLETED"
	LoadCancelled LoadStatus = "CANCELLED"
)

// BeforePickup reports whether the load has not yet reached PICKED_UP.
// Only these statuses are eligible for the automatic pickup transition.
func (s LoadStatus) BeforePickup() bool {
	return s == LoadAssigned || s == LoadAccepted
}

// InDeliveryLeg reports whether the load is past pickup but not yet
// delivered. Only these statuses are eligible for the automatic delivery
// transition.
func (s LoadStatus) InDeliveryLeg() bool {
	return s == LoadPickedUp || s == LoadInTransit
}

// Load is the geospatial subset of the Load Directory record. Statuses
// outside the two automatic transitions belong to dispatch and are never
// touched here.
type Load struct {
	ID                 int64      `json:"id"`
	DriverID           int64      `json:"driver_id"`
	Status             LoadStatus `json:"status"`
	PickupLat          float64    `json:"pickup_lat"`
	PickupLon          float64    `json:"pickup_lon"`
	DeliveryLat        float64    `json:"delivery_lat"`
	DeliveryLon        float64    `json:"delivery_lon"`
	ActualPickupDate   *time.Time `json:"actual_pickup_date,omitempty"`
	ActualDeliveryDate *time.Time `json:"actual_delivery_date,omitempty"`
}

// LoadTransition describes one automatic status change, published for
// downstream consumers.
type LoadTransition struct {
	LoadID   int64      `json:"load_id"`
	DriverID int64      `json:"driver_id"`
	From     LoadStatus `json:"from"`
	To       LoadStatus `json:"to"`
	At       time.Time  `json:"at"`
}

type LoadPhase string

const (
	PhaseToPickup   LoadPhase = "TO_PICKUP"
	PhaseToDelivery LoadPhase = "TO_DELIVERY"
	PhaseDelivered  LoadPhase = "DELIVERED"
)
