package domain

import "time"

// Position is a single normalized telemetry sample. Rows are append-only;
// per-device ordering is defined by RecordedAt with ReceivedAt as tiebreaker.
type Position struct {
	ID         int64      `json:"id"`
	DeviceID   string     `json:"device_id"`
	DriverID   int64      `json:"driver_id"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	SpeedKmh   *float64   `json:"speed_kmh,omitempty"`
	Bearing    *float64   `json:"bearing,omitempty"`
	Altitude   *float64   `json:"altitude,omitempty"`
	Battery    *float64   `json:"battery,omitempty"`
	AccuracyM  *float64   `json:"accuracy_m,omitempty"`
	RecordedAt time.Time  `json:"recorded_at"`
	ReceivedAt time.Time  `json:"received_at"`
}

// DriverLocation is the mutable last-known-location projection for a driver.
// UpdatedAt carries the ReceivedAt of the sample that produced it so stale
// redeliveries can be rejected centrally.
type DriverLocation struct {
	DriverID  int64     `json:"driver_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Driver is the directory record mapping an external device id to a driver.
// A device id maps to at most one driver at any time.
type Driver struct {
	ID       int64  `json:"id"`
	DeviceID string `json:"device_id"`
	Name     string `json:"name"`
}

type HistoryQuery struct {
	DriverID int64
	Start    time.Time
	End      time.Time
}

// SpeedSample is a positive recorded speed with its device timestamp, used
// for time-of-day bucketed averaging.
type SpeedSample struct {
	SpeedKmh   float64
	RecordedAt time.Time
}
