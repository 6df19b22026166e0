package domain

import "time"

// ETAConfidence qualifies how much recent versus historical speed data
// backed an estimate.
type ETAConfidence string

const (
	ConfidenceHigh   ETAConfidence = "HIGH"
	ConfidenceMedium ETAConfidence = "MEDIUM"
	ConfidenceLow    ETAConfidence = "LOW"
)

type ETAEstimate struct {
	DistanceKm        float64       `json:"distance_km"`
	EstimatedSpeedKmh float64       `json:"estimated_speed_kmh"`
	ETAMinutes        int           `json:"eta_minutes"`
	ETATimestamp      time.Time     `json:"eta_timestamp"`
	Confidence        ETAConfidence `json:"confidence"`
}

// LoadETA pairs the current phase of a load with the estimate for its open
// leg. Estimate is nil once the load is delivered.
type LoadETA struct {
	LoadID   int64        `json:"load_id"`
	Phase    LoadPhase    `json:"phase"`
	Estimate *ETAEstimate `json:"eta,omitempty"`
}
