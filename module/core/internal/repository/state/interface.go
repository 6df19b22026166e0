package state

import (
	"context"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
)

// DriverLocationStore is the keyed last-known-location projection. Set is
// last-write-wins on UpdatedAt; Get returns nil without error when the
// projection is cold for the driver.
type DriverLocationStore interface {
	Set(ctx context.Context, loc *domain.DriverLocation) error
	Get(ctx context.Context, driverID int64) (*domain.DriverLocation, error)
}
