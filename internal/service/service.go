package service

import (
	"context"
	"time"

	"thermostat_dashboard/internal/models"
	"thermostat_dashboard/internal/pubsub"
	"thermostat_dashboard/internal/repository"
)

// Sync mediates all reads and writes so the poll and stream channels observe
// one consistent ordering of changes.
type Sync interface {
	List(ctx context.Context) ([]models.ThermostatRecord, error)
	Get(ctx context.Context, id int) (models.ThermostatRecord, error)
	Update(ctx context.Context, id int, patch models.UpdateThermostat) (models.ThermostatRecord, error)
	// Poll answers "has anything changed since?". hasSince=false means the
	// caller sent no timestamp and always gets the current record.
	Poll(ctx context.Context, id int, since int64, hasSince bool) (models.ThermostatRecord, bool, error)
	Subscribe(id int) *pubsub.Subscription
}

// Simulator runs the background loop standing in for the physical device's
// sensors. Stop via context cancellation in main() for graceful shutdown.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

type Service struct {
	Sync
	Simulator
}

// NewService wires the repository layer and change feed into concrete services.
func NewService(repos *repository.Repository, feed *pubsub.Feed) *Service {
	sync := NewSyncService(repos.Records, feed)
	return &Service{
		Sync:      sync,
		Simulator: NewSimulatorService(sync),
	}
}
