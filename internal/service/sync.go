package service

import (
	"context"
	"fmt"
	"sync"

	"thermostat_dashboard/internal/models"
	"thermostat_dashboard/internal/pubsub"
	"thermostat_dashboard/internal/repository"
)

// ErrNotFound mirrors the repository sentinel so handlers depend on the
// service layer only.
var ErrNotFound = repository.ErrNotFound

// ValidationError rejects an out-of-schema update body. Field names the
// offending JSON field when known.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Default record seeded into an empty store on first list.
func seedRecord() models.ThermostatRecord {
	return models.ThermostatRecord{
		Name:            "Living Room",
		CurrentTemp:     72,
		TargetTemp:      70,
		SystemMode:      models.SystemCool,
		FanMode:         models.FanAuto,
		CurrentHumidity: 45,
	}
}

type SyncService struct {
	records repository.RecordRepo
	feed    *pubsub.Feed

	// seedMu serializes the empty-check/create pair so two concurrent first
	// lists cannot seed two records.
	seedMu sync.Mutex
}

func NewSyncService(records repository.RecordRepo, feed *pubsub.Feed) *SyncService {
	return &SyncService{records: records, feed: feed}
}

// List returns all records, lazily seeding one default record when the store
// is empty.
func (s *SyncService) List(ctx context.Context) ([]models.ThermostatRecord, error) {
	list, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		return list, nil
	}

	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	// Re-check under the lock: another request may have seeded already.
	list, err = s.records.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		return list, nil
	}

	created, err := s.records.Create(ctx, seedRecord())
	if err != nil {
		return nil, err
	}
	s.feed.Publish(created.ID, created)
	return s.records.List(ctx)
}

// Get returns one record or ErrNotFound.
func (s *SyncService) Get(ctx context.Context, id int) (models.ThermostatRecord, error) {
	rec, found, err := s.records.GetByID(ctx, id)
	if err != nil {
		return models.ThermostatRecord{}, err
	}
	if !found {
		return models.ThermostatRecord{}, ErrNotFound
	}
	return rec, nil
}

// Update validates and applies a partial update, then publishes the merged
// record to the change feed. The write returns before fan-out consumers run.
func (s *SyncService) Update(ctx context.Context, id int, patch models.UpdateThermostat) (models.ThermostatRecord, error) {
	if err := validatePatch(patch); err != nil {
		return models.ThermostatRecord{}, err
	}
	rec, err := s.records.Update(ctx, id, patch)
	if err != nil {
		return models.ThermostatRecord{}, err
	}
	s.feed.Publish(rec.ID, rec)
	return rec, nil
}

// Poll compares since (epoch ms) to the record's LastUpdated. modified=false
// means "not modified since". A record with a zero LastUpdated compares as 0.
func (s *SyncService) Poll(ctx context.Context, id int, since int64, hasSince bool) (models.ThermostatRecord, bool, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return models.ThermostatRecord{}, false, err
	}
	if !hasSince {
		return rec, true, nil
	}
	if rec.Version() <= since {
		return models.ThermostatRecord{}, false, nil
	}
	return rec, true, nil
}

// Subscribe attaches a listener to the record's change feed.
func (s *SyncService) Subscribe(id int) *pubsub.Subscription {
	return s.feed.Subscribe(id)
}

// validatePatch enforces the update schema server-side: set point range and
// enum membership. The repository trusts already-validated patches.
func validatePatch(patch models.UpdateThermostat) error {
	if patch.TargetTemp != nil {
		if *patch.TargetTemp < models.MinTargetTemp || *patch.TargetTemp > models.MaxTargetTemp {
			return &ValidationError{
				Field:   "targetTemp",
				Message: fmt.Sprintf("must be between %d and %d", models.MinTargetTemp, models.MaxTargetTemp),
			}
		}
	}
	if patch.SystemMode != nil && !models.ValidSystemMode(*patch.SystemMode) {
		return &ValidationError{Field: "systemMode", Message: "must be one of heat, cool, auto, off"}
	}
	if patch.FanMode != nil && !models.ValidFanMode(*patch.FanMode) {
		return &ValidationError{Field: "fanMode", Message: "must be one of auto, on"}
	}
	return nil
}
