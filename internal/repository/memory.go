package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"thermostat_dashboard/internal/models"
)

// RecordMemory is an in-process RecordRepo with the same stamping contract as
// the SQLite store. Used by tests and available as a db-less store.
type RecordMemory struct {
	mu      sync.RWMutex
	records map[int]models.ThermostatRecord
	nextID  int
}

func NewRecordMemory() *RecordMemory {
	return &RecordMemory{
		records: make(map[int]models.ThermostatRecord),
		nextID:  1,
	}
}

func (r *RecordMemory) List(_ context.Context) ([]models.ThermostatRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ThermostatRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *RecordMemory) GetByID(_ context.Context, id int) (models.ThermostatRecord, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	return rec, ok, nil
}

func (r *RecordMemory) Create(_ context.Context, rec models.ThermostatRecord) (models.ThermostatRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.ID = r.nextID
	r.nextID++
	rec.LastUpdated = stampAfter(time.Time{})
	r.records[rec.ID] = rec
	return rec, nil
}

func (r *RecordMemory) Update(_ context.Context, id int, patch models.UpdateThermostat) (models.ThermostatRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.records[id]
	if !ok {
		return models.ThermostatRecord{}, ErrNotFound
	}
	merged := patch.Apply(existing)
	merged.LastUpdated = stampAfter(existing.LastUpdated)
	r.records[id] = merged
	return merged, nil
}
