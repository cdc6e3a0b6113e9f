package handlers

import (
	"context"
	"time"

	"thermostat_dashboard/internal/models"
	"thermostat_dashboard/internal/pubsub"
)

// ---- Service mocks (tests only; kept here like the rest of the package's
// test scaffolding so every handler test shares them) ----

type mockSync struct {
	list    []models.ThermostatRecord
	listErr error

	rec    models.ThermostatRecord
	getErr error

	updated    models.ThermostatRecord
	updateErr  error
	lastPatch  models.UpdateThermostat
	lastID     int
	updateCall int

	pollRec      models.ThermostatRecord
	pollModified bool
	pollErr      error
	lastSince    int64
	lastHasSince bool

	feed *pubsub.Feed
}

func (m *mockSync) List(ctx context.Context) ([]models.ThermostatRecord, error) {
	return m.list, m.listErr
}

func (m *mockSync) Get(ctx context.Context, id int) (models.ThermostatRecord, error) {
	if m.getErr != nil {
		return models.ThermostatRecord{}, m.getErr
	}
	return m.rec, nil
}

func (m *mockSync) Update(ctx context.Context, id int, patch models.UpdateThermostat) (models.ThermostatRecord, error) {
	m.updateCall++
	m.lastID = id
	m.lastPatch = patch
	if m.updateErr != nil {
		return models.ThermostatRecord{}, m.updateErr
	}
	return m.updated, nil
}

func (m *mockSync) Poll(ctx context.Context, id int, since int64, hasSince bool) (models.ThermostatRecord, bool, error) {
	m.lastSince = since
	m.lastHasSince = hasSince
	if m.pollErr != nil {
		return models.ThermostatRecord{}, false, m.pollErr
	}
	return m.pollRec, m.pollModified, nil
}

func (m *mockSync) Subscribe(id int) *pubsub.Subscription {
	return m.feed.Subscribe(id)
}

func sampleRecord(target int) models.ThermostatRecord {
	return models.ThermostatRecord{
		ID:              1,
		Name:            "Living Room",
		CurrentTemp:     72,
		TargetTemp:      target,
		SystemMode:      models.SystemCool,
		FanMode:         models.FanAuto,
		CurrentHumidity: 45,
		LastUpdated:     time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}
