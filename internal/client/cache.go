package client

import (
	"sync"

	"thermostat_dashboard/internal/models"
)

// Cache is the locally cached "list" view every UI reader consults. Optimistic
// patches land here before the server confirms; readers always get clones.
type Cache struct {
	mu             sync.RWMutex
	records        []models.ThermostatRecord
	connectionLost bool
}

func NewCache() *Cache {
	return &Cache{}
}

// Snapshot returns a copy of the cached records and the connection-lost flag.
func (c *Cache) Snapshot() ([]models.ThermostatRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneRecords(c.records), c.connectionLost
}

// Get returns the cached record with the given id.
func (c *Cache) Get(id int) (models.ThermostatRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, rec := range c.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return models.ThermostatRecord{}, false
}

// Replace installs a fresh server list and clears the connection-lost flag.
func (c *Cache) Replace(recs []models.ThermostatRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = cloneRecords(recs)
	c.connectionLost = false
}

// MarkConnectionLost flags the cached data as possibly stale. The data itself
// is kept so the UI can degrade instead of going blank.
func (c *Cache) MarkConnectionLost() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectionLost = true
}

// Patch applies an optimistic partial update in place and returns the
// snapshot taken immediately before it — the exact state to restore on
// failure.
func (c *Cache) Patch(id int, patch models.UpdateThermostat) []models.ThermostatRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := cloneRecords(c.records)
	for i, rec := range c.records {
		if rec.ID == id {
			c.records[i] = patch.Apply(rec)
		}
	}
	return before
}

// Restore reverts the cache to a snapshot previously returned by Patch.
func (c *Cache) Restore(snapshot []models.ThermostatRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = cloneRecords(snapshot)
}

// ApplyRecord upserts a single authoritative server record.
func (c *Cache) ApplyRecord(rec models.ThermostatRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.records {
		if c.records[i].ID == rec.ID {
			c.records[i] = rec
			c.connectionLost = false
			return
		}
	}
	c.records = append(c.records, rec)
	c.connectionLost = false
}

func cloneRecords(recs []models.ThermostatRecord) []models.ThermostatRecord {
	if len(recs) == 0 {
		return nil
	}
	dup := make([]models.ThermostatRecord, len(recs))
	copy(dup, recs)
	return dup
}
