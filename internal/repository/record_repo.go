package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"thermostat_dashboard/internal/models"
)

type RecordSQLite struct {
	db *sql.DB
}

func NewRecordSQLite(db *sql.DB) *RecordSQLite {
	return &RecordSQLite{db: db}
}

const (
	listRecordsSQL = `
		SELECT id, name, current_temp, target_temp, system_mode, fan_mode, current_humidity, last_updated
		FROM thermostats ORDER BY id
	`

	selectRecordSQL = `
		SELECT id, name, current_temp, target_temp, system_mode, fan_mode, current_humidity, last_updated
		FROM thermostats WHERE id=?
	`

	insertRecordSQL = `
		INSERT INTO thermostats (name, current_temp, target_temp, system_mode, fan_mode, current_humidity, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	updateRecordSQL = `
		UPDATE thermostats
		SET name=?, current_temp=?, target_temp=?, system_mode=?, fan_mode=?, current_humidity=?, last_updated=?
		WHERE id=?
	`
)

// stampAfter returns the wall clock in UTC at millisecond granularity, bumped
// past prev when the clock hasn't advanced. Consumers compare stamps as epoch
// ms, so strict ordering must hold at that granularity too.
func stampAfter(prev time.Time) time.Time {
	now := time.Now().UTC().Truncate(time.Millisecond)
	if !now.After(prev) {
		return prev.Add(time.Millisecond)
	}
	return now
}

func scanRecord(row interface{ Scan(...any) error }) (models.ThermostatRecord, error) {
	var rec models.ThermostatRecord
	err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.CurrentTemp,
		&rec.TargetTemp,
		&rec.SystemMode,
		&rec.FanMode,
		&rec.CurrentHumidity,
		&rec.LastUpdated,
	)
	if err != nil {
		return models.ThermostatRecord{}, err
	}
	rec.LastUpdated = rec.LastUpdated.UTC()
	return rec, nil
}

// List returns all thermostat records ordered by id.
func (r *RecordSQLite) List(ctx context.Context) ([]models.ThermostatRecord, error) {
	rows, err := r.db.QueryContext(ctx, listRecordsSQL)
	if err != nil {
		return nil, fmt.Errorf("list thermostats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.ThermostatRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan thermostat row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate thermostat rows: %w", err)
	}
	return out, nil
}

// GetByID fetches one record. A missing id is not an error: found is false.
func (r *RecordSQLite) GetByID(ctx context.Context, id int) (models.ThermostatRecord, bool, error) {
	rec, err := scanRecord(r.db.QueryRowContext(ctx, selectRecordSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ThermostatRecord{}, false, nil
		}
		return models.ThermostatRecord{}, false, fmt.Errorf("get thermostat %d: %w", id, err)
	}
	return rec, true, nil
}

// Create inserts a record, assigning the next id and stamping LastUpdated.
// Any id/LastUpdated on the input is ignored.
func (r *RecordSQLite) Create(ctx context.Context, rec models.ThermostatRecord) (models.ThermostatRecord, error) {
	rec.LastUpdated = stampAfter(time.Time{})

	res, err := r.db.ExecContext(ctx, insertRecordSQL,
		rec.Name,
		rec.CurrentTemp,
		rec.TargetTemp,
		rec.SystemMode,
		rec.FanMode,
		rec.CurrentHumidity,
		rec.LastUpdated,
	)
	if err != nil {
		return models.ThermostatRecord{}, fmt.Errorf("insert thermostat: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.ThermostatRecord{}, fmt.Errorf("thermostat insert id: %w", err)
	}
	rec.ID = int(id)
	return rec, nil
}

// Update merges the supplied fields into the existing record, re-stamps
// LastUpdated, and returns the full merged record. ErrNotFound if id is unknown.
func (r *RecordSQLite) Update(ctx context.Context, id int, patch models.UpdateThermostat) (models.ThermostatRecord, error) {
	existing, found, err := r.GetByID(ctx, id)
	if err != nil {
		return models.ThermostatRecord{}, err
	}
	if !found {
		return models.ThermostatRecord{}, ErrNotFound
	}

	merged := patch.Apply(existing)
	merged.LastUpdated = stampAfter(existing.LastUpdated)

	_, err = r.db.ExecContext(ctx, updateRecordSQL,
		merged.Name,
		merged.CurrentTemp,
		merged.TargetTemp,
		merged.SystemMode,
		merged.FanMode,
		merged.CurrentHumidity,
		merged.LastUpdated,
		id,
	)
	if err != nil {
		return models.ThermostatRecord{}, fmt.Errorf("update thermostat %d: %w", id, err)
	}
	return merged, nil
}
