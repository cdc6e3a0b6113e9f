package repository

import (
	"context"
	"database/sql"
	"errors"

	"thermostat_dashboard/internal/models"
)

// ErrNotFound is returned by Update when the record id does not exist.
// GetByID reports a missing id via its found flag instead.
var ErrNotFound = errors.New("thermostat not found")

// RecordRepo is the record store contract. LastUpdated stamping is owned by
// the implementation: every Create/Update re-stamps it with a value strictly
// greater than the record's previous stamp.
type RecordRepo interface {
	List(ctx context.Context) ([]models.ThermostatRecord, error)
	GetByID(ctx context.Context, id int) (models.ThermostatRecord, bool, error)
	Create(ctx context.Context, rec models.ThermostatRecord) (models.ThermostatRecord, error)
	Update(ctx context.Context, id int, patch models.UpdateThermostat) (models.ThermostatRecord, error)
}

type Repository struct {
	Records RecordRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Records: NewRecordSQLite(db),
	}
}
