package service

import (
	"context"
	"math/rand"
	"time"

	"thermostat_dashboard/internal/models"
)

// Sensor simulation constants.
const (
	TempStepPerTick = 1 // °F moved toward target per tick
	MinHumidity     = 30
	MaxHumidity     = 60
)

// SimulatorService stands in for the physical device: it nudges the reported
// temperature toward the set point and wobbles humidity, writing through the
// sync service so pollers and streams observe the sensor changes.
type SimulatorService struct {
	sync Sync
}

func NewSimulatorService(sync Sync) *SimulatorService {
	return &SimulatorService{sync: sync}
}

// Run ticks at the given interval until ctx is canceled.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			// List also lazy-seeds the store on the first tick.
			list, err := s.sync.List(ctx)
			if err != nil {
				continue
			}
			for _, rec := range list {
				s.step(ctx, rec)
			}
		}
	}
}

// step writes one tick's worth of sensor drift for a record, if any.
func (s *SimulatorService) step(ctx context.Context, rec models.ThermostatRecord) {
	patch := models.UpdateThermostat{}
	changed := false

	if next, ok := nextTemp(rec); ok {
		patch.CurrentTemp = &next
		changed = true
	}
	if next, ok := nextHumidity(rec.CurrentHumidity); ok {
		patch.CurrentHumidity = &next
		changed = true
	}

	if !changed {
		return
	}
	_, _ = s.sync.Update(ctx, rec.ID, patch)
}

// nextTemp moves the reported temperature one step toward the set point,
// honoring the system mode: heat only raises, cool only lowers, auto does
// either, off drifts nowhere.
func nextTemp(rec models.ThermostatRecord) (int, bool) {
	diff := rec.TargetTemp - rec.CurrentTemp
	if diff == 0 {
		return 0, false
	}
	switch rec.SystemMode {
	case models.SystemHeat:
		if diff > 0 {
			return rec.CurrentTemp + TempStepPerTick, true
		}
	case models.SystemCool:
		if diff < 0 {
			return rec.CurrentTemp - TempStepPerTick, true
		}
	case models.SystemAuto:
		if diff > 0 {
			return rec.CurrentTemp + TempStepPerTick, true
		}
		return rec.CurrentTemp - TempStepPerTick, true
	}
	return 0, false
}

// nextHumidity wobbles the reading by at most one point within [Min,Max].
func nextHumidity(current int) (int, bool) {
	delta := rand.Intn(3) - 1 // -1, 0, or 1
	if delta == 0 {
		return 0, false
	}
	next := current + delta
	if next < MinHumidity || next > MaxHumidity {
		return 0, false
	}
	return next, true
}
