package models

import "time"

// System modes.
const (
	SystemHeat = "heat"
	SystemCool = "cool"
	SystemAuto = "auto"
	SystemOff  = "off"
)

// Fan modes.
const (
	FanAuto = "auto"
	FanOn   = "on"
)

// Target set point bounds, °F.
const (
	MinTargetTemp = 50
	MaxTargetTemp = 90
)

// ThermostatRecord is the persisted thermostat document.
// LastUpdated is stamped by the store on every create/update and acts as the
// record's logical version; callers never supply it.
type ThermostatRecord struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	CurrentTemp     int       `json:"currentTemp"`     // °F, sensor-reported
	TargetTemp      int       `json:"targetTemp"`      // °F, user set point
	SystemMode      string    `json:"systemMode"`      // heat | cool | auto | off
	FanMode         string    `json:"fanMode"`         // auto | on
	CurrentHumidity int       `json:"currentHumidity"` // %RH
	LastUpdated     time.Time `json:"lastUpdated"`
}

// Version returns LastUpdated as epoch milliseconds, with the zero time
// reported as 0 so it compares as "older than everything".
func (r ThermostatRecord) Version() int64 {
	if r.LastUpdated.IsZero() {
		return 0
	}
	return r.LastUpdated.UnixMilli()
}

// UpdateThermostat is a partial update; nil fields are left untouched.
// ID and LastUpdated are deliberately absent — the store owns both.
type UpdateThermostat struct {
	Name            *string `json:"name,omitempty"`
	CurrentTemp     *int    `json:"currentTemp,omitempty"`
	TargetTemp      *int    `json:"targetTemp,omitempty"`
	SystemMode      *string `json:"systemMode,omitempty"`
	FanMode         *string `json:"fanMode,omitempty"`
	CurrentHumidity *int    `json:"currentHumidity,omitempty"`
}

// Apply merges the non-nil fields into rec and returns the result.
func (u UpdateThermostat) Apply(rec ThermostatRecord) ThermostatRecord {
	if u.Name != nil {
		rec.Name = *u.Name
	}
	if u.CurrentTemp != nil {
		rec.CurrentTemp = *u.CurrentTemp
	}
	if u.TargetTemp != nil {
		rec.TargetTemp = *u.TargetTemp
	}
	if u.SystemMode != nil {
		rec.SystemMode = *u.SystemMode
	}
	if u.FanMode != nil {
		rec.FanMode = *u.FanMode
	}
	if u.CurrentHumidity != nil {
		rec.CurrentHumidity = *u.CurrentHumidity
	}
	return rec
}

// ValidSystemMode reports whether m is an accepted system mode.
func ValidSystemMode(m string) bool {
	switch m {
	case SystemHeat, SystemCool, SystemAuto, SystemOff:
		return true
	}
	return false
}

// ValidFanMode reports whether m is an accepted fan mode.
func ValidFanMode(m string) bool {
	return m == FanAuto || m == FanOn
}
