package models

import "time"

// SettingMaintenanceMode is the persisted key gating all mutating operations.
const SettingMaintenanceMode = "maintenance_mode"

// Setting is a single persisted key/value entry in the academic store.
type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedBy *string   `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
