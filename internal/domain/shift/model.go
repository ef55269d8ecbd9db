// Package shift covers the staff rota: assigned shifts and recorded
// days off.
package shift

import (
	"time"

	"github.com/google/uuid"
)

// Entry types. A dayoff entry blocks the date without start/end times.
const (
	TypeShift  = "shift"
	TypeDayOff = "dayoff"
)

func validType(t string) bool {
	return t == TypeShift || t == TypeDayOff
}

// Shift maps to the shift table. Start and End are clock times in
// "HH:MM" form; Rate and Hours are free-text payroll hints carried
// through to exports.
type Shift struct {
	ID        uuid.UUID `db:"id" json:"id"`
	StaffID   uuid.UUID `db:"staff_id" json:"staff_id"`
	Date      time.Time `db:"shift_date" json:"date"`
	Type      string    `db:"shift_type" json:"type"`
	Start     *string   `db:"start_time" json:"start,omitempty"`
	End       *string   `db:"end_time" json:"end,omitempty"`
	Location  *string   `db:"location" json:"location,omitempty"`
	Resident  *string   `db:"resident" json:"resident,omitempty"`
	Rate      *string   `db:"rate" json:"rate,omitempty"`
	Hours     *string   `db:"hours" json:"hours,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
