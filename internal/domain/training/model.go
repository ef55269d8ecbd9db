// Package training tracks staff training records and keeps their status in
// step with the expiry date.
package training

import (
	"time"

	"github.com/google/uuid"
)

// Training statuses derived from the expiry date.
const (
	StatusValid        = "Valid"
	StatusExpiringSoon = "Expiring Soon"
	StatusExpired      = "Expired"
)

// ExpiryWindow is how far ahead of expiry a record counts as expiring soon.
const ExpiryWindow = 30 * 24 * time.Hour

// Training maps to the training table.
type Training struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	StaffID     uuid.UUID  `db:"staff_id" json:"staff_id"`
	Course      string     `db:"course" json:"course"`
	Provider    *string    `db:"provider" json:"provider,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	ExpiryDate  *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	Status      string     `db:"status" json:"status"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	Attachments []string   `db:"attachments" json:"attachments"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// DeriveStatus classifies a training record by its expiry date. It is a
// pure function of the two instants: already past is Expired, within the
// expiry window is Expiring Soon, otherwise Valid. A record with no expiry
// never expires.
func DeriveStatus(expiry *time.Time, now time.Time) string {
	if expiry == nil {
		return StatusValid
	}
	if expiry.Before(now) {
		return StatusExpired
	}
	if !expiry.After(now.Add(ExpiryWindow)) {
		return StatusExpiringSoon
	}
	return StatusValid
}
