// Package compliance tracks organization-level regulatory requirements:
// inspections, certificates, policies due for renewal. Records are visible
// to external reviewers, unlike client-owned data.
package compliance

import (
	"time"

	"github.com/google/uuid"
)

// Requirement statuses.
const (
	StatusCompliant      = "compliant"
	StatusActionRequired = "action_required"
	StatusOverdue        = "overdue"
)

// Record maps to the compliance table.
type Record struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Requirement string     `db:"requirement" json:"requirement"`
	Category    *string    `db:"category" json:"category,omitempty"`
	Status      string     `db:"status" json:"status"`
	DueDate     *time.Time `db:"due_date" json:"due_date,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	AssignedTo  *string    `db:"assigned_to" json:"assigned_to,omitempty"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	Attachments []string   `db:"attachments" json:"attachments"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

func validStatus(s string) bool {
	switch s {
	case StatusCompliant, StatusActionRequired, StatusOverdue:
		return true
	}
	return false
}
