// Package incident manages incident reports raised against clients.
package incident

import (
	"time"

	"github.com/google/uuid"
)

// Severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Report statuses.
const (
	StatusOpen        = "open"
	StatusUnderReview = "under_review"
	StatusClosed      = "closed"
)

// Incident maps to the incident table.
type Incident struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	ClientID     uuid.UUID  `db:"client_id" json:"client_id"`
	ReportedBy   *string    `db:"reported_by" json:"reported_by,omitempty"`
	OccurredAt   *time.Time `db:"occurred_at" json:"occurred_at,omitempty"`
	Location     *string    `db:"location" json:"location,omitempty"`
	Severity     string     `db:"severity" json:"severity"`
	Description  string     `db:"description" json:"description"`
	ActionsTaken *string    `db:"actions_taken" json:"actions_taken,omitempty"`
	Status       string     `db:"status" json:"status"`
	Attachments  []string   `db:"attachments" json:"attachments"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

func validSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

func validStatus(s string) bool {
	switch s {
	case StatusOpen, StatusUnderReview, StatusClosed:
		return true
	}
	return false
}
