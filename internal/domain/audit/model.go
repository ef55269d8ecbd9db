// Package audit implements the append-only audit trail. Every sensitive
// mutation in the system records who did what to which record; entries are
// never updated in place.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Actions recorded in the trail.
const (
	ActionCreate = "Create"
	ActionUpdate = "Update"
	ActionDelete = "Delete"
	ActionLogin  = "Login"
	ActionSignup = "Signup"
	ActionPurge  = "Purge"
)

// Entry maps to the audit_log table. Actor is the acting user's email,
// falling back to the user id when no email is known. Requirement and
// ClientID carry extra context for training and client-owned records.
type Entry struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Actor       string     `db:"actor" json:"actor"`
	Action      string     `db:"action" json:"action"`
	TargetType  string     `db:"target_type" json:"target_type"`
	TargetID    *uuid.UUID `db:"target_id" json:"target_id,omitempty"`
	Requirement *string    `db:"requirement" json:"requirement,omitempty"`
	ClientID    *uuid.UUID `db:"client_id" json:"client_id,omitempty"`
	Detail      *string    `db:"detail" json:"detail,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Filter narrows audit trail listings.
type Filter struct {
	Actor      string
	Action     string
	TargetType string
	TargetID   *uuid.UUID
	ClientID   *uuid.UUID
	From       *time.Time
	To         *time.Time
}
