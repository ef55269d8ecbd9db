// Package client manages the people receiving care. Client records anchor
// most other record types: care plans, medication, incidents and daily logs
// all hang off a client.
package client

import (
	"time"

	"github.com/google/uuid"
)

// Client maps to the client table.
type Client struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	FirstName        string     `db:"first_name" json:"first_name"`
	LastName         string     `db:"last_name" json:"last_name"`
	Room             *string    `db:"room" json:"room,omitempty"`
	DateOfBirth      *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender           *string    `db:"gender" json:"gender,omitempty"`
	Address          *string    `db:"address" json:"address,omitempty"`
	Phone            *string    `db:"phone" json:"phone,omitempty"`
	Email            *string    `db:"email" json:"email,omitempty"`
	NHSNumber        *string    `db:"nhs_number" json:"nhs_number,omitempty"`
	GPName           *string    `db:"gp_name" json:"gp_name,omitempty"`
	GPPhone          *string    `db:"gp_phone" json:"gp_phone,omitempty"`
	EmergencyContact *string    `db:"emergency_contact" json:"emergency_contact,omitempty"`
	EmergencyPhone   *string    `db:"emergency_phone" json:"emergency_phone,omitempty"`
	Status           string     `db:"status" json:"status"`
	Notes            *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Client statuses.
const (
	StatusActive     = "active"
	StatusInactive   = "inactive"
	StatusDischarged = "discharged"
)
