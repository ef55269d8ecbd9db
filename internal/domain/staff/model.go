// Package staff manages HR records for care workers, together with their
// personnel documents and performance reviews. Staff accounts are limited
// to their own records on all three.
package staff

import (
	"time"

	"github.com/google/uuid"
)

// Employment statuses.
const (
	StatusActive   = "active"
	StatusOnLeave  = "on_leave"
	StatusInactive = "inactive"
)

// Staff maps to the staff table.
type Staff struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	JobTitle  *string    `db:"job_title" json:"job_title,omitempty"`
	Email     *string    `db:"email" json:"email,omitempty"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	Address   *string    `db:"address" json:"address,omitempty"`
	StartDate *time.Time `db:"start_date" json:"start_date,omitempty"`
	Status    string     `db:"status" json:"status"`
	Notes     *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Document maps to the staff_document table. The file body lives in the
// blob store; BlobID points at it.
type Document struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	StaffID   uuid.UUID  `db:"staff_id" json:"staff_id"`
	Name      string     `db:"name" json:"name"`
	Category  *string    `db:"category" json:"category,omitempty"`
	BlobID    *uuid.UUID `db:"blob_id" json:"blob_id,omitempty"`
	Notes     *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Performance maps to the staff_performance table.
type Performance struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	StaffID    uuid.UUID  `db:"staff_id" json:"staff_id"`
	ReviewDate *time.Time `db:"review_date" json:"review_date,omitempty"`
	Reviewer   *string    `db:"reviewer" json:"reviewer,omitempty"`
	Rating     *int       `db:"rating" json:"rating,omitempty"`
	Comments   *string    `db:"comments" json:"comments,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}
