// Package documents manages shared document templates and client consent
// records (DoLS authorisations).
package documents

import (
	"time"

	"github.com/google/uuid"

	"github.com/carehub/carehub/internal/platform/auth"
)

// Template visibility tiers, most restrictive first.
const (
	VisibilityAdminOnly     = "admin_only"
	VisibilityStaffAndAdmin = "staff_and_admin"
	VisibilityEveryone      = "everyone"
)

func validVisibility(v string) bool {
	switch v {
	case VisibilityAdminOnly, VisibilityStaffAndAdmin, VisibilityEveryone:
		return true
	}
	return false
}

// VisibleTiers returns the visibility values a role may list.
func VisibleTiers(role auth.Role) []string {
	switch role {
	case auth.RoleAdmin:
		return []string{VisibilityAdminOnly, VisibilityStaffAndAdmin, VisibilityEveryone}
	case auth.RoleStaff:
		return []string{VisibilityStaffAndAdmin, VisibilityEveryone}
	default:
		return []string{VisibilityEveryone}
	}
}

// Template maps to the template table. Attachments holds blob store
// identifiers for the uploaded files.
type Template struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Visibility  string    `db:"visibility" json:"visibility"`
	Attachments []string  `db:"attachments" json:"attachments"`
	UploadedBy  uuid.UUID `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Consent record statuses.
const (
	ConsentActive   = "active"
	ConsentArchived = "archived"
)

// ConsentRecord maps to the consent_record table. DoLSInPlace records
// whether a deprivation of liberty safeguard authorisation exists for the
// client.
type ConsentRecord struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	ClientID             uuid.UUID  `db:"client_id" json:"client_id"`
	DoLSInPlace          bool       `db:"dols_in_place" json:"dols_in_place"`
	AuthorizationEndDate *time.Time `db:"authorization_end_date" json:"authorization_end_date,omitempty"`
	Conditions           *string    `db:"conditions" json:"conditions,omitempty"`
	Status               string     `db:"status" json:"status"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}
