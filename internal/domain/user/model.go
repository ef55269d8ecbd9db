// Package user implements account management and session issuing: the
// first-admin bootstrap, admin-gated signup, bcrypt credential checks, and
// JWT login.
package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/carehub/carehub/internal/platform/auth"
)

// User maps to the app_user table. ClientIDs attaches Client/Family accounts
// to the clients they may see; StaffID links a Staff account to its HR
// record. The password hash never serializes.
type User struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	FullName     string      `db:"full_name" json:"full_name"`
	Email        string      `db:"email" json:"email"`
	PasswordHash string      `db:"password_hash" json:"-"`
	Role         auth.Role   `db:"role" json:"role"`
	ClientIDs    []uuid.UUID `db:"client_ids" json:"client_ids,omitempty"`
	StaffID      *uuid.UUID  `db:"staff_id" json:"staff_id,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// Identity converts the stored account into a request identity.
func (u *User) Identity() *auth.Identity {
	return &auth.Identity{
		UserID:    u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		ClientIDs: u.ClientIDs,
		StaffID:   u.StaffID,
	}
}

// SignupRequest is the payload accepted by signup.
type SignupRequest struct {
	FullName  string      `json:"full_name"`
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	Role      string      `json:"role"`
	ClientIDs []uuid.UUID `json:"client_ids,omitempty"`
	StaffID   *uuid.UUID  `json:"staff_id,omitempty"`
}

// LoginRequest is the payload accepted by login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the signed session token and the account it belongs to.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// UpdateRequest is the payload accepted by account updates. Nil fields are
// left unchanged; a non-nil empty password is rejected.
type UpdateRequest struct {
	FullName  *string      `json:"full_name,omitempty"`
	Password  *string      `json:"password,omitempty"`
	Role      *string      `json:"role,omitempty"`
	ClientIDs *[]uuid.UUID `json:"client_ids,omitempty"`
	StaffID   *uuid.UUID   `json:"staff_id,omitempty"`
}
