// Package auth implements bearer-token authentication, the declarative
// role-based access policy, and per-role record visibility scoping.
package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Role is a caller's access role. There is no inheritance between roles:
// every permission a role holds is listed explicitly in the policy table.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleStaff    Role = "Staff"
	RoleClient   Role = "Client"
	RoleFamily   Role = "Family"
	RoleExternal Role = "External"
)

var validRoles = map[Role]bool{
	RoleAdmin: true, RoleStaff: true, RoleClient: true,
	RoleFamily: true, RoleExternal: true,
}

// ParseRole validates a role string from an untrusted source.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !validRoles[r] {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}

// Identity is the authenticated caller for the current request, derived once
// from a verified token and never persisted.
type Identity struct {
	UserID    uuid.UUID
	FullName  string
	Email     string
	Role      Role
	ClientIDs []uuid.UUID // clients attached to a Client/Family account
	StaffID   *uuid.UUID  // HR record linked to a Staff account
	Tenant    string      // organization the account belongs to
}

// Actor returns the identifier recorded in audit entries.
func (id *Identity) Actor() string {
	if id.Email != "" {
		return id.Email
	}
	return id.UserID.String()
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity stores the identity on the request context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller identity, or nil when the request
// was not authenticated.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}
