package auth

import (
	"github.com/google/uuid"

	"github.com/carehub/carehub/internal/platform/apperror"
)

// Scope describes how a list/read query must be narrowed for the caller.
// Narrowing is decided server-side on every scoped endpoint; the client is
// never trusted to self-restrict.
type Scope struct {
	// All is true for callers that see every record (Admin, Staff on
	// client-owned resources, External on organization-visible resources).
	All bool
	// ClientIDs restricts client-owned resources when All is false. An
	// empty slice means the caller legitimately sees nothing: the result
	// is an empty collection, never an error.
	ClientIDs []uuid.UUID
}

// ClientScope returns the narrowing applied to client-owned resources for
// the caller. Client and Family accounts see only records whose owning
// client is attached to them.
func ClientScope(id *Identity) Scope {
	switch id.Role {
	case RoleClient, RoleFamily:
		return Scope{ClientIDs: id.ClientIDs}
	default:
		return Scope{All: true}
	}
}

// StaffScope returns the staff record a Staff caller is limited to on
// staff-self resources (own HR profile, performance, training, documents).
// A Staff account without a linked HR record is a configuration error
// surfaced to the caller, not an empty or unrestricted view. Other roles
// permitted on these resources are unscoped.
func StaffScope(id *Identity) (staffID *uuid.UUID, err error) {
	if id.Role != RoleStaff {
		return nil, nil
	}
	if id.StaffID == nil {
		return nil, apperror.New(apperror.KindValidation, "hr reference missing for staff account")
	}
	return id.StaffID, nil
}

// CanSeeClient reports whether the caller's scope covers the given client.
func (s Scope) CanSeeClient(clientID uuid.UUID) bool {
	if s.All {
		return true
	}
	for _, id := range s.ClientIDs {
		if id == clientID {
			return true
		}
	}
	return false
}
