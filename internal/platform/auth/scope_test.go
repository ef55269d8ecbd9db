package auth

import (
	"testing"

	"github.com/google/uuid"

	"github.com/carehub/carehub/internal/platform/apperror"
)

func TestClientScope_AdminSeesAll(t *testing.T) {
	s := ClientScope(&Identity{Role: RoleAdmin})
	if !s.All {
		t.Error("expected unrestricted scope for Admin")
	}
	s = ClientScope(&Identity{Role: RoleStaff})
	if !s.All {
		t.Error("expected unrestricted scope for Staff")
	}
}

func TestClientScope_FamilyRestricted(t *testing.T) {
	c1, c2 := uuid.New(), uuid.New()
	s := ClientScope(&Identity{Role: RoleFamily, ClientIDs: []uuid.UUID{c1, c2}})
	if s.All {
		t.Error("expected restricted scope for Family")
	}
	if !s.CanSeeClient(c1) || !s.CanSeeClient(c2) {
		t.Error("expected attached clients visible")
	}
	if s.CanSeeClient(uuid.New()) {
		t.Error("expected unattached client hidden")
	}
}

func TestClientScope_NoAttachedClients(t *testing.T) {
	// An empty attachment list is a legitimate empty view, not an error.
	s := ClientScope(&Identity{Role: RoleClient})
	if s.All {
		t.Error("expected restricted scope")
	}
	if len(s.ClientIDs) != 0 {
		t.Error("expected empty client list")
	}
	if s.CanSeeClient(uuid.New()) {
		t.Error("expected nothing visible")
	}
}

func TestStaffScope_Linked(t *testing.T) {
	sid := uuid.New()
	got, err := StaffScope(&Identity{Role: RoleStaff, StaffID: &sid})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || *got != sid {
		t.Errorf("expected scope %s, got %v", sid, got)
	}
}

func TestStaffScope_MissingLink(t *testing.T) {
	_, err := StaffScope(&Identity{Role: RoleStaff})
	if err == nil {
		t.Fatal("expected error for staff account without hr link")
	}
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("expected validation error, got %s", apperror.KindOf(err))
	}
}

func TestStaffScope_OtherRolesUnscoped(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleExternal} {
		got, err := StaffScope(&Identity{Role: role})
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", role, err)
		}
		if got != nil {
			t.Errorf("expected no scoping for %s", role)
		}
	}
}
