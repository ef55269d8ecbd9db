package user

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carehub/carehub/internal/domain/audit"
	"github.com/carehub/carehub/internal/platform/apperror"
	"github.com/carehub/carehub/internal/platform/auth"
)

type mockRepo struct{ store map[uuid.UUID]*User }

func newMockRepo() *mockRepo { return &mockRepo{store: make(map[uuid.UUID]*User)} }
func (m *mockRepo) Create(_ context.Context, u *User) error {
	u.ID = uuid.New()
	u.Email = strings.ToLower(u.Email)
	m.store[u.ID] = u
	return nil
}
func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.store[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return u, nil
}
func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.store {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, fmt.Errorf("not found")
}
func (m *mockRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.store[u.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.store[u.ID] = u
	return nil
}
func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error { delete(m.store, id); return nil }
func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*User, int, error) {
	var r []*User
	for _, u := range m.store {
		r = append(r, u)
	}
	return r, len(r), nil
}
func (m *mockRepo) CountByRole(_ context.Context, role auth.Role) (int, error) {
	n := 0
	for _, u := range m.store {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

var testSigningKey = []byte("unit-test-signing-key")

func newTestService() (*Service, *mockRepo, *audit.MemoryRepo) {
	repo := newMockRepo()
	trail := audit.NewMemoryRepo()
	svc := NewService(repo, audit.NewService(trail, zerolog.Nop()), testSigningKey)
	return svc, repo, trail
}

func adminIdentity() *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), Email: "owner@example.org", Role: auth.RoleAdmin}
}

func TestSignup_BootstrapFirstAdmin(t *testing.T) {
	svc, _, trail := newTestService()

	u, err := svc.Signup(context.Background(), nil, &SignupRequest{
		FullName: "Site Owner", Email: "owner@example.org", Password: "longenough", Role: "Admin",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != auth.RoleAdmin {
		t.Errorf("expected Admin role, got %s", u.Role)
	}
	if u.PasswordHash == "longenough" {
		t.Error("password must not be stored in plain text")
	}
	if len(trail.Entries) != 1 || trail.Entries[0].Action != audit.ActionSignup {
		t.Error("expected signup recorded in audit trail")
	}
}

func TestSignup_BootstrapMustBeAdmin(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Signup(context.Background(), nil, &SignupRequest{
		Email: "first@example.org", Password: "longenough", Role: "Staff",
	})
	if err == nil {
		t.Fatal("expected error when first account is not an Admin")
	}
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("expected validation error, got %s", apperror.KindOf(err))
	}
}

func TestSignup_AfterBootstrapRequiresAdmin(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Signup(context.Background(), nil, &SignupRequest{
		Email: "owner@example.org", Password: "longenough", Role: "Admin",
	}); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	// Anonymous caller
	_, err := svc.Signup(context.Background(), nil, &SignupRequest{
		Email: "second@example.org", Password: "longenough", Role: "Staff",
	})
	if apperror.KindOf(err) != apperror.KindAuthentication {
		t.Errorf("expected authentication error, got %v", err)
	}

	// Non-admin caller
	_, err = svc.Signup(context.Background(), &auth.Identity{Role: auth.RoleStaff}, &SignupRequest{
		Email: "second@example.org", Password: "longenough", Role: "Staff",
	})
	if apperror.KindOf(err) != apperror.KindAuthorization {
		t.Errorf("expected authorization error, got %v", err)
	}

	// Admin caller
	if _, err := svc.Signup(context.Background(), adminIdentity(), &SignupRequest{
		Email: "second@example.org", Password: "longenough", Role: "Staff",
	}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Signup(context.Background(), nil, &SignupRequest{
		Email: "owner@example.org", Password: "longenough", Role: "Admin",
	}); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	_, err := svc.Signup(context.Background(), adminIdentity(), &SignupRequest{
		Email: "OWNER@example.org", Password: "longenough", Role: "Staff",
	})
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestSignup_ShortPassword(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Signup(context.Background(), nil, &SignupRequest{
		Email: "owner@example.org", Password: "short", Role: "Admin",
	})
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	svc, _, trail := newTestService()
	if _, err := svc.Signup(context.Background(), nil, &SignupRequest{
		FullName: "Site Owner", Email: "owner@example.org", Password: "longenough", Role: "Admin",
	}); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	resp, err := svc.Login(context.Background(), &LoginRequest{Email: "owner@example.org", Password: "longenough"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected token")
	}

	claims := &auth.Claims{}
	_, err = jwt.ParseWithClaims(resp.Token, claims, func(t *jwt.Token) (interface{}, error) {
		return testSigningKey, nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != "Admin" || claims.Email != "owner@example.org" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	var sawLogin bool
	for _, e := range trail.Entries {
		if e.Action == audit.ActionLogin {
			sawLogin = true
		}
	}
	if !sawLogin {
		t.Error("expected login recorded in audit trail")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Signup(context.Background(), nil, &SignupRequest{
		Email: "owner@example.org", Password: "longenough", Role: "Admin",
	}); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	_, err := svc.Login(context.Background(), &LoginRequest{Email: "owner@example.org", Password: "wrong-pass"})
	if apperror.KindOf(err) != apperror.KindAuthentication {
		t.Errorf("expected authentication error, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Login(context.Background(), &LoginRequest{Email: "ghost@example.org", Password: "whatever"})
	if apperror.KindOf(err) != apperror.KindAuthentication {
		t.Errorf("expected authentication error, got %v", err)
	}
}

func TestUpdate_ChangesRoleAndLinks(t *testing.T) {
	svc, _, _ := newTestService()
	u, err := svc.Signup(context.Background(), nil, &SignupRequest{
		Email: "owner@example.org", Password: "longenough", Role: "Admin",
	})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	role := "Staff"
	sid := uuid.New()
	got, err := svc.Update(context.Background(), adminIdentity(), u.ID, &UpdateRequest{Role: &role, StaffID: &sid})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Role != auth.RoleStaff {
		t.Errorf("expected role change, got %s", got.Role)
	}
	if got.StaffID == nil || *got.StaffID != sid {
		t.Errorf("expected hr link set, got %v", got.StaffID)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.Delete(context.Background(), adminIdentity(), uuid.New())
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}
