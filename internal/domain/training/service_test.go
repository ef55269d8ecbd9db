package training

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carehub/carehub/internal/domain/audit"
	"github.com/carehub/carehub/internal/platform/apperror"
	"github.com/carehub/carehub/internal/platform/auth"
	"github.com/carehub/carehub/internal/platform/blobstore"
)

type mockRepo struct {
	store map[uuid.UUID]*Training
	sets  int
}

func newMockRepo() *mockRepo { return &mockRepo{store: make(map[uuid.UUID]*Training)} }

func (m *mockRepo) Create(_ context.Context, t *Training) error {
	t.ID = uuid.New()
	cp := *t
	m.store[t.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Training, error) {
	t, ok := m.store[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "no rows")
	}
	cp := *t
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, t *Training) error {
	if _, ok := m.store[t.ID]; !ok {
		return apperror.New(apperror.KindNotFound, "no rows")
	}
	cp := *t
	m.store[t.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.store, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]Training, int, error) {
	out := []Training{}
	for _, t := range m.store {
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByStaff(_ context.Context, staffID uuid.UUID, limit, offset int) ([]Training, int, error) {
	out := []Training{}
	for _, t := range m.store {
		if t.StaffID == staffID {
			out = append(out, *t)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByStatus(_ context.Context, staffID *uuid.UUID, statuses []string, limit, offset int) ([]Training, int, error) {
	out := []Training{}
	for _, t := range m.store {
		if staffID != nil && t.StaffID != *staffID {
			continue
		}
		for _, s := range statuses {
			if t.Status == s {
				out = append(out, *t)
			}
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListAll(_ context.Context) ([]Training, error) {
	out := []Training{}
	for _, t := range m.store {
		out = append(out, *t)
	}
	return out, nil
}

func (m *mockRepo) SetStatus(_ context.Context, id uuid.UUID, status string) error {
	t, ok := m.store[id]
	if !ok {
		return apperror.New(apperror.KindNotFound, "no rows")
	}
	t.Status = status
	m.sets++
	return nil
}

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *mockRepo, *audit.MemoryRepo) {
	repo := newMockRepo()
	trail := audit.NewMemoryRepo()
	svc := NewService(repo, audit.NewService(trail, zerolog.Nop()), blobstore.NewInMemoryBlobStore())
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, trail
}

func adminActor() *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), Email: "admin@example.com", Role: auth.RoleAdmin}
}

func staffActor(staffID uuid.UUID) *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), Email: "staff@example.com", Role: auth.RoleStaff, StaffID: &staffID}
}

func datePtr(t time.Time) *time.Time { return &t }

func TestDeriveStatus_Boundaries(t *testing.T) {
	cases := []struct {
		name   string
		expiry *time.Time
		want   string
	}{
		{"expired yesterday", datePtr(fixedNow.AddDate(0, 0, -1)), StatusExpired},
		{"expires in 10 days", datePtr(fixedNow.AddDate(0, 0, 10)), StatusExpiringSoon},
		{"expires exactly in 30 days", datePtr(fixedNow.Add(ExpiryWindow)), StatusExpiringSoon},
		{"expires in 90 days", datePtr(fixedNow.AddDate(0, 0, 90)), StatusValid},
		{"no expiry", nil, StatusValid},
		{"expires this instant", datePtr(fixedNow), StatusExpiringSoon},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveStatus(tc.expiry, fixedNow); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestDeriveStatus_PureFunction(t *testing.T) {
	expiry := datePtr(fixedNow.AddDate(0, 0, 15))
	first := DeriveStatus(expiry, fixedNow)
	for i := 0; i < 50; i++ {
		if got := DeriveStatus(expiry, fixedNow); got != first {
			t.Fatalf("classification changed between calls: %q then %q", first, got)
		}
	}
}

func TestCreate_DerivesStatus(t *testing.T) {
	svc, _, _ := newTestService()
	tr := &Training{StaffID: uuid.New(), Course: "Manual Handling", ExpiryDate: datePtr(fixedNow.AddDate(0, 0, 5))}
	if err := svc.Create(context.Background(), adminActor(), tr); err != nil {
		t.Fatalf("create: %v", err)
	}
	if tr.Status != StatusExpiringSoon {
		t.Fatalf("expected Expiring Soon, got %q", tr.Status)
	}
}

func TestCreate_MissingCourse(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.Create(context.Background(), adminActor(), &Training{StaffID: uuid.New()})
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdate_ExpiryChangeRederivesStatus(t *testing.T) {
	svc, _, _ := newTestService()
	tr := &Training{StaffID: uuid.New(), Course: "First Aid", ExpiryDate: datePtr(fixedNow.AddDate(1, 0, 0))}
	if err := svc.Create(context.Background(), adminActor(), tr); err != nil {
		t.Fatalf("create: %v", err)
	}
	if tr.Status != StatusValid {
		t.Fatalf("expected Valid, got %q", tr.Status)
	}

	got, err := svc.Update(context.Background(), adminActor(), tr.ID, &UpdateRequest{ExpiryDate: datePtr(fixedNow.AddDate(0, 0, -2))})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != StatusExpired {
		t.Fatalf("expected Expired after moving expiry into the past, got %q", got.Status)
	}
}

func TestRefreshStatuses_UpdatesStaleOnly(t *testing.T) {
	svc, repo, _ := newTestService()

	stale := &Training{StaffID: uuid.New(), Course: "Fire Safety", ExpiryDate: datePtr(fixedNow.AddDate(0, 0, -1))}
	if err := svc.Create(context.Background(), adminActor(), stale); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Simulate a record persisted before its expiry passed.
	repo.store[stale.ID].Status = StatusValid

	fresh := &Training{StaffID: uuid.New(), Course: "Safeguarding", ExpiryDate: datePtr(fixedNow.AddDate(1, 0, 0))}
	if err := svc.Create(context.Background(), adminActor(), fresh); err != nil {
		t.Fatalf("create: %v", err)
	}

	changed, err := svc.RefreshStatuses(context.Background(), adminActor())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if changed != 1 {
		t.Fatalf("expected 1 record refreshed, got %d", changed)
	}
	if repo.store[stale.ID].Status != StatusExpired {
		t.Fatalf("expected stale record Expired, got %q", repo.store[stale.ID].Status)
	}
}

func TestRefreshStatuses_Idempotent(t *testing.T) {
	svc, repo, _ := newTestService()
	tr := &Training{StaffID: uuid.New(), Course: "Fire Safety", ExpiryDate: datePtr(fixedNow.AddDate(0, 0, -1))}
	if err := svc.Create(context.Background(), adminActor(), tr); err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.store[tr.ID].Status = StatusValid

	for i := 0; i < 3; i++ {
		if _, err := svc.RefreshStatuses(context.Background(), adminActor()); err != nil {
			t.Fatalf("refresh: %v", err)
		}
	}
	if repo.sets != 1 {
		t.Fatalf("expected exactly one status write across repeated refreshes, got %d", repo.sets)
	}
}

func TestGet_StaffSeesOwnOnly(t *testing.T) {
	svc, _, _ := newTestService()
	mine := uuid.New()
	tr := &Training{StaffID: mine, Course: "First Aid"}
	if err := svc.Create(context.Background(), adminActor(), tr); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(context.Background(), staffActor(mine), tr.ID); err != nil {
		t.Fatalf("expected own record visible, got %v", err)
	}
	_, err := svc.Get(context.Background(), staffActor(uuid.New()), tr.ID)
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found for another staff member, got %v", err)
	}
}

func TestGet_StaffWithoutLinkIsError(t *testing.T) {
	svc, _, _ := newTestService()
	tr := &Training{StaffID: uuid.New(), Course: "First Aid"}
	if err := svc.Create(context.Background(), adminActor(), tr); err != nil {
		t.Fatalf("create: %v", err)
	}

	unlinked := &auth.Identity{UserID: uuid.New(), Role: auth.RoleStaff}
	_, err := svc.Get(context.Background(), unlinked, tr.ID)
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error for missing hr link, got %v", err)
	}
}

func TestExpiring_ListsExpiredAndSoon(t *testing.T) {
	svc, _, _ := newTestService()
	for _, expiry := range []*time.Time{
		datePtr(fixedNow.AddDate(0, 0, -5)),
		datePtr(fixedNow.AddDate(0, 0, 10)),
		datePtr(fixedNow.AddDate(1, 0, 0)),
	} {
		tr := &Training{StaffID: uuid.New(), Course: "Course", ExpiryDate: expiry}
		if err := svc.Create(context.Background(), adminActor(), tr); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	_, total, err := svc.Expiring(context.Background(), adminActor(), 20, 0)
	if err != nil {
		t.Fatalf("expiring: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 expiring records, got %d", total)
	}
}

func TestExpiring_StaffSeesOnlyOwn(t *testing.T) {
	svc, _, _ := newTestService()
	staffID := uuid.New()
	mine := &Training{StaffID: staffID, Course: "First Aid", ExpiryDate: datePtr(fixedNow.AddDate(0, 0, -5))}
	if err := svc.Create(context.Background(), adminActor(), mine); err != nil {
		t.Fatalf("create: %v", err)
	}
	other := &Training{StaffID: uuid.New(), Course: "Fire Safety", ExpiryDate: datePtr(fixedNow.AddDate(0, 0, 5))}
	if err := svc.Create(context.Background(), adminActor(), other); err != nil {
		t.Fatalf("create: %v", err)
	}

	items, total, err := svc.Expiring(context.Background(), staffActor(staffID), 20, 0)
	if err != nil {
		t.Fatalf("expiring: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != mine.ID {
		t.Fatalf("expected only own expiring record, got %+v", items)
	}
}

func TestAttachment_StaffOwnRecordOnly(t *testing.T) {
	svc, _, _ := newTestService()
	staffID := uuid.New()
	tr := &Training{StaffID: staffID, Course: "Manual Handling"}
	if err := svc.Create(context.Background(), adminActor(), tr); err != nil {
		t.Fatalf("create: %v", err)
	}

	other := staffActor(uuid.New())
	if _, err := svc.AddAttachment(context.Background(), other, tr.ID, "cert.pdf", "application/pdf", strings.NewReader("pdf")); !apperror.IsNotFound(err) {
		t.Fatalf("expected not found for another staff member's record, got %v", err)
	}

	got, err := svc.AddAttachment(context.Background(), staffActor(staffID), tr.ID, "cert.pdf", "application/pdf", strings.NewReader("pdf"))
	if err != nil {
		t.Fatalf("add attachment: %v", err)
	}
	if len(got.Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(got.Attachments))
	}

	got, err = svc.RemoveAttachment(context.Background(), staffActor(staffID), tr.ID, got.Attachments[0])
	if err != nil {
		t.Fatalf("remove attachment: %v", err)
	}
	if len(got.Attachments) != 0 {
		t.Fatalf("expected no attachments, got %d", len(got.Attachments))
	}
}
