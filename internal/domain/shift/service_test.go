package shift

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carehub/carehub/internal/domain/audit"
	"github.com/carehub/carehub/internal/platform/apperror"
	"github.com/carehub/carehub/internal/platform/auth"
)

type mockRepo struct {
	store map[uuid.UUID]*Shift
}

func newMockRepo() *mockRepo { return &mockRepo{store: make(map[uuid.UUID]*Shift)} }

func (m *mockRepo) Create(_ context.Context, s *Shift) error {
	s.ID = uuid.New()
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Shift, error) {
	s, ok := m.store[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "no rows")
	}
	cp := *s
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, s *Shift) error {
	if _, ok := m.store[s.ID]; !ok {
		return apperror.New(apperror.KindNotFound, "no rows")
	}
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.store, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, staffID *uuid.UUID, from, to *time.Time, limit, offset int) ([]Shift, int, error) {
	out := []Shift{}
	for _, s := range m.store {
		if staffID != nil && s.StaffID != *staffID {
			continue
		}
		if from != nil && s.Date.Before(*from) {
			continue
		}
		if to != nil && s.Date.After(*to) {
			continue
		}
		out = append(out, *s)
	}
	return out, len(out), nil
}

func newTestService() (*Service, *mockRepo, *audit.MemoryRepo) {
	repo := newMockRepo()
	trail := audit.NewMemoryRepo()
	return NewService(repo, audit.NewService(trail, zerolog.Nop())), repo, trail
}

func adminActor() *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), Email: "admin@example.com", Role: auth.RoleAdmin}
}

func staffActor(staffID uuid.UUID) *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), Email: "staff@example.com", Role: auth.RoleStaff, StaffID: &staffID}
}

var rotaDay = time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC)

func seedShift(t *testing.T, svc *Service, staffID uuid.UUID, day time.Time) *Shift {
	t.Helper()
	sh := &Shift{StaffID: staffID, Date: day}
	if err := svc.Create(context.Background(), adminActor(), sh); err != nil {
		t.Fatalf("seed shift: %v", err)
	}
	return sh
}

func TestCreate_RequiresStaffAndDate(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Create(context.Background(), adminActor(), &Shift{Date: rotaDay})
	if err == nil {
		t.Fatal("expected error without staff_id")
	}
	err = svc.Create(context.Background(), adminActor(), &Shift{StaffID: uuid.New()})
	if err == nil {
		t.Fatal("expected error without date")
	}
}

func TestCreate_DefaultsToShiftType(t *testing.T) {
	svc, _, trail := newTestService()

	sh := seedShift(t, svc, uuid.New(), rotaDay)
	if sh.Type != TypeShift {
		t.Fatalf("expected default type %q, got %q", TypeShift, sh.Type)
	}
	if len(trail.Entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(trail.Entries))
	}
}

func TestCreate_RejectsUnknownType(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Create(context.Background(), adminActor(),
		&Shift{StaffID: uuid.New(), Date: rotaDay, Type: "overtime"})
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestList_StaffPinnedToOwnRota(t *testing.T) {
	svc, _, _ := newTestService()

	own := uuid.New()
	other := uuid.New()
	seedShift(t, svc, own, rotaDay)
	seedShift(t, svc, other, rotaDay)

	items, total, err := svc.List(context.Background(), staffActor(own), nil, nil, nil, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].StaffID != own {
		t.Fatalf("expected only own shift, got %d items", total)
	}

	// Asking for a colleague's rota yields nothing rather than an error.
	items, total, err = svc.List(context.Background(), staffActor(own), &other, nil, nil, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Fatalf("expected empty result for colleague filter, got %d", total)
	}
}

func TestList_AdminFiltersByStaffAndWindow(t *testing.T) {
	svc, _, _ := newTestService()

	staffID := uuid.New()
	seedShift(t, svc, staffID, rotaDay)
	seedShift(t, svc, staffID, rotaDay.AddDate(0, 0, 14))
	seedShift(t, svc, uuid.New(), rotaDay)

	from := rotaDay.AddDate(0, 0, -1)
	to := rotaDay.AddDate(0, 0, 7)
	items, total, err := svc.List(context.Background(), adminActor(), &staffID, &from, &to, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected 1 shift inside window, got %d", total)
	}
}

func TestGet_StaffCannotSeeColleagueShift(t *testing.T) {
	svc, _, _ := newTestService()

	sh := seedShift(t, svc, uuid.New(), rotaDay)

	_, err := svc.Get(context.Background(), staffActor(uuid.New()), sh.ID)
	if err == nil {
		t.Fatal("expected not-found for colleague's shift")
	}
	got, err := svc.Get(context.Background(), staffActor(sh.StaffID), sh.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != sh.ID {
		t.Fatalf("expected shift %s, got %s", sh.ID, got.ID)
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	svc, _, trail := newTestService()

	sh := seedShift(t, svc, uuid.New(), rotaDay)
	start, end, loc := "08:00", "16:00", "Willow Lodge"
	dayoff := TypeDayOff

	got, err := svc.Update(context.Background(), adminActor(), sh.ID,
		&UpdateRequest{Start: &start, End: &end, Location: &loc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Start == nil || *got.Start != "08:00" || got.Location == nil || *got.Location != "Willow Lodge" {
		t.Fatalf("expected fields applied, got %+v", got)
	}
	if got.StaffID != sh.StaffID || !got.Date.Equal(sh.Date) {
		t.Fatal("untouched fields must survive a partial update")
	}

	got, err = svc.Update(context.Background(), adminActor(), sh.ID, &UpdateRequest{Type: &dayoff})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Type != TypeDayOff {
		t.Fatalf("expected type %q, got %q", TypeDayOff, got.Type)
	}

	bad := "overtime"
	if _, err := svc.Update(context.Background(), adminActor(), sh.ID, &UpdateRequest{Type: &bad}); err == nil {
		t.Fatal("expected error for unknown type")
	}
	if len(trail.Entries) != 3 {
		t.Fatalf("expected 3 audit entries, got %d", len(trail.Entries))
	}
}

func TestDelete_RemovesAndAudits(t *testing.T) {
	svc, repo, trail := newTestService()

	sh := seedShift(t, svc, uuid.New(), rotaDay)
	if err := svc.Delete(context.Background(), adminActor(), sh.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repo.store[sh.ID]; ok {
		t.Fatal("expected shift removed")
	}
	var found bool
	for _, e := range trail.Entries {
		if e.Action == audit.ActionDelete && e.TargetType == "Shift" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected delete recorded in the trail")
	}
	if err := svc.Delete(context.Background(), adminActor(), sh.ID); err == nil {
		t.Fatal("expected not-found for second delete")
	}
}
