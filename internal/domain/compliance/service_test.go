package compliance

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carehub/carehub/internal/domain/audit"
	"github.com/carehub/carehub/internal/platform/apperror"
	"github.com/carehub/carehub/internal/platform/auth"
	"github.com/carehub/carehub/internal/platform/blobstore"
)

type mockRepo struct {
	store map[uuid.UUID]*Record
}

func newMockRepo() *mockRepo { return &mockRepo{store: make(map[uuid.UUID]*Record)} }

func (m *mockRepo) Create(_ context.Context, rec *Record) error {
	rec.ID = uuid.New()
	if rec.Status == "" {
		rec.Status = StatusActionRequired
	}
	cp := *rec
	m.store[rec.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Record, error) {
	rec, ok := m.store[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "no rows")
	}
	cp := *rec
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, rec *Record) error {
	if _, ok := m.store[rec.ID]; !ok {
		return apperror.New(apperror.KindNotFound, "no rows")
	}
	cp := *rec
	m.store[rec.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.store, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, status string, limit, offset int) ([]Record, int, error) {
	out := []Record{}
	for _, rec := range m.store {
		if status != "" && rec.Status != status {
			continue
		}
		out = append(out, *rec)
	}
	return out, len(out), nil
}

func newTestService() (*Service, *mockRepo, *audit.MemoryRepo) {
	repo := newMockRepo()
	trail := audit.NewMemoryRepo()
	return NewService(repo, audit.NewService(trail, zerolog.Nop()), blobstore.NewInMemoryBlobStore()), repo, trail
}

func adminActor() *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), Email: "admin@example.com", Role: auth.RoleAdmin}
}

func TestCreate_AuditCarriesRequirement(t *testing.T) {
	svc, _, trail := newTestService()
	rec := &Record{Requirement: "Fire risk assessment"}
	if err := svc.Create(context.Background(), adminActor(), rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Status != StatusActionRequired {
		t.Fatalf("expected default status, got %q", rec.Status)
	}
	e := trail.Entries[0]
	if e.Requirement == nil || *e.Requirement != "Fire risk assessment" {
		t.Fatalf("expected requirement in audit entry, got %+v", e)
	}
}

func TestCreate_MissingRequirement(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.Create(context.Background(), adminActor(), &Record{})
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestList_FilterByStatus(t *testing.T) {
	svc, _, _ := newTestService()
	for _, status := range []string{StatusCompliant, StatusOverdue, StatusOverdue} {
		rec := &Record{Requirement: "Req", Status: status}
		if err := svc.Create(context.Background(), adminActor(), rec); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	_, total, err := svc.List(context.Background(), StatusOverdue, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 overdue records, got %d", total)
	}

	if _, _, err := svc.List(context.Background(), "pending", 20, 0); apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
}

func TestUpdate_ChangesStatus(t *testing.T) {
	svc, _, trail := newTestService()
	rec := &Record{Requirement: "Gas safety certificate"}
	if err := svc.Create(context.Background(), adminActor(), rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Update(context.Background(), adminActor(), rec.ID, &Record{Status: StatusCompliant})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != StatusCompliant {
		t.Fatalf("expected compliant, got %q", got.Status)
	}
	last := trail.Entries[len(trail.Entries)-1]
	if last.Action != audit.ActionUpdate || last.Requirement == nil {
		t.Fatalf("expected update audit entry with requirement, got %+v", last)
	}
}

func TestAttachment_AddAndRemove(t *testing.T) {
	svc, _, _ := newTestService()
	rec := &Record{Requirement: "Fire safety inspection"}
	if err := svc.Create(context.Background(), adminActor(), rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.AddAttachment(context.Background(), adminActor(), rec.ID, "report.pdf", "application/pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("add attachment: %v", err)
	}
	if len(got.Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(got.Attachments))
	}

	got, err = svc.RemoveAttachment(context.Background(), adminActor(), rec.ID, got.Attachments[0])
	if err != nil {
		t.Fatalf("remove attachment: %v", err)
	}
	if len(got.Attachments) != 0 {
		t.Fatalf("expected no attachments, got %d", len(got.Attachments))
	}

	if _, err := svc.RemoveAttachment(context.Background(), adminActor(), rec.ID, uuid.New().String()); !apperror.IsNotFound(err) {
		t.Fatalf("expected not found for unknown blob, got %v", err)
	}
}
