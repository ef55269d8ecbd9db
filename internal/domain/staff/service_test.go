package staff

import (
	"context"
	"io"
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
	staff       map[uuid.UUID]*Staff
	documents   map[uuid.UUID]*Document
	performance map[uuid.UUID]*Performance
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		staff:       make(map[uuid.UUID]*Staff),
		documents:   make(map[uuid.UUID]*Document),
		performance: make(map[uuid.UUID]*Performance),
	}
}

func (m *mockRepo) Create(_ context.Context, s *Staff) error {
	s.ID = uuid.New()
	if s.Status == "" {
		s.Status = StatusActive
	}
	cp := *s
	m.staff[s.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Staff, error) {
	s, ok := m.staff[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "no rows")
	}
	cp := *s
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, s *Staff) error {
	if _, ok := m.staff[s.ID]; !ok {
		return apperror.New(apperror.KindNotFound, "no rows")
	}
	cp := *s
	m.staff[s.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.staff, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]Staff, int, error) {
	out := []Staff{}
	for _, s := range m.staff {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockRepo) Search(_ context.Context, name, status string, limit, offset int) ([]Staff, int, error) {
	out := []Staff{}
	for _, s := range m.staff {
		if status != "" && s.Status != status {
			continue
		}
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockRepo) InsertDocument(_ context.Context, d *Document) error {
	d.ID = uuid.New()
	cp := *d
	m.documents[d.ID] = &cp
	return nil
}

func (m *mockRepo) GetDocument(_ context.Context, id uuid.UUID) (*Document, error) {
	d, ok := m.documents[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "no rows")
	}
	cp := *d
	return &cp, nil
}

func (m *mockRepo) DeleteDocument(_ context.Context, id uuid.UUID) error {
	delete(m.documents, id)
	return nil
}

func (m *mockRepo) ListDocuments(_ context.Context, staffID uuid.UUID, limit, offset int) ([]Document, int, error) {
	out := []Document{}
	for _, d := range m.documents {
		if d.StaffID == staffID {
			out = append(out, *d)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) InsertPerformance(_ context.Context, p *Performance) error {
	p.ID = uuid.New()
	cp := *p
	m.performance[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetPerformance(_ context.Context, id uuid.UUID) (*Performance, error) {
	p, ok := m.performance[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "no rows")
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) UpdatePerformance(_ context.Context, p *Performance) error {
	if _, ok := m.performance[p.ID]; !ok {
		return apperror.New(apperror.KindNotFound, "no rows")
	}
	cp := *p
	m.performance[p.ID] = &cp
	return nil
}

func (m *mockRepo) DeletePerformance(_ context.Context, id uuid.UUID) error {
	delete(m.performance, id)
	return nil
}

func (m *mockRepo) ListPerformance(_ context.Context, staffID uuid.UUID, limit, offset int) ([]Performance, int, error) {
	out := []Performance{}
	for _, p := range m.performance {
		if p.StaffID == staffID {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func newTestService() (*Service, *mockRepo, *audit.MemoryRepo) {
	repo := newMockRepo()
	trail := audit.NewMemoryRepo()
	blobs := blobstore.NewInMemoryBlobStore()
	return NewService(repo, audit.NewService(trail, zerolog.Nop()), blobs), repo, trail
}

func adminActor() *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), Email: "admin@example.com", Role: auth.RoleAdmin}
}

func staffActor(staffID uuid.UUID) *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), Email: "staff@example.com", Role: auth.RoleStaff, StaffID: &staffID}
}

func seedStaff(t *testing.T, svc *Service, first, last string) *Staff {
	t.Helper()
	st := &Staff{FirstName: first, LastName: last}
	if err := svc.Create(context.Background(), adminActor(), st); err != nil {
		t.Fatalf("seed staff: %v", err)
	}
	return st
}

func TestCreate_Success(t *testing.T) {
	svc, _, trail := newTestService()
	st := &Staff{FirstName: "Kim", LastName: "Nowak"}
	if err := svc.Create(context.Background(), adminActor(), st); err != nil {
		t.Fatalf("create: %v", err)
	}
	if st.Status != StatusActive {
		t.Fatalf("expected default status, got %q", st.Status)
	}
	if len(trail.Entries) != 1 || trail.Entries[0].TargetType != "Staff" {
		t.Fatalf("expected staff audit entry, got %+v", trail.Entries)
	}
}

func TestGet_StaffSeesOwnRecordOnly(t *testing.T) {
	svc, _, _ := newTestService()
	mine := seedStaff(t, svc, "Kim", "Nowak")
	other := seedStaff(t, svc, "Lee", "Quinn")

	if _, err := svc.Get(context.Background(), staffActor(mine.ID), mine.ID); err != nil {
		t.Fatalf("expected own record visible, got %v", err)
	}
	_, err := svc.Get(context.Background(), staffActor(mine.ID), other.ID)
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found for another staff record, got %v", err)
	}
}

func TestGet_StaffWithoutLinkIsError(t *testing.T) {
	svc, _, _ := newTestService()
	st := seedStaff(t, svc, "Kim", "Nowak")

	unlinked := &auth.Identity{UserID: uuid.New(), Role: auth.RoleStaff}
	_, err := svc.Get(context.Background(), unlinked, st.ID)
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error for missing hr link, got %v", err)
	}
}

func TestList_StaffSeesSelfOnly(t *testing.T) {
	svc, _, _ := newTestService()
	mine := seedStaff(t, svc, "Kim", "Nowak")
	seedStaff(t, svc, "Lee", "Quinn")

	items, total, err := svc.List(context.Background(), staffActor(mine.ID), "", "", 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || items[0].ID != mine.ID {
		t.Fatalf("expected only own record, got %+v", items)
	}
}

func TestUpdate_UnknownStatus(t *testing.T) {
	svc, _, _ := newTestService()
	st := seedStaff(t, svc, "Kim", "Nowak")

	_, err := svc.Update(context.Background(), adminActor(), st.ID, &Staff{Status: "retired"})
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddDocument_UnknownStaff(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.AddDocument(context.Background(), adminActor(), &Document{StaffID: uuid.New(), Name: "DBS check"}, "", "", nil)
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListDocuments_StaffScoped(t *testing.T) {
	svc, _, _ := newTestService()
	mine := seedStaff(t, svc, "Kim", "Nowak")
	other := seedStaff(t, svc, "Lee", "Quinn")

	if err := svc.AddDocument(context.Background(), adminActor(), &Document{StaffID: mine.ID, Name: "Contract"}, "", "", nil); err != nil {
		t.Fatalf("add document: %v", err)
	}

	_, _, err := svc.ListDocuments(context.Background(), staffActor(mine.ID), other.ID, 20, 0)
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found listing another staff member's documents, got %v", err)
	}

	items, total, err := svc.ListDocuments(context.Background(), staffActor(mine.ID), mine.ID, 20, 0)
	if err != nil || total != 1 || len(items) != 1 {
		t.Fatalf("expected own document listed, got total=%d err=%v", total, err)
	}
}

func TestAddPerformance_RatingRange(t *testing.T) {
	svc, _, _ := newTestService()
	st := seedStaff(t, svc, "Kim", "Nowak")

	bad := 7
	err := svc.AddPerformance(context.Background(), adminActor(), &Performance{StaffID: st.ID, Rating: &bad})
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	ok := 4
	if err := svc.AddPerformance(context.Background(), adminActor(), &Performance{StaffID: st.ID, Rating: &ok}); err != nil {
		t.Fatalf("add performance: %v", err)
	}
}

func TestGetPerformance_StaffScoped(t *testing.T) {
	svc, _, _ := newTestService()
	mine := seedStaff(t, svc, "Kim", "Nowak")
	other := seedStaff(t, svc, "Lee", "Quinn")

	rating := 3
	p := &Performance{StaffID: other.ID, Rating: &rating}
	if err := svc.AddPerformance(context.Background(), adminActor(), p); err != nil {
		t.Fatalf("add performance: %v", err)
	}

	_, err := svc.GetPerformance(context.Background(), staffActor(mine.ID), p.ID)
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found for another staff member's review, got %v", err)
	}
}

func TestAddDocument_StoresFile(t *testing.T) {
	svc, _, _ := newTestService()
	st := seedStaff(t, svc, "Kim", "Nowak")

	d := &Document{StaffID: st.ID, Name: "DBS check"}
	err := svc.AddDocument(context.Background(), adminActor(), d,
		"dbs.pdf", "application/pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("add document: %v", err)
	}
	if d.BlobID == nil {
		t.Fatal("expected a blob reference on the stored document")
	}

	rc, meta, err := svc.DownloadDocument(context.Background(), adminActor(), d.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "pdf bytes" || meta.FileName != "dbs.pdf" {
		t.Fatalf("unexpected download: body=%q file=%q", body, meta.FileName)
	}
}

func TestDownloadDocument_NoFile(t *testing.T) {
	svc, _, _ := newTestService()
	st := seedStaff(t, svc, "Kim", "Nowak")

	d := &Document{StaffID: st.ID, Name: "Reference"}
	if err := svc.AddDocument(context.Background(), adminActor(), d, "", "", nil); err != nil {
		t.Fatalf("add document: %v", err)
	}

	_, _, err := svc.DownloadDocument(context.Background(), adminActor(), d.ID)
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found for metadata-only document, got %v", err)
	}
}
