package documents

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
	templates map[uuid.UUID]*Template
	consents  map[uuid.UUID]*ConsentRecord
}

func newMockRepo() *mockRepo {
	return &mockRepo{templates: make(map[uuid.UUID]*Template), consents: make(map[uuid.UUID]*ConsentRecord)}
}

func (m *mockRepo) CreateTemplate(_ context.Context, t *Template) error {
	t.ID = uuid.New()
	cp := *t
	m.templates[t.ID] = &cp
	return nil
}

func (m *mockRepo) GetTemplate(_ context.Context, id uuid.UUID) (*Template, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "no rows")
	}
	cp := *t
	return &cp, nil
}

func (m *mockRepo) UpdateTemplate(_ context.Context, t *Template) error {
	cp := *t
	m.templates[t.ID] = &cp
	return nil
}

func (m *mockRepo) DeleteTemplate(_ context.Context, id uuid.UUID) error {
	delete(m.templates, id)
	return nil
}

func (m *mockRepo) ListTemplates(_ context.Context, visibilities []string, limit, offset int) ([]Template, int, error) {
	out := []Template{}
	for _, t := range m.templates {
		for _, v := range visibilities {
			if t.Visibility == v {
				out = append(out, *t)
			}
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) CreateConsent(_ context.Context, r *ConsentRecord) error {
	r.ID = uuid.New()
	cp := *r
	m.consents[r.ID] = &cp
	return nil
}

func (m *mockRepo) GetConsent(_ context.Context, id uuid.UUID) (*ConsentRecord, error) {
	r, ok := m.consents[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "no rows")
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepo) UpdateConsent(_ context.Context, r *ConsentRecord) error {
	cp := *r
	m.consents[r.ID] = &cp
	return nil
}

func (m *mockRepo) DeleteConsent(_ context.Context, id uuid.UUID) error {
	delete(m.consents, id)
	return nil
}

func (m *mockRepo) ListConsents(_ context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]ConsentRecord, int, error) {
	out := []ConsentRecord{}
	for _, r := range m.consents {
		if all {
			out = append(out, *r)
			continue
		}
		for _, id := range clientIDs {
			if r.ClientID == id {
				out = append(out, *r)
			}
		}
	}
	return out, len(out), nil
}

func newTestService() (*Service, *mockRepo, *blobstore.InMemoryBlobStore) {
	repo := newMockRepo()
	blobs := blobstore.NewInMemoryBlobStore()
	svc := NewService(repo, audit.NewService(audit.NewMemoryRepo(), zerolog.Nop()), blobs)
	return svc, repo, blobs
}

func adminActor() *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), FullName: "Pat Admin", Role: auth.RoleAdmin}
}

func staffActor() *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), FullName: "Jo Staff", Role: auth.RoleStaff}
}

func seedTemplate(t *testing.T, svc *Service, visibility string) *Template {
	t.Helper()
	tpl := &Template{Title: "Admission checklist", Visibility: visibility}
	if err := svc.CreateTemplate(context.Background(), adminActor(), tpl); err != nil {
		t.Fatalf("seed template: %v", err)
	}
	return tpl
}

func TestCreateTemplate_DefaultsToAdminOnly(t *testing.T) {
	svc, _, _ := newTestService()
	tpl := &Template{Title: "Incident form"}
	if err := svc.CreateTemplate(context.Background(), adminActor(), tpl); err != nil {
		t.Fatalf("create: %v", err)
	}
	if tpl.Visibility != VisibilityAdminOnly {
		t.Fatalf("expected admin_only default, got %q", tpl.Visibility)
	}
}

func TestListTemplates_NarrowedByRole(t *testing.T) {
	svc, _, _ := newTestService()
	seedTemplate(t, svc, VisibilityAdminOnly)
	seedTemplate(t, svc, VisibilityStaffAndAdmin)
	seedTemplate(t, svc, VisibilityEveryone)

	cases := []struct {
		role auth.Role
		want int
	}{
		{auth.RoleAdmin, 3},
		{auth.RoleStaff, 2},
		{auth.RoleFamily, 1},
		{auth.RoleExternal, 1},
	}
	for _, tc := range cases {
		actor := &auth.Identity{UserID: uuid.New(), Role: tc.role}
		_, total, err := svc.ListTemplates(context.Background(), actor, 20, 0)
		if err != nil {
			t.Fatalf("list as %s: %v", tc.role, err)
		}
		if total != tc.want {
			t.Errorf("role %s: expected %d templates, got %d", tc.role, tc.want, total)
		}
	}
}

func TestGetTemplate_HiddenTierIsNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	tpl := seedTemplate(t, svc, VisibilityAdminOnly)

	if _, err := svc.GetTemplate(context.Background(), staffActor(), tpl.ID); !apperror.IsNotFound(err) {
		t.Fatalf("expected not found for hidden tier, got %v", err)
	}
	if _, err := svc.GetTemplate(context.Background(), adminActor(), tpl.ID); err != nil {
		t.Fatalf("admin should see the template: %v", err)
	}
}

func TestTemplateAttachment_RoundTrip(t *testing.T) {
	svc, _, _ := newTestService()
	tpl := seedTemplate(t, svc, VisibilityStaffAndAdmin)

	withAtt, err := svc.AddTemplateAttachment(context.Background(), adminActor(), tpl.ID,
		"checklist.pdf", "application/pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("add attachment: %v", err)
	}
	if len(withAtt.Attachments) != 1 {
		t.Fatalf("expected one attachment, got %d", len(withAtt.Attachments))
	}

	rc, meta, err := svc.DownloadTemplateAttachment(context.Background(), staffActor(),
		tpl.ID, withAtt.Attachments[0])
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != "pdf bytes" || meta.FileName != "checklist.pdf" {
		t.Fatalf("unexpected download %q %+v", body, meta)
	}
}

func TestDownloadTemplateAttachment_HiddenTier(t *testing.T) {
	svc, _, _ := newTestService()
	tpl := seedTemplate(t, svc, VisibilityAdminOnly)
	withAtt, err := svc.AddTemplateAttachment(context.Background(), adminActor(), tpl.ID,
		"internal.pdf", "application/pdf", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("add attachment: %v", err)
	}

	_, _, err = svc.DownloadTemplateAttachment(context.Background(), staffActor(),
		tpl.ID, withAtt.Attachments[0])
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found for hidden tier, got %v", err)
	}
}

func TestDeleteTemplate_RemovesBlobs(t *testing.T) {
	svc, _, blobs := newTestService()
	tpl := seedTemplate(t, svc, VisibilityEveryone)
	withAtt, err := svc.AddTemplateAttachment(context.Background(), adminActor(), tpl.ID,
		"menu.pdf", "application/pdf", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("add attachment: %v", err)
	}

	if err := svc.DeleteTemplate(context.Background(), adminActor(), tpl.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := blobs.GetMetadata(context.Background(), withAtt.Attachments[0]); err == nil {
		t.Fatal("expected blob deleted with the template")
	}
}

func TestCreateConsent_DefaultsStatus(t *testing.T) {
	svc, _, _ := newTestService()
	r := &ConsentRecord{ClientID: uuid.New(), DoLSInPlace: true}
	if err := svc.CreateConsent(context.Background(), staffActor(), r); err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.Status != ConsentActive {
		t.Fatalf("expected active status, got %q", r.Status)
	}
}

func TestGetConsent_ScopedCallerUnattached(t *testing.T) {
	svc, _, _ := newTestService()
	r := &ConsentRecord{ClientID: uuid.New(), DoLSInPlace: false}
	if err := svc.CreateConsent(context.Background(), staffActor(), r); err != nil {
		t.Fatalf("create: %v", err)
	}

	family := &auth.Identity{UserID: uuid.New(), Role: auth.RoleFamily, ClientIDs: []uuid.UUID{uuid.New()}}
	if _, err := svc.GetConsent(context.Background(), family, r.ID); !apperror.IsNotFound(err) {
		t.Fatalf("expected not found for unattached caller, got %v", err)
	}
}
