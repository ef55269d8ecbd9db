package documents

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/carehub/carehub/internal/domain/audit"
	"github.com/carehub/carehub/internal/platform/apperror"
	"github.com/carehub/carehub/internal/platform/auth"
	"github.com/carehub/carehub/internal/platform/blobstore"
)

type Service struct {
	repo  Repository
	audit *audit.Service
	blobs blobstore.BlobStore
}

func NewService(repo Repository, auditSvc *audit.Service, blobs blobstore.BlobStore) *Service {
	return &Service{repo: repo, audit: auditSvc, blobs: blobs}
}

func visibleTo(role auth.Role, visibility string) bool {
	for _, v := range VisibleTiers(role) {
		if v == visibility {
			return true
		}
	}
	return false
}

func (s *Service) CreateTemplate(ctx context.Context, actor *auth.Identity, t *Template) error {
	if t.Title == "" {
		return apperror.New(apperror.KindValidation, "title is required")
	}
	if t.Visibility == "" {
		t.Visibility = VisibilityAdminOnly
	}
	if !validVisibility(t.Visibility) {
		return apperror.Newf(apperror.KindValidation, "unknown visibility %q", t.Visibility)
	}
	t.UploadedBy = actor.UserID
	if err := s.repo.CreateTemplate(ctx, t); err != nil {
		return apperror.Wrap(apperror.KindDependency, "create template", err)
	}
	s.audit.Record(ctx, actor, audit.ActionCreate, "Template", &t.ID)
	return nil
}

func (s *Service) GetTemplate(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*Template, error) {
	t, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "template not found")
	}
	if !visibleTo(actor.Role, t.Visibility) {
		return nil, apperror.New(apperror.KindNotFound, "template not found")
	}
	return t, nil
}

// ListTemplates narrows the result to the visibility tiers the caller's
// role may see.
func (s *Service) ListTemplates(ctx context.Context, actor *auth.Identity, limit, offset int) ([]Template, int, error) {
	return s.repo.ListTemplates(ctx, VisibleTiers(actor.Role), limit, offset)
}

func (s *Service) UpdateTemplate(ctx context.Context, actor *auth.Identity, id uuid.UUID, upd *Template) (*Template, error) {
	t, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "template not found")
	}
	if !visibleTo(actor.Role, t.Visibility) {
		return nil, apperror.New(apperror.KindNotFound, "template not found")
	}

	if upd.Title != "" {
		t.Title = upd.Title
	}
	if upd.Visibility != "" {
		if !validVisibility(upd.Visibility) {
			return nil, apperror.Newf(apperror.KindValidation, "unknown visibility %q", upd.Visibility)
		}
		t.Visibility = upd.Visibility
	}

	if err := s.repo.UpdateTemplate(ctx, t); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "update template", err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, "Template", &t.ID)
	return t, nil
}

func (s *Service) DeleteTemplate(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	t, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return apperror.New(apperror.KindNotFound, "template not found")
	}
	for _, blobID := range t.Attachments {
		if err := s.blobs.Delete(ctx, blobID); err != nil {
			return apperror.Wrap(apperror.KindDependency, "delete template attachment", err)
		}
	}
	if err := s.repo.DeleteTemplate(ctx, id); err != nil {
		return apperror.Wrap(apperror.KindDependency, "delete template", err)
	}
	s.audit.Record(ctx, actor, audit.ActionDelete, "Template", &id)
	return nil
}

// AddTemplateAttachment stores a file in the blob store and links it to the
// template.
func (s *Service) AddTemplateAttachment(ctx context.Context, actor *auth.Identity, id uuid.UUID, fileName, contentType string, content io.Reader) (*Template, error) {
	t, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "template not found")
	}

	meta, err := s.blobs.Upload(ctx, blobstore.BlobMetadata{
		FileName:    fileName,
		ContentType: contentType,
		OwnerType:   blobstore.OwnerStaff,
		OwnerID:     actor.UserID.String(),
		Category:    "care-document",
		CreatedBy:   actor.UserID.String(),
	}, content)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "store attachment", err)
	}

	t.Attachments = append(t.Attachments, meta.ID)
	if err := s.repo.UpdateTemplate(ctx, t); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "link template attachment", err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, "Template", &t.ID)
	return t, nil
}

// DownloadTemplateAttachment streams a linked file back to the caller. The
// template's visibility tier gates the download.
func (s *Service) DownloadTemplateAttachment(ctx context.Context, actor *auth.Identity, id uuid.UUID, blobID string) (io.ReadCloser, *blobstore.BlobMetadata, error) {
	t, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, nil, apperror.New(apperror.KindNotFound, "template not found")
	}
	if !visibleTo(actor.Role, t.Visibility) {
		return nil, nil, apperror.New(apperror.KindNotFound, "template not found")
	}

	linked := false
	for _, att := range t.Attachments {
		if att == blobID {
			linked = true
			break
		}
	}
	if !linked {
		return nil, nil, apperror.New(apperror.KindNotFound, "attachment not found")
	}

	rc, meta, err := s.blobs.Download(ctx, blobID)
	if err != nil {
		return nil, nil, apperror.Wrap(apperror.KindDependency, "download attachment", err)
	}
	return rc, meta, nil
}

func (s *Service) CreateConsent(ctx context.Context, actor *auth.Identity, r *ConsentRecord) error {
	if r.ClientID == uuid.Nil {
		return apperror.New(apperror.KindValidation, "client_id is required")
	}
	if r.Status == "" {
		r.Status = ConsentActive
	}
	if r.Status != ConsentActive && r.Status != ConsentArchived {
		return apperror.Newf(apperror.KindValidation, "unknown status %q", r.Status)
	}
	if err := s.repo.CreateConsent(ctx, r); err != nil {
		return apperror.Wrap(apperror.KindDependency, "create consent record", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionCreate, "ConsentRecord", &r.ID, nil, &r.ClientID)
	return nil
}

func (s *Service) GetConsent(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*ConsentRecord, error) {
	r, err := s.repo.GetConsent(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "consent record not found")
	}
	if !auth.ClientScope(actor).CanSeeClient(r.ClientID) {
		return nil, apperror.New(apperror.KindNotFound, "consent record not found")
	}
	return r, nil
}

func (s *Service) ListConsents(ctx context.Context, actor *auth.Identity, limit, offset int) ([]ConsentRecord, int, error) {
	scope := auth.ClientScope(actor)
	return s.repo.ListConsents(ctx, scope.ClientIDs, scope.All, limit, offset)
}

func (s *Service) UpdateConsent(ctx context.Context, actor *auth.Identity, id uuid.UUID, upd *ConsentRecord) (*ConsentRecord, error) {
	r, err := s.repo.GetConsent(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "consent record not found")
	}

	r.DoLSInPlace = upd.DoLSInPlace
	if upd.AuthorizationEndDate != nil {
		r.AuthorizationEndDate = upd.AuthorizationEndDate
	}
	if upd.Conditions != nil {
		r.Conditions = upd.Conditions
	}
	if upd.Status != "" {
		if upd.Status != ConsentActive && upd.Status != ConsentArchived {
			return nil, apperror.Newf(apperror.KindValidation, "unknown status %q", upd.Status)
		}
		r.Status = upd.Status
	}

	if err := s.repo.UpdateConsent(ctx, r); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "update consent record", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "ConsentRecord", &r.ID, nil, &r.ClientID)
	return r, nil
}

func (s *Service) DeleteConsent(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	r, err := s.repo.GetConsent(ctx, id)
	if err != nil {
		return apperror.New(apperror.KindNotFound, "consent record not found")
	}
	if err := s.repo.DeleteConsent(ctx, id); err != nil {
		return apperror.Wrap(apperror.KindDependency, "delete consent record", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionDelete, "ConsentRecord", &id, nil, &r.ClientID)
	return nil
}
