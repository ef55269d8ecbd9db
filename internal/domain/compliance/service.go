package compliance

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

func (s *Service) Create(ctx context.Context, actor *auth.Identity, rec *Record) error {
	if rec.Requirement == "" {
		return apperror.New(apperror.KindValidation, "requirement is required")
	}
	if rec.Status != "" && !validStatus(rec.Status) {
		return apperror.Newf(apperror.KindValidation, "unknown status %q", rec.Status)
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return apperror.Wrap(apperror.KindDependency, "create compliance record", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionCreate, "Compliance", &rec.ID, &rec.Requirement, nil)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "compliance record not found")
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]Record, int, error) {
	if status != "" && !validStatus(status) {
		return nil, 0, apperror.Newf(apperror.KindValidation, "unknown status %q", status)
	}
	return s.repo.List(ctx, status, limit, offset)
}

func (s *Service) Update(ctx context.Context, actor *auth.Identity, id uuid.UUID, upd *Record) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "compliance record not found")
	}

	if upd.Requirement != "" {
		rec.Requirement = upd.Requirement
	}
	if upd.Status != "" {
		if !validStatus(upd.Status) {
			return nil, apperror.Newf(apperror.KindValidation, "unknown status %q", upd.Status)
		}
		rec.Status = upd.Status
	}
	if upd.Category != nil {
		rec.Category = upd.Category
	}
	if upd.DueDate != nil {
		rec.DueDate = upd.DueDate
	}
	if upd.CompletedAt != nil {
		rec.CompletedAt = upd.CompletedAt
	}
	if upd.AssignedTo != nil {
		rec.AssignedTo = upd.AssignedTo
	}
	if upd.Notes != nil {
		rec.Notes = upd.Notes
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "update compliance record", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "Compliance", &rec.ID, &rec.Requirement, nil)
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperror.New(apperror.KindNotFound, "compliance record not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Wrap(apperror.KindDependency, "delete compliance record", err)
	}
	for _, blobID := range rec.Attachments {
		s.blobs.Delete(ctx, blobID)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionDelete, "Compliance", &id, &rec.Requirement, nil)
	return nil
}

// AddAttachment stores evidence (certificate, inspection report) against
// the requirement.
func (s *Service) AddAttachment(ctx context.Context, actor *auth.Identity, id uuid.UUID, fileName, contentType string, content io.Reader) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "compliance record not found")
	}

	meta, err := s.blobs.Upload(ctx, blobstore.BlobMetadata{
		FileName:    fileName,
		ContentType: contentType,
		OwnerType:   blobstore.OwnerOrg,
		OwnerID:     rec.ID.String(),
		Category:    "other",
		CreatedBy:   actor.UserID.String(),
	}, content)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "store attachment", err)
	}

	rec.Attachments = append(rec.Attachments, meta.ID)
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "link compliance attachment", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "Compliance", &rec.ID, &rec.Requirement, nil)
	return rec, nil
}

// RemoveAttachment unlinks evidence and deletes it from the blob store.
func (s *Service) RemoveAttachment(ctx context.Context, actor *auth.Identity, id uuid.UUID, blobID string) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "compliance record not found")
	}

	kept := rec.Attachments[:0]
	found := false
	for _, att := range rec.Attachments {
		if att == blobID {
			found = true
			continue
		}
		kept = append(kept, att)
	}
	if !found {
		return nil, apperror.New(apperror.KindNotFound, "attachment not found")
	}
	if err := s.blobs.Delete(ctx, blobID); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "delete compliance attachment", err)
	}

	rec.Attachments = kept
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "unlink compliance attachment", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "Compliance", &rec.ID, &rec.Requirement, nil)
	return rec, nil
}
