package incident

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

func (s *Service) Create(ctx context.Context, actor *auth.Identity, in *Incident) error {
	if in.ClientID == uuid.Nil {
		return apperror.New(apperror.KindValidation, "client_id is required")
	}
	if in.Description == "" {
		return apperror.New(apperror.KindValidation, "description is required")
	}
	if in.Severity == "" {
		in.Severity = SeverityLow
	}
	if !validSeverity(in.Severity) {
		return apperror.Newf(apperror.KindValidation, "unknown severity %q", in.Severity)
	}
	if in.ReportedBy == nil && actor != nil {
		name := actor.FullName
		in.ReportedBy = &name
	}
	if err := s.repo.Create(ctx, in); err != nil {
		return apperror.Wrap(apperror.KindDependency, "create incident", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionCreate, "Incident", &in.ID, nil, &in.ClientID)
	return nil
}

func (s *Service) Get(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*Incident, error) {
	in, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "incident not found")
	}
	if !auth.ClientScope(actor).CanSeeClient(in.ClientID) {
		return nil, apperror.New(apperror.KindNotFound, "incident not found")
	}
	return in, nil
}

func (s *Service) List(ctx context.Context, actor *auth.Identity, status string, limit, offset int) ([]Incident, int, error) {
	scope := auth.ClientScope(actor)
	if !scope.All {
		return s.repo.ListByClients(ctx, scope.ClientIDs, limit, offset)
	}
	if status != "" {
		if !validStatus(status) {
			return nil, 0, apperror.Newf(apperror.KindValidation, "unknown status %q", status)
		}
		return s.repo.ListByStatus(ctx, status, limit, offset)
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Update(ctx context.Context, actor *auth.Identity, id uuid.UUID, upd *Incident) (*Incident, error) {
	in, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "incident not found")
	}

	if upd.Description != "" {
		in.Description = upd.Description
	}
	if upd.Severity != "" {
		if !validSeverity(upd.Severity) {
			return nil, apperror.Newf(apperror.KindValidation, "unknown severity %q", upd.Severity)
		}
		in.Severity = upd.Severity
	}
	if upd.Status != "" {
		if !validStatus(upd.Status) {
			return nil, apperror.Newf(apperror.KindValidation, "unknown status %q", upd.Status)
		}
		in.Status = upd.Status
	}
	if upd.ReportedBy != nil {
		in.ReportedBy = upd.ReportedBy
	}
	if upd.OccurredAt != nil {
		in.OccurredAt = upd.OccurredAt
	}
	if upd.Location != nil {
		in.Location = upd.Location
	}
	if upd.ActionsTaken != nil {
		in.ActionsTaken = upd.ActionsTaken
	}

	if err := s.repo.Update(ctx, in); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "update incident", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "Incident", &in.ID, nil, &in.ClientID)
	return in, nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	in, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperror.New(apperror.KindNotFound, "incident not found")
	}
	for _, blobID := range in.Attachments {
		if err := s.blobs.Delete(ctx, blobID); err != nil {
			return apperror.Wrap(apperror.KindDependency, "delete incident attachment", err)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Wrap(apperror.KindDependency, "delete incident", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionDelete, "Incident", &id, nil, &in.ClientID)
	return nil
}

// AddAttachment stores an incident photo or report scan in the blob store
// and links it to the incident.
func (s *Service) AddAttachment(ctx context.Context, actor *auth.Identity, id uuid.UUID, fileName, contentType string, content io.Reader) (*Incident, error) {
	in, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "incident not found")
	}

	meta, err := s.blobs.Upload(ctx, blobstore.BlobMetadata{
		FileName:    fileName,
		ContentType: contentType,
		OwnerType:   blobstore.OwnerClient,
		OwnerID:     in.ClientID.String(),
		Category:    "incident-photo",
		CreatedBy:   actor.UserID.String(),
	}, content)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "store attachment", err)
	}

	in.Attachments = append(in.Attachments, meta.ID)
	if err := s.repo.Update(ctx, in); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "link incident attachment", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "Incident", &in.ID, nil, &in.ClientID)
	return in, nil
}

// RemoveAttachment unlinks a stored file and deletes it from the blob store.
func (s *Service) RemoveAttachment(ctx context.Context, actor *auth.Identity, id uuid.UUID, blobID string) (*Incident, error) {
	in, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "incident not found")
	}

	kept := in.Attachments[:0]
	found := false
	for _, att := range in.Attachments {
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
		return nil, apperror.Wrap(apperror.KindDependency, "delete incident attachment", err)
	}

	in.Attachments = kept
	if err := s.repo.Update(ctx, in); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "unlink incident attachment", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "Incident", &in.ID, nil, &in.ClientID)
	return in, nil
}
