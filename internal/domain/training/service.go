package training

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/carehub/carehub/internal/domain/audit"
	"github.com/carehub/carehub/internal/platform/apperror"
	"github.com/carehub/carehub/internal/platform/auth"
	"github.com/carehub/carehub/internal/platform/blobstore"
)

// UpdateRequest carries the mutable training fields.
type UpdateRequest struct {
	Course      *string    `json:"course,omitempty"`
	Provider    *string    `json:"provider,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

type Service struct {
	repo  Repository
	audit *audit.Service
	blobs blobstore.BlobStore
	now   func() time.Time
}

func NewService(repo Repository, auditSvc *audit.Service, blobs blobstore.BlobStore) *Service {
	return &Service{repo: repo, audit: auditSvc, blobs: blobs, now: time.Now}
}

func (s *Service) Create(ctx context.Context, actor *auth.Identity, t *Training) error {
	if t.StaffID == uuid.Nil {
		return apperror.New(apperror.KindValidation, "staff_id is required")
	}
	if t.Course == "" {
		return apperror.New(apperror.KindValidation, "course is required")
	}
	t.Status = DeriveStatus(t.ExpiryDate, s.now())
	if err := s.repo.Create(ctx, t); err != nil {
		return apperror.Wrap(apperror.KindDependency, "create training record", err)
	}
	s.audit.Record(ctx, actor, audit.ActionCreate, "Training", &t.ID)
	return nil
}

// Get returns a training record. Staff callers only see their own records.
func (s *Service) Get(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*Training, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "training record not found")
	}
	staffID, err := auth.StaffScope(actor)
	if err != nil {
		return nil, err
	}
	if staffID != nil && t.StaffID != *staffID {
		return nil, apperror.New(apperror.KindNotFound, "training record not found")
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, actor *auth.Identity, limit, offset int) ([]Training, int, error) {
	staffID, err := auth.StaffScope(actor)
	if err != nil {
		return nil, 0, err
	}
	if staffID != nil {
		return s.repo.ListByStaff(ctx, *staffID, limit, offset)
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByStaff(ctx context.Context, actor *auth.Identity, staffID uuid.UUID, limit, offset int) ([]Training, int, error) {
	own, err := auth.StaffScope(actor)
	if err != nil {
		return nil, 0, err
	}
	if own != nil && *own != staffID {
		return []Training{}, 0, nil
	}
	return s.repo.ListByStaff(ctx, staffID, limit, offset)
}

// Expiring lists records that are expired or inside the expiry window.
// Staff callers only see their own records.
func (s *Service) Expiring(ctx context.Context, actor *auth.Identity, limit, offset int) ([]Training, int, error) {
	staffID, err := auth.StaffScope(actor)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListByStatus(ctx, staffID, []string{StatusExpired, StatusExpiringSoon}, limit, offset)
}

func (s *Service) Update(ctx context.Context, actor *auth.Identity, id uuid.UUID, req *UpdateRequest) (*Training, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "training record not found")
	}

	if req.Course != nil {
		t.Course = *req.Course
	}
	if req.Provider != nil {
		t.Provider = req.Provider
	}
	if req.CompletedAt != nil {
		t.CompletedAt = req.CompletedAt
	}
	if req.ExpiryDate != nil {
		t.ExpiryDate = req.ExpiryDate
	}
	t.Status = DeriveStatus(t.ExpiryDate, s.now())
	if req.Notes != nil {
		t.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "update training record", err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, "Training", &t.ID)
	return t, nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperror.New(apperror.KindNotFound, "training record not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Wrap(apperror.KindDependency, "delete training record", err)
	}
	for _, blobID := range t.Attachments {
		s.blobs.Delete(ctx, blobID)
	}
	s.audit.Record(ctx, actor, audit.ActionDelete, "Training", &id)
	return nil
}

// AddAttachment stores a certificate against the record. Staff callers can
// only attach to their own records.
func (s *Service) AddAttachment(ctx context.Context, actor *auth.Identity, id uuid.UUID, fileName, contentType string, content io.Reader) (*Training, error) {
	t, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	meta, err := s.blobs.Upload(ctx, blobstore.BlobMetadata{
		FileName:    fileName,
		ContentType: contentType,
		OwnerType:   blobstore.OwnerStaff,
		OwnerID:     t.StaffID.String(),
		Category:    "training-cert",
		CreatedBy:   actor.UserID.String(),
	}, content)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "store attachment", err)
	}

	t.Attachments = append(t.Attachments, meta.ID)
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "link training attachment", err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, "Training", &t.ID)
	return t, nil
}

// RemoveAttachment unlinks a certificate and deletes it from the blob store.
func (s *Service) RemoveAttachment(ctx context.Context, actor *auth.Identity, id uuid.UUID, blobID string) (*Training, error) {
	t, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	kept := t.Attachments[:0]
	found := false
	for _, att := range t.Attachments {
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
		return nil, apperror.Wrap(apperror.KindDependency, "delete training attachment", err)
	}

	t.Attachments = kept
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "unlink training attachment", err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, "Training", &t.ID)
	return t, nil
}

// RefreshStatuses recomputes and persists the status of every record
// against the current time, touching nothing else. Running it repeatedly
// for the same instant changes nothing after the first pass.
func (s *Service) RefreshStatuses(ctx context.Context, actor *auth.Identity) (int, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, apperror.Wrap(apperror.KindDependency, "list training records", err)
	}
	now := s.now()
	changed := 0
	for i := range all {
		want := DeriveStatus(all[i].ExpiryDate, now)
		if all[i].Status == want {
			continue
		}
		if err := s.repo.SetStatus(ctx, all[i].ID, want); err != nil {
			return changed, apperror.Wrap(apperror.KindDependency, "refresh training status", err)
		}
		changed++
	}
	if changed > 0 {
		s.audit.Record(ctx, actor, audit.ActionUpdate, "Training", nil)
	}
	return changed, nil
}
