package staff

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

// checkStaffAccess limits Staff callers to their own HR record.
func checkStaffAccess(actor *auth.Identity, staffID uuid.UUID) error {
	own, err := auth.StaffScope(actor)
	if err != nil {
		return err
	}
	if own != nil && *own != staffID {
		return apperror.New(apperror.KindNotFound, "staff record not found")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, actor *auth.Identity, st *Staff) error {
	if st.FirstName == "" || st.LastName == "" {
		return apperror.New(apperror.KindValidation, "first and last name are required")
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return apperror.Wrap(apperror.KindDependency, "create staff record", err)
	}
	s.audit.Record(ctx, actor, audit.ActionCreate, "Staff", &st.ID)
	return nil
}

func (s *Service) Get(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*Staff, error) {
	if err := checkStaffAccess(actor, id); err != nil {
		return nil, err
	}
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "staff record not found")
	}
	return st, nil
}

// List is the roster view. Staff callers see only their own entry.
func (s *Service) List(ctx context.Context, actor *auth.Identity, name, status string, limit, offset int) ([]Staff, int, error) {
	own, err := auth.StaffScope(actor)
	if err != nil {
		return nil, 0, err
	}
	if own != nil {
		st, err := s.repo.GetByID(ctx, *own)
		if err != nil {
			return []Staff{}, 0, nil
		}
		return []Staff{*st}, 1, nil
	}
	if name != "" || status != "" {
		return s.repo.Search(ctx, name, status, limit, offset)
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Update(ctx context.Context, actor *auth.Identity, id uuid.UUID, upd *Staff) (*Staff, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "staff record not found")
	}

	if upd.FirstName != "" {
		st.FirstName = upd.FirstName
	}
	if upd.LastName != "" {
		st.LastName = upd.LastName
	}
	if upd.Status != "" {
		switch upd.Status {
		case StatusActive, StatusOnLeave, StatusInactive:
		default:
			return nil, apperror.Newf(apperror.KindValidation, "unknown status %q", upd.Status)
		}
		st.Status = upd.Status
	}
	if upd.JobTitle != nil {
		st.JobTitle = upd.JobTitle
	}
	if upd.Email != nil {
		st.Email = upd.Email
	}
	if upd.Phone != nil {
		st.Phone = upd.Phone
	}
	if upd.Address != nil {
		st.Address = upd.Address
	}
	if upd.StartDate != nil {
		st.StartDate = upd.StartDate
	}
	if upd.Notes != nil {
		st.Notes = upd.Notes
	}

	if err := s.repo.Update(ctx, st); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "update staff record", err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, "Staff", &st.ID)
	return st, nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return apperror.New(apperror.KindNotFound, "staff record not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Wrap(apperror.KindDependency, "delete staff record", err)
	}
	s.audit.Record(ctx, actor, audit.ActionDelete, "Staff", &id)
	return nil
}

// AddDocument records a personnel document. When content is non-nil the
// file body goes to the blob store and the record keeps its reference.
func (s *Service) AddDocument(ctx context.Context, actor *auth.Identity, d *Document, fileName, contentType string, content io.Reader) error {
	if d.StaffID == uuid.Nil {
		return apperror.New(apperror.KindValidation, "staff_id is required")
	}
	if d.Name == "" {
		return apperror.New(apperror.KindValidation, "name is required")
	}
	if _, err := s.repo.GetByID(ctx, d.StaffID); err != nil {
		return apperror.New(apperror.KindNotFound, "staff record not found")
	}

	if content != nil {
		meta, err := s.blobs.Upload(ctx, blobstore.BlobMetadata{
			FileName:    fileName,
			ContentType: contentType,
			OwnerType:   blobstore.OwnerStaff,
			OwnerID:     d.StaffID.String(),
			Category:    "staff-document",
			CreatedBy:   actor.UserID.String(),
		}, content)
		if err != nil {
			return apperror.Wrap(apperror.KindValidation, "store document", err)
		}
		blobID, err := uuid.Parse(meta.ID)
		if err != nil {
			return apperror.Wrap(apperror.KindDependency, "store document", err)
		}
		d.BlobID = &blobID
	}

	if err := s.repo.InsertDocument(ctx, d); err != nil {
		return apperror.Wrap(apperror.KindDependency, "create staff document", err)
	}
	s.audit.Record(ctx, actor, audit.ActionCreate, "StaffDocument", &d.ID)
	return nil
}

// DownloadDocument streams the stored file body for a personnel document.
func (s *Service) DownloadDocument(ctx context.Context, actor *auth.Identity, id uuid.UUID) (io.ReadCloser, *blobstore.BlobMetadata, error) {
	d, err := s.GetDocument(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	if d.BlobID == nil {
		return nil, nil, apperror.New(apperror.KindNotFound, "staff document has no file")
	}
	body, meta, err := s.blobs.Download(ctx, d.BlobID.String())
	if err != nil {
		return nil, nil, apperror.Wrap(apperror.KindDependency, "fetch document", err)
	}
	return body, meta, nil
}

func (s *Service) GetDocument(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*Document, error) {
	d, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "staff document not found")
	}
	if err := checkStaffAccess(actor, d.StaffID); err != nil {
		return nil, apperror.New(apperror.KindNotFound, "staff document not found")
	}
	return d, nil
}

func (s *Service) ListDocuments(ctx context.Context, actor *auth.Identity, staffID uuid.UUID, limit, offset int) ([]Document, int, error) {
	if err := checkStaffAccess(actor, staffID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListDocuments(ctx, staffID, limit, offset)
}

func (s *Service) DeleteDocument(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	d, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return apperror.New(apperror.KindNotFound, "staff document not found")
	}
	if d.BlobID != nil {
		if err := s.blobs.Delete(ctx, d.BlobID.String()); err != nil {
			return apperror.Wrap(apperror.KindDependency, "delete document file", err)
		}
	}
	if err := s.repo.DeleteDocument(ctx, id); err != nil {
		return apperror.Wrap(apperror.KindDependency, "delete staff document", err)
	}
	s.audit.Record(ctx, actor, audit.ActionDelete, "StaffDocument", &id)
	return nil
}

func (s *Service) AddPerformance(ctx context.Context, actor *auth.Identity, p *Performance) error {
	if p.StaffID == uuid.Nil {
		return apperror.New(apperror.KindValidation, "staff_id is required")
	}
	if p.Rating != nil && (*p.Rating < 1 || *p.Rating > 5) {
		return apperror.New(apperror.KindValidation, "rating must be between 1 and 5")
	}
	if _, err := s.repo.GetByID(ctx, p.StaffID); err != nil {
		return apperror.New(apperror.KindNotFound, "staff record not found")
	}
	if err := s.repo.InsertPerformance(ctx, p); err != nil {
		return apperror.Wrap(apperror.KindDependency, "create performance review", err)
	}
	s.audit.Record(ctx, actor, audit.ActionCreate, "Performance", &p.ID)
	return nil
}

func (s *Service) GetPerformance(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*Performance, error) {
	p, err := s.repo.GetPerformance(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "performance review not found")
	}
	if err := checkStaffAccess(actor, p.StaffID); err != nil {
		return nil, apperror.New(apperror.KindNotFound, "performance review not found")
	}
	return p, nil
}

func (s *Service) ListPerformance(ctx context.Context, actor *auth.Identity, staffID uuid.UUID, limit, offset int) ([]Performance, int, error) {
	if err := checkStaffAccess(actor, staffID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListPerformance(ctx, staffID, limit, offset)
}

func (s *Service) UpdatePerformance(ctx context.Context, actor *auth.Identity, id uuid.UUID, upd *Performance) (*Performance, error) {
	p, err := s.repo.GetPerformance(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "performance review not found")
	}
	if upd.ReviewDate != nil {
		p.ReviewDate = upd.ReviewDate
	}
	if upd.Reviewer != nil {
		p.Reviewer = upd.Reviewer
	}
	if upd.Rating != nil {
		if *upd.Rating < 1 || *upd.Rating > 5 {
			return nil, apperror.New(apperror.KindValidation, "rating must be between 1 and 5")
		}
		p.Rating = upd.Rating
	}
	if upd.Comments != nil {
		p.Comments = upd.Comments
	}
	if err := s.repo.UpdatePerformance(ctx, p); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "update performance review", err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, "Performance", &p.ID)
	return p, nil
}

func (s *Service) DeletePerformance(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	if _, err := s.repo.GetPerformance(ctx, id); err != nil {
		return apperror.New(apperror.KindNotFound, "performance review not found")
	}
	if err := s.repo.DeletePerformance(ctx, id); err != nil {
		return apperror.Wrap(apperror.KindDependency, "delete performance review", err)
	}
	s.audit.Record(ctx, actor, audit.ActionDelete, "Performance", &id)
	return nil
}
