package shift

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/carehub/carehub/internal/domain/audit"
	"github.com/carehub/carehub/internal/platform/apperror"
	"github.com/carehub/carehub/internal/platform/auth"
)

// UpdateRequest carries the mutable rota fields.
type UpdateRequest struct {
	StaffID  *uuid.UUID `json:"staff_id,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	Type     *string    `json:"type,omitempty"`
	Start    *string    `json:"start,omitempty"`
	End      *string    `json:"end,omitempty"`
	Location *string    `json:"location,omitempty"`
	Resident *string    `json:"resident,omitempty"`
	Rate     *string    `json:"rate,omitempty"`
	Hours    *string    `json:"hours,omitempty"`
}

type Service struct {
	repo  Repository
	audit *audit.Service
}

func NewService(repo Repository, auditSvc *audit.Service) *Service {
	return &Service{repo: repo, audit: auditSvc}
}

func (s *Service) Create(ctx context.Context, actor *auth.Identity, sh *Shift) error {
	if sh.StaffID == uuid.Nil {
		return apperror.New(apperror.KindValidation, "staff_id is required")
	}
	if sh.Date.IsZero() {
		return apperror.New(apperror.KindValidation, "date is required")
	}
	if sh.Type == "" {
		sh.Type = TypeShift
	}
	if !validType(sh.Type) {
		return apperror.New(apperror.KindValidation, "type must be shift or dayoff")
	}
	if err := s.repo.Create(ctx, sh); err != nil {
		return apperror.Wrap(apperror.KindDependency, "create shift", err)
	}
	s.audit.Record(ctx, actor, audit.ActionCreate, "Shift", &sh.ID)
	return nil
}

// Get returns a rota entry. Staff callers only see their own shifts.
func (s *Service) Get(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*Shift, error) {
	sh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "shift not found")
	}
	staffID, err := auth.StaffScope(actor)
	if err != nil {
		return nil, err
	}
	if staffID != nil && sh.StaffID != *staffID {
		return nil, apperror.New(apperror.KindNotFound, "shift not found")
	}
	return sh, nil
}

// List returns the rota ordered by date. Staff callers are pinned to
// their own entries regardless of the staff_id filter.
func (s *Service) List(ctx context.Context, actor *auth.Identity, staffID *uuid.UUID, from, to *time.Time, limit, offset int) ([]Shift, int, error) {
	own, err := auth.StaffScope(actor)
	if err != nil {
		return nil, 0, err
	}
	if own != nil {
		if staffID != nil && *staffID != *own {
			return []Shift{}, 0, nil
		}
		staffID = own
	}
	return s.repo.List(ctx, staffID, from, to, limit, offset)
}

func (s *Service) Update(ctx context.Context, actor *auth.Identity, id uuid.UUID, req *UpdateRequest) (*Shift, error) {
	sh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "shift not found")
	}

	if req.StaffID != nil {
		sh.StaffID = *req.StaffID
	}
	if req.Date != nil {
		sh.Date = *req.Date
	}
	if req.Type != nil {
		if !validType(*req.Type) {
			return nil, apperror.New(apperror.KindValidation, "type must be shift or dayoff")
		}
		sh.Type = *req.Type
	}
	if req.Start != nil {
		sh.Start = req.Start
	}
	if req.End != nil {
		sh.End = req.End
	}
	if req.Location != nil {
		sh.Location = req.Location
	}
	if req.Resident != nil {
		sh.Resident = req.Resident
	}
	if req.Rate != nil {
		sh.Rate = req.Rate
	}
	if req.Hours != nil {
		sh.Hours = req.Hours
	}

	if err := s.repo.Update(ctx, sh); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "update shift", err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, "Shift", &sh.ID)
	return sh, nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return apperror.New(apperror.KindNotFound, "shift not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Wrap(apperror.KindDependency, "delete shift", err)
	}
	s.audit.Record(ctx, actor, audit.ActionDelete, "Shift", &id)
	return nil
}
