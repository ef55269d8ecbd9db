package client

import (
	"context"

	"github.com/google/uuid"

	"github.com/carehub/carehub/internal/domain/audit"
	"github.com/carehub/carehub/internal/platform/apperror"
	"github.com/carehub/carehub/internal/platform/auth"
)

type Service struct {
	repo  Repository
	audit *audit.Service
}

func NewService(repo Repository, auditSvc *audit.Service) *Service {
	return &Service{repo: repo, audit: auditSvc}
}

func (s *Service) Create(ctx context.Context, actor *auth.Identity, c *Client) error {
	if c.FirstName == "" || c.LastName == "" {
		return apperror.New(apperror.KindValidation, "first and last name are required")
	}
	if c.Status != "" && !validStatus(c.Status) {
		return apperror.Newf(apperror.KindValidation, "unknown status %q", c.Status)
	}
	if c.Room != nil && *c.Room != "" {
		occupied, err := s.repo.RoomOccupied(ctx, *c.Room, c.ID)
		if err != nil {
			return apperror.Wrap(apperror.KindDependency, "check room", err)
		}
		if occupied {
			return apperror.Newf(apperror.KindConflict, "room %s is already occupied", *c.Room)
		}
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return apperror.Wrap(apperror.KindDependency, "create client", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionCreate, "Client", &c.ID, nil, &c.ID)
	return nil
}

// Get returns a client record if the caller's scope covers it. A scoped
// caller asking for an unattached client gets not found, not forbidden, so
// the response does not confirm the record exists.
func (s *Service) Get(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*Client, error) {
	if !auth.ClientScope(actor).CanSeeClient(id) {
		return nil, apperror.New(apperror.KindNotFound, "client not found")
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "client not found")
	}
	return c, nil
}

// List returns the clients visible to the caller. Scoped callers with no
// attached clients get an empty collection.
func (s *Service) List(ctx context.Context, actor *auth.Identity, limit, offset int) ([]Client, int, error) {
	scope := auth.ClientScope(actor)
	if scope.All {
		return s.repo.List(ctx, limit, offset)
	}
	return s.repo.ListByIDs(ctx, scope.ClientIDs, limit, offset)
}

// Search filters by name and status. Scoped callers fall back to their
// attached-client listing; free search is a staff-side tool.
func (s *Service) Search(ctx context.Context, actor *auth.Identity, name, status string, limit, offset int) ([]Client, int, error) {
	scope := auth.ClientScope(actor)
	if !scope.All {
		return s.repo.ListByIDs(ctx, scope.ClientIDs, limit, offset)
	}
	if status != "" && !validStatus(status) {
		return nil, 0, apperror.Newf(apperror.KindValidation, "unknown status %q", status)
	}
	return s.repo.Search(ctx, name, status, limit, offset)
}

func (s *Service) Update(ctx context.Context, actor *auth.Identity, id uuid.UUID, upd *Client) (*Client, error) {
	if !auth.ClientScope(actor).CanSeeClient(id) {
		return nil, apperror.New(apperror.KindNotFound, "client not found")
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "client not found")
	}

	if upd.FirstName != "" {
		c.FirstName = upd.FirstName
	}
	if upd.LastName != "" {
		c.LastName = upd.LastName
	}
	if upd.Status != "" {
		if !validStatus(upd.Status) {
			return nil, apperror.Newf(apperror.KindValidation, "unknown status %q", upd.Status)
		}
		c.Status = upd.Status
	}
	if upd.Room != nil {
		if *upd.Room != "" {
			occupied, err := s.repo.RoomOccupied(ctx, *upd.Room, c.ID)
			if err != nil {
				return nil, apperror.Wrap(apperror.KindDependency, "check room", err)
			}
			if occupied {
				return nil, apperror.Newf(apperror.KindConflict, "room %s is already occupied", *upd.Room)
			}
		}
		c.Room = upd.Room
	}
	if upd.DateOfBirth != nil {
		c.DateOfBirth = upd.DateOfBirth
	}
	if upd.Gender != nil {
		c.Gender = upd.Gender
	}
	if upd.Address != nil {
		c.Address = upd.Address
	}
	if upd.Phone != nil {
		c.Phone = upd.Phone
	}
	if upd.Email != nil {
		c.Email = upd.Email
	}
	if upd.NHSNumber != nil {
		c.NHSNumber = upd.NHSNumber
	}
	if upd.GPName != nil {
		c.GPName = upd.GPName
	}
	if upd.GPPhone != nil {
		c.GPPhone = upd.GPPhone
	}
	if upd.EmergencyContact != nil {
		c.EmergencyContact = upd.EmergencyContact
	}
	if upd.EmergencyPhone != nil {
		c.EmergencyPhone = upd.EmergencyPhone
	}
	if upd.Notes != nil {
		c.Notes = upd.Notes
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "update client", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "Client", &c.ID, nil, &c.ID)
	return c, nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return apperror.New(apperror.KindNotFound, "client not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Wrap(apperror.KindDependency, "delete client", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionDelete, "Client", &id, nil, &id)
	return nil
}

func validStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusDischarged:
		return true
	}
	return false
}
