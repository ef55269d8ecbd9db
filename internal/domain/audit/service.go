package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carehub/carehub/internal/platform/apperror"
	"github.com/carehub/carehub/internal/platform/auth"
)

// Service writes and reads the audit trail. Writes are best-effort: a failed
// audit insert is logged but never fails the operation being audited.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record appends an entry for the acting identity. The identity may be nil
// (bootstrap signup); the actor is then recorded as "system".
func (s *Service) Record(ctx context.Context, id *auth.Identity, action, targetType string, targetID *uuid.UUID) {
	s.RecordDetail(ctx, id, action, targetType, targetID, nil, nil)
}

// RecordDetail appends an entry with the optional training requirement and
// owning client references.
func (s *Service) RecordDetail(ctx context.Context, id *auth.Identity, action, targetType string, targetID *uuid.UUID, requirement *string, clientID *uuid.UUID) {
	actor := "system"
	if id != nil {
		actor = id.Actor()
	}
	e := &Entry{
		Actor:       actor,
		Action:      action,
		TargetType:  targetType,
		TargetID:    targetID,
		Requirement: requirement,
		ClientID:    clientID,
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		s.logger.Error().Err(err).
			Str("actor", actor).
			Str("action", action).
			Str("target_type", targetType).
			Msg("audit write failed")
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "audit entry not found")
	}
	return e, nil
}

// List returns matching entries. Only roles with an unrestricted client
// scope hold AuditLog read today; a client-scoped caller is still pinned
// to its attached clients should the policy ever widen.
func (s *Service) List(ctx context.Context, actor *auth.Identity, f Filter, limit, offset int) ([]*Entry, int, error) {
	scope := auth.ClientScope(actor)
	if !scope.All {
		if f.ClientID == nil || !scope.CanSeeClient(*f.ClientID) {
			return nil, 0, apperror.New(apperror.KindAuthorization, "audit listing is limited to attached clients")
		}
	}
	return s.repo.List(ctx, f, limit, offset)
}

// Purge removes entries older than the cutoff. The purge itself is recorded,
// so the trail always shows that records were removed and by whom.
func (s *Service) Purge(ctx context.Context, id *auth.Identity, cutoff time.Time) (int64, error) {
	if !cutoff.Before(time.Now()) {
		return 0, apperror.New(apperror.KindValidation, "cutoff must be in the past")
	}
	removed, err := s.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, apperror.Wrap(apperror.KindDependency, "purge audit entries", err)
	}
	detail := "purged " + cutoff.UTC().Format(time.RFC3339)
	e := &Entry{
		Actor:      id.Actor(),
		Action:     ActionPurge,
		TargetType: "AuditLog",
		Detail:     &detail,
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		s.logger.Error().Err(err).Msg("audit write failed")
	}
	return removed, nil
}
