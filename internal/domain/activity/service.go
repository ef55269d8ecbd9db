package activity

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

type Service struct {
	repo  Repository
	audit *audit.Service
	blobs blobstore.BlobStore

	now func() time.Time
}

func NewService(repo Repository, auditSvc *audit.Service, blobs blobstore.BlobStore) *Service {
	return &Service{repo: repo, audit: auditSvc, blobs: blobs, now: time.Now}
}

func (s *Service) CreateLog(ctx context.Context, actor *auth.Identity, l *DailyLog) error {
	if l.ClientID == uuid.Nil {
		return apperror.New(apperror.KindValidation, "client_id is required")
	}
	if l.LoggedAt.IsZero() {
		l.LoggedAt = s.now()
	}
	if l.StaffName == "" {
		l.StaffName = actor.FullName
	}
	if l.Status == "" {
		l.Status = StatusActive
	}
	if l.Status != StatusActive && l.Status != StatusArchived {
		return apperror.Newf(apperror.KindValidation, "unknown status %q", l.Status)
	}
	if err := s.repo.CreateLog(ctx, l); err != nil {
		return apperror.Wrap(apperror.KindDependency, "create daily log", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionCreate, "DailyLog", &l.ID, nil, &l.ClientID)
	return nil
}

func (s *Service) GetLog(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*DailyLog, error) {
	l, err := s.repo.GetLog(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "daily log not found")
	}
	if !auth.ClientScope(actor).CanSeeClient(l.ClientID) {
		return nil, apperror.New(apperror.KindNotFound, "daily log not found")
	}
	return l, nil
}

func (s *Service) ListLogs(ctx context.Context, actor *auth.Identity, limit, offset int) ([]DailyLog, int, error) {
	scope := auth.ClientScope(actor)
	return s.repo.ListLogs(ctx, scope.ClientIDs, scope.All, limit, offset)
}

func (s *Service) UpdateLog(ctx context.Context, actor *auth.Identity, id uuid.UUID, upd *DailyLog) (*DailyLog, error) {
	l, err := s.repo.GetLog(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "daily log not found")
	}

	if !upd.LoggedAt.IsZero() {
		l.LoggedAt = upd.LoggedAt
	}
	if upd.StaffName != "" {
		l.StaffName = upd.StaffName
	}
	if upd.Notes != nil {
		l.Notes = upd.Notes
	}
	if upd.Mood != nil {
		l.Mood = upd.Mood
	}
	if upd.BristolScore != nil {
		l.BristolScore = upd.BristolScore
	}
	if upd.HeartRate != nil {
		l.HeartRate = upd.HeartRate
	}
	if upd.HealthNote != nil {
		l.HealthNote = upd.HealthNote
	}
	if upd.Status != "" {
		if upd.Status != StatusActive && upd.Status != StatusArchived {
			return nil, apperror.Newf(apperror.KindValidation, "unknown status %q", upd.Status)
		}
		l.Status = upd.Status
	}

	if err := s.repo.UpdateLog(ctx, l); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "update daily log", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "DailyLog", &l.ID, nil, &l.ClientID)
	return l, nil
}

func (s *Service) DeleteLog(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	l, err := s.repo.GetLog(ctx, id)
	if err != nil {
		return apperror.New(apperror.KindNotFound, "daily log not found")
	}
	if err := s.repo.DeleteLog(ctx, id); err != nil {
		return apperror.Wrap(apperror.KindDependency, "delete daily log", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionDelete, "DailyLog", &id, nil, &l.ClientID)
	return nil
}

func (s *Service) CreateHandover(ctx context.Context, actor *auth.Identity, h *Handover) error {
	if h.ClientID == uuid.Nil {
		return apperror.New(apperror.KindValidation, "client_id is required")
	}
	if h.Date.IsZero() {
		return apperror.New(apperror.KindValidation, "date is required")
	}
	if h.TimeOfDay == "" {
		return apperror.New(apperror.KindValidation, "time_of_day is required")
	}
	if h.HandingOver == nil || *h.HandingOver == "" {
		name := actor.FullName
		h.HandingOver = &name
	}
	if h.Status == "" {
		h.Status = StatusActive
	}
	if err := s.repo.CreateHandover(ctx, h); err != nil {
		return apperror.Wrap(apperror.KindDependency, "create handover", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionCreate, "Handover", &h.ID, nil, &h.ClientID)
	return nil
}

func (s *Service) GetHandover(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*Handover, error) {
	h, err := s.repo.GetHandover(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "handover not found")
	}
	if !auth.ClientScope(actor).CanSeeClient(h.ClientID) {
		return nil, apperror.New(apperror.KindNotFound, "handover not found")
	}
	return h, nil
}

func (s *Service) ListHandovers(ctx context.Context, actor *auth.Identity, limit, offset int) ([]Handover, int, error) {
	scope := auth.ClientScope(actor)
	return s.repo.ListHandovers(ctx, scope.ClientIDs, scope.All, limit, offset)
}

func (s *Service) UpdateHandover(ctx context.Context, actor *auth.Identity, id uuid.UUID, upd *Handover) (*Handover, error) {
	h, err := s.repo.GetHandover(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "handover not found")
	}

	if !upd.Date.IsZero() {
		h.Date = upd.Date
	}
	if upd.TimeOfDay != "" {
		h.TimeOfDay = upd.TimeOfDay
	}
	if upd.HandingOver != nil {
		h.HandingOver = upd.HandingOver
	}
	if upd.TakingOver != nil {
		h.TakingOver = upd.TakingOver
	}
	if upd.Summary != nil {
		h.Summary = upd.Summary
	}
	if upd.Status != "" {
		if upd.Status != StatusActive && upd.Status != StatusArchived {
			return nil, apperror.Newf(apperror.KindValidation, "unknown status %q", upd.Status)
		}
		h.Status = upd.Status
	}

	if err := s.repo.UpdateHandover(ctx, h); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "update handover", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "Handover", &h.ID, nil, &h.ClientID)
	return h, nil
}

func (s *Service) DeleteHandover(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	h, err := s.repo.GetHandover(ctx, id)
	if err != nil {
		return apperror.New(apperror.KindNotFound, "handover not found")
	}
	if err := s.repo.DeleteHandover(ctx, id); err != nil {
		return apperror.Wrap(apperror.KindDependency, "delete handover", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionDelete, "Handover", &id, nil, &h.ClientID)
	return nil
}

func (s *Service) CreateActivity(ctx context.Context, actor *auth.Identity, a *SocialActivity) error {
	if a.ClientID == uuid.Nil {
		return apperror.New(apperror.KindValidation, "client_id is required")
	}
	if !validActivityType(a.ActivityType) {
		return apperror.Newf(apperror.KindValidation, "unknown activity type %q", a.ActivityType)
	}
	if a.Caregiver == "" {
		a.Caregiver = actor.FullName
	}
	if a.Date.IsZero() {
		a.Date = s.now()
	}
	if err := s.repo.CreateActivity(ctx, a); err != nil {
		return apperror.Wrap(apperror.KindDependency, "create social activity", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionCreate, "SocialActivity", &a.ID, nil, &a.ClientID)
	return nil
}

func (s *Service) GetActivity(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*SocialActivity, error) {
	a, err := s.repo.GetActivity(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "social activity not found")
	}
	if !auth.ClientScope(actor).CanSeeClient(a.ClientID) {
		return nil, apperror.New(apperror.KindNotFound, "social activity not found")
	}
	return a, nil
}

func (s *Service) ListActivities(ctx context.Context, actor *auth.Identity, limit, offset int) ([]SocialActivity, int, error) {
	scope := auth.ClientScope(actor)
	return s.repo.ListActivities(ctx, scope.ClientIDs, scope.All, limit, offset)
}

func (s *Service) UpdateActivity(ctx context.Context, actor *auth.Identity, id uuid.UUID, upd *SocialActivity) (*SocialActivity, error) {
	a, err := s.repo.GetActivity(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "social activity not found")
	}

	if upd.Caregiver != "" {
		a.Caregiver = upd.Caregiver
	}
	if upd.ActivityType != "" {
		if !validActivityType(upd.ActivityType) {
			return nil, apperror.Newf(apperror.KindValidation, "unknown activity type %q", upd.ActivityType)
		}
		a.ActivityType = upd.ActivityType
	}
	if upd.Description != nil {
		a.Description = upd.Description
	}
	if !upd.Date.IsZero() {
		a.Date = upd.Date
	}

	if err := s.repo.UpdateActivity(ctx, a); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "update social activity", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "SocialActivity", &a.ID, nil, &a.ClientID)
	return a, nil
}

func (s *Service) DeleteActivity(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	a, err := s.repo.GetActivity(ctx, id)
	if err != nil {
		return apperror.New(apperror.KindNotFound, "social activity not found")
	}
	for _, blobID := range a.Attachments {
		if err := s.blobs.Delete(ctx, blobID); err != nil {
			return apperror.Wrap(apperror.KindDependency, "delete activity attachment", err)
		}
	}
	if err := s.repo.DeleteActivity(ctx, id); err != nil {
		return apperror.Wrap(apperror.KindDependency, "delete social activity", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionDelete, "SocialActivity", &id, nil, &a.ClientID)
	return nil
}

// AddAttachment stores a photo in the blob store and links it to the
// activity.
func (s *Service) AddAttachment(ctx context.Context, actor *auth.Identity, id uuid.UUID, fileName, contentType string, content io.Reader) (*SocialActivity, error) {
	a, err := s.repo.GetActivity(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "social activity not found")
	}

	meta, err := s.blobs.Upload(ctx, blobstore.BlobMetadata{
		FileName:    fileName,
		ContentType: contentType,
		OwnerType:   blobstore.OwnerClient,
		OwnerID:     a.ClientID.String(),
		Category:    "other",
		CreatedBy:   actor.UserID.String(),
	}, content)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "store attachment", err)
	}

	a.Attachments = append(a.Attachments, meta.ID)
	if err := s.repo.UpdateActivity(ctx, a); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "link activity attachment", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "SocialActivity", &a.ID, nil, &a.ClientID)
	return a, nil
}

// RemoveAttachment unlinks a stored photo and deletes it from the blob
// store.
func (s *Service) RemoveAttachment(ctx context.Context, actor *auth.Identity, id uuid.UUID, blobID string) (*SocialActivity, error) {
	a, err := s.repo.GetActivity(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "social activity not found")
	}

	kept := a.Attachments[:0]
	found := false
	for _, att := range a.Attachments {
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
		return nil, apperror.Wrap(apperror.KindDependency, "delete activity attachment", err)
	}

	a.Attachments = kept
	if err := s.repo.UpdateActivity(ctx, a); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "unlink activity attachment", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "SocialActivity", &a.ID, nil, &a.ClientID)
	return a, nil
}
