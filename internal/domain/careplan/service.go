package careplan

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
	now   func() time.Time
}

func NewService(repo Repository, auditSvc *audit.Service, blobs blobstore.BlobStore) *Service {
	return &Service{repo: repo, audit: auditSvc, blobs: blobs, now: time.Now}
}

func (s *Service) Create(ctx context.Context, actor *auth.Identity, cp *CarePlan) error {
	if cp.ClientID == uuid.Nil {
		return apperror.New(apperror.KindValidation, "client_id is required")
	}
	if cp.Title == "" {
		return apperror.New(apperror.KindValidation, "title is required")
	}
	cp.Decision = DecisionPending
	if err := s.repo.Create(ctx, cp); err != nil {
		return apperror.Wrap(apperror.KindDependency, "create care plan", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionCreate, "CarePlan", &cp.ID, nil, &cp.ClientID)
	return nil
}

func (s *Service) Get(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*CarePlan, error) {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "care plan not found")
	}
	if !auth.ClientScope(actor).CanSeeClient(cp.ClientID) {
		return nil, apperror.New(apperror.KindNotFound, "care plan not found")
	}
	return cp, nil
}

func (s *Service) List(ctx context.Context, actor *auth.Identity, limit, offset int) ([]CarePlan, int, error) {
	scope := auth.ClientScope(actor)
	if scope.All {
		return s.repo.List(ctx, limit, offset)
	}
	return s.repo.ListByClients(ctx, scope.ClientIDs, limit, offset)
}

func (s *Service) ListByClient(ctx context.Context, actor *auth.Identity, clientID uuid.UUID, limit, offset int) ([]CarePlan, int, error) {
	if !auth.ClientScope(actor).CanSeeClient(clientID) {
		return []CarePlan{}, 0, nil
	}
	return s.repo.ListByClients(ctx, []uuid.UUID{clientID}, limit, offset)
}

// Update rewrites plan content. Client and Family accounts may acknowledge
// a plan but never edit it; content changes are staff-side.
func (s *Service) Update(ctx context.Context, actor *auth.Identity, id uuid.UUID, upd *CarePlan) (*CarePlan, error) {
	if actor != nil && (actor.Role == auth.RoleClient || actor.Role == auth.RoleFamily) {
		return nil, apperror.New(apperror.KindAuthorization, "care plan content can only be changed by staff")
	}
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "care plan not found")
	}

	if upd.Title != "" {
		cp.Title = upd.Title
	}
	if upd.Status != "" {
		switch upd.Status {
		case StatusDraft, StatusActive, StatusArchived:
		default:
			return nil, apperror.Newf(apperror.KindValidation, "unknown status %q", upd.Status)
		}
		cp.Status = upd.Status
	}
	if upd.Category != nil {
		cp.Category = upd.Category
	}
	if upd.Description != nil {
		cp.Description = upd.Description
	}
	if upd.StartDate != nil {
		cp.StartDate = upd.StartDate
	}
	if upd.ReviewDate != nil {
		cp.ReviewDate = upd.ReviewDate
	}

	if err := s.repo.Update(ctx, cp); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "update care plan", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "CarePlan", &cp.ID, nil, &cp.ClientID)
	return cp, nil
}

// AcknowledgeRequest carries the client's decision on a plan. Accepting may
// carry a signature; declining must carry a reason.
type AcknowledgeRequest struct {
	Accept        bool    `json:"accept"`
	Signature     *string `json:"signature,omitempty"`
	DeclineReason *string `json:"decline_reason,omitempty"`
}

// Acknowledge records that the plan's client has seen the plan and
// either accepted or declined it. This is the only plan mutation open
// to Client accounts; Family accounts can read plans but not acknowledge.
func (s *Service) Acknowledge(ctx context.Context, actor *auth.Identity, id uuid.UUID, req AcknowledgeRequest) (*CarePlan, error) {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "care plan not found")
	}
	if !auth.ClientScope(actor).CanSeeClient(cp.ClientID) {
		return nil, apperror.New(apperror.KindNotFound, "care plan not found")
	}

	if req.Accept {
		cp.Decision = DecisionAccepted
		cp.Signature = req.Signature
		cp.DeclineReason = nil
	} else {
		if req.DeclineReason == nil || *req.DeclineReason == "" {
			return nil, apperror.New(apperror.KindValidation, "decline_reason is required when declining")
		}
		cp.Decision = DecisionDeclined
		cp.DeclineReason = req.DeclineReason
		cp.Signature = nil
	}

	name := actor.FullName
	if name == "" {
		name = actor.Email
	}
	now := s.now()
	cp.AcknowledgedBy = &name
	cp.AcknowledgedAt = &now

	if err := s.repo.Update(ctx, cp); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "acknowledge care plan", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "CarePlan", &cp.ID, nil, &cp.ClientID)
	return cp, nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperror.New(apperror.KindNotFound, "care plan not found")
	}
	for _, blobID := range cp.Attachments {
		if err := s.blobs.Delete(ctx, blobID); err != nil {
			return apperror.Wrap(apperror.KindDependency, "delete plan attachment", err)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Wrap(apperror.KindDependency, "delete care plan", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionDelete, "CarePlan", &id, nil, &cp.ClientID)
	return nil
}

// AddAttachment stores a supporting document in the blob store and links
// it to the plan. Attachment management is staff-side like other content
// edits.
func (s *Service) AddAttachment(ctx context.Context, actor *auth.Identity, id uuid.UUID, fileName, contentType string, content io.Reader) (*CarePlan, error) {
	if actor != nil && (actor.Role == auth.RoleClient || actor.Role == auth.RoleFamily) {
		return nil, apperror.New(apperror.KindAuthorization, "care plan content can only be changed by staff")
	}
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "care plan not found")
	}

	meta, err := s.blobs.Upload(ctx, blobstore.BlobMetadata{
		FileName:    fileName,
		ContentType: contentType,
		OwnerType:   blobstore.OwnerClient,
		OwnerID:     cp.ClientID.String(),
		Category:    "care-document",
		CreatedBy:   actor.UserID.String(),
	}, content)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "store attachment", err)
	}

	cp.Attachments = append(cp.Attachments, meta.ID)
	if err := s.repo.Update(ctx, cp); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "link plan attachment", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "CarePlan", &cp.ID, nil, &cp.ClientID)
	return cp, nil
}

// RemoveAttachment unlinks a supporting document and deletes it from the
// blob store.
func (s *Service) RemoveAttachment(ctx context.Context, actor *auth.Identity, id uuid.UUID, blobID string) (*CarePlan, error) {
	if actor != nil && (actor.Role == auth.RoleClient || actor.Role == auth.RoleFamily) {
		return nil, apperror.New(apperror.KindAuthorization, "care plan content can only be changed by staff")
	}
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "care plan not found")
	}

	kept := cp.Attachments[:0]
	found := false
	for _, att := range cp.Attachments {
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
		return nil, apperror.Wrap(apperror.KindDependency, "delete plan attachment", err)
	}

	cp.Attachments = kept
	if err := s.repo.Update(ctx, cp); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "unlink plan attachment", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "CarePlan", &cp.ID, nil, &cp.ClientID)
	return cp, nil
}

func (s *Service) AddGoal(ctx context.Context, actor *auth.Identity, g *Goal) error {
	if g.CarePlanID == uuid.Nil {
		return apperror.New(apperror.KindValidation, "care_plan_id is required")
	}
	if g.Title == "" {
		return apperror.New(apperror.KindValidation, "title is required")
	}
	cp, err := s.repo.GetByID(ctx, g.CarePlanID)
	if err != nil {
		return apperror.New(apperror.KindNotFound, "care plan not found")
	}
	if err := s.repo.InsertGoal(ctx, g); err != nil {
		return apperror.Wrap(apperror.KindDependency, "create goal", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionCreate, "Goal", &g.ID, nil, &cp.ClientID)
	return nil
}

func (s *Service) ListGoals(ctx context.Context, actor *auth.Identity, carePlanID uuid.UUID) ([]Goal, error) {
	cp, err := s.repo.GetByID(ctx, carePlanID)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "care plan not found")
	}
	if !auth.ClientScope(actor).CanSeeClient(cp.ClientID) {
		return nil, apperror.New(apperror.KindNotFound, "care plan not found")
	}
	return s.repo.ListGoals(ctx, carePlanID)
}

func (s *Service) UpdateGoal(ctx context.Context, actor *auth.Identity, id uuid.UUID, upd *Goal) (*Goal, error) {
	g, err := s.repo.GetGoal(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "goal not found")
	}

	if upd.Title != "" {
		g.Title = upd.Title
	}
	if upd.Status != "" {
		switch upd.Status {
		case GoalOpen, GoalAchieved, GoalAbandoned:
		default:
			return nil, apperror.Newf(apperror.KindValidation, "unknown status %q", upd.Status)
		}
		g.Status = upd.Status
	}
	if upd.Detail != nil {
		g.Detail = upd.Detail
	}
	if upd.TargetDate != nil {
		g.TargetDate = upd.TargetDate
	}

	if err := s.repo.UpdateGoal(ctx, g); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "update goal", err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, "Goal", &g.ID)
	return g, nil
}

func (s *Service) DeleteGoal(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	if _, err := s.repo.GetGoal(ctx, id); err != nil {
		return apperror.New(apperror.KindNotFound, "goal not found")
	}
	if err := s.repo.DeleteGoal(ctx, id); err != nil {
		return apperror.Wrap(apperror.KindDependency, "delete goal", err)
	}
	s.audit.Record(ctx, actor, audit.ActionDelete, "Goal", &id)
	return nil
}
