package risk

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

func validScore(n int) bool { return n >= 1 && n <= 5 }

func (s *Service) CreateAssessment(ctx context.Context, actor *auth.Identity, a *Assessment) error {
	if a.ClientID == uuid.Nil {
		return apperror.New(apperror.KindValidation, "client_id is required")
	}
	if a.Hazard == "" {
		return apperror.New(apperror.KindValidation, "hazard is required")
	}
	if !validScore(a.Likelihood) || !validScore(a.Impact) {
		return apperror.New(apperror.KindValidation, "likelihood and impact must be between 1 and 5")
	}
	a.Level = DeriveLevel(a.Likelihood, a.Impact)
	if err := s.repo.CreateAssessment(ctx, a); err != nil {
		return apperror.Wrap(apperror.KindDependency, "create risk assessment", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionCreate, "RiskAssessment", &a.ID, nil, &a.ClientID)
	return nil
}

func (s *Service) GetAssessment(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*Assessment, error) {
	a, err := s.repo.GetAssessment(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "risk assessment not found")
	}
	if !auth.ClientScope(actor).CanSeeClient(a.ClientID) {
		return nil, apperror.New(apperror.KindNotFound, "risk assessment not found")
	}
	return a, nil
}

func (s *Service) ListAssessments(ctx context.Context, actor *auth.Identity, limit, offset int) ([]Assessment, int, error) {
	scope := auth.ClientScope(actor)
	return s.repo.ListAssessments(ctx, scope.ClientIDs, scope.All, limit, offset)
}

func (s *Service) UpdateAssessment(ctx context.Context, actor *auth.Identity, id uuid.UUID, upd *Assessment) (*Assessment, error) {
	a, err := s.repo.GetAssessment(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "risk assessment not found")
	}

	if upd.Hazard != "" {
		a.Hazard = upd.Hazard
	}
	if upd.Likelihood != 0 {
		if !validScore(upd.Likelihood) {
			return nil, apperror.New(apperror.KindValidation, "likelihood must be between 1 and 5")
		}
		a.Likelihood = upd.Likelihood
	}
	if upd.Impact != 0 {
		if !validScore(upd.Impact) {
			return nil, apperror.New(apperror.KindValidation, "impact must be between 1 and 5")
		}
		a.Impact = upd.Impact
	}
	a.Level = DeriveLevel(a.Likelihood, a.Impact)
	if upd.Category != nil {
		a.Category = upd.Category
	}
	if upd.Mitigation != nil {
		a.Mitigation = upd.Mitigation
	}
	if upd.ReviewDate != nil {
		a.ReviewDate = upd.ReviewDate
	}

	if err := s.repo.UpdateAssessment(ctx, a); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "update risk assessment", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "RiskAssessment", &a.ID, nil, &a.ClientID)
	return a, nil
}

func (s *Service) DeleteAssessment(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	a, err := s.repo.GetAssessment(ctx, id)
	if err != nil {
		return apperror.New(apperror.KindNotFound, "risk assessment not found")
	}
	if err := s.repo.DeleteAssessment(ctx, id); err != nil {
		return apperror.Wrap(apperror.KindDependency, "delete risk assessment", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionDelete, "RiskAssessment", &id, nil, &a.ClientID)
	return nil
}

func (s *Service) CreatePlan(ctx context.Context, actor *auth.Identity, p *PBSPlan) error {
	if p.ClientID == uuid.Nil {
		return apperror.New(apperror.KindValidation, "client_id is required")
	}
	if p.Behaviour == "" {
		return apperror.New(apperror.KindValidation, "behaviour is required")
	}
	if err := s.repo.CreatePlan(ctx, p); err != nil {
		return apperror.Wrap(apperror.KindDependency, "create pbs plan", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionCreate, "PBSPlan", &p.ID, nil, &p.ClientID)
	return nil
}

func (s *Service) GetPlan(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*PBSPlan, error) {
	p, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "pbs plan not found")
	}
	if !auth.ClientScope(actor).CanSeeClient(p.ClientID) {
		return nil, apperror.New(apperror.KindNotFound, "pbs plan not found")
	}
	return p, nil
}

func (s *Service) ListPlans(ctx context.Context, actor *auth.Identity, limit, offset int) ([]PBSPlan, int, error) {
	scope := auth.ClientScope(actor)
	return s.repo.ListPlans(ctx, scope.ClientIDs, scope.All, limit, offset)
}

func (s *Service) UpdatePlan(ctx context.Context, actor *auth.Identity, id uuid.UUID, upd *PBSPlan) (*PBSPlan, error) {
	p, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "pbs plan not found")
	}

	if upd.Behaviour != "" {
		p.Behaviour = upd.Behaviour
	}
	if upd.Triggers != nil {
		p.Triggers = upd.Triggers
	}
	if upd.Prevention != nil {
		p.Prevention = upd.Prevention
	}
	if upd.Deescalation != nil {
		p.Deescalation = upd.Deescalation
	}
	if upd.ReviewDate != nil {
		p.ReviewDate = upd.ReviewDate
	}

	if err := s.repo.UpdatePlan(ctx, p); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "update pbs plan", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "PBSPlan", &p.ID, nil, &p.ClientID)
	return p, nil
}

func (s *Service) DeletePlan(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	p, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return apperror.New(apperror.KindNotFound, "pbs plan not found")
	}
	if err := s.repo.DeletePlan(ctx, id); err != nil {
		return apperror.Wrap(apperror.KindDependency, "delete pbs plan", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionDelete, "PBSPlan", &id, nil, &p.ClientID)
	return nil
}
