package risk

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage contract for assessments and PBS plans.
type Repository interface {
	CreateAssessment(ctx context.Context, a *Assessment) error
	GetAssessment(ctx context.Context, id uuid.UUID) (*Assessment, error)
	UpdateAssessment(ctx context.Context, a *Assessment) error
	DeleteAssessment(ctx context.Context, id uuid.UUID) error
	ListAssessments(ctx context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]Assessment, int, error)

	CreatePlan(ctx context.Context, p *PBSPlan) error
	GetPlan(ctx context.Context, id uuid.UUID) (*PBSPlan, error)
	UpdatePlan(ctx context.Context, p *PBSPlan) error
	DeletePlan(ctx context.Context, id uuid.UUID) error
	ListPlans(ctx context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]PBSPlan, int, error)
}
