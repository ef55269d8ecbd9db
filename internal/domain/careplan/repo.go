package careplan

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage contract for care plans and goals.
type Repository interface {
	Create(ctx context.Context, cp *CarePlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*CarePlan, error)
	Update(ctx context.Context, cp *CarePlan) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]CarePlan, int, error)
	ListByClients(ctx context.Context, clientIDs []uuid.UUID, limit, offset int) ([]CarePlan, int, error)

	InsertGoal(ctx context.Context, g *Goal) error
	GetGoal(ctx context.Context, id uuid.UUID) (*Goal, error)
	UpdateGoal(ctx context.Context, g *Goal) error
	DeleteGoal(ctx context.Context, id uuid.UUID) error
	ListGoals(ctx context.Context, carePlanID uuid.UUID) ([]Goal, error)
}
