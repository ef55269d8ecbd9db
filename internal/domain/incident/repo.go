package incident

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage contract for incident reports.
type Repository interface {
	Create(ctx context.Context, in *Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*Incident, error)
	Update(ctx context.Context, in *Incident) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]Incident, int, error)
	ListByClients(ctx context.Context, clientIDs []uuid.UUID, limit, offset int) ([]Incident, int, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]Incident, int, error)
}
