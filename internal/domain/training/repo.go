package training

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage contract for training records.
type Repository interface {
	Create(ctx context.Context, t *Training) error
	GetByID(ctx context.Context, id uuid.UUID) (*Training, error)
	Update(ctx context.Context, t *Training) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]Training, int, error)
	ListByStaff(ctx context.Context, staffID uuid.UUID, limit, offset int) ([]Training, int, error)
	ListByStatus(ctx context.Context, staffID *uuid.UUID, statuses []string, limit, offset int) ([]Training, int, error)

	// ListAll streams every record for the bulk status refresh.
	ListAll(ctx context.Context) ([]Training, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}
