package shift

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the storage contract for rota entries.
type Repository interface {
	Create(ctx context.Context, s *Shift) error
	GetByID(ctx context.Context, id uuid.UUID) (*Shift, error)
	Update(ctx context.Context, s *Shift) error
	Delete(ctx context.Context, id uuid.UUID) error

	// List filters by staff member and date window; nil means no filter.
	List(ctx context.Context, staffID *uuid.UUID, from, to *time.Time, limit, offset int) ([]Shift, int, error)
}
