package staff

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage contract for HR records, personnel documents
// and performance reviews.
type Repository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	Update(ctx context.Context, s *Staff) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]Staff, int, error)
	Search(ctx context.Context, name, status string, limit, offset int) ([]Staff, int, error)

	InsertDocument(ctx context.Context, d *Document) error
	GetDocument(ctx context.Context, id uuid.UUID) (*Document, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error
	ListDocuments(ctx context.Context, staffID uuid.UUID, limit, offset int) ([]Document, int, error)

	InsertPerformance(ctx context.Context, p *Performance) error
	GetPerformance(ctx context.Context, id uuid.UUID) (*Performance, error)
	UpdatePerformance(ctx context.Context, p *Performance) error
	DeletePerformance(ctx context.Context, id uuid.UUID) error
	ListPerformance(ctx context.Context, staffID uuid.UUID, limit, offset int) ([]Performance, int, error)
}
