package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]*Entry, int, error)
	// DeleteBefore removes entries older than the cutoff and returns the
	// number removed. Used only by the audited purge operation.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
