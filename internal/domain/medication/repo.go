package medication

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage contract for medications and their
// administration history.
//
// AdjustStock must be an atomic counter update in the store, clamped at
// zero, never a read-then-write round trip: concurrent administrations of
// the same medication must not lose updates.
type Repository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	Update(ctx context.Context, m *Medication) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]Medication, int, error)
	ListByClients(ctx context.Context, clientIDs []uuid.UUID, limit, offset int) ([]Medication, int, error)
	ListLowStock(ctx context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]Medication, int, error)
	ListStale(ctx context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]Medication, int, error)

	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	CountGiven(ctx context.Context, medicationID uuid.UUID) (int, error)

	InsertEvent(ctx context.Context, ev *AdministrationEvent) error
	GetEvent(ctx context.Context, id uuid.UUID) (*AdministrationEvent, error)
	UpdateEvent(ctx context.Context, ev *AdministrationEvent) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	ListEvents(ctx context.Context, medicationID uuid.UUID, limit, offset int) ([]AdministrationEvent, int, error)
}
