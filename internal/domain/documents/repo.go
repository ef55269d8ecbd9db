package documents

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage contract for templates and consent records.
type Repository interface {
	CreateTemplate(ctx context.Context, t *Template) error
	GetTemplate(ctx context.Context, id uuid.UUID) (*Template, error)
	UpdateTemplate(ctx context.Context, t *Template) error
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
	ListTemplates(ctx context.Context, visibilities []string, limit, offset int) ([]Template, int, error)

	CreateConsent(ctx context.Context, r *ConsentRecord) error
	GetConsent(ctx context.Context, id uuid.UUID) (*ConsentRecord, error)
	UpdateConsent(ctx context.Context, r *ConsentRecord) error
	DeleteConsent(ctx context.Context, id uuid.UUID) error
	ListConsents(ctx context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]ConsentRecord, int, error)
}
