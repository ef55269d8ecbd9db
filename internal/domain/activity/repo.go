package activity

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage contract for the care record entities.
type Repository interface {
	CreateLog(ctx context.Context, l *DailyLog) error
	GetLog(ctx context.Context, id uuid.UUID) (*DailyLog, error)
	UpdateLog(ctx context.Context, l *DailyLog) error
	DeleteLog(ctx context.Context, id uuid.UUID) error
	ListLogs(ctx context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]DailyLog, int, error)

	CreateHandover(ctx context.Context, h *Handover) error
	GetHandover(ctx context.Context, id uuid.UUID) (*Handover, error)
	UpdateHandover(ctx context.Context, h *Handover) error
	DeleteHandover(ctx context.Context, id uuid.UUID) error
	ListHandovers(ctx context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]Handover, int, error)

	CreateActivity(ctx context.Context, a *SocialActivity) error
	GetActivity(ctx context.Context, id uuid.UUID) (*SocialActivity, error)
	UpdateActivity(ctx context.Context, a *SocialActivity) error
	DeleteActivity(ctx context.Context, id uuid.UUID) error
	ListActivities(ctx context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]SocialActivity, int, error)
}
