package client

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage contract for client records.
type Repository interface {
	Create(ctx context.Context, c *Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*Client, error)
	Update(ctx context.Context, c *Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]Client, int, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID, limit, offset int) ([]Client, int, error)
	Search(ctx context.Context, name, status string, limit, offset int) ([]Client, int, error)

	// RoomOccupied reports whether an active client other than exclude
	// already holds the room.
	RoomOccupied(ctx context.Context, room string, exclude uuid.UUID) (bool, error)
}
