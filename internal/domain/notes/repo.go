package notes

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("note not found")

type Repository interface {
	Create(ctx context.Context, n *Note) error
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*Note, error)
	Update(ctx context.Context, n *Note) error
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	// ListByUser returns the user's notes newest first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Note, int, error)
}
