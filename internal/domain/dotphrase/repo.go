package dotphrase

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("dot phrase not found")
	ErrDuplicate = errors.New("dot phrase name already exists")
)

// Repository stores dot phrases. Every method is scoped to the owning user.
type Repository interface {
	Create(ctx context.Context, p *DotPhrase) error
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*DotPhrase, error)
	GetByName(ctx context.Context, userID, name string) (*DotPhrase, error)
	Update(ctx context.Context, p *DotPhrase) error
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*DotPhrase, int, error)
}
