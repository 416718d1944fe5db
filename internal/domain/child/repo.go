package child

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, ch *Child) error
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*Child, error)
	Update(ctx context.Context, ch *Child) error
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	List(ctx context.Context, ownerID string, limit, offset int) ([]*Child, int, error)
}
