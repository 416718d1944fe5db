package growth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AgeRange is an optional inclusive filter on the stored age in months.
type AgeRange struct {
	Min *float64
	Max *float64
}

type Repository interface {
	Create(ctx context.Context, m *Measurement) error
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*Measurement, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	ListByChild(ctx context.Context, ownerID string, childID uuid.UUID, ages AgeRange, limit, offset int) ([]*Measurement, int, error)
}

// BirthDateSource resolves a child's birth date with owner scoping, used to
// compute the age at measurement time.
type BirthDateSource interface {
	BirthDate(ctx context.Context, ownerID string, childID uuid.UUID) (time.Time, error)
}
