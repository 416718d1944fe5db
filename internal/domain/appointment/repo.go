package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	List(ctx context.Context, ownerID string, limit, offset int) ([]*Appointment, int, error)
	ListByChild(ctx context.Context, ownerID string, childID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
}

// ReferenceChecker verifies that the child and doctor an appointment points
// at exist and belong to the caller.
type ReferenceChecker interface {
	ChildExists(ctx context.Context, ownerID string, childID uuid.UUID) (bool, error)
	DoctorExists(ctx context.Context, ownerID string, doctorID uuid.UUID) (bool, error)
}
