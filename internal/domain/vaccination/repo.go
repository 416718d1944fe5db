package vaccination

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type DefinitionRepository interface {
	ListActive(ctx context.Context) ([]*VaccineDefinition, error)
}

type DoseRepository interface {
	// HasSchedule is a cheap existence probe, not a full fetch.
	HasSchedule(ctx context.Context, childID uuid.UUID) (bool, error)
	// CreateBatch inserts all doses atomically. A duplicate
	// (child, definition) pair fails the whole batch with ErrScheduleExists.
	CreateBatch(ctx context.Context, doses []*ScheduledDose) error
	ListViewsByChild(ctx context.Context, ownerID string, childID uuid.UUID) ([]*DoseView, error)
	MarkApplied(ctx context.Context, ownerID string, doseID uuid.UUID, completedDate time.Time, location string, notes *string) error
}

// ChildDirectory resolves minimal child identity with owner scoping. It is
// a narrow view of the child store so the schedule engine does not depend
// on the full child domain.
type ChildDirectory interface {
	Find(ctx context.Context, ownerID string, childID uuid.UUID) (*ChildInfo, error)
}

type ChildInfo struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	BirthDate time.Time `json:"birth_date"`
}
