package vaccination

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service implements the vaccination schedule engine: generating a per-child
// calendar from the reference definitions, deriving dose status on read, and
// aggregating stats. It is stateless; the clock is a field so tests can pin
// "today".
type Service struct {
	definitions DefinitionRepository
	doses       DoseRepository
	children    ChildDirectory
	now         func() time.Time
}

func NewService(definitions DefinitionRepository, doses DoseRepository, children ChildDirectory) *Service {
	return &Service{
		definitions: definitions,
		doses:       doses,
		children:    children,
		now:         time.Now,
	}
}

// HasSchedule reports whether the child already has a generated schedule.
func (s *Service) HasSchedule(ctx context.Context, ownerID string, childID uuid.UUID) (bool, error) {
	if _, err := s.children.Find(ctx, ownerID, childID); err != nil {
		return false, err
	}
	return s.doses.HasSchedule(ctx, childID)
}

// GenerateSchedule creates one pending dose per active definition, dated by
// adding the definition's age offset in calendar months to the child's birth
// date. The whole schedule is inserted as one batch. An empty active
// calendar succeeds with zero rows.
//
// The existence probe is a fast path; the unique constraint on
// (child_id, vaccine_definition_id) is the real guard against two
// concurrent calls both passing the probe.
func (s *Service) GenerateSchedule(ctx context.Context, ownerID string, childID uuid.UUID) error {
	child, err := s.children.Find(ctx, ownerID, childID)
	if err != nil {
		return err
	}

	exists, err := s.doses.HasSchedule(ctx, childID)
	if err != nil {
		return err
	}
	if exists {
		return ErrScheduleExists
	}

	definitions, err := s.definitions.ListActive(ctx)
	if err != nil {
		return err
	}

	doses := make([]*ScheduledDose, 0, len(definitions))
	for _, def := range definitions {
		doses = append(doses, &ScheduledDose{
			ID:                  uuid.New(),
			ChildID:             childID,
			VaccineDefinitionID: def.ID,
			ScheduledDate:       AddCalendarMonths(child.BirthDate, def.AgeMonthsOffset),
			Status:              StatusPending,
		})
	}

	return s.doses.CreateBatch(ctx, doses)
}

// ScheduleResult is the composed read: the child, the derived dose list
// ordered by scheduled date, and the aggregate stats. All derived fields are
// computed against a single "today" sample so rows cannot disagree within
// one response.
type ScheduleResult struct {
	Child *ChildInfo    `json:"child"`
	Doses []*DoseView   `json:"schedule"`
	Stats ScheduleStats `json:"stats"`
}

// Schedule returns the child's derived schedule and stats.
func (s *Service) Schedule(ctx context.Context, ownerID string, childID uuid.UUID) (*ScheduleResult, error) {
	child, err := s.children.Find(ctx, ownerID, childID)
	if err != nil {
		return nil, err
	}

	views, err := s.doses.ListViewsByChild(ctx, ownerID, childID)
	if err != nil {
		return nil, err
	}

	today := s.now()
	for _, v := range views {
		v.derive(today)
	}
	if views == nil {
		views = []*DoseView{}
	}

	return &ScheduleResult{
		Child: child,
		Doses: views,
		Stats: computeStats(views, today),
	}, nil
}

// Stats returns the aggregate counts for the child's schedule. It is built
// on the same derived view as Schedule so the overdue and due-soon
// definitions cannot diverge between the list and the stats.
func (s *Service) Stats(ctx context.Context, ownerID string, childID uuid.UUID) (ScheduleStats, error) {
	result, err := s.Schedule(ctx, ownerID, childID)
	if err != nil {
		return ScheduleStats{}, err
	}
	return result.Stats, nil
}

// MarkAppliedInput carries the completion fields for a dose. The completed
// date is accepted as given; minimum interval rules are informational data
// on the definition, not enforced here.
type MarkAppliedInput struct {
	CompletedDate time.Time
	Location      string
	Notes         *string
}

// MarkApplied transitions a dose to completed and records where and when it
// was given. Calling it again overwrites the completion fields.
func (s *Service) MarkApplied(ctx context.Context, ownerID string, doseID uuid.UUID, in MarkAppliedInput) error {
	if in.CompletedDate.IsZero() {
		return fmt.Errorf("%w: completed_date is required", ErrInvalidInput)
	}
	if in.Location == "" {
		return fmt.Errorf("%w: location is required", ErrInvalidInput)
	}
	return s.doses.MarkApplied(ctx, ownerID, doseID, in.CompletedDate, in.Location, in.Notes)
}

// Calendar returns the active reference definitions ordered by age offset.
func (s *Service) Calendar(ctx context.Context) ([]*VaccineDefinition, error) {
	return s.definitions.ListActive(ctx)
}
