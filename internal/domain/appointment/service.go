package appointment

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusCompleted: true,
	StatusCancelled: true, StatusRescheduled: true,
}

var timeOfDay = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// TxRunner executes fn inside a single database transaction carried on the
// context, so the reference checks and the write see one consistent snapshot.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	appointments Repository
	refs         ReferenceChecker
	tx           TxRunner
}

func NewService(appointments Repository, refs ReferenceChecker) *Service {
	return &Service{appointments: appointments, refs: refs}
}

// SetTxRunner makes writes transactional. Without a runner the checks and
// the write run as separate statements.
func (s *Service) SetTxRunner(tx TxRunner) {
	s.tx = tx
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.RunInTx(ctx, fn)
}

func (s *Service) validate(ctx context.Context, a *Appointment) error {
	if a.ChildID == uuid.Nil {
		return fmt.Errorf("child_id is required")
	}
	if a.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if a.AppointmentDate.IsZero() {
		return fmt.Errorf("appointment_date is required")
	}
	if !timeOfDay.MatchString(a.AppointmentTime) {
		return fmt.Errorf("appointment_time must be HH:MM")
	}
	if l := len(a.Location); l < 2 || l > 200 {
		return fmt.Errorf("location must be between 2 and 200 characters")
	}
	if a.Notes != nil && len(*a.Notes) > 500 {
		return fmt.Errorf("notes must be at most 500 characters")
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if !validStatuses[a.Status] {
		return fmt.Errorf("invalid status: %s", a.Status)
	}

	ok, err := s.refs.ChildExists(ctx, a.OwnerID, a.ChildID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrChildNotFound
	}
	ok, err = s.refs.DoctorExists(ctx, a.OwnerID, a.DoctorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDoctorNotFound
	}
	return nil
}

func (s *Service) Create(ctx context.Context, a *Appointment) error {
	return s.inTx(ctx, func(ctx context.Context) error {
		if err := s.validate(ctx, a); err != nil {
			return err
		}
		return s.appointments.Create(ctx, a)
	})
}

func (s *Service) Get(ctx context.Context, ownerID string, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, ownerID, id)
}

func (s *Service) Update(ctx context.Context, a *Appointment) error {
	return s.inTx(ctx, func(ctx context.Context) error {
		if err := s.validate(ctx, a); err != nil {
			return err
		}
		return s.appointments.Update(ctx, a)
	})
}

func (s *Service) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	return s.appointments.Delete(ctx, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, ownerID, limit, offset)
}

func (s *Service) ListByChild(ctx context.Context, ownerID string, childID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByChild(ctx, ownerID, childID, limit, offset)
}
