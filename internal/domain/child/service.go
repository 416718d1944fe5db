package child

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var validBloodTypes = map[string]bool{
	"A+": true, "A-": true, "B+": true, "B-": true,
	"AB+": true, "AB-": true, "O+": true, "O-": true,
}

var earliestBirthDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// BirthRecorder stores a child's measurements taken at birth. Recording is
// best effort and must never undo a created child.
type BirthRecorder interface {
	RecordBirth(ctx context.Context, ownerID string, childID uuid.UUID, birthDate time.Time, weightKG, lengthCM float64) error
}

// BirthMeasurement is the optional weight and length taken at birth,
// submitted together with a new child.
type BirthMeasurement struct {
	WeightKG float64
	LengthCM float64
}

type Service struct {
	children Repository
	births   BirthRecorder
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(children Repository) *Service {
	return &Service{children: children, logger: zerolog.Nop(), now: time.Now}
}

// SetBirthRecorder wires the optional birth measurement sink.
func (s *Service) SetBirthRecorder(r BirthRecorder) {
	s.births = r
}

// SetLogger replaces the no-op default.
func (s *Service) SetLogger(logger zerolog.Logger) {
	s.logger = logger
}

func (s *Service) validate(ch *Child) error {
	if l := len(ch.Name); l < 2 || l > 100 {
		return fmt.Errorf("name must be between 2 and 100 characters")
	}
	if ch.BirthDate.IsZero() {
		return fmt.Errorf("birth_date is required")
	}
	if ch.BirthDate.After(s.now()) {
		return fmt.Errorf("birth_date cannot be in the future")
	}
	if !ch.BirthDate.After(earliestBirthDate) {
		return fmt.Errorf("birth_date is out of range")
	}
	if !validBloodTypes[ch.BloodType] {
		return fmt.Errorf("invalid blood_type: %s", ch.BloodType)
	}
	if l := len(ch.BirthPlace); l < 2 || l > 200 {
		return fmt.Errorf("birth_place must be between 2 and 200 characters")
	}
	if l := len(ch.FatherName); l < 2 || l > 100 {
		return fmt.Errorf("father_name must be between 2 and 100 characters")
	}
	if l := len(ch.MotherName); l < 2 || l > 100 {
		return fmt.Errorf("mother_name must be between 2 and 100 characters")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, ch *Child, birth *BirthMeasurement) error {
	if err := s.validate(ch); err != nil {
		return err
	}
	if err := s.children.Create(ctx, ch); err != nil {
		return err
	}

	// Both values must be present to seed the first growth measurement, and
	// a failed seed never fails the creation.
	if birth != nil && s.births != nil && birth.WeightKG > 0 && birth.LengthCM > 0 {
		if err := s.births.RecordBirth(ctx, ch.OwnerID, ch.ID, ch.BirthDate, birth.WeightKG, birth.LengthCM); err != nil {
			s.logger.Warn().
				Err(err).
				Str("child_id", ch.ID.String()).
				Msg("failed to record birth measurement")
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, ownerID string, id uuid.UUID) (*Child, error) {
	return s.children.GetByID(ctx, ownerID, id)
}

func (s *Service) Update(ctx context.Context, ch *Child) error {
	if err := s.validate(ch); err != nil {
		return err
	}
	return s.children.Update(ctx, ch)
}

func (s *Service) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	return s.children.Delete(ctx, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]*Child, int, error) {
	return s.children.List(ctx, ownerID, limit, offset)
}
