package growth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	measurements Repository
	births       BirthDateSource
	now          func() time.Time
}

func NewService(measurements Repository, births BirthDateSource) *Service {
	return &Service{measurements: measurements, births: births, now: time.Now}
}

// RecordInput is a new measurement as submitted; the age in months is
// derived from the child's birth date, never accepted from the caller.
type RecordInput struct {
	ChildID         uuid.UUID
	MeasurementDate time.Time
	WeightKG        float64
	LengthCM        float64
	Notes           *string
}

func (s *Service) Record(ctx context.Context, ownerID string, in RecordInput) (*Measurement, error) {
	if in.ChildID == uuid.Nil {
		return nil, fmt.Errorf("child_id is required")
	}
	if in.MeasurementDate.IsZero() {
		return nil, fmt.Errorf("measurement_date is required")
	}
	if in.MeasurementDate.After(s.now()) {
		return nil, fmt.Errorf("measurement_date cannot be in the future")
	}
	if in.WeightKG < 0.5 || in.WeightKG > 50.0 {
		return nil, fmt.Errorf("weight_kg must be between 0.5 and 50.0")
	}
	if in.LengthCM < 30 || in.LengthCM > 200 {
		return nil, fmt.Errorf("length_cm must be between 30 and 200")
	}
	if in.Notes != nil && len(*in.Notes) > 500 {
		return nil, fmt.Errorf("notes must be at most 500 characters")
	}

	birthDate, err := s.births.BirthDate(ctx, ownerID, in.ChildID)
	if err != nil {
		return nil, err
	}

	m := &Measurement{
		ChildID:         in.ChildID,
		MeasurementDate: in.MeasurementDate,
		AgeMonths:       AgeInMonths(birthDate, in.MeasurementDate),
		WeightKG:        in.WeightKG,
		LengthCM:        in.LengthCM,
		Notes:           in.Notes,
	}
	if err := s.measurements.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) Get(ctx context.Context, ownerID string, id uuid.UUID) (*Measurement, error) {
	return s.measurements.GetByID(ctx, ownerID, id)
}

func (s *Service) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	return s.measurements.Delete(ctx, ownerID, id)
}

func (s *Service) ListByChild(ctx context.Context, ownerID string, childID uuid.UUID, ages AgeRange, limit, offset int) ([]*Measurement, int, error) {
	if _, err := s.births.BirthDate(ctx, ownerID, childID); err != nil {
		return nil, 0, err
	}
	return s.measurements.ListByChild(ctx, ownerID, childID, ages, limit, offset)
}
