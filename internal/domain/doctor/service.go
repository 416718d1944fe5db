package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	doctors Repository
}

func NewService(doctors Repository) *Service {
	return &Service{doctors: doctors}
}

func validate(d *Doctor) error {
	if l := len(d.Name); l < 2 || l > 100 {
		return fmt.Errorf("name must be between 2 and 100 characters")
	}
	if l := len(d.Specialty); l < 2 || l > 100 {
		return fmt.Errorf("specialty must be between 2 and 100 characters")
	}
	if l := len(d.Phone); l < 10 || l > 15 {
		return fmt.Errorf("phone must be between 10 and 15 digits")
	}
	if d.Email != nil && *d.Email != "" && !strings.Contains(*d.Email, "@") {
		return fmt.Errorf("invalid email")
	}
	if d.Address != nil && len(*d.Address) > 200 {
		return fmt.Errorf("address must be at most 200 characters")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, d *Doctor) error {
	if err := validate(d); err != nil {
		return err
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) Get(ctx context.Context, ownerID string, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, ownerID, id)
}

func (s *Service) Update(ctx context.Context, d *Doctor) error {
	if err := validate(d); err != nil {
		return err
	}
	return s.doctors.Update(ctx, d)
}

func (s *Service) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	return s.doctors.Delete(ctx, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, ownerID, limit, offset)
}
