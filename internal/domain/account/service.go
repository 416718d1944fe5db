package account

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	profiles Repository
}

func NewService(profiles Repository) *Service {
	return &Service{profiles: profiles}
}

func (s *Service) Get(ctx context.Context, ownerID string) (*Profile, error) {
	return s.profiles.Get(ctx, ownerID)
}

func (s *Service) Save(ctx context.Context, p *Profile) error {
	if l := len(p.Name); l < 2 || l > 100 {
		return fmt.Errorf("name must be between 2 and 100 characters")
	}
	if !strings.Contains(p.Email, "@") {
		return fmt.Errorf("invalid email")
	}
	if p.Phone != nil && *p.Phone != "" {
		if l := len(*p.Phone); l < 10 || l > 15 {
			return fmt.Errorf("phone must be between 10 and 15 digits")
		}
	}
	return s.profiles.Upsert(ctx, p)
}
