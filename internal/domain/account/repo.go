package account

import "context"

type Repository interface {
	Get(ctx context.Context, ownerID string) (*Profile, error)
	Upsert(ctx context.Context, p *Profile) error
}
