package account

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("profile not found")

// Profile is the account-level record keyed by the identity provider's
// subject. Authentication itself lives in the identity provider; this table
// only carries display data.
type Profile struct {
	OwnerID   string    `db:"owner_id" json:"-"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
