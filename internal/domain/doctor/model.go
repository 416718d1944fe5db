package doctor

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("doctor not found")

// Doctor maps to the doctor table: the care providers a family keeps on
// record for appointments.
type Doctor struct {
	ID            uuid.UUID `db:"id" json:"id"`
	OwnerID       string    `db:"owner_id" json:"-"`
	Name          string    `db:"name" json:"name"`
	Specialty     string    `db:"specialty" json:"specialty"`
	LicenseNumber *string   `db:"license_number" json:"license_number,omitempty"`
	Phone         string    `db:"phone" json:"phone"`
	Email         *string   `db:"email" json:"email,omitempty"`
	Address       *string   `db:"address" json:"address,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
