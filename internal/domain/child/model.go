package child

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("child not found")

// Child maps to the child table. Every row is scoped to the account that
// created it.
type Child struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	OwnerID             string    `db:"owner_id" json:"-"`
	Name                string    `db:"name" json:"name"`
	BirthDate           time.Time `db:"birth_date" json:"birth_date"`
	BloodType           string    `db:"blood_type" json:"blood_type"`
	BirthPlace          string    `db:"birth_place" json:"birth_place"`
	FatherName          string    `db:"father_name" json:"father_name"`
	MotherName          string    `db:"mother_name" json:"mother_name"`
	PaternalGrandfather *string   `db:"paternal_grandfather" json:"paternal_grandfather,omitempty"`
	MaternalGrandmother *string   `db:"maternal_grandmother" json:"maternal_grandmother,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}
