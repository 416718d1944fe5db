package appointment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("appointment not found")
	ErrChildNotFound  = errors.New("child not found")
	ErrDoctorNotFound = errors.New("doctor not found")
)

const (
	StatusScheduled   = "scheduled"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusRescheduled = "rescheduled"
)

// Appointment maps to the appointment table: a visit booked for a child with
// a doctor. The time of day is kept as an HH:MM string, matching how it is
// entered and displayed.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	OwnerID         string    `db:"owner_id" json:"-"`
	ChildID         uuid.UUID `db:"child_id" json:"child_id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointment_date"`
	AppointmentTime string    `db:"appointment_time" json:"appointment_time"`
	Location        string    `db:"location" json:"location"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	Status          string    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
