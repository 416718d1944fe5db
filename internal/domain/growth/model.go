package growth

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("measurement not found")
	ErrChildNotFound = errors.New("child not found")
)

// Measurement maps to the growth_measurement table: a weight and length
// reading for a child at a given date. The age in months is computed at
// insert time and stored so age-range queries stay a simple filter.
type Measurement struct {
	ID              uuid.UUID `db:"id" json:"id"`
	ChildID         uuid.UUID `db:"child_id" json:"child_id"`
	MeasurementDate time.Time `db:"measurement_date" json:"measurement_date"`
	AgeMonths       float64   `db:"age_months" json:"age_months"`
	WeightKG        float64   `db:"weight_kg" json:"weight_kg"`
	LengthCM        float64   `db:"length_cm" json:"length_cm"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// AgeInMonths approximates the child's age at the measurement date as whole
// calendar months plus a 30-day fraction for the leftover days, rounded to
// two decimals. This is a display-oriented approximation; the vaccination
// engine uses exact calendar-month addition instead.
func AgeInMonths(birthDate, measurementDate time.Time) float64 {
	months := (measurementDate.Year()-birthDate.Year())*12 +
		int(measurementDate.Month()) - int(birthDate.Month())
	fraction := float64(measurementDate.Day()-birthDate.Day()) / 30.0
	return math.Round((float64(months)+fraction)*100) / 100
}
