package vaccination

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// DueSoonWindowDays is the inclusive number of days ahead within which a
// pending dose counts as due soon. A dose scheduled for today is due soon.
const DueSoonWindowDays = 7

// VaccineDefinition is a reference calendar entry: a recommended dose of a
// vaccine at a given age offset. Definitions are shared data, not owned by
// any child.
type VaccineDefinition struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	VaccineName         string    `db:"vaccine_name" json:"vaccine_name"`
	DoseNumber          int       `db:"dose_number" json:"dose_number"`
	AgeMonthsOffset     int       `db:"age_months_offset" json:"age_months_offset"`
	MinimumIntervalDays *int      `db:"minimum_interval_days" json:"minimum_interval_days,omitempty"`
	Description         *string   `db:"description" json:"description,omitempty"`
	IsActive            bool      `db:"is_active" json:"is_active"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduledDose is a per-child instance of a calendar entry. Rows are
// created in bulk at schedule generation and mutated only by the mark
// applied operation. Overdue and due-soon are derived at read time, never
// stored.
type ScheduledDose struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	ChildID             uuid.UUID  `db:"child_id" json:"child_id"`
	VaccineDefinitionID uuid.UUID  `db:"vaccine_definition_id" json:"vaccine_definition_id"`
	ScheduledDate       time.Time  `db:"scheduled_date" json:"scheduled_date"`
	Status              string     `db:"status" json:"status"`
	CompletedDate       *time.Time `db:"completed_date" json:"completed_date,omitempty"`
	Location            *string    `db:"location" json:"location,omitempty"`
	Notes               *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// DoseView is the read projection of a scheduled dose joined to its
// definition and minimal child identity, with status fields derived
// relative to a reference date.
type DoseView struct {
	ScheduledDose
	VaccineName        string  `json:"vaccine_name"`
	DoseNumber         int     `json:"dose_number"`
	VaccineDescription *string `json:"vaccine_description,omitempty"`

	ChildName      string    `json:"child_name"`
	ChildBirthDate time.Time `json:"child_birth_date"`

	DaysUntilDue *int `json:"days_until_due,omitempty"`
	IsOverdue    bool `json:"is_overdue"`
	IsDueSoon    bool `json:"is_due_soon"`
}

// ScheduleStats aggregates a child's schedule. Computed on demand from the
// derived view, never persisted.
type ScheduleStats struct {
	Total        int `json:"total"`
	Completed    int `json:"completed"`
	Pending      int `json:"pending"`
	Overdue      int `json:"overdue"`
	DueThisMonth int `json:"due_this_month"`
	DueNextMonth int `json:"due_next_month"`
}

// AddCalendarMonths adds whole calendar months to a date, clamping the day
// of month when the target month is shorter. Jan 31 plus one month is
// Feb 28, or Feb 29 in a leap year. time.AddDate is not used because it
// normalizes overflow (Jan 31 + 1 month = Mar 2/3) instead of clamping.
func AddCalendarMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	total := int(month) - 1 + months
	year += total / 12
	month = time.Month(total%12 + 1)

	if max := daysIn(year, month); day > max {
		day = max
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// daysIn returns the number of days in the given month. Day zero of the
// following month normalizes to the last day of this one.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// midnightUTC truncates a timestamp to its calendar date at UTC midnight so
// that date subtraction yields whole-day counts.
func midnightUTC(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// derive computes days-until-due, overdue, and due-soon for the view
// relative to today. Completed doses always report nil/false.
func (v *DoseView) derive(today time.Time) {
	v.DaysUntilDue = nil
	v.IsOverdue = false
	v.IsDueSoon = false

	if v.Status != StatusPending {
		return
	}

	days := int(midnightUTC(v.ScheduledDate).Sub(midnightUTC(today)).Hours() / 24)
	v.DaysUntilDue = &days
	v.IsOverdue = days < 0
	v.IsDueSoon = days >= 0 && days <= DueSoonWindowDays
}

// computeStats tallies a derived view list. dueThisMonth counts due-soon
// doses; dueNextMonth counts pending doses scheduled in the calendar month
// after today.
func computeStats(views []*DoseView, today time.Time) ScheduleStats {
	nextMonth := AddCalendarMonths(midnightUTC(today), 1)
	nextYear, nextMonthOf, _ := nextMonth.Date()

	stats := ScheduleStats{Total: len(views)}
	for _, v := range views {
		switch v.Status {
		case StatusCompleted:
			stats.Completed++
		case StatusPending:
			stats.Pending++
		}
		if v.IsOverdue {
			stats.Overdue++
		}
		if v.IsDueSoon {
			stats.DueThisMonth++
		}
		if v.Status == StatusPending {
			y, m, _ := v.ScheduledDate.Date()
			if y == nextYear && m == nextMonthOf {
				stats.DueNextMonth++
			}
		}
	}
	return stats
}
